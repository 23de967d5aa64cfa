// Package report renders the classification outcome of one document as a
// markdown division report, with an HTML variant for browser consumers.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/specsift/specsift/internal/classify"
	"github.com/specsift/specsift/internal/specdoc"
)

// BuildMarkdown renders the division summary and per-tier statistics for one
// classified document.
func BuildMarkdown(title string, st classify.Stats, summary map[string]*classify.DivisionSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d of %d pages classified", st.Classified, st.TotalPages)
	if st.Unclassified > 0 {
		fmt.Fprintf(&b, " (%d unclassified)", st.Unclassified)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Detected format: `%s`", st.Format)
	if st.TocSource != "" {
		fmt.Fprintf(&b, ", listing source: %s (%d sections)", st.TocSource, st.TocSections)
	}
	b.WriteString("\n\n")

	b.WriteString("## Divisions\n\n")
	b.WriteString("| Division | Name | Pages | Sections |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, code := range classify.Divisions(summary) {
		ds := summary[code]
		fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", ds.Code, ds.Name, ds.Count, len(ds.Sections))
	}
	b.WriteString("\n")

	for _, code := range classify.Divisions(summary) {
		ds := summary[code]
		if len(ds.Sections) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### Division %s — %s\n\n", ds.Code, ds.Name)
		for _, s := range ds.Sections {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Classification methods\n\n")
	b.WriteString("| Method | Pages |\n")
	b.WriteString("|---|---|\n")
	for _, m := range specdoc.Methods {
		if n := st.ByMethod[m]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", m, n)
		}
	}
	if st.OracleCalls > 0 {
		fmt.Fprintf(&b, "\nOracle calls: %d\n", st.OracleCalls)
	}

	return b.String()
}

// RenderHTML converts a markdown report to HTML.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

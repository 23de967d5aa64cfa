package report

import (
	"strings"
	"testing"

	"github.com/specsift/specsift/internal/classify"
	"github.com/specsift/specsift/internal/specdoc"
)

func sampleInputs() (classify.Stats, map[string]*classify.DivisionSummary) {
	st := classify.Stats{
		TotalPages:   20,
		Classified:   18,
		Unclassified: 2,
		Format:       specdoc.FormatSpacedPage,
		TocSource:    "toc",
		TocSections:  6,
		OracleCalls:  1,
		ByMethod: map[specdoc.Method]int{
			specdoc.MethodToc:     12,
			specdoc.MethodFooter:  4,
			specdoc.MethodInherit: 2,
		},
	}
	summary := map[string]*classify.DivisionSummary{
		"04": {Code: "04", Name: "Masonry", Pages: []int{3, 4, 5}, Count: 3, Sections: []string{"04 22 00"}},
		"03": {Code: "03", Name: "Concrete", Pages: []int{1, 2}, Count: 2, Sections: []string{"03 30 00", "03 35 00"}},
	}
	return st, summary
}

func TestBuildMarkdown(t *testing.T) {
	st, summary := sampleInputs()
	md := BuildMarkdown("Project Manual", st, summary)

	for _, want := range []string{
		"# Project Manual",
		"18 of 20 pages classified (2 unclassified)",
		"Detected format: `spaced_page`",
		"listing source: toc (6 sections)",
		"| 03 | Concrete | 2 | 2 |",
		"| 04 | Masonry | 3 | 1 |",
		"### Division 04 — Masonry",
		"- 04 22 00",
		"| toc | 12 |",
		"| footer | 4 |",
		"| inherit | 2 |",
		"Oracle calls: 1",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q\n%s", want, md)
		}
	}

	// division 03 must render before 04
	if strings.Index(md, "| 03 |") > strings.Index(md, "| 04 |") {
		t.Error("divisions out of order")
	}
}

func TestBuildMarkdown_FullyClassifiedOmitsExtras(t *testing.T) {
	st, summary := sampleInputs()
	st.Classified = 20
	st.Unclassified = 0
	st.OracleCalls = 0
	st.TocSource = ""

	md := BuildMarkdown("Project Manual", st, summary)
	if strings.Contains(md, "unclassified") {
		t.Error("fully classified report should not mention unclassified pages")
	}
	if strings.Contains(md, "Oracle calls") {
		t.Error("report should omit oracle calls when none were made")
	}
	if strings.Contains(md, "listing source") {
		t.Error("report should omit listing source when no listing was found")
	}
}

func TestRenderHTML(t *testing.T) {
	st, summary := sampleInputs()
	md := BuildMarkdown("Project Manual", st, summary)

	html, err := RenderHTML(md)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<h1>Project Manual</h1>") {
		t.Errorf("missing title heading:\n%s", html)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("division table not rendered:\n%s", html)
	}
}

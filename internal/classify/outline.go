package classify

import (
	"context"
	"regexp"

	"github.com/specsift/specsift/internal/csi"
	"github.com/specsift/specsift/internal/specdoc"
)

// outlineSectionRe pulls a 6-digit (optionally dotted) CSI code out of an
// outline title: "031000", "03 10 00", "033000 RIB - Cast-in-Place Concrete".
var outlineSectionRe = regexp.MustCompile(`(\d{2})\s*(\d{2})\s*(\d{2})(?:\.(\d+))?`)

// ParseOutline converts outline/bookmark entries into a section→start-page
// map. First occurrence of a section wins. When every extracted section is
// administrative (division 00/01), the whole outline is an "outline spec"
// shell and an empty map is returned so content scanning takes over.
func ParseOutline(entries []specdoc.OutlineEntry) map[string]int {
	if len(entries) == 0 {
		return nil
	}

	sectionToPage := make(map[string]int)
	for _, entry := range entries {
		match := outlineSectionRe.FindStringSubmatch(entry.Title)
		if match == nil {
			continue
		}
		if !csi.ValidDivision(match[1]) {
			continue
		}
		section := csi.FormatSection(match[1], match[2], match[3], match[4])
		if _, exists := sectionToPage[section]; !exists {
			sectionToPage[section] = entry.Page
		}
	}

	for section := range sectionToPage {
		if !csi.Administrative(section[:2]) {
			return sectionToPage
		}
	}
	return nil
}

// outlinePass is tier 0: assign outline ranges, then run the content scan on
// every page regardless of outline assignment. Content wins when it finds a
// division the outline never mentions, or a trade division where the outline
// assigned an administrative one.
type outlinePass struct {
	p *Pipeline
}

func (o *outlinePass) Name() string { return "outline" }

func (o *outlinePass) Apply(_ context.Context, doc *specdoc.Document, st *Stats) {
	outlineMap := ParseOutline(doc.Outline)
	st.OutlineSections = len(outlineMap)
	if len(outlineMap) == 0 {
		if len(doc.Outline) > 0 {
			o.p.log.Info("outline is administrative only, deferring to content scan")
		}
		return
	}

	ranges := sortedRanges(outlineMap)
	outlineDivisions := make(map[string]bool, len(outlineMap))
	for section := range outlineMap {
		outlineDivisions[section[:2]] = true
	}

	for i := range doc.Pages {
		page := &doc.Pages[i]

		assigned := sectionForPage(ranges, page.Number)
		if assigned != "" {
			page.Assign(assigned, assigned[:2], specdoc.MethodOutline)
		}

		contentSection, contentDiv := DetectContent(page.Text, st.Format)
		if contentDiv == "" {
			continue
		}
		switch {
		case !outlineDivisions[contentDiv]:
			// The outline never heard of this division; the page itself wins.
			page.Assign(contentSection, contentDiv, specdoc.MethodContentOverride)
			o.p.log.Debug("content override", "page", page.Number, "section", contentSection)
		case assigned != "" && csi.Administrative(assigned[:2]):
			page.Assign(contentSection, contentDiv, specdoc.MethodOutlinePlus)
		}
	}
}

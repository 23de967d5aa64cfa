package classify

import (
	"sort"

	"github.com/specsift/specsift/internal/csi"
	"github.com/specsift/specsift/internal/specdoc"
)

// DivisionSummary aggregates the final page state for one division.
type DivisionSummary struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Pages    []int    `json:"pages"`
	Count    int      `json:"count"`
	Sections []string `json:"sections"`
}

// Summarize rebuilds per-division totals from final page state, then re-scans
// each page's header and footer for further section hits. Outline-style specs
// put several divisions on one page; the re-scan catches the ones page-level
// tagging missed. Pages are left untouched.
func Summarize(pages []specdoc.Page) map[string]*DivisionSummary {
	summary := make(map[string]*DivisionSummary)
	sectionSets := make(map[string]map[string]struct{})
	pageSets := make(map[string]map[int]struct{})

	add := func(div string, pageNum int, section string) {
		ds, ok := summary[div]
		if !ok {
			ds = &DivisionSummary{Code: div, Name: csi.DivisionNames[div]}
			summary[div] = ds
			sectionSets[div] = make(map[string]struct{})
			pageSets[div] = make(map[int]struct{})
		}
		if _, seen := pageSets[div][pageNum]; !seen {
			pageSets[div][pageNum] = struct{}{}
			ds.Pages = append(ds.Pages, pageNum)
			ds.Count++
		}
		if section != "" {
			sectionSets[div][section] = struct{}{}
		}
	}

	for i := range pages {
		page := &pages[i]
		if page.Division != "" {
			add(page.Division, page.Number, page.Section)
		}
		for _, ref := range DetectAllSections(page.Text) {
			add(ref.Division, page.Number, ref.Section)
		}
	}

	for div, ds := range summary {
		sections := make([]string, 0, len(sectionSets[div]))
		for s := range sectionSets[div] {
			sections = append(sections, s)
		}
		sort.Strings(sections)
		ds.Sections = sections
		sort.Ints(ds.Pages)
	}
	return summary
}

// Divisions lists the division codes present in a summary, sorted.
func Divisions(summary map[string]*DivisionSummary) []string {
	codes := make([]string, 0, len(summary))
	for code := range summary {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

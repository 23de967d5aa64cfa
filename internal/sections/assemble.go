// Package sections groups classified pages into per-section content blocks
// and runs the downstream per-section extraction fan-out over them.
package sections

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specsift/specsift/internal/specdoc"
)

const (
	// sectionAnalysisPageThreshold is the division size at which callers
	// should switch from whole-division to section-by-section extraction.
	sectionAnalysisPageThreshold = 100

	// maxSectionChars caps assembled section content sent to the extractor.
	maxSectionChars = 200000
)

// Section is the assembled content of one spec section within a division.
type Section struct {
	Number    string `json:"section_number"`
	PageCount int    `json:"page_count"`
	Pages     []int  `json:"pages"`
	Content   string `json:"content"`
}

// Assemble groups the division's classified pages by section, in section then
// page order. Page text is joined with page markers so the extractor can cite
// page numbers.
func Assemble(pages []specdoc.Page, division string) []Section {
	bySection := make(map[string][]*specdoc.Page)
	for i := range pages {
		page := &pages[i]
		if page.Division != division || page.Section == "" {
			continue
		}
		bySection[page.Section] = append(bySection[page.Section], page)
	}

	numbers := make([]string, 0, len(bySection))
	for n := range bySection {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	result := make([]Section, 0, len(numbers))
	for _, n := range numbers {
		group := bySection[n]
		sort.Slice(group, func(i, j int) bool { return group[i].Number < group[j].Number })

		sec := Section{Number: n}
		var parts []string
		for _, page := range group {
			sec.Pages = append(sec.Pages, page.Number)
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", page.Number, page.Text))
		}
		sec.PageCount = len(sec.Pages)
		sec.Content = strings.Join(parts, "\n\n")
		if len(sec.Content) > maxSectionChars {
			sec.Content = sec.Content[:maxSectionChars] + "\n\n[TRUNCATED]"
		}
		result = append(result, sec)
	}
	return result
}

// UseSectionAnalysis reports whether a division is big enough to warrant
// section-by-section extraction instead of a single whole-division call.
func UseSectionAnalysis(pageCount, sectionCount int) bool {
	return pageCount >= sectionAnalysisPageThreshold && sectionCount >= 2
}

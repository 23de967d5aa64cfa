package classify

import (
	"sort"

	"github.com/specsift/specsift/internal/csi"
	"github.com/specsift/specsift/internal/specdoc"
)

// CrossRefs finds every section a page mentions other than its own. The own
// section is compared by its "dd dd dd" base so a page inside "09 91 23.13"
// does not report "09 91 23" as a reference.
func CrossRefs(text, ownSection string) []string {
	ownBase := ownSection
	if len(ownBase) > 8 {
		ownBase = ownBase[:8]
	}

	seen := make(map[string]struct{})
	for _, m := range sectionTripleRe.FindAllStringSubmatch(text, -1) {
		if !csi.ValidSection(m[1], m[2], m[3]) {
			continue
		}
		section := csi.FormatSection(m[1], m[2], m[3], "")
		if section == ownBase {
			continue
		}
		seen[section] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	refs := make([]string, 0, len(seen))
	for s := range seen {
		refs = append(refs, s)
	}
	sort.Strings(refs)
	return refs
}

// ExtractCrossRefs populates CrossRefs on every page and returns the total
// reference count. Unclassified pages have no own section to exclude, so
// every valid triple they mention counts.
func ExtractCrossRefs(pages []specdoc.Page) int {
	total := 0
	for i := range pages {
		page := &pages[i]
		page.CrossRefs = CrossRefs(page.Text, page.Section)
		total += len(page.CrossRefs)
	}
	return total
}

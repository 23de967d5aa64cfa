package classify

import (
	"context"
	"regexp"

	"github.com/specsift/specsift/internal/csi"
	"github.com/specsift/specsift/internal/specdoc"
)

// minPageChars is the shortest page worth pattern-matching; anything smaller
// is a near-blank sheet or a scan artifact.
const minPageChars = 100

// contentPatterns is the single regex table shared by format detection, the
// outline override scan, and the footer tier. Only the family matching the
// document's detected format is ever tried against a page, which keeps
// cross-references elsewhere in the body from being misread as headers.
var contentPatterns = map[specdoc.SpecFormat]*regexp.Regexp{
	specdoc.FormatCompactPage:    regexp.MustCompile(`(0[1-9]|[1-4]\d)(\d{3,4})\s*[-–—]\s*\d{1,3}`),
	specdoc.FormatSpacedPage:     regexp.MustCompile(`(0[1-9]|[1-4]\d)\s+(\d{2})\s*(\d{2})?(?:\.(\d+))?\s*[-–—]\s*\d{1,3}`),
	specdoc.FormatSectionCompact: regexp.MustCompile(`SECTION\s+(0[1-9]|[1-4]\d)(\d{3,4})\b`),
	specdoc.FormatSectionSpaced:  regexp.MustCompile(`SECTION\s+(0[1-9]|[1-4]\d)\s+(\d{2})\s+(\d{2})(?:\.(\d+))?`),
}

// DetectContent extracts a section number from a page's header or footer
// using only the document's detected format. Administrative divisions and
// date-shaped triples are rejected. Returns ("", "") when nothing matches.
func DetectContent(text string, format specdoc.SpecFormat) (section, division string) {
	if len(text) < minPageChars || format == specdoc.FormatNone || format == "" {
		return "", ""
	}
	pattern, ok := contentPatterns[format]
	if !ok {
		return "", ""
	}
	for _, region := range []string{headerRegion(text), footerRegion(text)} {
		match := pattern.FindStringSubmatch(region)
		if match == nil {
			continue
		}
		if s, d := extractSection(match, format); s != "" {
			return s, d
		}
	}
	return "", ""
}

// extractSection turns a regex match into a canonical (section, division)
// pair, or ("", "") when the match fails division/date validation.
func extractSection(match []string, format specdoc.SpecFormat) (string, string) {
	div := match[1]
	if !csi.ValidDivision(div) || csi.Administrative(div) {
		return "", ""
	}

	switch format {
	case specdoc.FormatCompactPage, specdoc.FormatSectionCompact:
		section := csi.NormalizeCompact(div, match[2])
		if !csi.ValidSection(section[:2], section[3:5], section[6:8]) {
			return "", ""
		}
		return section, div
	default:
		g2, g3 := match[2], match[3]
		if g2 == "" {
			g2 = "00"
		}
		if g3 == "" {
			g3 = "00"
		}
		if !csi.ValidSection(div, g2, g3) {
			return "", ""
		}
		sub := ""
		if len(match) > 4 {
			sub = match[4]
		}
		return csi.FormatSection(div, g2, g3, sub), div
	}
}

// SectionRef is a section number spotted in a page's header/footer region.
type SectionRef struct {
	Section  string
	Division string
}

// Looser variants used by the aggregator re-scan: the spaced form tolerates a
// truncated one-digit last group, as seen in ragged footer extractions.
var (
	rescanSpaced         = regexp.MustCompile(`(0[1-9]|[1-4]\d)\s+(\d{2})\s*(\d{1,2})?(?:\.(\d+))?\s*[-–—]\s*\d{1,3}`)
	rescanCompact        = regexp.MustCompile(`(0[1-9]|[1-4]\d)(\d{3,4})\s*[-–—]\s*\d{1,3}`)
	rescanSectionSpaced  = regexp.MustCompile(`SECTION\s+(0[1-9]|[1-4]\d)\s+(\d{2})\s+(\d{2})(?:\.(\d+))?`)
	rescanSectionCompact = regexp.MustCompile(`SECTION\s+(0[1-9]|[1-4]\d)(\d{3,4})\b`)
)

// DetectAllSections finds every distinct trade-division section identifier in
// a page's header/footer region, across all notation families. Used by the
// aggregator to recover multi-division pages ("outline specs" list several
// sections on one sheet) that single-assignment tagging cannot represent.
func DetectAllSections(text string) []SectionRef {
	if len(text) < minPageChars {
		return nil
	}
	region := headerRegion(text) + "\n" + footerRegion(text)

	var refs []SectionRef
	seen := make(map[string]bool)
	add := func(section, div string) {
		if seen[section] {
			return
		}
		seen[section] = true
		refs = append(refs, SectionRef{Section: section, Division: div})
	}

	for _, m := range rescanSpaced.FindAllStringSubmatch(region, -1) {
		div, g2, g3 := m[1], m[2], m[3]
		if !csi.ValidDivision(div) || csi.Administrative(div) {
			continue
		}
		if g3 == "" {
			g3 = "00"
		} else if len(g3) == 1 {
			g3 += "0"
		}
		if !csi.ValidSection(div, g2, g3) {
			continue
		}
		add(csi.FormatSection(div, g2, g3, m[4]), div)
	}
	for _, m := range rescanCompact.FindAllStringSubmatch(region, -1) {
		div := m[1]
		if !csi.ValidDivision(div) || csi.Administrative(div) {
			continue
		}
		section := csi.NormalizeCompact(div, m[2])
		if !csi.ValidSection(section[:2], section[3:5], section[6:8]) {
			continue
		}
		add(section, div)
	}
	for _, m := range rescanSectionSpaced.FindAllStringSubmatch(region, -1) {
		div := m[1]
		if !csi.ValidDivision(div) || csi.Administrative(div) {
			continue
		}
		if !csi.ValidSection(div, m[2], m[3]) {
			continue
		}
		add(csi.FormatSection(div, m[2], m[3], m[4]), div)
	}
	for _, m := range rescanSectionCompact.FindAllStringSubmatch(region, -1) {
		div := m[1]
		if !csi.ValidDivision(div) || csi.Administrative(div) {
			continue
		}
		section := csi.NormalizeCompact(div, m[2])
		if !csi.ValidSection(section[:2], section[3:5], section[6:8]) {
			continue
		}
		add(section, div)
	}
	return refs
}

// footerPass is the standalone content-pattern tier: any page still
// unclassified after the range-based tiers gets a header/footer scan in the
// document's detected format.
type footerPass struct {
	p *Pipeline
}

func (f *footerPass) Name() string { return "footer" }

func (f *footerPass) Apply(_ context.Context, doc *specdoc.Document, st *Stats) {
	for i := range doc.Pages {
		page := &doc.Pages[i]
		if page.Classified() {
			continue
		}
		section, division := DetectContent(page.Text, st.Format)
		if section != "" {
			page.Assign(section, division, specdoc.MethodFooter)
		}
	}
}

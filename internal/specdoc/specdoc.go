// Package specdoc is the shared document model: pages, outline entries, and the
// classification vocabulary every tier writes into.
package specdoc

import "github.com/specsift/specsift/internal/csi"

// Method identifies which classification tier tagged a page.
type Method string

const (
	MethodOutline         Method = "outline"  // PDF outline/bookmark range
	MethodContentOverride Method = "content"  // header/footer pattern overriding the outline
	MethodOutlinePlus     Method = "outline+" // trade division found under an administrative outline range
	MethodToc             Method = "toc"      // textual table-of-contents range
	MethodIndex           Method = "index"    // textual index range
	MethodTocPage         Method = "toc_page" // the TOC/index page itself
	MethodFooter          Method = "footer"   // header/footer pattern, standalone tier
	MethodAI              Method = "ai"       // boundary oracle
	MethodInherit         Method = "inherit"  // continuity from the previous classified page
)

// Methods lists every classification method in tier order, for stats output.
var Methods = []Method{
	MethodOutline, MethodContentOverride, MethodOutlinePlus,
	MethodToc, MethodIndex, MethodTocPage,
	MethodFooter, MethodAI, MethodInherit,
}

// CanReplace reports whether candidate may overwrite an existing assignment.
// Unclassified pages accept anything. An outline assignment yields only to the
// two documented content overrides; every other combination stands.
func CanReplace(existing, candidate Method) bool {
	if existing == "" {
		return true
	}
	if existing == MethodOutline {
		return candidate == MethodContentOverride || candidate == MethodOutlinePlus
	}
	return false
}

// SpecFormat is the dominant header/footer notation of one document, chosen
// once by format detection and consumed by the content pattern tier.
type SpecFormat string

const (
	FormatCompactPage    SpecFormat = "compact_page"    // "042200 - 1"
	FormatSpacedPage     SpecFormat = "spaced_page"     // "04 22 00 - 1"
	FormatSectionCompact SpecFormat = "section_compact" // "SECTION 042200"
	FormatSectionSpaced  SpecFormat = "section_spaced"  // "SECTION 04 22 00"
	FormatNone           SpecFormat = "none"
)

// Page is one page of a specification document. Tiers mutate Section,
// Division, and Method in a fixed sequential order; CrossRefs is filled after
// classification settles.
type Page struct {
	Number    int      `json:"page_number"`
	Text      string   `json:"-"`
	CharCount int      `json:"char_count"`
	Section   string   `json:"section_number,omitempty"`
	Division  string   `json:"division_code,omitempty"`
	Method    Method   `json:"classification_method,omitempty"`
	CrossRefs []string `json:"cross_refs,omitempty"`
}

// Classified reports whether any tier has tagged this page.
func (p *Page) Classified() bool {
	return p.Method != ""
}

// Assign records a classification, enforcing override precedence, the
// Division/Method pairing, and the section-prefix invariant. Section may be
// empty (TOC pages carry only a division). Assignments that precedence
// forbids are dropped silently; tiers never need to re-check.
func (p *Page) Assign(section, division string, m Method) {
	if division == "" || m == "" {
		return
	}
	if !CanReplace(p.Method, m) {
		return
	}
	if section != "" && csi.DivisionOf(section) != division {
		return
	}
	p.Section = section
	p.Division = division
	p.Method = m
}

// OutlineEntry is one PDF outline/bookmark entry as supplied by the page-text
// collaborator.
type OutlineEntry struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Document bundles the pages and optional outline for one classification run.
type Document struct {
	Title      string
	TotalPages int // physical page count before blank pages were dropped
	Pages      []Page
	Outline    []OutlineEntry
}

package classify

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/specsift/specsift/internal/csi"
	"github.com/specsift/specsift/internal/specdoc"
)

// tocScanWindow bounds how deep into the document TOC and index discovery
// looks: a TOC lives in the first pages, an index in the last.
const tocScanWindow = 50

// minListingSections is the minimum number of section triples a page needs,
// alongside a marker phrase, to count as a TOC/index candidate.
const minListingSections = 5

var tocMarkers = []string{
	"TABLE OF CONTENTS",
	"CONTENTS",
	"INDEX OF SPECIFICATIONS",
	"SPECIFICATION INDEX",
}

var indexMarkers = []string{
	"INDEX",
	"SPECIFICATION INDEX",
	"SECTION INDEX",
	"INDEX OF SECTIONS",
}

var sectionTripleRe = regexp.MustCompile(`\b(\d{2})\s+(\d{2})\s+(\d{2})\b`)

var sectionListingRe = regexp.MustCompile(`(?i)Section\s+\d{2}\s+\d{2}\s+\d{2}`)

// tocLineRe matches one listing line: a section number, then title text and
// leader dots, then a trailing page number at end of line.
var tocLineRe = regexp.MustCompile(`(?m)(\d{2})\s+(\d{2})\s+(\d{2})(?:\.(\d+))?[^\d]*?(\d{1,4})\s*$`)

func hasAnyMarker(upper string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// IsTocPage detects TOC/index pages by marker phrases or by the sheer density
// of section listings. These pages are pre-tagged division 00 so the sections
// they list don't classify the listing itself.
func IsTocPage(text string) bool {
	upper := strings.ToUpper(text)
	if strings.Contains(upper, "TABLE OF CONTENTS") ||
		strings.Contains(upper, "INDEX OF SPECIFICATIONS") ||
		strings.Contains(upper, "SPECIFICATION INDEX") {
		return true
	}
	if len(sectionListingRe.FindAllString(text, 4)) > 3 {
		return true
	}
	return len(sectionTripleRe.FindAllString(upper, 9)) > 8
}

// findListingPages returns the page numbers within the window that look like
// a TOC (front of book) or index (back of book).
func findListingPages(pages []specdoc.Page, markers []string, fromEnd bool) []int {
	window := pages
	if len(pages) > tocScanWindow {
		if fromEnd {
			window = pages[len(pages)-tocScanWindow:]
		} else {
			window = pages[:tocScanWindow]
		}
	}

	var found []int
	for i := range window {
		upper := strings.ToUpper(window[i].Text)
		if !hasAnyMarker(upper, markers) {
			continue
		}
		if len(sectionTripleRe.FindAllString(upper, -1)) >= minListingSections {
			found = append(found, window[i].Number)
		}
	}
	return found
}

// ParseListing extracts a section→page map from concatenated TOC/index text.
func ParseListing(text string) map[string]int {
	sectionToPage := make(map[string]int)
	for _, m := range tocLineRe.FindAllStringSubmatch(text, -1) {
		if !csi.ValidDivision(m[1]) {
			continue
		}
		pageNum, err := strconv.Atoi(m[5])
		if err != nil || pageNum < 1 || pageNum > 5000 {
			continue
		}
		section := csi.FormatSection(m[1], m[2], m[3], m[4])
		sectionToPage[section] = pageNum
	}
	return sectionToPage
}

// ValidateListing rejects maps whose page numbers are implausible: listings
// that show TOC row order instead of document pages (small sequential
// numbers), or that don't span enough of the document to be real.
func ValidateListing(m map[string]int, totalPages int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	minPage, maxPage := 0, 0
	first := true
	for _, page := range m {
		if first {
			minPage, maxPage = page, page
			first = false
			continue
		}
		if page < minPage {
			minPage = page
		}
		if page > maxPage {
			maxPage = page
		}
	}

	if maxPage <= 20 && minPage <= 2 {
		return nil // row order, not page numbers
	}
	if maxPage < 10 {
		return nil
	}
	if totalPages > 0 && float64(maxPage) < 0.2*float64(totalPages) {
		return nil
	}
	return m
}

// tocPagePass pre-tags TOC/index pages as division 00 before any range-based
// tier runs, so listings never self-classify.
type tocPagePass struct {
	p *Pipeline
}

func (t *tocPagePass) Name() string { return "toc_page" }

func (t *tocPagePass) Apply(_ context.Context, doc *specdoc.Document, _ *Stats) {
	for i := range doc.Pages {
		page := &doc.Pages[i]
		if page.Classified() {
			continue
		}
		if IsTocPage(page.Text) {
			page.Assign("", "00", specdoc.MethodTocPage)
		}
	}
}

// tocIndexPass is tier 1: find the textual TOC and/or index, parse whichever
// validates, and apply the richer of the two as section ranges.
type tocIndexPass struct {
	p *Pipeline
}

func (t *tocIndexPass) Name() string { return "toc_index" }

func (t *tocIndexPass) Apply(_ context.Context, doc *specdoc.Document, st *Stats) {
	tocMap := t.listingMap(doc, findListingPages(doc.Pages, tocMarkers, false))
	indexMap := t.listingMap(doc, findListingPages(doc.Pages, indexMarkers, true))

	var winner map[string]int
	var method specdoc.Method
	if len(indexMap) > len(tocMap) {
		winner, method = indexMap, specdoc.MethodIndex
	} else if len(tocMap) > 0 {
		winner, method = tocMap, specdoc.MethodToc
	} else {
		return
	}

	st.TocSource = string(method)
	st.TocSections = len(winner)
	applied := applySectionRanges(doc.Pages, winner, method)
	t.p.log.Info("listing applied", "source", method, "sections", len(winner), "pages", applied)
}

func (t *tocIndexPass) listingMap(doc *specdoc.Document, pageNums []int) map[string]int {
	if len(pageNums) == 0 {
		return nil
	}
	wanted := make(map[int]bool, len(pageNums))
	for _, n := range pageNums {
		wanted[n] = true
	}
	var sb strings.Builder
	for i := range doc.Pages {
		if wanted[doc.Pages[i].Number] {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(doc.Pages[i].Text)
		}
	}
	return ValidateListing(ParseListing(sb.String()), doc.TotalPages)
}

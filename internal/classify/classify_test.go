package classify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/specsift/specsift/internal/specdoc"
)

// buildTocDocument models a spec book with a textual TOC, spaced page-number
// footers on the body pages, and one front-matter page with no notation.
func buildTocDocument() *specdoc.Document {
	toc := strings.Join([]string{
		"TABLE OF CONTENTS",
		"03 30 00 Cast-in-Place Concrete ............. 3",
		"04 22 00 Concrete Unit Masonry .............. 5",
		"07 92 00 Joint Sealants ..................... 7",
		"09 91 23 Interior Painting .................. 9",
		"26 05 00 Common Work Results ................ 11",
	}, "\n")

	doc := &specdoc.Document{Title: "Test Manual", TotalPages: 12}
	doc.Pages = append(doc.Pages, specdoc.Page{Number: 1, Text: toc, CharCount: len(toc)})
	doc.Pages = append(doc.Pages, pageWithFooter(2, "project directory and front matter"))

	footers := map[int]string{
		3: "03 30 00", 4: "03 30 00",
		5: "04 22 00", 6: "04 22 00",
		7: "07 92 00", 8: "07 92 00",
		9: "09 91 23", 10: "09 91 23",
		11: "26 05 00", 12: "26 05 00",
	}
	for n := 3; n <= 12; n++ {
		doc.Pages = append(doc.Pages, pageWithFooter(n, fmt.Sprintf("%s - %d", footers[n], n)))
	}
	return doc
}

func TestPipelineRun_TocDocument(t *testing.T) {
	mock := &mockOracle{}
	doc := buildTocDocument()

	st := NewPipeline(mock, testLogger()).Run(context.Background(), doc)

	if st.Format != specdoc.FormatSpacedPage {
		t.Fatalf("expected spaced_page format, got %s", st.Format)
	}
	if st.TocSource != "toc" || st.TocSections != 5 {
		t.Errorf("expected toc source with 5 sections, got %q/%d", st.TocSource, st.TocSections)
	}
	if st.Classified != 12 || st.Unclassified != 0 {
		t.Errorf("expected all 12 pages classified, got %d/%d", st.Classified, st.Unclassified)
	}
	if mock.calls != 0 {
		t.Errorf("deterministic tiers covered the document; oracle calls = %d", mock.calls)
	}

	// The TOC page itself carries division 00, never a listed section.
	if doc.Pages[0].Division != "00" || doc.Pages[0].Method != specdoc.MethodTocPage {
		t.Errorf("page 1: expected toc_page 00, got %+v", doc.Pages[0])
	}
	// Front matter inherits from the TOC page.
	if doc.Pages[1].Method != specdoc.MethodInherit || doc.Pages[1].Division != "00" {
		t.Errorf("page 2: expected inherited 00, got %+v", doc.Pages[1])
	}

	wantSections := map[int]string{
		3: "03 30 00", 4: "03 30 00",
		5: "04 22 00", 6: "04 22 00",
		7: "07 92 00", 8: "07 92 00",
		9: "09 91 23", 10: "09 91 23",
		11: "26 05 00", 12: "26 05 00",
	}
	for i := 2; i < len(doc.Pages); i++ {
		page := doc.Pages[i]
		if page.Section != wantSections[page.Number] || page.Method != specdoc.MethodToc {
			t.Errorf("page %d: expected (%s, toc), got (%s, %s)",
				page.Number, wantSections[page.Number], page.Section, page.Method)
		}
	}

	if st.ByMethod[specdoc.MethodToc] != 10 ||
		st.ByMethod[specdoc.MethodTocPage] != 1 ||
		st.ByMethod[specdoc.MethodInherit] != 1 {
		t.Errorf("unexpected method tally: %v", st.ByMethod)
	}
}

func TestPipelineRun_FooterFallbackWithoutlisting(t *testing.T) {
	doc := &specdoc.Document{TotalPages: 4}
	for n := 1; n <= 4; n++ {
		doc.Pages = append(doc.Pages, pageWithFooter(n, fmt.Sprintf("04 22 00 - %d", n)))
	}

	st := NewPipeline(nil, testLogger()).Run(context.Background(), doc)
	if st.Classified != 4 {
		t.Fatalf("expected 4 classified pages, got %d", st.Classified)
	}
	if st.ByMethod[specdoc.MethodFooter] != 4 {
		t.Errorf("expected footer method on all pages, got %v", st.ByMethod)
	}
}

func TestApplySectionRanges_SkipsClassified(t *testing.T) {
	pages := []specdoc.Page{{Number: 1}, {Number: 2}, {Number: 3}}
	pages[1].Assign("09 91 23", "09", specdoc.MethodFooter)

	applied := applySectionRanges(pages, map[string]int{"04 22 00": 1}, specdoc.MethodToc)
	if applied != 2 {
		t.Fatalf("expected 2 pages applied, got %d", applied)
	}
	if pages[1].Section != "09 91 23" {
		t.Errorf("classified page must not be overwritten, got %+v", pages[1])
	}
}

func TestSectionForPage_OpenEndedLastRange(t *testing.T) {
	ranges := sortedRanges(map[string]int{"03 30 00": 5, "04 22 00": 10})
	tests := []struct {
		page int
		want string
	}{
		{4, ""},
		{5, "03 30 00"},
		{9, "03 30 00"},
		{10, "04 22 00"},
		{500, "04 22 00"},
	}
	for _, tt := range tests {
		if got := sectionForPage(ranges, tt.page); got != tt.want {
			t.Errorf("sectionForPage(%d) = %q, want %q", tt.page, got, tt.want)
		}
	}
}

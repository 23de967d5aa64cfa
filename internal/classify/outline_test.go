package classify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/specsift/specsift/internal/specdoc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseOutline(t *testing.T) {
	entries := []specdoc.OutlineEntry{
		{Title: "033000 RIB - Cast-in-Place Concrete", Page: 10},
		{Title: "04 22 00 Concrete Unit Masonry", Page: 40},
		{Title: "Appendix", Page: 200},
		{Title: "033000 duplicate later start", Page: 90}, // first occurrence wins
		{Title: "552200 Not a division", Page: 95},
	}
	m := ParseOutline(entries)
	if len(m) != 2 {
		t.Fatalf("expected 2 sections, got %v", m)
	}
	if m["03 30 00"] != 10 {
		t.Errorf("expected 03 30 00 at page 10, got %d", m["03 30 00"])
	}
	if m["04 22 00"] != 40 {
		t.Errorf("expected 04 22 00 at page 40, got %d", m["04 22 00"])
	}
}

func TestParseOutline_AdministrativeOnlyIsDiscarded(t *testing.T) {
	entries := []specdoc.OutlineEntry{
		{Title: "00 01 10 Table of Contents", Page: 1},
		{Title: "01 11 00 Summary of Work", Page: 5},
	}
	if m := ParseOutline(entries); m != nil {
		t.Errorf("administrative-only outline should be discarded, got %v", m)
	}
}

func TestOutlinePass_RangesAndOverrides(t *testing.T) {
	doc := &specdoc.Document{
		TotalPages: 6,
		Pages: []specdoc.Page{
			pageWithFooter(1, "project manual front matter"),
			pageWithFooter(2, "01 50 00 - 2"),
			pageWithFooter(3, "general requirements continue"),
			pageWithFooter(4, "03 30 00 - 1"),
			pageWithFooter(5, "26 05 00 - 1"), // division 26 is absent from the outline
			pageWithFooter(6, "03 30 00 - 3"),
		},
		Outline: []specdoc.OutlineEntry{
			{Title: "01 50 00 Temporary Facilities", Page: 1},
			{Title: "03 30 00 Cast-in-Place Concrete", Page: 4},
		},
	}

	p := NewPipeline(nil, testLogger())
	st := &Stats{Format: specdoc.FormatSpacedPage}
	(&outlinePass{p}).Apply(context.Background(), doc, st)

	if st.OutlineSections != 2 {
		t.Fatalf("expected 2 outline sections, got %d", st.OutlineSections)
	}

	// Pages 1-3 fall in the administrative range; page 3 has no trade
	// content so the outline assignment stands.
	if doc.Pages[2].Section != "01 50 00" || doc.Pages[2].Method != specdoc.MethodOutline {
		t.Errorf("page 3: expected outline 01 50 00, got %+v", doc.Pages[2])
	}

	// Page 4 onward is concrete.
	if doc.Pages[3].Section != "03 30 00" || doc.Pages[3].Method != specdoc.MethodOutline {
		t.Errorf("page 4: expected outline 03 30 00, got %+v", doc.Pages[3])
	}

	// Page 5's footer names a division the outline never mentions: the
	// page's own content wins.
	if doc.Pages[4].Section != "26 05 00" || doc.Pages[4].Method != specdoc.MethodContentOverride {
		t.Errorf("page 5: expected content override to 26 05 00, got %+v", doc.Pages[4])
	}
}

func TestOutlinePass_OutlinePlusUnderAdministrativeRange(t *testing.T) {
	doc := &specdoc.Document{
		TotalPages: 2,
		Pages: []specdoc.Page{
			pageWithFooter(1, "bid forms and instructions"),
			pageWithFooter(2, "04 22 00 - 1"),
		},
		Outline: []specdoc.OutlineEntry{
			{Title: "01 10 00 Summary", Page: 1},
			{Title: "04 22 00 Masonry", Page: 50}, // keeps the outline non-administrative
		},
	}

	p := NewPipeline(nil, testLogger())
	st := &Stats{Format: specdoc.FormatSpacedPage}
	(&outlinePass{p}).Apply(context.Background(), doc, st)

	// Page 2 sits in the 01 range but its footer names a trade division
	// the outline also knows elsewhere: outline+ promotion applies.
	if doc.Pages[1].Section != "04 22 00" || doc.Pages[1].Method != specdoc.MethodOutlinePlus {
		t.Errorf("page 2: expected outline+ to 04 22 00, got %+v", doc.Pages[1])
	}
}

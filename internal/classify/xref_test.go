package classify

import (
	"reflect"
	"testing"

	"github.com/specsift/specsift/internal/specdoc"
)

func TestCrossRefs_SelfExclusion(t *testing.T) {
	text := "SEALANTS\nRefer to Section 07 92 00 for joint sealants.\n07 92 00 - 5"
	if refs := CrossRefs(text, "07 92 00"); len(refs) != 0 {
		t.Errorf("a page's own section is not a cross-reference, got %v", refs)
	}

	text = "Coordinate with Section 04 22 00 masonry.\n07 92 00 - 5"
	if refs := CrossRefs(text, "07 92 00"); !reflect.DeepEqual(refs, []string{"04 22 00"}) {
		t.Errorf("expected [04 22 00], got %v", refs)
	}
}

func TestCrossRefs_SubsectionOwnBase(t *testing.T) {
	// A page inside "09 91 23.13" must not report "09 91 23" as a reference.
	text := "See Section 09 91 23 for general painting requirements."
	if refs := CrossRefs(text, "09 91 23.13"); len(refs) != 0 {
		t.Errorf("own base section leaked as cross-reference: %v", refs)
	}
}

func TestCrossRefs_ValidationAndOrder(t *testing.T) {
	text := "See Section 26 05 00, Section 03 30 00, and Section 16 05 00." + // 16 is off-whitelist
		" Issued 04 17 25." // date-shaped triple
	refs := CrossRefs(text, "07 92 00")
	if !reflect.DeepEqual(refs, []string{"03 30 00", "26 05 00"}) {
		t.Errorf("expected sorted valid refs, got %v", refs)
	}
}

func TestExtractCrossRefs_PopulatesPages(t *testing.T) {
	pages := []specdoc.Page{
		{Number: 1, Text: "See Section 04 22 00."},
		{Number: 2, Text: "No references here."},
	}
	pages[0].Assign("07 92 00", "07", specdoc.MethodFooter)

	total := ExtractCrossRefs(pages)
	if total != 1 {
		t.Fatalf("expected 1 reference total, got %d", total)
	}
	if !reflect.DeepEqual(pages[0].CrossRefs, []string{"04 22 00"}) {
		t.Errorf("page 1: expected [04 22 00], got %v", pages[0].CrossRefs)
	}
	if len(pages[1].CrossRefs) != 0 {
		t.Errorf("page 2: expected none, got %v", pages[1].CrossRefs)
	}
}

package oracle

import (
	"fmt"
	"strings"
)

// BuildBoundaryPrompt renders the boundary-detection prompt for one batch of
// unclassified page headers.
func BuildBoundaryPrompt(headers []PageHeader) string {
	var b strings.Builder
	b.WriteString(`You are locating section boundaries in a construction specification document organized by CSI MasterFormat.

Each line below is the header text of one page that could not be classified mechanically. Identify the pages where a NEW spec section begins.
- Look for "SECTION XX YY ZZ" title lines - the section number is the six digits
- Look for "DIVISION XX" headings
- Look for footers like "XX YY ZZ - 1" marking the first page of a section
- Common divisions: 03=Concrete, 04=Masonry, 05=Steel, 06=Wood, 07=Thermal/Roofing, 08=Doors/Windows, 09=Finishes, 22=Plumbing, 23=HVAC, 26=Electrical
- Skip pages that merely mention a section number in passing

Return ONLY a JSON array of objects, one per boundary page, in ascending page order. Each object has "page" (integer) and "section" (string like "09 91 23"). Return [] if no boundaries are present.

PAGE HEADERS:
`)
	for _, h := range headers {
		fmt.Fprintf(&b, "Page %d: %s\n", h.Page, h.Header)
	}
	return b.String()
}

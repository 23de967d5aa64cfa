package classify

import (
	"context"

	"github.com/specsift/specsift/internal/specdoc"
)

// inheritPass propagates classification forward across unclassified runs: a
// page with no tag of its own is treated as a continuation of the most recent
// classified page. The anchor resets at every independently classified page,
// so inheritance never crosses a detected section boundary. Runs once after
// the deterministic tiers and again after the oracle tier.
type inheritPass struct {
	p *Pipeline
}

func (in *inheritPass) Name() string { return "inherit" }

func (in *inheritPass) Apply(_ context.Context, doc *specdoc.Document, _ *Stats) {
	Inherit(doc.Pages)
}

// Inherit performs the forward continuity sweep and returns how many pages
// were filled in.
func Inherit(pages []specdoc.Page) int {
	var lastSection, lastDivision string
	filled := 0
	for i := range pages {
		page := &pages[i]
		if page.Classified() {
			lastSection = page.Section
			lastDivision = page.Division
			continue
		}
		if lastDivision == "" {
			continue
		}
		page.Assign(lastSection, lastDivision, specdoc.MethodInherit)
		if page.Classified() {
			filled++
		}
	}
	return filled
}

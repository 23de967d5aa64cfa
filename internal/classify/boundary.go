package classify

import (
	"context"
	"strings"

	"github.com/specsift/specsift/internal/oracle"
	"github.com/specsift/specsift/internal/specdoc"
)

// boundaryPass is the last-resort tier. When the deterministic tiers have
// classified fewer than half the pages, it ships batches of unclassified
// page headers to the oracle, which answers with the pages where a new
// section begins. Boundaries become section ranges like a TOC would.
type boundaryPass struct {
	p *Pipeline
}

func (bp *boundaryPass) Name() string { return "boundary" }

func (bp *boundaryPass) Apply(ctx context.Context, doc *specdoc.Document, st *Stats) {
	if bp.p.oracle == nil {
		return
	}
	if classifiedRatio(doc.Pages) >= aiGateRatio {
		return
	}

	var headers []oracle.PageHeader
	for i := range doc.Pages {
		page := &doc.Pages[i]
		if page.Classified() {
			continue
		}
		headers = append(headers, oracle.PageHeader{
			Page:   page.Number,
			Header: headerSnippet(page.Text),
		})
	}
	if len(headers) == 0 {
		return
	}

	starts := make(map[string]int)
	for batchStart := 0; batchStart < len(headers); batchStart += aiBatchSize {
		batchEnd := batchStart + aiBatchSize
		if batchEnd > len(headers) {
			batchEnd = len(headers)
		}
		batch := headers[batchStart:batchEnd]

		boundaries, err := bp.p.oracle.FindBoundaries(ctx, batch)
		st.OracleCalls++
		if err != nil {
			bp.p.log.Warn("oracle batch failed", "from", batch[0].Page, "to", batch[len(batch)-1].Page, "error", err)
			continue
		}
		for _, b := range boundaries {
			if b.Page <= 0 || b.Section == "" {
				continue
			}
			// Earliest sighting of a section wins, as with TOC entries.
			if existing, ok := starts[b.Section]; !ok || b.Page < existing {
				starts[b.Section] = b.Page
			}
		}
	}
	if len(starts) == 0 {
		return
	}

	applied := applySectionRanges(doc.Pages, starts, specdoc.MethodAI)
	bp.p.log.Info("oracle boundaries applied", "boundaries", len(starts), "pages", applied)
}

// headerSnippet flattens the top of a page into a single prompt line.
func headerSnippet(text string) string {
	text = clipHead(text, aiHeaderChars)
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

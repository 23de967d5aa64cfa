// Package classify tags every page of a construction specification with its
// CSI MasterFormat division and section. It runs a fixed chain of fallback
// tiers: PDF outline ranges (with content overrides), textual TOC/index
// ranges, header/footer pattern matching, continuity inheritance, and finally
// a boundary oracle for documents nothing else could read. Later tiers only
// touch pages earlier tiers left unclassified, so the chain is strictly
// sequential and the page slice needs no locking.
package classify

import (
	"context"
	"log/slog"
	"sort"

	"github.com/specsift/specsift/internal/oracle"
	"github.com/specsift/specsift/internal/specdoc"
)

const (
	// aiGateRatio gates the oracle tier: when deterministic tiers have
	// classified at least this share of pages, the oracle is never called.
	aiGateRatio = 0.5

	// aiBatchSize caps pages per oracle call.
	aiBatchSize = 100

	// aiHeaderChars is how much of each page's text the oracle sees.
	aiHeaderChars = 300
)

// BoundaryOracle locates true section-header pages among page snippets. The
// AI tier degrades to a no-op when the oracle is nil or errors.
type BoundaryOracle interface {
	FindBoundaries(ctx context.Context, headers []oracle.PageHeader) ([]oracle.Boundary, error)
}

// Pass is one tier of the classification chain. A pass mutates pages in place
// and must leave already-classified pages alone unless its documented
// override rules say otherwise.
type Pass interface {
	Name() string
	Apply(ctx context.Context, doc *specdoc.Document, st *Stats)
}

// Stats summarizes one classification run.
type Stats struct {
	TotalPages      int                    `json:"total"`
	Classified      int                    `json:"classified"`
	Unclassified    int                    `json:"unclassified"`
	Format          specdoc.SpecFormat     `json:"format"`
	OutlineSections int                    `json:"outline_sections"`
	TocSource       string                 `json:"toc_source,omitempty"`
	TocSections     int                    `json:"toc_sections"`
	OracleCalls     int                    `json:"oracle_calls"`
	ByMethod        map[specdoc.Method]int `json:"by_method"`
}

// Pipeline owns the ordered tier chain for one document run.
type Pipeline struct {
	oracle BoundaryOracle
	log    *slog.Logger
	passes []Pass
}

// NewPipeline builds the fixed chain. A nil oracle disables the AI tier.
func NewPipeline(bo BoundaryOracle, log *slog.Logger) *Pipeline {
	p := &Pipeline{oracle: bo, log: log}
	p.passes = []Pass{
		&outlinePass{p},
		&tocPagePass{p},
		&tocIndexPass{p},
		&footerPass{p},
		&inheritPass{p},
		&boundaryPass{p},
		&inheritPass{p},
	}
	return p
}

// Run classifies every page of doc in place and returns run statistics.
// Nothing here is fatal: the worst outcome for a page is remaining
// unclassified.
func (p *Pipeline) Run(ctx context.Context, doc *specdoc.Document) Stats {
	st := Stats{
		TotalPages: len(doc.Pages),
		ByMethod:   make(map[specdoc.Method]int),
	}

	st.Format = DetectFormat(doc.Pages)
	p.log.Info("format detected", "format", st.Format, "pages", len(doc.Pages))

	for _, pass := range p.passes {
		before := classifiedCount(doc.Pages)
		pass.Apply(ctx, doc, &st)
		if after := classifiedCount(doc.Pages); after != before {
			p.log.Info("pass complete", "pass", pass.Name(), "newly_classified", after-before)
		}
	}

	st.Classified = classifiedCount(doc.Pages)
	st.Unclassified = st.TotalPages - st.Classified
	for i := range doc.Pages {
		if m := doc.Pages[i].Method; m != "" {
			st.ByMethod[m]++
		}
	}
	return st
}

func classifiedCount(pages []specdoc.Page) int {
	n := 0
	for i := range pages {
		if pages[i].Classified() {
			n++
		}
	}
	return n
}

func classifiedRatio(pages []specdoc.Page) float64 {
	if len(pages) == 0 {
		return 0
	}
	return float64(classifiedCount(pages)) / float64(len(pages))
}

// sectionRange is one entry of a section→start-page map, sorted by start.
type sectionRange struct {
	section string
	start   int
}

func sortedRanges(m map[string]int) []sectionRange {
	ranges := make([]sectionRange, 0, len(m))
	for section, start := range m {
		ranges = append(ranges, sectionRange{section: section, start: start})
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].section < ranges[j].section
	})
	return ranges
}

// sectionForPage finds the section whose [start, nextStart) range contains
// pageNum. The last range is open-ended.
func sectionForPage(ranges []sectionRange, pageNum int) string {
	for i, r := range ranges {
		if pageNum < r.start {
			continue
		}
		if i+1 < len(ranges) && pageNum >= ranges[i+1].start {
			continue
		}
		return r.section
	}
	return ""
}

// applySectionRanges assigns each still-unclassified page the section whose
// range covers it.
func applySectionRanges(pages []specdoc.Page, m map[string]int, method specdoc.Method) int {
	if len(m) == 0 {
		return 0
	}
	ranges := sortedRanges(m)
	applied := 0
	for i := range pages {
		page := &pages[i]
		if page.Classified() {
			continue
		}
		section := sectionForPage(ranges, page.Number)
		if section == "" {
			continue
		}
		page.Assign(section, section[:2], method)
		if page.Classified() {
			applied++
		}
	}
	return applied
}

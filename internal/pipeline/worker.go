package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/specsift/specsift/internal/classify"
	"github.com/specsift/specsift/internal/pagesource"
	"github.com/specsift/specsift/internal/report"
)

// Worker processes a single classification job.
type Worker struct {
	oracle classify.BoundaryOracle
	log    *slog.Logger
}

func NewWorker(bo classify.BoundaryOracle, log *slog.Logger) *Worker {
	return &Worker{oracle: bo, log: log}
}

// Process runs the full pipeline for a job: parse pages, classify, extract
// cross-references, aggregate, render the report.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	src, err := pagesource.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	data, outline := job.Input()
	doc, err := src.Load(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	doc.Outline = outline
	if job.Title != "" {
		doc.Title = job.Title
	}
	log.Info("parsed document", "pages", len(doc.Pages), "total_pages", doc.TotalPages, "outline_entries", len(outline))

	if len(doc.Pages) == 0 {
		job.AddError("no readable pages")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Classify
	job.SetStatus(StatusClassifying, "classifying")
	st := classify.NewPipeline(w.oracle, log).Run(ctx, doc)
	log.Info("classification complete",
		"classified", st.Classified,
		"unclassified", st.Unclassified,
		"format", st.Format,
		"oracle_calls", st.OracleCalls)

	// Phase 3: Aggregate
	job.SetStatus(StatusAggregating, "aggregating")
	crossRefs := classify.ExtractCrossRefs(doc.Pages)
	summary := classify.Summarize(doc.Pages)
	reportMD := report.BuildMarkdown(doc.Title, st, summary)

	job.SetResults(doc, st, summary, reportMD, crossRefs)
	log.Info("aggregation complete", "divisions", len(summary), "cross_refs", crossRefs)

	// An unclassified remainder is an expected outcome; partial is reserved
	// for runs where a phase actually reported an error.
	if len(job.Snapshot().Progress.Errors) > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

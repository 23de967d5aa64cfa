package sections

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Extractor is the downstream oracle call one fan-out task makes.
type Extractor interface {
	ExtractSection(ctx context.Context, prompt string) (json.RawMessage, error)
}

// Result is one settled fan-out task. Exactly one of Data or Error is set;
// an errored section still occupies its slot so the combine stage sees a
// full result count.
type Result struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ExtractAll fans out one extraction task per section with bounded
// concurrency and an independent timeout per task. All tasks settle before
// it returns; results land at the index of their section, so no ordering is
// lost and no locking is needed.
func ExtractAll(ctx context.Context, ex Extractor, secs []Section, concurrency int, taskTimeout time.Duration, log *slog.Logger) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}
	if taskTimeout <= 0 {
		taskTimeout = 90 * time.Second
	}

	results := make([]Result, len(secs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range secs {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			sec := &secs[i]
			taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
			defer cancel()

			data, err := ex.ExtractSection(taskCtx, BuildExtractPrompt(sec))
			if err != nil {
				log.Warn("section extraction failed", "section", sec.Number, "error", err)
				results[i] = Result{Section: sec.Number, Error: err.Error()}
				return
			}
			results[i] = Result{Section: sec.Number, Data: data}
		}(i)
	}
	wg.Wait()
	return results
}

// Combine folds the settled fan-out results into one division-level
// extraction. Errored sections are passed through so the oracle can note
// coverage gaps.
func Combine(ctx context.Context, ex Extractor, division string, results []Result) (json.RawMessage, error) {
	return ex.ExtractSection(ctx, BuildCombinePrompt(division, results))
}

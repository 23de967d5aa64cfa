package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/oracle"
	"github.com/specsift/specsift/internal/sections"
	"github.com/specsift/specsift/internal/specdoc"
)

// Orchestrator manages the classification pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	oracle *oracle.GeminiClient
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; Start launches its workers.
func NewOrchestrator(cfg config.Config, oc *oracle.GeminiClient, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		oracle: oc,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.oracle, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewJob registers a queued job for an upload.
func (o *Orchestrator) NewJob(filename, title string, data []byte, outline []specdoc.OutlineEntry) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusQueued,
		Filename:  filename,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetInput(data, outline)
	return job
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// OracleStats exposes oracle latency stats for the API.
func (o *Orchestrator) OracleStats() oracle.StatsSnapshot {
	if o.oracle == nil || o.oracle.Stats == nil {
		return oracle.StatsSnapshot{}
	}
	return o.oracle.Stats.Snapshot()
}

// DivisionExtraction is the outcome of one downstream fan-out run.
type DivisionExtraction struct {
	Division string            `json:"division"`
	Sections []sections.Result `json:"sections"`
	Combined json.RawMessage   `json:"combined,omitempty"`
}

// ExtractDivision runs the downstream per-section extraction fan-out for one
// division of a finished job. Per-section failures are carried in the result
// records; only a combine-stage failure drops the combined summary.
func (o *Orchestrator) ExtractDivision(ctx context.Context, job *Job, division string) (*DivisionExtraction, error) {
	doc, _, _, _ := job.Results()
	if doc == nil {
		return nil, fmt.Errorf("job %s has no results yet", job.ID)
	}

	secs := sections.Assemble(doc.Pages, division)
	if len(secs) == 0 {
		return nil, fmt.Errorf("no classified sections in division %s", division)
	}

	results := sections.ExtractAll(ctx, o.oracle, secs, o.cfg.MaxConcurrentExtract, o.cfg.ExtractTimeout, o.log.With("job_id", job.ID, "division", division))
	combined, err := sections.Combine(ctx, o.oracle, division, results)
	if err != nil {
		o.log.Warn("combine stage failed", "job_id", job.ID, "division", division, "error", err)
		return &DivisionExtraction{Division: division, Sections: results}, nil
	}
	return &DivisionExtraction{Division: division, Sections: results, Combined: combined}, nil
}

package pipeline

import (
	"sync"
	"time"

	"github.com/specsift/specsift/internal/classify"
	"github.com/specsift/specsift/internal/specdoc"
)

// JobStatus represents the state of a classification job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusClassifying JobStatus = "classifying"
	StatusAggregating JobStatus = "aggregating"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// Job tracks the state of a single document classification run. Results live
// on the job itself until TTL eviction; persistence belongs to the caller.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	outline  []specdoc.OutlineEntry

	doc      *specdoc.Document
	stats    classify.Stats
	summary  map[string]*classify.DivisionSummary
	reportMD string
	errors   []string
}

// Progress tracks classification progress.
type Progress struct {
	TotalPages      int      `json:"total_pages"`
	ClassifiedPages int      `json:"classified_pages"`
	Divisions       int      `json:"divisions"`
	CrossRefs       int      `json:"cross_refs"`
	Errors          []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetInput stores the raw upload and its optional outline.
func (j *Job) SetInput(data []byte, outline []specdoc.OutlineEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
	j.outline = outline
}

// Input returns the raw upload bytes and outline.
func (j *Job) Input() ([]byte, []specdoc.OutlineEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData, j.outline
}

// SetResults stores the classification outcome and updates progress. The raw
// upload is released; it is no longer needed once pages exist.
func (j *Job) SetResults(doc *specdoc.Document, st classify.Stats, summary map[string]*classify.DivisionSummary, reportMD string, crossRefs int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc = doc
	j.stats = st
	j.summary = summary
	j.reportMD = reportMD
	j.fileData = nil
	j.Progress.TotalPages = st.TotalPages
	j.Progress.ClassifiedPages = st.Classified
	j.Progress.Divisions = len(summary)
	j.Progress.CrossRefs = crossRefs
	j.UpdatedAt = time.Now()
}

// Results returns the classification outcome; doc is nil until the job has
// finished aggregating.
func (j *Job) Results() (*specdoc.Document, classify.Stats, map[string]*classify.DivisionSummary, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc, j.stats, j.summary, j.reportMD
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			TotalPages:      j.Progress.TotalPages,
			ClassifiedPages: j.Progress.ClassifiedPages,
			Divisions:       j.Progress.Divisions,
			CrossRefs:       j.Progress.CrossRefs,
			Errors:          errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

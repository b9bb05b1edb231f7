package pipeline

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"sync"
	"time"
)

// JobStatus represents the state of a search job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// SearchRequest is the client's description of a search.
type SearchRequest struct {
	Pattern       string   `json:"pattern"`
	Paths         []string `json:"paths"`
	ContextLength *int     `json:"context_length,omitempty"`
	Quiet         bool     `json:"quiet,omitempty"`
	Suffixes      []string `json:"suffixes,omitempty"`
}

// SourceReport is the JSON form of one Result.
type SourceReport struct {
	Source     string     `json:"source"`
	Runs       []RunMatch `json:"runs,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

// Job tracks one asynchronous search. It is a Sink.
type Job struct {
	mu sync.Mutex

	ID        string
	Status    JobStatus
	Request   SearchRequest
	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	re       *regexp.Regexp
	paths    []string
	files    int
	archives int
	summary  Summary
	reports  []SourceReport
	errors   []string
}

// NewJob creates a queued job for a compiled pattern and resolved paths.
func NewJob(req SearchRequest, re *regexp.Regexp, paths []string) *Job {
	now := time.Now()
	return &Job{
		ID:        NewJobID(req, now),
		Status:    StatusQueued,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
		re:        re,
		paths:     paths,
	}
}

// NewJobID derives a job id from the request and submission time.
func NewJobID(req SearchRequest, now time.Time) string {
	return ContentHashHex([]byte(fmt.Sprintf("%s-%v-%d", req.Pattern, req.Paths, now.UnixNano())))[:20]
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
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records a job-level error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetPlan records how many plain files and archives were found.
func (j *Job) SetPlan(files, archives int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = files
	j.archives = archives
	j.UpdatedAt = time.Now()
}

// SetSummary records the coordinator's totals.
func (j *Job) SetSummary(s Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.summary = s
	j.UpdatedAt = time.Now()
}

// Report implements Sink.
func (j *Job) Report(r Result) {
	rep := SourceReport{
		Source:     r.Source,
		Runs:       r.Runs,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		rep.Error = r.Err.Error()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, rep)
	j.UpdatedAt = time.Now()
}

// Pattern returns the compiled pattern.
func (j *Job) Pattern() *regexp.Regexp { return j.re }

// Paths returns the resolved search paths.
func (j *Job) Paths() []string { return j.paths }

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string         `json:"job_id"`
	Status    JobStatus      `json:"status"`
	Pattern   string         `json:"pattern"`
	Files     int            `json:"files"`
	Archives  int            `json:"archives"`
	Summary   Summary        `json:"summary"`
	Results   []SourceReport `json:"results"`
	Errors    []string       `json:"errors"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]SourceReport, len(j.reports))
	copy(results, j.reports)
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Pattern:   j.Request.Pattern,
		Files:     j.files,
		Archives:  j.archives,
		Summary:   j.summary,
		Results:   results,
		Errors:    errs,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

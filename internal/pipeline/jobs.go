package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/google/uuid"
)

// JobStatus represents the state of a replacement job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusReading   JobStatus = "reading"
	StatusBuilding  JobStatus = "building"
	StatusWriting   JobStatus = "writing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Source is an input given either as bytes or as a path to read.
type Source struct {
	Name string
	Path string
	Data []byte
}

// Request describes one section replacement.
type Request struct {
	Document Source
	Table    Source

	// Section is detected from the table name when empty.
	Section    catalog.SectionKind
	CodePolicy catalog.CodePolicy

	// WriteOutput stores the result as a dated file next to the document
	// or in the configured output directory.
	WriteOutput bool
}

// Job tracks the state of a single section replacement.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus           `json:"status"`
	Phase    string              `json:"phase"`
	Section  catalog.SectionKind `json:"section"`
	Document string              `json:"document"`
	Table    string              `json:"table"`

	Progress Progress `json:"progress"`

	OutputPath  string    `json:"output_path,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	req    Request
	result []byte
	report *catalog.Report
	errors []string
}

// Progress reports what the job has produced so far.
type Progress struct {
	Records   int                    `json:"records"`
	Regimes   int                    `json:"regimes"`
	Locations int                    `json:"locations"`
	Campuses  int                    `json:"campuses"`
	Programs  int                    `json:"programs"`
	Conflicts []catalog.CodeConflict `json:"conflicts"`
	Errors    []string               `json:"errors"`
}

// NewJob creates a queued job with a time-ordered ID.
func NewJob(req Request) *Job {
	now := time.Now()
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Job{
		ID:        id.String(),
		Status:    StatusQueued,
		Phase:     "queued",
		Section:   req.Section,
		Document:  sourceName(req.Document),
		Table:     sourceName(req.Table),
		CreatedAt: now,
		UpdatedAt: now,
		req:       req,
	}
}

func sourceName(s Source) string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
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

// SetSection records the section once it is known.
func (j *Job) SetSection(kind catalog.SectionKind) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Section = kind
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the table bytes.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetReport records the replacement report.
func (j *Job) SetReport(r *catalog.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.report = r
	j.Progress.Records = r.Records
	j.Progress.Regimes = r.Stats.Regimes
	j.Progress.Locations = r.Stats.Locations
	j.Progress.Campuses = r.Stats.Campuses
	j.Progress.Programs = r.Stats.Programs
	j.Progress.Conflicts = r.Summary.Conflicts
	j.UpdatedAt = time.Now()
}

// Report returns the replacement report, or nil before the build phase.
func (j *Job) Report() *catalog.Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// SetResult stores the encoded document and where it was written, if
// anywhere.
func (j *Job) SetResult(data []byte, outputPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = data
	j.OutputPath = outputPath
	j.UpdatedAt = time.Now()
}

// Result returns the encoded document, or nil until the job completes.
func (j *Job) Result() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string              `json:"job_id"`
	Status     JobStatus           `json:"status"`
	Phase      string              `json:"phase"`
	Section    catalog.SectionKind `json:"section"`
	Document   string              `json:"document"`
	Table      string              `json:"table"`
	Progress   Progress            `json:"progress"`
	OutputPath string              `json:"output_path,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	conflicts := j.Progress.Conflicts
	if conflicts == nil {
		conflicts = []catalog.CodeConflict{}
	}
	p := j.Progress
	p.Errors = append([]string{}, errs...)
	p.Conflicts = append([]catalog.CodeConflict{}, conflicts...)
	return JobSnapshot{
		ID:         j.ID,
		Status:     j.Status,
		Phase:      j.Phase,
		Section:    j.Section,
		Document:   j.Document,
		Table:      j.Table,
		Progress:   p,
		OutputPath: j.OutputPath,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

// Done reports whether the job reached a terminal status.
func (s JobSnapshot) Done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

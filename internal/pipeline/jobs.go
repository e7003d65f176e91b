package pipeline

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/store"
)

// JobStatus represents the state of an outline job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusDiscovering JobStatus = "discovering"
	StatusOutlining   JobStatus = "outlining"
	StatusExtracting  JobStatus = "extracting"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
	StatusDupSkipped  JobStatus = "duplicate_skipped"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial, StatusDupSkipped:
		return true
	}
	return false
}

// HasResult reports whether a job in this status carries downloadable
// results.
func (s JobStatus) HasResult() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusDupSkipped
}

// JobOptions selects how a document is outlined. Headers empty means the
// headers are discovered.
type JobOptions struct {
	Headers             []string               `json:"headers,omitempty"`
	Match               outline.MatchPolicy    `json:"match"`
	Rollover            outline.RolloverPolicy `json:"rollover"`
	IncludeSectionTerms bool                   `json:"include_section_terms"`
	MergeEmphasis       bool                   `json:"merge_emphasis"`
}

// Key is a stable string form of the options, used with the document text
// to detect duplicate uploads.
func (o JobOptions) Key() string {
	var sb strings.Builder
	if len(o.Headers) == 0 {
		sb.WriteString("discover")
	} else {
		sb.WriteString("headers=")
		sb.WriteString(strings.Join(o.Headers, "\x1f"))
		sb.WriteString(";match=")
		sb.WriteString(o.Match.String())
	}
	sb.WriteString(";rollover=")
	sb.WriteString(o.Rollover.String())
	sb.WriteString(";section_terms=")
	sb.WriteString(strconv.FormatBool(o.IncludeSectionTerms))
	sb.WriteString(";merge=")
	sb.WriteString(strconv.FormatBool(o.MergeEmphasis))
	return sb.String()
}

// Job tracks the state of a single document run.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Options  JobOptions `json:"options"`
	Progress Progress   `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *store.Result
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Paragraphs   int      `json:"paragraphs"`
	HeaderSource string   `json:"header_source,omitempty"` // "caller" or the discovery provider name
	Headers      []string `json:"headers"`
	Lines        int      `json:"lines"`
	Sections     int      `json:"sections"`
	Terms        int      `json:"terms"`
	Stored       bool     `json:"stored"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job with a fresh id. An empty docID gets its own
// generated id.
func NewJob(userID, docID, filename, title string, opts JobOptions) *Job {
	now := time.Now()
	if docID == "" {
		docID = uuid.NewString()
	}
	return &Job{
		ID:        uuid.NewString(),
		DocID:     docID,
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
	}
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
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
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

// SetParagraphs records the non-blank paragraph count.
func (j *Job) SetParagraphs(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Paragraphs = n
	j.UpdatedAt = time.Now()
}

// SetHeaders records the header list in use and where it came from.
func (j *Job) SetHeaders(source string, headers []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.HeaderSource = source
	j.Progress.Headers = append([]string(nil), headers...)
	j.UpdatedAt = time.Now()
}

// SetResult attaches the outline result and updates the counters.
func (j *Job) SetResult(res *store.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.Progress.Sections = res.Record.Sections
	j.Progress.Terms = len(res.Terms)
	j.UpdatedAt = time.Now()
}

// SetLines records the number of outline lines built.
func (j *Job) SetLines(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Lines = n
	j.UpdatedAt = time.Now()
}

// SetContentHash records the dedupe hash of the parsed document.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// ReuseDocument points the job at an already stored document.
func (j *Job) ReuseDocument(docID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DocID = docID
	j.UpdatedAt = time.Now()
}

// Result returns the outline result, or nil before outlining finished.
func (j *Job) Result() *store.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// MarkStored records a successful store write.
func (j *Job) MarkStored() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Stored = true
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once it has been parsed.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	UserID      string    `json:"user_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	hs := append([]string{}, j.Progress.Headers...)
	p := j.Progress
	p.Errors = errs
	p.Headers = hs
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress:    p,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

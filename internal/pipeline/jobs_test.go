package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/store"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusDiscovering, "discovering"},
		{StatusOutlining, "outlining"},
		{StatusExtracting, "extracting"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusExtracting,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "discovering")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("window 3 failed")
	job.AddError("window 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "window 3 failed" {
		t.Errorf("expected first error %q, got %q", "window 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_Counters(t *testing.T) {
	job := &Job{ID: "count-test", UpdatedAt: time.Now()}
	job.SetParagraphs(12)
	job.SetLines(9)
	job.SetHeaders("caller", []string{"Intro", "Scope"})
	job.SetResult(&store.Result{
		Record: store.Record{Sections: 2},
		Terms:  []outline.Term{{Text: "a"}, {Text: "b"}, {Text: "c"}},
	})
	job.MarkStored()

	snap := job.Snapshot()
	if snap.Progress.Paragraphs != 12 {
		t.Errorf("expected 12 paragraphs, got %d", snap.Progress.Paragraphs)
	}
	if snap.Progress.Lines != 9 {
		t.Errorf("expected 9 lines, got %d", snap.Progress.Lines)
	}
	if snap.Progress.Sections != 2 {
		t.Errorf("expected 2 sections, got %d", snap.Progress.Sections)
	}
	if snap.Progress.Terms != 3 {
		t.Errorf("expected 3 terms, got %d", snap.Progress.Terms)
	}
	if snap.Progress.HeaderSource != "caller" || len(snap.Progress.Headers) != 2 {
		t.Errorf("unexpected headers progress %+v", snap.Progress)
	}
	if !snap.Progress.Stored {
		t.Error("expected stored flag")
	}
}

func TestJob_SnapshotIsCopy(t *testing.T) {
	job := &Job{ID: "copy-test"}
	job.SetHeaders("caller", []string{"Intro"})
	snap := job.Snapshot()
	snap.Progress.Headers[0] = "changed"
	if job.Snapshot().Progress.Headers[0] != "Intro" {
		t.Error("expected snapshot headers to be detached from the job")
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("u1", "", "a.md", "Title", JobOptions{})
	if job.ID == "" || job.DocID == "" {
		t.Fatalf("expected generated ids, got job=%q doc=%q", job.ID, job.DocID)
	}
	if job.ID == job.DocID {
		t.Error("expected job and document ids to differ")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}

	named := NewJob("u1", "doc-7", "a.md", "", JobOptions{})
	if named.DocID != "doc-7" {
		t.Errorf("expected doc id doc-7, got %q", named.DocID)
	}
}

func TestJobOptions_Key(t *testing.T) {
	base := JobOptions{Headers: []string{"Intro", "Scope"}}
	same := JobOptions{Headers: []string{"Intro", "Scope"}}
	if base.Key() != same.Key() {
		t.Error("expected identical options to share a key")
	}

	variants := []JobOptions{
		{Headers: []string{"Intro"}},
		{Headers: []string{"Intro", "Scope"}, Match: outline.MatchSubstring},
		{Headers: []string{"Intro", "Scope"}, Rollover: outline.RolloverBody},
		{Headers: []string{"Intro", "Scope"}, IncludeSectionTerms: true},
		{Headers: []string{"Intro", "Scope"}, MergeEmphasis: true},
		{},
	}
	for i, v := range variants {
		if v.Key() == base.Key() {
			t.Errorf("variant %d: expected a different key than the base options", i)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusPartial, StatusDupSkipped} {
		if !s.Done() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusParsing, StatusDiscovering, StatusOutlining, StatusExtracting, StatusStoring} {
		if s.Done() {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}
	if StatusFailed.HasResult() {
		t.Error("expected failed jobs to carry no result")
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}

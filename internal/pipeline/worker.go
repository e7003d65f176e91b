package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docoutline/internal/document"
	"github.com/dgallion1/docoutline/internal/headers"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/store"
)

// ErrNoDiscovery is reported when a job has no headers and no language
// model is configured to find them.
var ErrNoDiscovery = errors.New("no headers supplied and header discovery is not configured")

// WorkerConfig holds the settings shared by every job a worker runs.
type WorkerConfig struct {
	Parser          parser.Options
	DiscoveredMatch outline.MatchPolicy // Match policy for discovered headers.
}

// Worker processes a single document job. A nil discoverer disables header
// discovery; a nil store disables persistence and dedupe.
type Worker struct {
	discoverer *headers.Discoverer
	store      store.Store
	log        *slog.Logger
	cfg        WorkerConfig
}

func NewWorker(d *headers.Discoverer, st store.Store, log *slog.Logger, cfg WorkerConfig) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{discoverer: d, store: st, log: log, cfg: cfg}
}

// Process runs the full outline pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.parse(job)
	if err != nil {
		w.fail(log, job, "parsing", "parse", err)
		return
	}
	job.SetParagraphs(doc.NonBlank())
	if doc.NonBlank() == 0 {
		w.fail(log, job, "parsing", "parse", errors.New("no extractable content"))
		return
	}

	hash := ContentHashHex([]byte(doc.RawText() + "\n" + job.Options.Key()))
	job.SetContentHash(hash)

	// Phase 1.5: Dedup check
	if w.store != nil {
		existing, err := w.store.FindByHash(ctx, job.UserID, hash)
		switch {
		case err == nil:
			log.Info("duplicate document, reusing stored result", "existing_doc_id", existing.Record.DocID)
			job.ReuseDocument(existing.Record.DocID)
			job.SetHeaders("stored", existing.Record.Headers)
			job.SetLines(countLines(existing.Outline))
			job.SetResult(existing)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	// Phase 2: Headers
	hs, source, err := w.resolveHeaders(ctx, job, doc)
	if err != nil {
		w.fail(log, job, "discovering", "headers", err)
		return
	}
	job.SetHeaders(source, hs.Headers())
	log.Info("headers resolved", "source", source, "headers", hs.Len(), "match", hs.Policy().String())

	// Phase 3: Outline
	job.SetStatus(StatusOutlining, "outlining")
	lines := outline.Build(doc.Paragraphs, hs, outline.Options{
		Rollover:              job.Options.Rollover,
		MergeAdjacentEmphasis: job.Options.MergeEmphasis,
	})
	job.SetLines(len(lines))

	// Phase 4: Extract
	job.SetStatus(StatusExtracting, "extracting")
	out := outline.Result{
		Lines: lines,
		Terms: outline.Extract(lines, outline.ExtractOptions{IncludeSectionTerms: job.Options.IncludeSectionTerms}),
	}
	if out.Sections() == 0 {
		log.Warn("no paragraph matched a header", "headers", hs.Len())
	}

	snap := job.Snapshot()
	res := &store.Result{
		Record: store.Record{
			DocID:       snap.DocID,
			UserID:      snap.UserID,
			Filename:    snap.Filename,
			Title:       doc.Title,
			ContentHash: hash,
			Headers:     hs.Headers(),
			Sections:    out.Sections(),
			Terms:       len(out.Terms),
			CreatedAt:   job.CreatedAt,
		},
		Outline: outline.FormatLines(out.Lines),
		Terms:   out.Terms,
	}
	job.SetResult(res)
	log.Info("outline complete", "lines", len(out.Lines), "sections", res.Record.Sections, "terms", res.Record.Terms)

	// Phase 5: Store
	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}
	job.SetStatus(StatusStoring, "storing")
	if err := w.store.Put(ctx, res); err != nil {
		log.Error("store failed", "backend", w.store.Name(), "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusPartial, "storing")
		return
	}
	job.MarkStored()
	job.SetStatus(StatusCompleted, "done")
}

// parse decodes the upload. The raw bytes are released whatever the outcome.
func (w *Worker) parse(job *Job) (*document.Document, error) {
	defer job.releaseFileData()
	p, err := parser.ForFile(job.Filename, w.cfg.Parser)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, err
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	return doc, nil
}

// resolveHeaders returns the caller's headers, or discovers them when the
// job has none.
func (w *Worker) resolveHeaders(ctx context.Context, job *Job, doc *document.Document) (*outline.HeaderSet, string, error) {
	if len(job.Options.Headers) > 0 {
		hs := outline.NewHeaderSet(job.Options.Headers, job.Options.Match)
		if hs.Len() == 0 {
			return nil, "", errors.New("all supplied headers are blank")
		}
		return hs, "caller", nil
	}
	if w.discoverer == nil {
		return nil, "", ErrNoDiscovery
	}

	job.SetStatus(StatusDiscovering, "discovering")
	found, err := w.discoverer.Discover(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return outline.NewHeaderSet(found, w.cfg.DiscoveredMatch), w.discoverer.Provider(), nil
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase, what string, err error) {
	log.Error(what+" failed", "phase", phase, "error", err)
	job.AddError(fmt.Sprintf("%s: %s", what, err))
	job.SetStatus(StatusFailed, phase)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

// termsFilename is the download name for the plain terms list.
const termsFilename = "extracted_bold_words.txt"

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	opts, err := s.jobOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, status, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	job := pipeline.NewJob(userID, r.FormValue("doc_id"), filename, r.FormValue("title"), opts)
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, submitted(job))
}

func (s *Server) handleBatchOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	opts, err := s.jobOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, _, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(userID, "", filename, "", opts)
		job.SetFileData(data)

		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		entry := submitted(job)
		entry["filename"] = filename
		results = append(results, entry)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleOutlineStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromURL(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

func (s *Server) handleOutlineText(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromURL(w, r)
	if job == nil {
		return
	}
	res := resultOrConflict(w, job)
	if res == nil {
		return
	}
	writeText(w, res.Outline+"\n", "")
}

func (s *Server) handleOutlineTerms(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromURL(w, r)
	if job == nil {
		return
	}
	res := resultOrConflict(w, job)
	if res == nil {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "text":
		writeText(w, outline.FormatTerms(res.Terms), termsFilename)
	case "json":
		writeJSON(w, http.StatusOK, map[string]any{
			"doc_id": res.Record.DocID,
			"terms":  res.Terms,
			"groups": outline.GroupTerms(res.Terms),
		})
	case "report":
		writeText(w, outline.FormatReport(outline.GroupTerms(res.Terms)), "")
	case "grouped":
		writeText(w, outline.FormatGrouped(outline.GroupTerms(res.Terms)), termsFilename)
	default:
		jsonError(w, fmt.Sprintf("unknown format %q (want text, json, report or grouped)", format), http.StatusBadRequest)
	}
}

// jobOptions reads outline options from the form, falling back to the
// service defaults.
func (s *Server) jobOptions(r *http.Request) (pipeline.JobOptions, error) {
	opts := pipeline.JobOptions{
		Headers:             formHeaders(r.MultipartForm),
		Match:               s.cfg.Match(),
		Rollover:            s.cfg.Rollover(),
		IncludeSectionTerms: s.cfg.IncludeSectionTerms,
		MergeEmphasis:       s.cfg.MergeAdjacentEmphasis,
	}

	if v := r.FormValue("match"); v != "" {
		m, err := outline.ParseMatchPolicy(v)
		if err != nil {
			return opts, err
		}
		opts.Match = m
	}
	if v := r.FormValue("rollover"); v != "" {
		p, err := outline.ParseRolloverPolicy(v)
		if err != nil {
			return opts, err
		}
		opts.Rollover = p
	}
	var err error
	if opts.IncludeSectionTerms, err = formBool(r, "include_section_terms", opts.IncludeSectionTerms); err != nil {
		return opts, err
	}
	if opts.MergeEmphasis, err = formBool(r, "merge_emphasis", opts.MergeEmphasis); err != nil {
		return opts, err
	}

	// Headers win; discovery runs only when none were supplied.
	discover, err := formBool(r, "discover", len(opts.Headers) == 0)
	if err != nil {
		return opts, err
	}
	if len(opts.Headers) == 0 {
		if !discover {
			return opts, errors.New("headers are required when discover is false")
		}
		if s.orchestrator.Discoverer() == nil {
			return opts, errors.New("no headers supplied and header discovery is not configured")
		}
	}
	return opts, nil
}

// formHeaders collects the repeatable "headers" field; each value may hold
// several newline-separated headers.
func formHeaders(form *multipart.Form) []string {
	if form == nil {
		return nil
	}
	var out []string
	for _, v := range form.Value["headers"] {
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func formBool(r *http.Request, key string, fallback bool) (bool, error) {
	v := r.FormValue(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: expected a boolean, got %q", key, v)
	}
	return b, nil
}

// readUpload returns the sanitized filename and file bytes, or an error with
// the HTTP status to answer.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	f, err := fh.Open()
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, http.StatusOK, nil
}

func (s *Server) jobFromURL(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

// resultOrConflict answers 409 while the job has no result yet.
func resultOrConflict(w http.ResponseWriter, job *pipeline.Job) *store.Result {
	snap := job.Snapshot()
	res := job.Result()
	if !snap.Status.HasResult() || res == nil {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "results not available",
			"status": snap.Status,
			"phase":  snap.Phase,
		})
		return nil
	}
	return res
}

func submitted(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/outline/%s/status", snap.ID),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeText answers text/plain, as an attachment when filename is set.
func writeText(w http.ResponseWriter, body, filename string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	io.WriteString(w, body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

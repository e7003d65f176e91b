package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dgallion1/docoutline/internal/headers"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// handleDiscoverHeaders runs header discovery on an upload synchronously,
// so a client can review the headers before submitting an outline job.
func (s *Server) handleDiscoverHeaders(w http.ResponseWriter, r *http.Request) {
	d := s.orchestrator.Discoverer()
	if d == nil {
		jsonError(w, "header discovery is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

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

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	found, err := d.Discover(r.Context(), doc)
	if err != nil {
		s.log.Warn("header discovery failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), discoveryStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"provider": d.Provider(),
		"headers":  found,
	})
}

// handleHeadersPing checks that the configured provider answers.
func (s *Server) handleHeadersPing(w http.ResponseWriter, r *http.Request) {
	d := s.orchestrator.Discoverer()
	if d == nil {
		jsonError(w, "header discovery is not configured", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	reply, err := d.Ping(ctx)
	if err != nil {
		jsonError(w, err.Error(), discoveryStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider":   d.Provider(),
		"reply":      reply,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

func discoveryStatus(err error) int {
	switch {
	case errors.Is(err, headers.ErrNoHeaders), errors.Is(err, headers.ErrMalformedResponse):
		return http.StatusUnprocessableEntity
	case pipeline.IsRetryable(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

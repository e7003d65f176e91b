package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/store"
)

// documentStore returns the configured store, answering 503 when
// persistence is disabled.
func (s *Server) documentStore(w http.ResponseWriter) store.Store {
	st := s.orchestrator.Store()
	if st == nil {
		jsonError(w, "document store is disabled", http.StatusServiceUnavailable)
	}
	return st
}

// handleListDocuments lists all stored documents for a user, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	st := s.documentStore(w)
	if st == nil {
		return
	}

	recs, err := st.List(r.Context(), userID)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": recs})
}

// handleGetDocument returns a stored document with its outline and terms.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	st := s.documentStore(w)
	if st == nil {
		return
	}

	res, err := st.Get(r.Context(), userID, docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDeleteDocument deletes a document, its artifacts and its dedupe
// index entry.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	st := s.documentStore(w)
	if st == nil {
		return
	}

	err := st.Delete(r.Context(), userID, docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("document deleted", "user_id", userID, "doc_id", docID, "backend", st.Name())
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

// GetListing handles GET /rvs/{rvId}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	rv, err := s.listings.Get(r.Context(), chi.URLParam(r, "rvId"))
	if err != nil {
		s.writeServiceError(w, r, err, "rv not found")
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

// PutListing handles PUT /rvs/{rvId}. The body is a full ListRV document.
// An empty body Id takes the path id; a different one is rejected.
func (s *Server) PutListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rvId")

	var rv domain.ListRV
	if err := json.NewDecoder(r.Body).Decode(&rv); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "request body must be a ListRV JSON object")
		return
	}
	if rv.Id == "" {
		rv.Id = id
	}
	if rv.Id != id {
		writeError(w, http.StatusUnprocessableEntity, codeValidation,
			fmt.Sprintf("body Id %q does not match path id %q", rv.Id, id))
		return
	}

	saved, err := s.listings.Upsert(r.Context(), rv)
	if err != nil {
		s.writeServiceError(w, r, err, "rv not found")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteListing handles DELETE /rvs/{rvId}. Photos go with it.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := s.listings.Delete(r.Context(), chi.URLParam(r, "rvId")); err != nil {
		s.writeServiceError(w, r, err, "rv not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/rv-search/backend/internal/service"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file. The overall size is capped by the body limit.
const multipartMemory = 8 << 20

// ListPhotos handles GET /rvs/{rvId}/photos.
func (s *Server) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.photos.List(r.Context(), chi.URLParam(r, "rvId"))
	if err != nil {
		s.writeServiceError(w, r, err, "rv not found")
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// UploadPhoto handles POST /rvs/{rvId}/photos.
// Form fields: file (required), description, order. A missing order appends
// the photo after the existing ones.
func (s *Server) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "request must be multipart/form-data")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "file is required")
		return
	}
	defer file.Close()

	order := -1
	if raw := strings.TrimSpace(r.FormValue("order")); raw != "" {
		order, err = strconv.Atoi(raw)
		if err != nil || order < 0 {
			writeError(w, http.StatusUnprocessableEntity, codeValidation, "order must be a non-negative integer")
			return
		}
	}

	photo, err := s.photos.Upload(r.Context(), service.PhotoUpload{
		RVId:        chi.URLParam(r, "rvId"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Description: r.FormValue("description"),
		Order:       order,
		Body:        file,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "rv not found")
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// DeletePhoto handles DELETE /rvs/{rvId}/photos/{photoId}.
func (s *Server) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := strconv.Atoi(chi.URLParam(r, "photoId"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "photo not found")
		return
	}
	if err := s.photos.Delete(r.Context(), chi.URLParam(r, "rvId"), photoID); err != nil {
		s.writeServiceError(w, r, err, "photo not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

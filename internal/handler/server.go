// Package handler implements the HTTP handlers for the RV search API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (search.go, listing.go, photo.go) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/service"
)

// SearchServicer defines the search operation the handler depends on.
// Interfaces live here, in the consumer package, so handler tests can inject
// mocks without touching the database or service layer.
type SearchServicer interface {
	Search(ctx context.Context, p domain.SearchParams) (domain.SearchData, error)
}

// ListingServicer defines the single-listing operations.
type ListingServicer interface {
	Get(ctx context.Context, id string) (domain.ListRV, error)
	Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error)
	Delete(ctx context.Context, id string) error
}

// PhotoServicer defines the photo operations nested under a listing.
type PhotoServicer interface {
	List(ctx context.Context, rvID string) ([]domain.Photo, error)
	Upload(ctx context.Context, in service.PhotoUpload) (domain.Photo, error)
	Delete(ctx context.Context, rvID string, photoID int) error
}

// FilterServicer returns the filter catalog.
type FilterServicer interface {
	List() []domain.Filter
}

// Server holds the dependencies shared by every handler.
type Server struct {
	search   SearchServicer
	listings ListingServicer
	photos   PhotoServicer
	filters  FilterServicer
	openAPI  []byte
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards handler logs.
func NewServer(search SearchServicer, listings ListingServicer, photos PhotoServicer, filters FilterServicer, openAPI []byte, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		search:   search,
		listings: listings,
		photos:   photos,
		filters:  filters,
		openAPI:  openAPI,
		logger:   logger,
	}
}

// Routes returns a chi router with every API route registered.
// Cross-cutting middleware (request IDs, logging, CORS) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/search", s.Search)
	r.Get("/filters", s.ListFilters)

	r.Route("/rvs/{rvId}", func(r chi.Router) {
		r.Get("/", s.GetListing)
		r.Put("/", s.PutListing)
		r.Delete("/", s.DeleteListing)

		r.Get("/photos", s.ListPhotos)
		r.Post("/photos", s.UploadPhoto)
		r.Delete("/photos/{photoId}", s.DeletePhoto)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

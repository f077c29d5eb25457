package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/handler"
	"github.com/pkordes/rv-search/backend/internal/service"
)

// mockSearchServicer is a test double for handler.SearchServicer.
type mockSearchServicer struct {
	search func(ctx context.Context, p domain.SearchParams) (domain.SearchData, error)
}

func (m *mockSearchServicer) Search(ctx context.Context, p domain.SearchParams) (domain.SearchData, error) {
	return m.search(ctx, p)
}

// mockListingServicer is a test double for handler.ListingServicer.
// Set only the method fields your test needs.
type mockListingServicer struct {
	get    func(ctx context.Context, id string) (domain.ListRV, error)
	upsert func(ctx context.Context, rv domain.ListRV) (domain.ListRV, error)
	delete func(ctx context.Context, id string) error
}

func (m *mockListingServicer) Get(ctx context.Context, id string) (domain.ListRV, error) {
	return m.get(ctx, id)
}
func (m *mockListingServicer) Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error) {
	return m.upsert(ctx, rv)
}
func (m *mockListingServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

// mockPhotoServicer is a test double for handler.PhotoServicer.
type mockPhotoServicer struct {
	list   func(ctx context.Context, rvID string) ([]domain.Photo, error)
	upload func(ctx context.Context, in service.PhotoUpload) (domain.Photo, error)
	delete func(ctx context.Context, rvID string, photoID int) error
}

func (m *mockPhotoServicer) List(ctx context.Context, rvID string) ([]domain.Photo, error) {
	return m.list(ctx, rvID)
}
func (m *mockPhotoServicer) Upload(ctx context.Context, in service.PhotoUpload) (domain.Photo, error) {
	return m.upload(ctx, in)
}
func (m *mockPhotoServicer) Delete(ctx context.Context, rvID string, photoID int) error {
	return m.delete(ctx, rvID, photoID)
}

type staticFilters []domain.Filter

func (f staticFilters) List() []domain.Filter { return f }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.SearchServicer  = (*mockSearchServicer)(nil)
	_ handler.ListingServicer = (*mockListingServicer)(nil)
	_ handler.PhotoServicer   = (*mockPhotoServicer)(nil)
	_ handler.FilterServicer  = staticFilters(nil)
)

// ---- helpers ---------------------------------------------------------------

type deps struct {
	search   *mockSearchServicer
	listings *mockListingServicer
	photos   *mockPhotoServicer
	filters  staticFilters
	openAPI  []byte
}

// newHTTPHandler wires a Server with the given mocks into its chi router,
// the same way main.go does in production.
func newHTTPHandler(d deps) http.Handler {
	if d.search == nil {
		d.search = &mockSearchServicer{}
	}
	if d.listings == nil {
		d.listings = &mockListingServicer{}
	}
	if d.photos == nil {
		d.photos = &mockPhotoServicer{}
	}
	srv := handler.NewServer(d.search, d.listings, d.photos, d.filters, d.openAPI, nil)
	return srv.Routes()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func listingFixture() domain.ListRV {
	return domain.ListRV{
		Id:            "rv-42",
		AliasName:     "2019-winnebago-minnie",
		City:          "Austin",
		State:         "TX",
		Country:       "US",
		RVName:        "Minnie",
		RVType:        "Travel Trailer",
		Guests:        4,
		DefaultPrice:  129,
		AverageRating: 4.8,
		Photos: []domain.Photo{
			{Id: 1, Path: "https://cdn.example.com/rv-42/1.jpg", Order: 0, RVId: "rv-42"},
		},
		AvailableDates: domain.AvailableDates{"2025-06-01"},
	}
}

package service_test

import (
	"context"
	"io"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/repo"
	"github.com/pkordes/rv-search/backend/internal/service"
)

// mockListingRepo is a hand-written test double for repo.ListingRepo.
// Each method is a function field; set only the ones your test needs.
type mockListingRepo struct {
	upsert  func(ctx context.Context, rv domain.ListRV) (domain.ListRV, error)
	getByID func(ctx context.Context, id string) (domain.ListRV, error)
	delete  func(ctx context.Context, id string) error
	search  func(ctx context.Context, p domain.SearchParams) ([]domain.ListRV, int, error)
}

func (m *mockListingRepo) Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error) {
	return m.upsert(ctx, rv)
}
func (m *mockListingRepo) GetByID(ctx context.Context, id string) (domain.ListRV, error) {
	return m.getByID(ctx, id)
}
func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockListingRepo) Search(ctx context.Context, p domain.SearchParams) ([]domain.ListRV, int, error) {
	return m.search(ctx, p)
}

// compile-time check: mockListingRepo must satisfy repo.ListingRepo.
var _ repo.ListingRepo = (*mockListingRepo)(nil)

// mockPhotoRepo is a hand-written test double for repo.PhotoRepo.
type mockPhotoRepo struct {
	listByRV func(ctx context.Context, rvID string) ([]domain.Photo, error)
	create   func(ctx context.Context, p domain.Photo) (domain.Photo, error)
	delete   func(ctx context.Context, rvID string, photoID int) error
}

func (m *mockPhotoRepo) ListByRV(ctx context.Context, rvID string) ([]domain.Photo, error) {
	return m.listByRV(ctx, rvID)
}
func (m *mockPhotoRepo) Create(ctx context.Context, p domain.Photo) (domain.Photo, error) {
	return m.create(ctx, p)
}
func (m *mockPhotoRepo) Delete(ctx context.Context, rvID string, photoID int) error {
	return m.delete(ctx, rvID, photoID)
}

var _ repo.PhotoRepo = (*mockPhotoRepo)(nil)

// mockUploader records the last upload and returns a fixed URL.
type mockUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (m *mockUploader) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.key, m.contentType, m.body = key, contentType, b
	return "https://cdn.example.com/rv-photos/" + key, nil
}

var _ service.Uploader = (*mockUploader)(nil)

// existingListing is a getByID func that finds every listing.
func existingListing(_ context.Context, id string) (domain.ListRV, error) {
	return domain.ListRV{Id: id}, nil
}

// missingListing is a getByID func that finds nothing.
func missingListing(_ context.Context, _ string) (domain.ListRV, error) {
	return domain.ListRV{}, domain.ErrNotFound
}

package service

import (
	"context"
	"fmt"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/repo"
)

// ListingService implements business logic for listing lookup and ingest.
type ListingService struct {
	listings repo.ListingRepo
}

// NewListingService constructs a ListingService backed by the provided ListingRepo.
func NewListingService(listings repo.ListingRepo) *ListingService {
	return &ListingService{listings: listings}
}

// Get returns one listing with its photos in display order.
// Returns domain.ErrNotFound if it does not exist.
func (s *ListingService) Get(ctx context.Context, id string) (domain.ListRV, error) {
	rv, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.ListRV{}, fmt.Errorf("service.ListingService.Get: %w", err)
	}
	domain.SortPhotos(rv.Photos)
	return rv, nil
}

// Upsert normalizes photos (blank RVId filled, sorted by Order), validates,
// and stores the listing. Returns domain.ErrValidation for a missing Id,
// a photo pointing at another listing, or duplicate photo Ids.
func (s *ListingService) Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error) {
	rv.NormalizePhotos()
	if err := rv.Validate(); err != nil {
		return domain.ListRV{}, fmt.Errorf("service.ListingService.Upsert: %w", err)
	}
	stored, err := s.listings.Upsert(ctx, rv)
	if err != nil {
		return domain.ListRV{}, fmt.Errorf("service.ListingService.Upsert: %w", err)
	}
	return stored, nil
}

// Delete removes a listing and its photos.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ListingService.Delete: %w", err)
	}
	return nil
}

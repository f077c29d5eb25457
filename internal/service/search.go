// Package service contains the business logic for the RV search API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/repo"
)

// SearchService assembles the two-bucket SearchData envelope.
type SearchService struct {
	listings repo.ListingRepo
	newID    func() string
}

// NewSearchService constructs a SearchService backed by the provided ListingRepo.
func NewSearchService(listings repo.ListingRepo) *SearchService {
	return &SearchService{listings: listings, newID: uuid.NewString}
}

// Search runs the featured and popular queries for p.
// FeaturedRVs holds only listings with IsFeatured set; PopularRVs holds every
// match, ranked by review count unless p names an explicit sort.
// Each bucket gets a fresh query Id. Returns domain.ErrValidation for an
// unknown sort key and a plain error if a bucket holds more listings than
// its total.
func (s *SearchService) Search(ctx context.Context, p domain.SearchParams) (domain.SearchData, error) {
	if !p.Sort.Valid() {
		return domain.SearchData{}, fmt.Errorf("%w: unknown sort %q", domain.ErrValidation, p.Sort)
	}
	p = p.Normalized()

	featuredParams := p
	featuredParams.FeaturedOnly = true
	featured, err := s.bucket(ctx, featuredParams)
	if err != nil {
		return domain.SearchData{}, fmt.Errorf("service.SearchService.Search: featured: %w", err)
	}

	popularParams := p
	popularParams.RankByPopularity = true
	popular, err := s.bucket(ctx, popularParams)
	if err != nil {
		return domain.SearchData{}, fmt.Errorf("service.SearchService.Search: popular: %w", err)
	}

	data := domain.SearchData{FeaturedRVs: featured, PopularRVs: popular}
	// A broken envelope is a server fault, so the ErrValidation chain is
	// deliberately not wrapped.
	if err := data.Validate(); err != nil {
		return domain.SearchData{}, fmt.Errorf("service.SearchService.Search: inconsistent result: %v", err)
	}
	return data, nil
}

func (s *SearchService) bucket(ctx context.Context, p domain.SearchParams) (domain.RVBucket, error) {
	listings, total, err := s.listings.Search(ctx, p)
	if err != nil {
		return domain.RVBucket{}, err
	}
	if listings == nil {
		listings = []domain.ListRV{}
	}
	for i := range listings {
		domain.SortPhotos(listings[i].Photos)
	}
	return domain.RVBucket{Id: s.newID(), ListRVs: listings, TotalRVs: total}, nil
}

package domain

import (
	"encoding/json"
	"fmt"
)

// RVBucket is one named group of listings inside a search result.
// ListRVs is ranked; TotalRVs counts every match, not just the returned page.
type RVBucket struct {
	Id       string   `json:"Id"`
	ListRVs  []ListRV `json:"ListRVs"`
	TotalRVs int      `json:"TotalRVs"`
}

// MarshalJSON encodes a nil ListRVs slice as [].
func (b RVBucket) MarshalJSON() ([]byte, error) {
	type plain RVBucket
	p := plain(b)
	if p.ListRVs == nil {
		p.ListRVs = []ListRV{}
	}
	return json.Marshal(p)
}

// Validate reports an ErrValidation when the bucket holds more listings than
// its total, or when the total is negative.
func (b RVBucket) Validate() error {
	if b.TotalRVs < 0 {
		return fmt.Errorf("%w: bucket %q has negative TotalRVs %d", ErrValidation, b.Id, b.TotalRVs)
	}
	if len(b.ListRVs) > b.TotalRVs {
		return fmt.Errorf("%w: bucket %q returns %d listings but TotalRVs is %d",
			ErrValidation, b.Id, len(b.ListRVs), b.TotalRVs)
	}
	return nil
}

// SearchData is the search result envelope returned by GET /search.
type SearchData struct {
	FeaturedRVs RVBucket `json:"FeaturedRVs"`
	PopularRVs  RVBucket `json:"PopularRVs"`
}

// Validate checks both buckets.
func (s SearchData) Validate() error {
	if err := s.FeaturedRVs.Validate(); err != nil {
		return fmt.Errorf("FeaturedRVs: %w", err)
	}
	if err := s.PopularRVs.Validate(); err != nil {
		return fmt.Errorf("PopularRVs: %w", err)
	}
	return nil
}

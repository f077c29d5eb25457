package domain

import "strings"

// SortKey selects the ordering of a search bucket. The values double as
// Filter ids in the filter catalog.
type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortPriceLow    SortKey = "price-low"
	SortPriceHigh   SortKey = "price-high"
	SortRating      SortKey = "rating"
	SortDistance    SortKey = "distance"
	SortNewest      SortKey = "newest"
)

// Valid reports whether k is a known sort key. The empty key is valid and
// means SortRecommended.
func (k SortKey) Valid() bool {
	switch k {
	case "", SortRecommended, SortPriceLow, SortPriceHigh, SortRating, SortDistance, SortNewest:
		return true
	}
	return false
}

// SearchParams describes a listing search. Zero values mean "no filter".
type SearchParams struct {
	City        string
	State       string
	Country     string
	RVType      string
	MinGuests   int
	MinPrice    float64
	MaxPrice    float64
	Delivery    bool
	InstantBook bool
	Sort        SortKey

	// FeaturedOnly restricts matches to listings with IsFeatured set.
	FeaturedOnly bool
	// RankByPopularity orders SortRecommended results by review count
	// instead of featured-first. Explicit sort keys ignore it.
	RankByPopularity bool

	Pagination PaginationParams
}

// Normalized returns a sanitized copy of p: text filters are trimmed and
// lower-cased, negative bounds are cleared, a MaxPrice below MinPrice is
// dropped, an empty sort becomes SortRecommended and pagination is clamped.
func (p SearchParams) Normalized() SearchParams {
	n := p
	n.City = strings.ToLower(strings.TrimSpace(n.City))
	n.State = strings.ToLower(strings.TrimSpace(n.State))
	n.Country = strings.ToLower(strings.TrimSpace(n.Country))
	n.RVType = strings.ToLower(strings.TrimSpace(n.RVType))
	if n.MinGuests < 0 {
		n.MinGuests = 0
	}
	if n.MinPrice < 0 {
		n.MinPrice = 0
	}
	if n.MaxPrice < 0 || (n.MaxPrice > 0 && n.MaxPrice < n.MinPrice) {
		n.MaxPrice = 0
	}
	if n.Sort == "" {
		n.Sort = SortRecommended
	}
	page, limit := n.Pagination.Page, n.Pagination.Limit
	n.Pagination = NewPaginationParams(&page, &limit)
	return n
}

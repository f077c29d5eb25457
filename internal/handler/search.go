package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

// SearchQuery holds the optional query parameters of GET /search.
// Field types follow the OpenAPI document; nil means "not supplied".
type SearchQuery struct {
	City        *string
	State       *string
	Country     *string
	RVType      *string
	Guests      *int
	PriceMin    *float64
	PriceMax    *float64
	Delivery    *bool
	InstantBook *bool
	Sort        *string
	Page        *int
	Limit       *int
}

// bindSearchQuery decodes form-style query parameters into a SearchQuery.
// The returned error names the offending parameter.
func bindSearchQuery(q url.Values) (SearchQuery, error) {
	var sq SearchQuery
	for _, p := range []struct {
		name string
		dest any
	}{
		{"city", &sq.City},
		{"state", &sq.State},
		{"country", &sq.Country},
		{"rv_type", &sq.RVType},
		{"guests", &sq.Guests},
		{"price_min", &sq.PriceMin},
		{"price_max", &sq.PriceMax},
		{"delivery", &sq.Delivery},
		{"instant_book", &sq.InstantBook},
		{"sort", &sq.Sort},
		{"page", &sq.Page},
		{"limit", &sq.Limit},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			return SearchQuery{}, fmt.Errorf("invalid query parameter %s", p.name)
		}
	}
	return sq, nil
}

// Params converts the query into service search parameters.
func (sq SearchQuery) Params() domain.SearchParams {
	p := domain.SearchParams{
		City:        deref(sq.City),
		State:       deref(sq.State),
		Country:     deref(sq.Country),
		RVType:      deref(sq.RVType),
		MinGuests:   deref(sq.Guests),
		MinPrice:    deref(sq.PriceMin),
		MaxPrice:    deref(sq.PriceMax),
		Delivery:    deref(sq.Delivery),
		InstantBook: deref(sq.InstantBook),
		Sort:        domain.SortKey(deref(sq.Sort)),
		Pagination:  domain.NewPaginationParams(sq.Page, sq.Limit),
	}
	return p
}

// Search handles GET /search and responds with the SearchData envelope.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	sq, err := bindSearchQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	data, err := s.search.Search(r.Context(), sq.Params())
	if err != nil {
		s.writeServiceError(w, r, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

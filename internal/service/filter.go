package service

import "github.com/pkordes/rv-search/backend/internal/domain"

// FilterService serves the filter catalog loaded at start-up.
type FilterService struct {
	filters domain.FilterSet
}

// NewFilterService constructs a FilterService over a fixed catalog.
func NewFilterService(filters domain.FilterSet) *FilterService {
	return &FilterService{filters: filters}
}

// List returns a copy of the catalog in its configured order.
func (s *FilterService) List() []domain.Filter {
	out := make([]domain.Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

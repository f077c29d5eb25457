package domain

// Filter is a selectable search-refinement option shown in the UI.
// Unlike the listing shapes its JSON names are lowercase; upstream clients
// depend on that, so do not "fix" it.
type Filter struct {
	ID    string `json:"id"    yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// FilterSet is an ordered list of filters with lookup by id.
type FilterSet []Filter

// Lookup returns the filter with the given id.
func (fs FilterSet) Lookup(id string) (Filter, bool) {
	for _, f := range fs {
		if f.ID == id {
			return f, true
		}
	}
	return Filter{}, false
}

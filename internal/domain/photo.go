package domain

import "sort"

// Photo is one image attached to a listing.
// RVId is a lookup key back to ListRV.Id, not an ownership relation: the
// listing owns its photos through ListRV.Photos.
type Photo struct {
	Id          int    `json:"Id"`
	Path        string `json:"Path"`
	Description string `json:"Description"`
	Order       int    `json:"Order"`
	RVId        string `json:"RVId"`
}

// SortPhotos orders photos by Order ascending in place.
// Photos sharing an Order fall back to Id so the result is deterministic.
func SortPhotos(photos []Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		if photos[i].Order != photos[j].Order {
			return photos[i].Order < photos[j].Order
		}
		return photos[i].Id < photos[j].Id
	})
}

// NextPhotoID returns the smallest Id greater than every Id in photos.
func NextPhotoID(photos []Photo) int {
	next := 1
	for _, p := range photos {
		if p.Id >= next {
			next = p.Id + 1
		}
	}
	return next
}

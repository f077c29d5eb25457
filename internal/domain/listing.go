// Package domain contains the wire-level data shapes of the RV search API.
// Field and JSON names mirror the upstream catalog exactly, including its
// capitalisation, so payloads decode and re-encode without renaming.
// This package depends only on the standard library.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AvailableDates is the listing's availability placeholder. Upstream sends it
// as a bare array with no documented element type; entries are kept as opaque
// strings. It always encodes as a JSON array, never null.
type AvailableDates []string

// MarshalJSON encodes a nil AvailableDates as [] rather than null.
func (d AvailableDates) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(d))
}

// ListRV is one rentable vehicle listing as returned by search or lookup.
type ListRV struct {
	// Identity and location.
	AliasName          string  `json:"AliasName"`
	Id                 string  `json:"Id"`
	City               string  `json:"City"`
	State              string  `json:"State"`
	Country            string  `json:"Country"`
	PostCode           string  `json:"PostCode"`
	Latitude           float64 `json:"Latitude"`
	Longitude          float64 `json:"Longitude"`
	Timezone           string  `json:"Timezone"`
	Distance           float64 `json:"Distance"`
	DeliveryDistanceKM float64 `json:"DeliveryDistanceKM"`

	// Reviews and marketing.
	AverageRating         float64 `json:"AverageRating"`
	NumberOfReview        int     `json:"NumberOfReview"`
	IsFeatured            bool    `json:"IsFeatured"`
	InstabookOwnerOptedIn bool    `json:"InstabookOwnerOptedIn"`

	// Pricing. No relationship between these values is enforced.
	DefaultPrice                     float64 `json:"DefaultPrice"`
	LowSeasonNight                   float64 `json:"LowSeasonNight"`
	AveragePrice                     float64 `json:"AveragePrice"`
	PreDiscountedTripPrice           float64 `json:"PreDiscountedTripPrice"`
	PreDiscountedAverageNightlyPrice float64 `json:"PreDiscountedAverageNightlyPrice"`
	DiscountedTripPrice              float64 `json:"DiscountedTripPrice"`
	DiscountedAverageNightlyPrice    float64 `json:"DiscountedAverageNightlyPrice"`
	DiscountPercent                  float64 `json:"DiscountPercent"`

	// Vehicle attributes.
	RVName      string  `json:"RVName"`
	RVNumber    int     `json:"RVNumber"`
	Description string  `json:"Description"`
	Year        int     `json:"Year"`
	Make        string  `json:"Make"`
	Model       string  `json:"Model"`
	RVType      string  `json:"RVType"`
	Weight      float64 `json:"Weight"`
	Guests      int     `json:"Guests"`
	OwnerId     int64   `json:"OwnerId"`
	HasDelivery bool    `json:"HasDelivery"`
	IsShortStay bool    `json:"IsShortStay"`

	// Undated (template) trip window. The strings are passed through as-is.
	UndatedTripStart    string         `json:"UndatedTripStart"`
	UndatedTripEnd      string         `json:"UndatedTripEnd"`
	UndatedTripDuration string         `json:"UndatedTripDuration"`
	AvailableDates      AvailableDates `json:"AvailableDates"`

	Photos []Photo `json:"Photos"`
}

// MarshalJSON encodes a nil Photos slice as [] so clients can always iterate it.
func (l ListRV) MarshalJSON() ([]byte, error) {
	type plain ListRV
	p := plain(l)
	if p.Photos == nil {
		p.Photos = []Photo{}
	}
	return json.Marshal(p)
}

// Photo returns the photo with the given Id, or false if the listing has none.
func (l ListRV) Photo(id int) (Photo, bool) {
	for _, p := range l.Photos {
		if p.Id == id {
			return p, true
		}
	}
	return Photo{}, false
}

// PhotosByRVID returns the listing's photos whose RVId equals rvID, in their
// current order. It returns an empty, non-nil slice when none match.
func (l ListRV) PhotosByRVID(rvID string) []Photo {
	out := []Photo{}
	for _, p := range l.Photos {
		if p.RVId == rvID {
			out = append(out, p)
		}
	}
	return out
}

// NormalizePhotos fills blank Photo.RVId values with the listing Id, gives
// photos without a positive Id the next free one and sorts Photos by Order.
func (l *ListRV) NormalizePhotos() {
	for i := range l.Photos {
		if l.Photos[i].RVId == "" {
			l.Photos[i].RVId = l.Id
		}
		if l.Photos[i].Id <= 0 {
			l.Photos[i].Id = NextPhotoID(l.Photos)
		}
	}
	SortPhotos(l.Photos)
}

// Validate checks the few rules a stored listing must satisfy: it has an Id,
// every photo points back at it, and photo Ids are unique within the listing.
func (l ListRV) Validate() error {
	if strings.TrimSpace(l.Id) == "" {
		return fmt.Errorf("%w: Id is required", ErrValidation)
	}
	seen := make(map[int]struct{}, len(l.Photos))
	for _, p := range l.Photos {
		if p.RVId != l.Id {
			return fmt.Errorf("%w: photo %d belongs to %q, not %q", ErrValidation, p.Id, p.RVId, l.Id)
		}
		if _, dup := seen[p.Id]; dup {
			return fmt.Errorf("%w: duplicate photo Id %d", ErrValidation, p.Id)
		}
		seen[p.Id] = struct{}{}
	}
	return nil
}

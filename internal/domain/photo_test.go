package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

func TestSortPhotos_AlreadyOrderedIsUnchanged(t *testing.T) {
	photo1 := domain.Photo{Id: 1, Path: "/a.jpg", Order: 0, RVId: "rv1"}
	photo2 := domain.Photo{Id: 2, Path: "/b.jpg", Order: 1, RVId: "rv1"}
	photos := []domain.Photo{photo1, photo2}

	domain.SortPhotos(photos)

	assert.Equal(t, []domain.Photo{photo1, photo2}, photos)
}

func TestSortPhotos_ByOrderThenID(t *testing.T) {
	photos := []domain.Photo{
		{Id: 4, Order: 2},
		{Id: 3, Order: 1},
		{Id: 1, Order: 1},
		{Id: 2, Order: 0},
	}

	domain.SortPhotos(photos)

	var ids []int
	for _, p := range photos {
		ids = append(ids, p.Id)
	}
	assert.Equal(t, []int{2, 1, 3, 4}, ids)
}

func TestNextPhotoID(t *testing.T) {
	assert.Equal(t, 1, domain.NextPhotoID(nil))

	photos := []domain.Photo{{Id: 7, Order: 3}, {Id: 2, Order: 9}}
	assert.Equal(t, 8, domain.NextPhotoID(photos))
}

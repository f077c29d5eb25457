package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/service"
)

func TestPhotoService_Upload_StoresAndRecords(t *testing.T) {
	up := &mockUploader{}
	var recorded domain.Photo
	svc := service.NewPhotoService(
		&mockListingRepo{getByID: existingListing},
		&mockPhotoRepo{
			create: func(_ context.Context, p domain.Photo) (domain.Photo, error) {
				recorded = p
				p.Id = 3
				return p, nil
			},
		},
		up,
	)

	got, err := svc.Upload(context.Background(), service.PhotoUpload{
		RVId:        "rv1",
		FileName:    "Kitchen.JPG",
		ContentType: "image/jpeg",
		Description: "  Galley  ",
		Order:       -1,
		Body:        strings.NewReader("jpeg-bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, got.Id)
	assert.True(t, strings.HasPrefix(up.key, "rv1/"), "key %q should be scoped to the listing", up.key)
	assert.True(t, strings.HasSuffix(up.key, ".jpg"))
	assert.Equal(t, "jpeg-bytes", string(up.body))
	assert.Equal(t, "https://cdn.example.com/rv-photos/"+up.key, recorded.Path)
	assert.Equal(t, "Galley", recorded.Description)
	assert.Equal(t, -1, recorded.Order)
	assert.Equal(t, "rv1", recorded.RVId)
}

func TestPhotoService_Upload_NoUploader(t *testing.T) {
	svc := service.NewPhotoService(&mockListingRepo{}, &mockPhotoRepo{}, nil)

	_, err := svc.Upload(context.Background(), service.PhotoUpload{RVId: "rv1", Body: strings.NewReader("x")})

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestPhotoService_Upload_RejectsNonImage(t *testing.T) {
	svc := service.NewPhotoService(&mockListingRepo{}, &mockPhotoRepo{}, &mockUploader{})

	_, err := svc.Upload(context.Background(), service.PhotoUpload{
		RVId:        "rv1",
		ContentType: "application/pdf",
		Body:        strings.NewReader("x"),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

const pngHeader = "\x89PNG\r\n\x1a\n"

func TestPhotoService_Upload_SniffsUndeclaredType(t *testing.T) {
	for _, declared := range []string{"", "application/octet-stream"} {
		t.Run("declared="+declared, func(t *testing.T) {
			up := &mockUploader{}
			svc := service.NewPhotoService(&mockListingRepo{getByID: existingListing}, &mockPhotoRepo{
				create: func(_ context.Context, p domain.Photo) (domain.Photo, error) { return p, nil },
			}, up)
			payload := pngHeader + strings.Repeat("p", 600)

			_, err := svc.Upload(context.Background(), service.PhotoUpload{
				RVId:        "rv1",
				ContentType: declared,
				Body:        strings.NewReader(payload),
			})

			require.NoError(t, err)
			assert.Equal(t, "image/png", up.contentType)
			assert.Equal(t, payload, string(up.body), "sniffed bytes must reach storage")
		})
	}
}

func TestPhotoService_Upload_RejectsUndeclaredNonImage(t *testing.T) {
	up := &mockUploader{}
	svc := service.NewPhotoService(&mockListingRepo{getByID: existingListing}, &mockPhotoRepo{}, up)

	_, err := svc.Upload(context.Background(), service.PhotoUpload{
		RVId: "rv1",
		Body: strings.NewReader("#!/bin/sh\nrm -rf /\n"),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, up.key, "nothing should be stored")
}

func TestPhotoService_Upload_RejectsEmptyBody(t *testing.T) {
	svc := service.NewPhotoService(&mockListingRepo{getByID: existingListing}, &mockPhotoRepo{}, &mockUploader{})

	_, err := svc.Upload(context.Background(), service.PhotoUpload{RVId: "rv1", Body: strings.NewReader("")})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPhotoService_Upload_ListingNotFound(t *testing.T) {
	up := &mockUploader{}
	svc := service.NewPhotoService(&mockListingRepo{getByID: missingListing}, &mockPhotoRepo{}, up)

	_, err := svc.Upload(context.Background(), service.PhotoUpload{RVId: "ghost", ContentType: "image/png", Body: strings.NewReader("x")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, up.key, "nothing should be stored for a missing listing")
}

func TestPhotoService_Upload_StorageError(t *testing.T) {
	boom := errors.New("bucket gone")
	svc := service.NewPhotoService(
		&mockListingRepo{getByID: existingListing},
		&mockPhotoRepo{},
		&mockUploader{err: boom},
	)

	_, err := svc.Upload(context.Background(), service.PhotoUpload{RVId: "rv1", ContentType: "image/png", Body: strings.NewReader("x")})

	assert.ErrorIs(t, err, boom)
}

func TestPhotoService_List_SortedByOrder(t *testing.T) {
	svc := service.NewPhotoService(
		&mockListingRepo{getByID: existingListing},
		&mockPhotoRepo{
			listByRV: func(_ context.Context, rvID string) ([]domain.Photo, error) {
				return []domain.Photo{{Id: 2, Order: 1, RVId: rvID}, {Id: 1, Order: 0, RVId: rvID}}, nil
			},
		},
		nil,
	)

	got, err := svc.List(context.Background(), "rv1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Id)
}

func TestPhotoService_List_ListingNotFound(t *testing.T) {
	svc := service.NewPhotoService(&mockListingRepo{getByID: missingListing}, &mockPhotoRepo{}, nil)

	_, err := svc.List(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPhotoService_Delete(t *testing.T) {
	svc := service.NewPhotoService(nil, &mockPhotoRepo{
		delete: func(_ context.Context, rvID string, photoID int) error {
			if rvID == "rv1" && photoID == 2 {
				return nil
			}
			return domain.ErrNotFound
		},
	}, nil)

	require.NoError(t, svc.Delete(context.Background(), "rv1", 2))
	assert.ErrorIs(t, svc.Delete(context.Background(), "rv1", 3), domain.ErrNotFound)
}

func TestFilterService_ListReturnsCopy(t *testing.T) {
	svc := service.NewFilterService(domain.FilterSet{{ID: "price-low", Label: "Price: Low to High"}})

	got := svc.List()
	got[0].Label = "mutated"

	assert.Equal(t, "Price: Low to High", svc.List()[0].Label)
}

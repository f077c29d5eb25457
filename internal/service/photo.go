package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/rv-search/backend/internal/domain"
	"github.com/pkordes/rv-search/backend/internal/repo"
)

// Uploader stores photo bytes and returns the public URL they are served from.
// storage/s3.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// PhotoUpload is the input to PhotoService.Upload.
// Order < 0 appends the photo after the listing's existing photos.
type PhotoUpload struct {
	RVId        string
	FileName    string
	ContentType string
	Description string
	Order       int
	Body        io.Reader
}

// PhotoService implements business logic for listing photos.
type PhotoService struct {
	listings repo.ListingRepo
	photos   repo.PhotoRepo
	uploader Uploader
}

// NewPhotoService constructs a PhotoService. uploader may be nil, in which
// case Upload returns domain.ErrUnavailable.
func NewPhotoService(listings repo.ListingRepo, photos repo.PhotoRepo, uploader Uploader) *PhotoService {
	return &PhotoService{listings: listings, photos: photos, uploader: uploader}
}

// List returns the listing's photos in display order.
// Returns domain.ErrNotFound if the listing does not exist.
func (s *PhotoService) List(ctx context.Context, rvID string) ([]domain.Photo, error) {
	if _, err := s.listings.GetByID(ctx, rvID); err != nil {
		return nil, fmt.Errorf("service.PhotoService.List: %w", err)
	}
	photos, err := s.photos.ListByRV(ctx, rvID)
	if err != nil {
		return nil, fmt.Errorf("service.PhotoService.List: %w", err)
	}
	if photos == nil {
		return []domain.Photo{}, nil
	}
	domain.SortPhotos(photos)
	return photos, nil
}

// Upload stores the photo bytes under "<rvId>/<uuid><ext>" and records a Photo
// whose Path is the resulting public URL.
func (s *PhotoService) Upload(ctx context.Context, in PhotoUpload) (domain.Photo, error) {
	if s.uploader == nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Upload: %w: photo storage is not configured", domain.ErrUnavailable)
	}
	if in.Body == nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Upload: %w: file is required", domain.ErrValidation)
	}
	contentType, body, err := imageContent(in.ContentType, in.Body)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Upload: %w", err)
	}
	if _, err := s.listings.GetByID(ctx, in.RVId); err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Upload: %w", err)
	}

	key := in.RVId + "/" + uuid.NewString() + strings.ToLower(path.Ext(in.FileName))
	url, err := s.uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Upload: store: %w", err)
	}

	created, err := s.photos.Create(ctx, domain.Photo{
		RVId:        in.RVId,
		Path:        url,
		Description: strings.TrimSpace(in.Description),
		Order:       in.Order,
	})
	if err != nil {
		return domain.Photo{}, fmt.Errorf("service.PhotoService.Upload: %w", err)
	}
	return created, nil
}

// sniffLen is how much of the body http.DetectContentType looks at.
const sniffLen = 512

// imageContent resolves the upload's media type and rejects anything that is
// not an image. A missing or generic declared type is replaced by one sniffed
// from the leading bytes, which are stitched back onto the returned reader.
func imageContent(declared string, body io.Reader) (string, io.Reader, error) {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if ct == "" || ct == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(body, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return "", nil, fmt.Errorf("read upload: %w", err)
		}
		head = head[:n]
		ct = http.DetectContentType(head)
		body = io.MultiReader(bytes.NewReader(head), body)
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", nil, fmt.Errorf("%w: content type %q is not an image", domain.ErrValidation, ct)
	}
	return ct, body, nil
}

// Delete removes one photo record. The stored object is left in place.
func (s *PhotoService) Delete(ctx context.Context, rvID string, photoID int) error {
	if err := s.photos.Delete(ctx, rvID, photoID); err != nil {
		return fmt.Errorf("service.PhotoService.Delete: %w", err)
	}
	return nil
}

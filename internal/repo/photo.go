package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

// PhotoRepo defines the persistence operations for a listing's photos.
type PhotoRepo interface {
	// ListByRV returns the listing's photos ordered by Order, then Id.
	// An unknown listing yields an empty slice, not an error.
	ListByRV(ctx context.Context, rvID string) ([]domain.Photo, error)

	// Create appends a photo to a listing. The Id is assigned as one past the
	// listing's highest photo Id; a negative Order is replaced with one past
	// the highest Order. Returns domain.ErrNotFound if the listing does not exist.
	Create(ctx context.Context, photo domain.Photo) (domain.Photo, error)

	// Delete removes one photo. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, rvID string, photoID int) error
}

// pgPhotoRepo is the Postgres implementation of PhotoRepo.
type pgPhotoRepo struct {
	db db
}

// NewPhotoRepo constructs a PhotoRepo backed by the provided db connection.
func NewPhotoRepo(db db) PhotoRepo {
	return &pgPhotoRepo{db: db}
}

func (r *pgPhotoRepo) ListByRV(ctx context.Context, rvID string) ([]domain.Photo, error) {
	const q = `
		SELECT rv_id, id, path, description, sort_order
		FROM photos
		WHERE rv_id = @rv_id
		ORDER BY sort_order, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"rv_id": rvID})
	if err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListByRV: %w", err)
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PhotoRepo.ListByRV: scan: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PhotoRepo.ListByRV: rows: %w", err)
	}
	return photos, nil
}

// createAttempts bounds how often Create recomputes the next Id after losing
// a race with a concurrent insert for the same listing.
const createAttempts = 3

// Create computes the next Id and Order in the INSERT itself. The aggregate
// SELECT always yields one row, even for a listing with no photos yet.
// Two concurrent inserts can read the same MAX(id); the loser hits the
// (rv_id, id) primary key and is retried with a fresh MAX.
func (r *pgPhotoRepo) Create(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	const q = `
		INSERT INTO photos (rv_id, id, path, description, sort_order)
		SELECT @rv_id,
		       COALESCE(MAX(id), 0) + 1,
		       @path,
		       @description,
		       CASE WHEN @sort_order::int < 0 THEN COALESCE(MAX(sort_order) + 1, 0) ELSE @sort_order::int END
		FROM photos
		WHERE rv_id = @rv_id
		RETURNING rv_id, id, path, description, sort_order`

	args := pgx.NamedArgs{
		"rv_id":       photo.RVId,
		"path":        photo.Path,
		"description": photo.Description,
		"sort_order":  photo.Order,
	}

	var (
		created domain.Photo
		err     error
	)
	for i := 0; i < createAttempts; i++ {
		created, err = scanPhoto(r.db.QueryRow(ctx, q, args))
		if !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Photo{}, fmt.Errorf("repo.PhotoRepo.Create: listing %q: %w", photo.RVId, domain.ErrNotFound)
		}
		return domain.Photo{}, fmt.Errorf("repo.PhotoRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgPhotoRepo) Delete(ctx context.Context, rvID string, photoID int) error {
	const q = `DELETE FROM photos WHERE rv_id = @rv_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"rv_id": rvID, "id": photoID})
	if err != nil {
		return fmt.Errorf("repo.PhotoRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PhotoRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanPhoto maps a (rv_id, id, path, description, sort_order) row into a domain.Photo.
func scanPhoto(s scanner) (domain.Photo, error) {
	var p domain.Photo
	if err := s.Scan(&p.RVId, &p.Id, &p.Path, &p.Description, &p.Order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Photo{}, domain.ErrNotFound
		}
		return domain.Photo{}, err
	}
	return p, nil
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/rv-search/backend/internal/domain"
)

// ListingRepo defines the persistence operations for listings and the
// photos they own.
type ListingRepo interface {
	// Upsert inserts or overwrites a listing and replaces its photo set in a
	// single transaction, then returns the stored record.
	Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error)

	// GetByID retrieves one listing with its photos ordered by Order.
	// Returns domain.ErrNotFound if no listing has that Id.
	GetByID(ctx context.Context, id string) (domain.ListRV, error)

	// Delete removes a listing and, by cascade, its photos.
	// Returns domain.ErrNotFound if no listing has that Id.
	Delete(ctx context.Context, id string) error

	// Search returns one page of listings matching p and the total number of
	// matches across all pages.
	Search(ctx context.Context, p domain.SearchParams) ([]domain.ListRV, int, error)
}

// pgListingRepo is the Postgres implementation of ListingRepo.
type pgListingRepo struct {
	db db
}

// NewListingRepo constructs a ListingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewListingRepo(db db) ListingRepo {
	return &pgListingRepo{db: db}
}

// listingColumns is the column list shared by every SELECT and RETURNING
// clause. Its order must match scanListing.
const listingColumns = `
	id, alias_name, city, state, country, post_code, latitude, longitude, timezone,
	distance, delivery_distance_km, average_rating, number_of_review, is_featured,
	instabook_owner_opted_in, default_price, low_season_night, average_price,
	pre_discounted_trip_price, pre_discounted_average_nightly_price,
	discounted_trip_price, discounted_average_nightly_price, discount_percent,
	rv_name, rv_number, description, year, make, model, rv_type, weight, guests,
	owner_id, has_delivery, is_short_stay, undated_trip_start, undated_trip_end,
	undated_trip_duration, available_dates`

func (r *pgListingRepo) Upsert(ctx context.Context, rv domain.ListRV) (domain.ListRV, error) {
	const q = `
		INSERT INTO listings (` + listingColumns + `)
		VALUES (
			@id, @alias_name, @city, @state, @country, @post_code, @latitude, @longitude, @timezone,
			@distance, @delivery_distance_km, @average_rating, @number_of_review, @is_featured,
			@instabook_owner_opted_in, @default_price, @low_season_night, @average_price,
			@pre_discounted_trip_price, @pre_discounted_average_nightly_price,
			@discounted_trip_price, @discounted_average_nightly_price, @discount_percent,
			@rv_name, @rv_number, @description, @year, @make, @model, @rv_type, @weight, @guests,
			@owner_id, @has_delivery, @is_short_stay, @undated_trip_start, @undated_trip_end,
			@undated_trip_duration, @available_dates)
		ON CONFLICT (id) DO UPDATE SET
			alias_name = EXCLUDED.alias_name,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			post_code = EXCLUDED.post_code,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			timezone = EXCLUDED.timezone,
			distance = EXCLUDED.distance,
			delivery_distance_km = EXCLUDED.delivery_distance_km,
			average_rating = EXCLUDED.average_rating,
			number_of_review = EXCLUDED.number_of_review,
			is_featured = EXCLUDED.is_featured,
			instabook_owner_opted_in = EXCLUDED.instabook_owner_opted_in,
			default_price = EXCLUDED.default_price,
			low_season_night = EXCLUDED.low_season_night,
			average_price = EXCLUDED.average_price,
			pre_discounted_trip_price = EXCLUDED.pre_discounted_trip_price,
			pre_discounted_average_nightly_price = EXCLUDED.pre_discounted_average_nightly_price,
			discounted_trip_price = EXCLUDED.discounted_trip_price,
			discounted_average_nightly_price = EXCLUDED.discounted_average_nightly_price,
			discount_percent = EXCLUDED.discount_percent,
			rv_name = EXCLUDED.rv_name,
			rv_number = EXCLUDED.rv_number,
			description = EXCLUDED.description,
			year = EXCLUDED.year,
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			rv_type = EXCLUDED.rv_type,
			weight = EXCLUDED.weight,
			guests = EXCLUDED.guests,
			owner_id = EXCLUDED.owner_id,
			has_delivery = EXCLUDED.has_delivery,
			is_short_stay = EXCLUDED.is_short_stay,
			undated_trip_start = EXCLUDED.undated_trip_start,
			undated_trip_end = EXCLUDED.undated_trip_end,
			undated_trip_duration = EXCLUDED.undated_trip_duration,
			available_dates = EXCLUDED.available_dates,
			updated_at = now()`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.Upsert: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec(ctx, q, listingArgs(rv)); err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.Upsert: listing: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM photos WHERE rv_id = @rv_id`, pgx.NamedArgs{"rv_id": rv.Id}); err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.Upsert: clear photos: %w", err)
	}
	for _, p := range rv.Photos {
		const pq = `
			INSERT INTO photos (rv_id, id, path, description, sort_order)
			VALUES (@rv_id, @id, @path, @description, @sort_order)`
		args := pgx.NamedArgs{
			"rv_id":       rv.Id,
			"id":          p.Id,
			"path":        p.Path,
			"description": p.Description,
			"sort_order":  p.Order,
		}
		if _, err := tx.Exec(ctx, pq, args); err != nil {
			return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.Upsert: photo %d: %w", p.Id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.Upsert: commit: %w", err)
	}

	stored, err := r.GetByID(ctx, rv.Id)
	if err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.Upsert: reload: %w", err)
	}
	return stored, nil
}

func (r *pgListingRepo) GetByID(ctx context.Context, id string) (domain.ListRV, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE id = @id`

	rv, err := scanListing(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.GetByID: %w", err)
	}

	photos, err := r.photosFor(ctx, []string{rv.Id})
	if err != nil {
		return domain.ListRV{}, fmt.Errorf("repo.ListingRepo.GetByID: %w", err)
	}
	rv.Photos = photos[rv.Id]
	return rv, nil
}

func (r *pgListingRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ListingRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ListingRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Search builds its WHERE clause from the non-zero filters in p. Text filters
// compare case-insensitively; p is normalized first so callers need not.
// The total comes from a window count in the page query itself, so a page is
// never longer than its total even while listings are being written.
func (r *pgListingRepo) Search(ctx context.Context, p domain.SearchParams) ([]domain.ListRV, int, error) {
	p = p.Normalized()
	where, args := searchWhere(p)

	pageArgs := pgx.NamedArgs{"limit": p.Pagination.Limit, "offset": p.Pagination.Offset()}
	for k, v := range args {
		pageArgs[k] = v
	}
	pageQ := `SELECT ` + listingColumns + `, count(*) OVER () FROM listings` + where +
		` ORDER BY ` + searchOrder(p) + ` LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, pageQ, pageArgs)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ListingRepo.Search: %w", err)
	}
	defer rows.Close()

	var total int
	listings := []domain.ListRV{}
	for rows.Next() {
		rv, err := scanListing(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ListingRepo.Search: scan: %w", err)
		}
		listings = append(listings, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ListingRepo.Search: rows: %w", err)
	}

	if len(listings) == 0 {
		// Window counts need a row; past the last page fall back to a plain count.
		if p.Pagination.Offset() > 0 {
			countQ := `SELECT count(*) FROM listings` + where
			if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
				return nil, 0, fmt.Errorf("repo.ListingRepo.Search: count: %w", err)
			}
		}
		return listings, total, nil
	}

	ids := make([]string, len(listings))
	for i, rv := range listings {
		ids[i] = rv.Id
	}
	photos, err := r.photosFor(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ListingRepo.Search: %w", err)
	}
	for i := range listings {
		listings[i].Photos = photos[listings[i].Id]
	}
	return listings, total, nil
}

// photosFor loads the photos of every listing in ids, keyed by listing Id and
// ordered by sort_order then id. Listings without photos get an empty slice.
func (r *pgListingRepo) photosFor(ctx context.Context, ids []string) (map[string][]domain.Photo, error) {
	const q = `
		SELECT rv_id, id, path, description, sort_order
		FROM photos
		WHERE rv_id = ANY(@ids)
		ORDER BY rv_id, sort_order, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("photos: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Photo, len(ids))
	for _, id := range ids {
		out[id] = []domain.Photo{}
	}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("photos: scan: %w", err)
		}
		out[p.RVId] = append(out[p.RVId], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("photos: rows: %w", err)
	}
	return out, nil
}

// searchWhere returns a " WHERE ..." clause (or "") and its named args.
func searchWhere(p domain.SearchParams) (string, pgx.NamedArgs) {
	var conds []string
	args := pgx.NamedArgs{}

	textFilter := func(column, name, value string) {
		if value != "" {
			conds = append(conds, fmt.Sprintf("lower(%s) = @%s", column, name))
			args[name] = value
		}
	}
	textFilter("city", "city", p.City)
	textFilter("state", "state", p.State)
	textFilter("country", "country", p.Country)
	textFilter("rv_type", "rv_type", p.RVType)

	if p.MinGuests > 0 {
		conds = append(conds, "guests >= @min_guests")
		args["min_guests"] = p.MinGuests
	}
	if p.MinPrice > 0 {
		conds = append(conds, "default_price >= @min_price")
		args["min_price"] = p.MinPrice
	}
	if p.MaxPrice > 0 {
		conds = append(conds, "default_price <= @max_price")
		args["max_price"] = p.MaxPrice
	}
	if p.Delivery {
		conds = append(conds, "has_delivery")
	}
	if p.InstantBook {
		conds = append(conds, "instabook_owner_opted_in")
	}
	if p.FeaturedOnly {
		conds = append(conds, "is_featured")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// searchOrder maps a sort key to an ORDER BY list. Every ordering ends with id
// so pages are stable across requests.
func searchOrder(p domain.SearchParams) string {
	switch p.Sort {
	case domain.SortPriceLow:
		return "default_price ASC, id"
	case domain.SortPriceHigh:
		return "default_price DESC, id"
	case domain.SortRating:
		return "average_rating DESC, number_of_review DESC, id"
	case domain.SortDistance:
		return "distance ASC, id"
	case domain.SortNewest:
		return "year DESC, id"
	}
	if p.RankByPopularity {
		return "number_of_review DESC, average_rating DESC, id"
	}
	return "is_featured DESC, average_rating DESC, number_of_review DESC, id"
}

// listingArgs maps a listing onto the named parameters used by Upsert.
func listingArgs(rv domain.ListRV) pgx.NamedArgs {
	dates := []string(rv.AvailableDates)
	if dates == nil {
		dates = []string{}
	}
	return pgx.NamedArgs{
		"id":                                   rv.Id,
		"alias_name":                           rv.AliasName,
		"city":                                 rv.City,
		"state":                                rv.State,
		"country":                              rv.Country,
		"post_code":                            rv.PostCode,
		"latitude":                             rv.Latitude,
		"longitude":                            rv.Longitude,
		"timezone":                             rv.Timezone,
		"distance":                             rv.Distance,
		"delivery_distance_km":                 rv.DeliveryDistanceKM,
		"average_rating":                       rv.AverageRating,
		"number_of_review":                     rv.NumberOfReview,
		"is_featured":                          rv.IsFeatured,
		"instabook_owner_opted_in":             rv.InstabookOwnerOptedIn,
		"default_price":                        rv.DefaultPrice,
		"low_season_night":                     rv.LowSeasonNight,
		"average_price":                        rv.AveragePrice,
		"pre_discounted_trip_price":            rv.PreDiscountedTripPrice,
		"pre_discounted_average_nightly_price": rv.PreDiscountedAverageNightlyPrice,
		"discounted_trip_price":                rv.DiscountedTripPrice,
		"discounted_average_nightly_price":     rv.DiscountedAverageNightlyPrice,
		"discount_percent":                     rv.DiscountPercent,
		"rv_name":                              rv.RVName,
		"rv_number":                            rv.RVNumber,
		"description":                          rv.Description,
		"year":                                 rv.Year,
		"make":                                 rv.Make,
		"model":                                rv.Model,
		"rv_type":                              rv.RVType,
		"weight":                               rv.Weight,
		"guests":                               rv.Guests,
		"owner_id":                             rv.OwnerId,
		"has_delivery":                         rv.HasDelivery,
		"is_short_stay":                        rv.IsShortStay,
		"undated_trip_start":                   rv.UndatedTripStart,
		"undated_trip_end":                     rv.UndatedTripEnd,
		"undated_trip_duration":                rv.UndatedTripDuration,
		"available_dates":                      dates,
	}
}

// scanListing maps one row selected with listingColumns into a domain.ListRV.
// extra receives any columns selected after listingColumns.
// Photos are loaded separately.
func scanListing(s scanner, extra ...any) (domain.ListRV, error) {
	var (
		rv    domain.ListRV
		dates []string
	)
	err := s.Scan(append([]any{
		&rv.Id, &rv.AliasName, &rv.City, &rv.State, &rv.Country, &rv.PostCode,
		&rv.Latitude, &rv.Longitude, &rv.Timezone,
		&rv.Distance, &rv.DeliveryDistanceKM, &rv.AverageRating, &rv.NumberOfReview, &rv.IsFeatured,
		&rv.InstabookOwnerOptedIn, &rv.DefaultPrice, &rv.LowSeasonNight, &rv.AveragePrice,
		&rv.PreDiscountedTripPrice, &rv.PreDiscountedAverageNightlyPrice,
		&rv.DiscountedTripPrice, &rv.DiscountedAverageNightlyPrice, &rv.DiscountPercent,
		&rv.RVName, &rv.RVNumber, &rv.Description, &rv.Year, &rv.Make, &rv.Model, &rv.RVType,
		&rv.Weight, &rv.Guests,
		&rv.OwnerId, &rv.HasDelivery, &rv.IsShortStay, &rv.UndatedTripStart, &rv.UndatedTripEnd,
		&rv.UndatedTripDuration, &dates,
	}, extra...)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ListRV{}, domain.ErrNotFound
		}
		return domain.ListRV{}, err
	}
	rv.AvailableDates = domain.AvailableDates(dates)
	return rv, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// PostgreSQL error codes used for constraint violation detection.
const (
	pgUniqueViolation     = "23505" // unique_violation
	pgForeignKeyViolation = "23503" // foreign_key_violation
)

// Compile-time interface verification.
var _ BusinessRepository = (*PgBusinessRepository)(nil)

// PgBusinessRepository is a PostgreSQL implementation of BusinessRepository.
type PgBusinessRepository struct {
	db DBTX
}

// NewPgBusinessRepository creates a new PostgreSQL business repository.
func NewPgBusinessRepository(db DBTX) *PgBusinessRepository {
	return &PgBusinessRepository{db: db}
}

// Create inserts a new business.
func (r *PgBusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	if business == nil {
		return domain.NewValidationError("business", "business cannot be nil")
	}
	if business.ID == uuid.Nil {
		return domain.NewValidationError("id", "business ID is required")
	}
	if business.AccountID == "" {
		return domain.NewValidationError("account_id", "account ID is required")
	}
	if business.Name == "" {
		return domain.NewValidationError("name", "business name is required")
	}

	query := `
		INSERT INTO businesses (
			id, account_id, name,
			google_place_id, yelp_business_id, sweep_enabled,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8
		)`

	_, err := r.db.Exec(ctx, query,
		business.ID, business.AccountID, business.Name,
		nullString(business.GooglePlaceID), nullString(business.YelpBusinessID), business.SweepEnabled,
		business.CreatedAt, business.UpdatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("business", business.ID.String())
		}
		return fmt.Errorf("failed to create business: %w", err)
	}

	return nil
}

// Get retrieves a business by its ID.
func (r *PgBusinessRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	query := `
		SELECT id, account_id, name,
			google_place_id, yelp_business_id, sweep_enabled,
			created_at, updated_at
		FROM businesses
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	business, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("business", id.String())
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return business, nil
}

// Update persists changes to a business's mutable fields.
func (r *PgBusinessRepository) Update(ctx context.Context, business *domain.Business) error {
	if business == nil {
		return domain.NewValidationError("business", "business cannot be nil")
	}
	if business.Name == "" {
		return domain.NewValidationError("name", "business name is required")
	}

	query := `
		UPDATE businesses
		SET name = $1,
			google_place_id = $2,
			yelp_business_id = $3,
			sweep_enabled = $4,
			updated_at = $5
		WHERE id = $6`

	now := time.Now().UTC()
	result, err := r.db.Exec(ctx, query,
		business.Name,
		nullString(business.GooglePlaceID),
		nullString(business.YelpBusinessID),
		business.SweepEnabled,
		now,
		business.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("business", business.ID.String())
	}

	business.UpdatedAt = now
	return nil
}

// List retrieves businesses matching the filter criteria.
func (r *PgBusinessRepository) List(ctx context.Context, filter BusinessFilter) ([]*domain.Business, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	// Build dynamic WHERE clause
	conditions := []string{"account_id = $1"}
	args := []interface{}{filter.AccountID}
	argIndex := 2

	if filter.SweepEnabled != nil {
		conditions = append(conditions, fmt.Sprintf("sweep_enabled = $%d", argIndex))
		args = append(args, *filter.SweepEnabled)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count total matching records
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM businesses WHERE %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	// Query with pagination
	selectQuery := fmt.Sprintf(`
		SELECT id, account_id, name,
			google_place_id, yelp_business_id, sweep_enabled,
			created_at, updated_at
		FROM businesses
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	businesses := make([]*domain.Business, 0, filter.Limit)
	for rows.Next() {
		business, err := scanBusinessFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, business)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating businesses: %w", err)
	}

	return businesses, totalCount, nil
}

// ListSweepEnabled retrieves sweep-enabled businesses with a connected feed.
func (r *PgBusinessRepository) ListSweepEnabled(ctx context.Context, limit, offset int) ([]*domain.Business, error) {
	applyPaginationDefaults(&limit, &offset)

	query := `
		SELECT id, account_id, name,
			google_place_id, yelp_business_id, sweep_enabled,
			created_at, updated_at
		FROM businesses
		WHERE sweep_enabled = true
		  AND (google_place_id IS NOT NULL OR yelp_business_id IS NOT NULL)
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep-enabled businesses: %w", err)
	}
	defer rows.Close()

	var businesses []*domain.Business
	for rows.Next() {
		business, err := scanBusinessFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, business)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating businesses: %w", err)
	}

	return businesses, nil
}

// isPgUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// isPgForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}

// businessScanDest holds the destination pointers for scanning a Business row.
type businessScanDest struct {
	business       domain.Business
	googlePlaceID  *string
	yelpBusinessID *string
}

// destinations returns the slice of pointers for Scan operations.
func (d *businessScanDest) destinations() []interface{} {
	return []interface{}{
		&d.business.ID, &d.business.AccountID, &d.business.Name,
		&d.googlePlaceID, &d.yelpBusinessID, &d.business.SweepEnabled,
		&d.business.CreatedAt, &d.business.UpdatedAt,
	}
}

// finalize performs post-scan processing for nullable string fields.
func (d *businessScanDest) finalize() *domain.Business {
	if d.googlePlaceID != nil {
		d.business.GooglePlaceID = *d.googlePlaceID
	}
	if d.yelpBusinessID != nil {
		d.business.YelpBusinessID = *d.yelpBusinessID
	}
	return &d.business
}

// scanBusiness scans a single row into a Business.
func scanBusiness(row pgx.Row) (*domain.Business, error) {
	var dest businessScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanBusinessFromRows scans the current row from pgx.Rows into a Business.
func scanBusinessFromRows(rows pgx.Rows) (*domain.Business, error) {
	var dest businessScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// nullString returns a pointer to the string if non-empty, otherwise nil.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

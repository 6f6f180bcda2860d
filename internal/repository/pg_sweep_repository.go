package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// sweepColumns is the canonical column list for sweep_records queries.
const sweepColumns = `id, business_id, status, reviews_checked, reviews_verified,
		reviews_queued, candidates_fetched, error_message, started_at, completed_at`

// Compile-time interface verification.
var _ SweepRepository = (*PgSweepRepository)(nil)

// PgSweepRepository is a PostgreSQL implementation of SweepRepository.
type PgSweepRepository struct {
	db DBTX
}

// NewPgSweepRepository creates a new PostgreSQL sweep repository.
func NewPgSweepRepository(db DBTX) *PgSweepRepository {
	return &PgSweepRepository{db: db}
}

// Create inserts a new sweep record.
func (r *PgSweepRepository) Create(ctx context.Context, sweep *domain.SweepRecord) error {
	if sweep == nil {
		return domain.NewValidationError("sweep", "sweep record cannot be nil")
	}
	if sweep.ID == uuid.Nil {
		return domain.NewValidationError("id", "sweep ID is required")
	}
	if sweep.BusinessID == uuid.Nil {
		return domain.NewValidationError("business_id", "business ID is required")
	}

	query := `
		INSERT INTO sweep_records (
			id, business_id, status, reviews_checked, reviews_verified,
			reviews_queued, candidates_fetched, error_message, started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)`

	_, err := r.db.Exec(ctx, query,
		sweep.ID, sweep.BusinessID, sweep.Status, sweep.ReviewsChecked, sweep.ReviewsVerified,
		sweep.ReviewsQueued, sweep.CandidatesFetched, nullString(sweep.ErrorMessage), sweep.StartedAt, sweep.CompletedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("sweep", sweep.ID.String())
		}
		if isPgForeignKeyViolation(err) {
			return domain.NewNotFoundError("business", sweep.BusinessID.String())
		}
		return fmt.Errorf("failed to create sweep record: %w", err)
	}

	return nil
}

// Get retrieves a sweep record by its ID.
func (r *PgSweepRepository) Get(ctx context.Context, id uuid.UUID) (*domain.SweepRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sweep_records
		WHERE id = $1`, sweepColumns)

	row := r.db.QueryRow(ctx, query, id)
	sweep, err := scanSweepRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("sweep", id.String())
		}
		return nil, fmt.Errorf("failed to get sweep record: %w", err)
	}

	return sweep, nil
}

// Complete marks a sweep as finished with the given status and counters.
func (r *PgSweepRepository) Complete(ctx context.Context, id uuid.UUID, status domain.SweepStatus, checked, verified, queued, fetched int) error {
	query := `
		UPDATE sweep_records
		SET status = $1,
			reviews_checked = $2,
			reviews_verified = $3,
			reviews_queued = $4,
			candidates_fetched = $5,
			completed_at = $6
		WHERE id = $7`

	result, err := r.db.Exec(ctx, query,
		status, checked, verified, queued, fetched,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete sweep record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("sweep", id.String())
	}

	return nil
}

// Fail marks a sweep as failed with an error message.
func (r *PgSweepRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE sweep_records
		SET status = $1,
			error_message = $2,
			completed_at = $3
		WHERE id = $4`

	result, err := r.db.Exec(ctx, query,
		domain.SweepStatusFailed, errorMessage, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark sweep record failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("sweep", id.String())
	}

	return nil
}

// ListByBusiness retrieves recent sweep records for a business, newest first.
func (r *PgSweepRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*domain.SweepRecord, error) {
	if businessID == uuid.Nil {
		return nil, domain.NewValidationError("business_id", "business ID is required")
	}
	applyPaginationDefaults(&limit, &offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM sweep_records
		WHERE business_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`, sweepColumns)

	rows, err := r.db.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep records: %w", err)
	}
	defer rows.Close()

	var sweeps []*domain.SweepRecord
	for rows.Next() {
		sweep, err := scanSweepRecordFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sweep record: %w", err)
		}
		sweeps = append(sweeps, sweep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sweep records: %w", err)
	}

	return sweeps, nil
}

// sweepScanDest holds the destination pointers for scanning a SweepRecord row.
type sweepScanDest struct {
	sweep        domain.SweepRecord
	errorMessage *string
}

// destinations returns the slice of pointers for Scan operations.
func (d *sweepScanDest) destinations() []interface{} {
	return []interface{}{
		&d.sweep.ID, &d.sweep.BusinessID, &d.sweep.Status, &d.sweep.ReviewsChecked, &d.sweep.ReviewsVerified,
		&d.sweep.ReviewsQueued, &d.sweep.CandidatesFetched, &d.errorMessage, &d.sweep.StartedAt, &d.sweep.CompletedAt,
	}
}

// finalize performs post-scan processing for nullable string fields.
func (d *sweepScanDest) finalize() *domain.SweepRecord {
	if d.errorMessage != nil {
		d.sweep.ErrorMessage = *d.errorMessage
	}
	return &d.sweep
}

// scanSweepRecord scans a single row into a SweepRecord.
func scanSweepRecord(row pgx.Row) (*domain.SweepRecord, error) {
	var dest sweepScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanSweepRecordFromRows scans the current row from pgx.Rows into a SweepRecord.
func scanSweepRecordFromRows(rows pgx.Rows) (*domain.SweepRecord, error) {
	var dest sweepScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

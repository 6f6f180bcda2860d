package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// SweepRepository handles verification sweep run records.
type SweepRepository interface {
	// Create inserts a new sweep record, typically with status pending or running.
	// Returns domain.ErrAlreadyExists if a record with the same ID already exists.
	Create(ctx context.Context, sweep *domain.SweepRecord) error

	// Get retrieves a sweep record by its ID.
	// Returns domain.ErrNotFound if no matching record exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.SweepRecord, error)

	// Complete marks a sweep as finished with the given terminal status and
	// result counters, setting completed_at.
	// Returns domain.ErrNotFound if no matching record exists.
	Complete(ctx context.Context, id uuid.UUID, status domain.SweepStatus, checked, verified, queued, fetched int) error

	// Fail marks a sweep as failed with an error message, setting completed_at.
	// Returns domain.ErrNotFound if no matching record exists.
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error

	// ListByBusiness retrieves recent sweep records for a business, newest first.
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*domain.SweepRecord, error)
}

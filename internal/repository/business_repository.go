package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// BusinessRepository handles business persistence and feed connection management.
type BusinessRepository interface {
	// Create inserts a new business.
	// The business must have a valid ID, AccountID, and Name.
	// Returns domain.ErrAlreadyExists if a business with the same ID already exists.
	Create(ctx context.Context, business *domain.Business) error

	// Get retrieves a business by its ID.
	// Returns domain.ErrNotFound if no matching business exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.Business, error)

	// Update persists changes to a business's name, feed identifiers, and
	// sweep flag. Returns domain.ErrNotFound if no matching business exists.
	Update(ctx context.Context, business *domain.Business) error

	// List retrieves businesses matching the filter criteria.
	// Returns the matching businesses and total count for pagination.
	List(ctx context.Context, filter BusinessFilter) ([]*domain.Business, int64, error)

	// ListSweepEnabled retrieves businesses with sweeps enabled and at least
	// one connected feed, paged by limit/offset ordered by creation time.
	// Used by the scheduled sweep workflow to partition work.
	ListSweepEnabled(ctx context.Context, limit, offset int) ([]*domain.Business, error)
}

// BusinessFilter specifies criteria for listing businesses.
type BusinessFilter struct {
	// AccountID filters by owning account (required for tenant isolation).
	AccountID string

	// SweepEnabled filters by the sweep flag when non-nil.
	SweepEnabled *bool

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks if the filter has valid values and sets defaults.
// Returns domain.ErrInvalidInput if AccountID is empty.
func (f *BusinessFilter) Validate() error {
	if f.AccountID == "" {
		return domain.NewValidationError("account_id", "account ID is required")
	}

	applyPaginationDefaults(&f.Limit, &f.Offset)

	return nil
}

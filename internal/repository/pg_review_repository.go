package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// reviewColumns is the canonical column list for submitted_reviews queries.
const reviewColumns = `id, business_id, reviewer_name, review_text, rating, submitted_at,
		status, matched_external_id, matched_feed, match_score, match_confidence,
		candidate_external_id, resolved_by, verified_at, created_at, updated_at`

// Compile-time interface verification.
var _ ReviewRepository = (*PgReviewRepository)(nil)

// PgReviewRepository is a PostgreSQL implementation of ReviewRepository.
type PgReviewRepository struct {
	db DBTX
}

// NewPgReviewRepository creates a new PostgreSQL review repository.
func NewPgReviewRepository(db DBTX) *PgReviewRepository {
	return &PgReviewRepository{db: db}
}

// Create inserts a new submitted review.
func (r *PgReviewRepository) Create(ctx context.Context, review *domain.SubmittedReview) error {
	if review == nil {
		return domain.NewValidationError("review", "review cannot be nil")
	}
	if review.ID == uuid.Nil {
		return domain.NewValidationError("id", "review ID is required")
	}
	if review.BusinessID == uuid.Nil {
		return domain.NewValidationError("business_id", "business ID is required")
	}
	if review.ReviewerName == "" {
		return domain.NewValidationError("reviewer_name", "reviewer name is required")
	}
	if review.ReviewText == "" {
		return domain.NewValidationError("review_text", "review text is required")
	}
	if review.SubmittedAt.IsZero() {
		return domain.NewValidationError("submitted_at", "submission time is required")
	}

	query := `
		INSERT INTO submitted_reviews (
			id, business_id, reviewer_name, review_text, rating, submitted_at,
			status, matched_external_id, matched_feed, match_score, match_confidence,
			candidate_external_id, resolved_by, verified_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16
		)`

	_, err := r.db.Exec(ctx, query,
		review.ID, review.BusinessID, review.ReviewerName, review.ReviewText, review.Rating, review.SubmittedAt,
		review.Status, nullString(review.MatchedExternalID), nullString(string(review.MatchedFeed)), review.MatchScore, nullString(review.MatchConfidence),
		nullString(review.CandidateExternalID), nullString(review.ResolvedBy), review.VerifiedAt, review.CreatedAt, review.UpdatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("review", review.ID.String())
		}
		if isPgForeignKeyViolation(err) {
			return domain.NewNotFoundError("business", review.BusinessID.String())
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// Get retrieves a submitted review by its ID.
func (r *PgReviewRepository) Get(ctx context.Context, id uuid.UUID) (*domain.SubmittedReview, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM submitted_reviews
		WHERE id = $1`, reviewColumns)

	row := r.db.QueryRow(ctx, query, id)
	review, err := scanSubmittedReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("review", id.String())
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// List retrieves submitted reviews matching the filter criteria.
func (r *PgReviewRepository) List(ctx context.Context, filter ReviewFilter) ([]*domain.SubmittedReview, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	// Build dynamic WHERE clause
	conditions := []string{"business_id = $1"}
	args := []interface{}{filter.BusinessID}
	argIndex := 2

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, s)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.SubmittedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at > $%d", argIndex))
		args = append(args, *filter.SubmittedAfter)
		argIndex++
	}

	if filter.SubmittedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at < $%d", argIndex))
		args = append(args, *filter.SubmittedBefore)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count total matching records
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM submitted_reviews WHERE %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	// Query with pagination
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM submitted_reviews
		WHERE %s
		ORDER BY submitted_at DESC
		LIMIT $%d OFFSET $%d`,
		reviewColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*domain.SubmittedReview, 0, filter.Limit)
	for rows.Next() {
		review, err := scanSubmittedReviewFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, totalCount, nil
}

// ListUnverified retrieves up to limit unverified reviews for a business, oldest first.
func (r *PgReviewRepository) ListUnverified(ctx context.Context, businessID uuid.UUID, limit int) ([]*domain.SubmittedReview, error) {
	if businessID == uuid.Nil {
		return nil, domain.NewValidationError("business_id", "business ID is required")
	}
	offset := 0
	applyPaginationDefaults(&limit, &offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM submitted_reviews
		WHERE business_id = $1 AND status = $2
		ORDER BY submitted_at ASC
		LIMIT $3`, reviewColumns)

	rows, err := r.db.Query(ctx, query, businessID, domain.VerificationStatusUnverified, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unverified reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.SubmittedReview
	for rows.Next() {
		review, err := scanSubmittedReviewFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unverified reviews: %w", err)
	}

	return reviews, nil
}

// MarkVerified transitions a review from unverified to verified.
// The WHERE clause includes the expected current status so a review that has
// already been resolved (by another sweep run or a manual decision) is never
// overwritten.
func (r *PgReviewRepository) MarkVerified(ctx context.Context, id uuid.UUID, externalID string, feed domain.FeedType, score float64, confidence string) error {
	if externalID == "" {
		return domain.NewValidationError("external_id", "matched external review ID is required")
	}

	query := `
		UPDATE submitted_reviews
		SET status = $1,
			matched_external_id = $2,
			matched_feed = $3,
			match_score = $4,
			match_confidence = $5,
			verified_at = $6,
			updated_at = $6
		WHERE id = $7 AND status = $8`

	result, err := r.db.Exec(ctx, query,
		domain.VerificationStatusVerified,
		externalID, string(feed), score, confidence,
		time.Now().UTC(),
		id, domain.VerificationStatusUnverified,
	)
	if err != nil {
		return fmt.Errorf("failed to mark review verified: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.transitionConflict(ctx, id, domain.VerificationStatusVerified)
	}

	return nil
}

// QueueManualReview transitions a review from unverified to pending_manual.
func (r *PgReviewRepository) QueueManualReview(ctx context.Context, id uuid.UUID, candidateExternalID string, score float64, confidence string) error {
	query := `
		UPDATE submitted_reviews
		SET status = $1,
			candidate_external_id = $2,
			match_score = $3,
			match_confidence = $4,
			updated_at = $5
		WHERE id = $6 AND status = $7`

	result, err := r.db.Exec(ctx, query,
		domain.VerificationStatusPendingManual,
		nullString(candidateExternalID), score, confidence,
		time.Now().UTC(),
		id, domain.VerificationStatusUnverified,
	)
	if err != nil {
		return fmt.Errorf("failed to queue review for manual verification: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.transitionConflict(ctx, id, domain.VerificationStatusPendingManual)
	}

	return nil
}

// ResolveManual applies an adjudicator's decision to a pending_manual review.
func (r *PgReviewRepository) ResolveManual(ctx context.Context, id uuid.UUID, action domain.ResolutionAction, resolvedBy string) error {
	if resolvedBy == "" {
		return domain.NewValidationError("resolved_by", "resolver identity is required")
	}

	var target domain.VerificationStatus
	switch action {
	case domain.ResolutionApprove:
		target = domain.VerificationStatusVerified
	case domain.ResolutionReject:
		target = domain.VerificationStatusRejected
	default:
		return domain.NewValidationError("action", fmt.Sprintf("unknown resolution action: %s", action))
	}

	now := time.Now().UTC()
	var verifiedAt *time.Time
	if target == domain.VerificationStatusVerified {
		verifiedAt = &now
	}

	query := `
		UPDATE submitted_reviews
		SET status = $1,
			resolved_by = $2,
			verified_at = COALESCE($3, verified_at),
			updated_at = $4
		WHERE id = $5 AND status = $6`

	result, err := r.db.Exec(ctx, query,
		target, resolvedBy, verifiedAt, now,
		id, domain.VerificationStatusPendingManual,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.transitionConflict(ctx, id, target)
	}

	return nil
}

// CountByStatus returns per-status review counts for a business.
func (r *PgReviewRepository) CountByStatus(ctx context.Context, businessID uuid.UUID) (map[domain.VerificationStatus]int64, error) {
	if businessID == uuid.Nil {
		return nil, domain.NewValidationError("business_id", "business ID is required")
	}

	query := `
		SELECT status, COUNT(*)
		FROM submitted_reviews
		WHERE business_id = $1
		GROUP BY status`

	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.VerificationStatus]int64)
	for rows.Next() {
		var status domain.VerificationStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// transitionConflict distinguishes a missing review from one whose status has
// already moved past the expected state. Called after a conditional UPDATE
// affected zero rows.
func (r *PgReviewRepository) transitionConflict(ctx context.Context, id uuid.UUID, target domain.VerificationStatus) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return domain.NewInvalidTransitionError(id.String(), current.Status, target)
}

// submittedReviewScanDest holds the destination pointers for scanning a SubmittedReview row.
type submittedReviewScanDest struct {
	review              domain.SubmittedReview
	matchedExternalID   *string
	matchedFeed         *string
	matchConfidence     *string
	candidateExternalID *string
	resolvedBy          *string
}

// destinations returns the slice of pointers for Scan operations.
func (d *submittedReviewScanDest) destinations() []interface{} {
	return []interface{}{
		&d.review.ID, &d.review.BusinessID, &d.review.ReviewerName, &d.review.ReviewText, &d.review.Rating, &d.review.SubmittedAt,
		&d.review.Status, &d.matchedExternalID, &d.matchedFeed, &d.review.MatchScore, &d.matchConfidence,
		&d.candidateExternalID, &d.resolvedBy, &d.review.VerifiedAt, &d.review.CreatedAt, &d.review.UpdatedAt,
	}
}

// finalize performs post-scan processing for nullable string fields.
func (d *submittedReviewScanDest) finalize() *domain.SubmittedReview {
	if d.matchedExternalID != nil {
		d.review.MatchedExternalID = *d.matchedExternalID
	}
	if d.matchedFeed != nil {
		d.review.MatchedFeed = domain.FeedType(*d.matchedFeed)
	}
	if d.matchConfidence != nil {
		d.review.MatchConfidence = *d.matchConfidence
	}
	if d.candidateExternalID != nil {
		d.review.CandidateExternalID = *d.candidateExternalID
	}
	if d.resolvedBy != nil {
		d.review.ResolvedBy = *d.resolvedBy
	}
	return &d.review
}

// scanSubmittedReview scans a single row into a SubmittedReview.
func scanSubmittedReview(row pgx.Row) (*domain.SubmittedReview, error) {
	var dest submittedReviewScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanSubmittedReviewFromRows scans the current row from pgx.Rows into a SubmittedReview.
func scanSubmittedReviewFromRows(rows pgx.Rows) (*domain.SubmittedReview, error) {
	var dest submittedReviewScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

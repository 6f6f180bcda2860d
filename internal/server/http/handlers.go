package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/repository"
	"github.com/reviewproof/review-verification-service/internal/temporal"
)

// Pagination and validation constants.
const (
	defaultPageSize    = 50
	maxPageSize        = 100
	maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies
)

// createBusinessRequest is the JSON request body for registering a business.
type createBusinessRequest struct {
	AccountID      string `json:"account_id" validate:"required,max=255"`
	Name           string `json:"name" validate:"required,max=500"`
	GooglePlaceID  string `json:"google_place_id,omitempty" validate:"max=255"`
	YelpBusinessID string `json:"yelp_business_id,omitempty" validate:"max=255"`
	SweepEnabled   bool   `json:"sweep_enabled,omitempty"`
}

// submitReviewRequest is the JSON request body for submitting a review.
type submitReviewRequest struct {
	ReviewerName string  `json:"reviewer_name" validate:"required,max=255"`
	ReviewText   string  `json:"review_text" validate:"required,max=10000"`
	Rating       int     `json:"rating,omitempty" validate:"min=0,max=5"`
	SubmittedAt  *string `json:"submitted_at,omitempty"`
}

// resolveReviewRequest is the JSON request body for resolving a queued review.
type resolveReviewRequest struct {
	Action     string `json:"action" validate:"required,oneof=approve reject"`
	ResolvedBy string `json:"resolved_by" validate:"required,max=255"`
}

// decodeRequest reads and unmarshals a JSON request body into dst, then runs
// struct validation. A false return means an error response was already written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s failed validation on '%s'", strings.ToLower(ve.Field()), ve.Tag()))
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return false
	}
	return true
}

// createBusiness handles POST /api/v1/businesses.
func (s *Server) createBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createBusinessRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	now := time.Now()
	business := &domain.Business{
		ID:             uuid.New(),
		AccountID:      req.AccountID,
		Name:           strings.TrimSpace(req.Name),
		GooglePlaceID:  req.GooglePlaceID,
		YelpBusinessID: req.YelpBusinessID,
		SweepEnabled:   req.SweepEnabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if business.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainBusinessToResponse(business))
}

// getBusiness handles GET /api/v1/businesses/{businessID}.
func (s *Server) getBusiness(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseUUID(w, chi.URLParam(r, "businessID"), "business_id")
	if !ok {
		return
	}

	business, err := s.businessRepo.Get(r.Context(), businessID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := businessDetailResponse{businessResponse: domainBusinessToResponse(business)}

	// Per-status counts are informational; the detail stays useful if the
	// aggregate query fails.
	counts, err := s.reviewRepo.CountByStatus(r.Context(), businessID)
	if err != nil {
		s.logger.Warn().Err(err).Str("businessID", businessID.String()).Msg("failed to count reviews by status")
	} else {
		resp.ReviewCounts = make(map[string]int64, len(counts))
		for status, count := range counts {
			resp.ReviewCounts[string(status)] = count
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// listBusinesses handles GET /api/v1/businesses.
// The account_id query parameter is required for tenant isolation.
func (s *Server) listBusinesses(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaginationParams(r)

	filter := repository.BusinessFilter{
		AccountID: r.URL.Query().Get("account_id"),
		Limit:     limit,
		Offset:    offset,
	}
	if sweepParam := r.URL.Query().Get("sweep_enabled"); sweepParam != "" {
		enabled, parseErr := strconv.ParseBool(sweepParam)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "sweep_enabled must be a boolean")
			return
		}
		filter.SweepEnabled = &enabled
	}
	if err := filter.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	businesses, totalCount, err := s.businessRepo.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]businessResponse, len(businesses))
	for i, b := range businesses {
		items[i] = domainBusinessToResponse(b)
	}

	writeJSON(w, http.StatusOK, listBusinessesResponse{
		Businesses:    items,
		NextPageToken: encodeHTTPPageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// submitReview handles POST /api/v1/businesses/{businessID}/reviews.
// It records a customer-submitted review with status unverified; a later
// sweep evaluates it against the business's connected feeds.
func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	businessID, ok := parseUUID(w, chi.URLParam(r, "businessID"), "business_id")
	if !ok {
		return
	}

	var req submitReviewRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	now := time.Now()
	submittedAt := now
	if req.SubmittedAt != nil {
		t, parseErr := time.Parse(time.RFC3339, *req.SubmittedAt)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid submitted_at format: expected RFC3339")
			return
		}
		submittedAt = t
	}

	// Business must exist before accepting reviews against it.
	if _, err := s.businessRepo.Get(ctx, businessID); err != nil {
		writeDomainError(w, err)
		return
	}

	review := &domain.SubmittedReview{
		ID:           uuid.New(),
		BusinessID:   businessID,
		ReviewerName: strings.TrimSpace(req.ReviewerName),
		ReviewText:   strings.TrimSpace(req.ReviewText),
		Rating:       req.Rating,
		SubmittedAt:  submittedAt,
		Status:       domain.VerificationStatusUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		writeDomainError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordReviewSubmitted()
	}

	writeJSON(w, http.StatusCreated, domainReviewToResponse(review))
}

// getReview handles GET /api/v1/reviews/{reviewID}.
func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	review, err := s.reviewRepo.Get(r.Context(), reviewID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewToResponse(review))
}

// listBusinessReviews handles GET /api/v1/businesses/{businessID}/reviews.
func (s *Server) listBusinessReviews(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseUUID(w, chi.URLParam(r, "businessID"), "business_id")
	if !ok {
		return
	}

	limit, offset := parsePaginationParams(r)

	filter := repository.ReviewFilter{
		BusinessID: businessID,
		Limit:      limit,
		Offset:     offset,
	}

	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		filter.Status = []domain.VerificationStatus{domain.VerificationStatus(statusParam)}
	}
	if after := r.URL.Query().Get("submitted_after"); after != "" {
		t, parseErr := time.Parse(time.RFC3339, after)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid submitted_after format: expected RFC3339")
			return
		}
		filter.SubmittedAfter = &t
	}
	if before := r.URL.Query().Get("submitted_before"); before != "" {
		t, parseErr := time.Parse(time.RFC3339, before)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid submitted_before format: expected RFC3339")
			return
		}
		filter.SubmittedBefore = &t
	}
	if err := filter.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	reviews, totalCount, err := s.reviewRepo.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		items[i] = domainReviewToResponse(rv)
	}

	writeJSON(w, http.StatusOK, listReviewsResponse{
		Reviews:       items,
		NextPageToken: encodeHTTPPageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// listManualQueue handles GET /api/v1/manual-queue.
// It returns reviews awaiting human adjudication for a business.
func (s *Server) listManualQueue(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseUUID(w, r.URL.Query().Get("business_id"), "business_id")
	if !ok {
		return
	}

	limit, offset := parsePaginationParams(r)

	filter := repository.ReviewFilter{
		BusinessID: businessID,
		Status:     []domain.VerificationStatus{domain.VerificationStatusPendingManual},
		Limit:      limit,
		Offset:     offset,
	}
	if err := filter.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	reviews, totalCount, err := s.reviewRepo.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]reviewResponse, len(reviews))
	for i, rv := range reviews {
		items[i] = domainReviewToResponse(rv)
	}

	writeJSON(w, http.StatusOK, listReviewsResponse{
		Reviews:       items,
		NextPageToken: encodeHTTPPageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// resolveReview handles POST /api/v1/reviews/{reviewID}/resolve.
// It applies a human adjudicator's approve or reject decision to a review
// in the manual verification queue.
func (s *Server) resolveReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	var req resolveReviewRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	action := domain.ResolutionAction(req.Action)
	if err := s.reviewRepo.ResolveManual(ctx, reviewID, action, req.ResolvedBy); err != nil {
		writeDomainError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordManualResolution(req.Action)
	}

	review, err := s.reviewRepo.Get(ctx, reviewID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Best-effort outcome event; resolution already persisted.
	if s.publisher != nil {
		s.publishResolutionOutcome(review)
	}

	writeJSON(w, http.StatusOK, domainReviewToResponse(review))
}

// publishResolutionOutcome emits the lifecycle event for a manually resolved
// review. Publish failures are logged, not surfaced to the API caller.
func (s *Server) publishResolutionOutcome(review *domain.SubmittedReview) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch review.Status {
	case domain.VerificationStatusVerified:
		err = s.publisher.PublishReviewVerified(ctx, review)
	case domain.VerificationStatusRejected:
		err = s.publisher.PublishReviewRejected(ctx, review)
	default:
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("review_id", review.ID.String()).
			Str("status", string(review.Status)).
			Msg("failed to publish resolution outcome event")
	}
}

// startSweep handles POST /api/v1/businesses/{businessID}/sweeps.
// It triggers an on-demand verification sweep for a single business.
func (s *Server) startSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	businessID, ok := parseUUID(w, chi.URLParam(r, "businessID"), "business_id")
	if !ok {
		return
	}

	business, err := s.businessRepo.Get(ctx, businessID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !business.HasFeed(domain.FeedTypeGooglePlaces) && !business.HasFeed(domain.FeedTypeYelp) {
		writeDomainError(w, domain.ErrFeedNotConnected)
		return
	}

	input := temporal.SweepWorkflowInput{
		BusinessID: &businessID,
	}
	workflowID, runID, err := s.workflowClient.StartSweepWorkflow(ctx, businessID, s.workflowFunc, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, startSweepResponse{
		WorkflowID: workflowID,
		RunID:      runID,
		BusinessID: businessID.String(),
		Status:     string(domain.SweepStatusPending),
		StartedAt:  time.Now(),
		Message:    "verification sweep started",
	})
}

// listSweeps handles GET /api/v1/businesses/{businessID}/sweeps.
func (s *Server) listSweeps(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseUUID(w, chi.URLParam(r, "businessID"), "business_id")
	if !ok {
		return
	}

	limit, offset := parsePaginationParams(r)

	sweeps, err := s.sweepRepo.ListByBusiness(r.Context(), businessID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]sweepResponse, len(sweeps))
	for i, sw := range sweeps {
		items[i] = domainSweepToResponse(sw)
	}

	// ListByBusiness does not report a total count; a full page implies
	// there may be more.
	nextToken := ""
	if len(sweeps) == limit {
		nextToken = base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset + limit)))
	}

	writeJSON(w, http.StatusOK, listSweepsResponse{
		Sweeps:        items,
		NextPageToken: nextToken,
	})
}

// writeDomainError maps domain and temporal errors to appropriate HTTP status codes
// and writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "review is not in a state that allows this operation")
	case errors.Is(err, domain.ErrFeedNotConnected):
		writeError(w, http.StatusConflict, "business has no connected review feed")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, domain.ErrCancelled):
		writeError(w, http.StatusConflict, "operation cancelled")
	case errors.Is(err, temporal.ErrWorkflowNotFound):
		writeError(w, http.StatusNotFound, "workflow not found")
	case errors.Is(err, temporal.ErrWorkflowAlreadyStarted):
		writeError(w, http.StatusConflict, "workflow already started")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a UUID from a string, writing a 400 error response if invalid.
// Returns the parsed UUID and true on success, or uuid.Nil and false on failure.
// The parse error details are not included to avoid echoing potentially malicious input.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts page_size and page_token from query parameters.
// It applies default and maximum bounds to the page size.
func parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if pageSizeStr := r.URL.Query().Get("page_size"); pageSizeStr != "" {
		if parsed, err := strconv.Atoi(pageSizeStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if pageToken := r.URL.Query().Get("page_token"); pageToken != "" {
		decoded, err := base64.StdEncoding.DecodeString(pageToken)
		if err == nil {
			if parsed, parseErr := strconv.Atoi(string(decoded)); parseErr == nil && parsed > 0 {
				offset = parsed
			}
		}
	}

	return limit, offset
}

// encodeHTTPPageToken encodes the next offset as a base64 page token.
// Returns an empty string if there are no more results.
func encodeHTTPPageToken(offset, limit, totalCount int) string {
	nextOffset := offset + limit
	if nextOffset < totalCount {
		return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(nextOffset)))
	}
	return ""
}

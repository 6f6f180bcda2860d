package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for published verification events.
const (
	EventTypeReviewVerified    = "review.verified"
	EventTypeReviewQueued      = "review.manual_queued"
	EventTypeReviewRejected    = "review.rejected"
	EventTypeSweepCompleted    = "sweep.completed"
	EventTypeSweepFailed       = "sweep.failed"
	EventTypeReviewSubmitted   = "review.submitted"
	EventTypeBusinessConnected = "business.connected"
)

// Event is the envelope published to the event stream for each
// verification-lifecycle change.
type Event struct {
	EventID       string          `json:"event_id"`
	EventVersion  int             `json:"event_version"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewEvent creates a new event with the given parameters.
// The payload is JSON-serialized automatically.
func NewEvent(eventType, aggregateID, aggregateType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.New().String(),
		EventVersion:  1,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payloadBytes,
		CreatedAt:     time.Now(),
	}, nil
}

// ReviewVerifiedPayload is the payload for review.verified events.
type ReviewVerifiedPayload struct {
	ReviewID         uuid.UUID `json:"review_id"`
	BusinessID       uuid.UUID `json:"business_id"`
	ExternalReviewID string    `json:"external_review_id"`
	Feed             FeedType  `json:"feed"`
	Score            float64   `json:"score"`
	Confidence       string    `json:"confidence"`
	ResolvedBy       string    `json:"resolved_by,omitempty"`
	ManuallyResolved bool      `json:"manually_resolved"`
}

// ReviewQueuedPayload is the payload for review.manual_queued events.
type ReviewQueuedPayload struct {
	ReviewID            uuid.UUID `json:"review_id"`
	BusinessID          uuid.UUID `json:"business_id"`
	CandidateExternalID string    `json:"candidate_external_id,omitempty"`
	Score               float64   `json:"score"`
}

// ReviewRejectedPayload is the payload for review.rejected events.
type ReviewRejectedPayload struct {
	ReviewID   uuid.UUID `json:"review_id"`
	BusinessID uuid.UUID `json:"business_id"`
	ResolvedBy string    `json:"resolved_by"`
	Reason     string    `json:"reason,omitempty"`
}

// SweepCompletedPayload is the payload for sweep.completed events.
type SweepCompletedPayload struct {
	SweepID           uuid.UUID     `json:"sweep_id"`
	BusinessID        uuid.UUID     `json:"business_id"`
	ReviewsChecked    int           `json:"reviews_checked"`
	ReviewsVerified   int           `json:"reviews_verified"`
	ReviewsQueued     int           `json:"reviews_queued"`
	CandidatesFetched int           `json:"candidates_fetched"`
	Duration          time.Duration `json:"duration_ns"`
}

// SweepFailedPayload is the payload for sweep.failed events.
type SweepFailedPayload struct {
	SweepID    uuid.UUID `json:"sweep_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Error      string    `json:"error"`
	Phase      string    `json:"phase"`
}

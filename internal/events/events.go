// Package events publishes verification lifecycle events to Kafka.
//
// Events are wrapped in a JSON envelope carrying an event ID, type, and
// occurrence timestamp, and are keyed by business ID so all events for a
// business land on the same partition. Publishing is disabled by default;
// when disabled a no-op publisher is used so callers never branch on
// configuration.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the verification service.
const (
	// EventTypeReviewVerified is published when a submitted review is
	// matched against an external candidate, automatically or by a human.
	EventTypeReviewVerified = "review.verified"

	// EventTypeReviewMatchPending is published when a review lands in the
	// manual verification queue with an ambiguous best candidate.
	EventTypeReviewMatchPending = "review.match_pending"

	// EventTypeReviewRejected is published when a human adjudicator
	// rejects a queued review.
	EventTypeReviewRejected = "review.rejected"

	// EventTypeSweepCompleted is published when a verification sweep run
	// over a business finishes, successfully or not.
	EventTypeSweepCompleted = "sweep.completed"
)

// Envelope is the wire format for all published events.
type Envelope struct {
	// EventID uniquely identifies this event instance.
	EventID string `json:"event_id"`

	// EventType is one of the EventType* constants.
	EventType string `json:"event_type"`

	// OccurredAt is when the event was produced, in UTC.
	OccurredAt time.Time `json:"occurred_at"`

	// Payload is the type-specific event body.
	Payload json.RawMessage `json:"payload"`
}

// newEnvelope wraps a payload in an Envelope with a fresh event ID.
func newEnvelope(eventType string, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// ReviewVerifiedPayload is the body of a review.verified event.
type ReviewVerifiedPayload struct {
	ReviewID          string     `json:"review_id"`
	BusinessID        string     `json:"business_id"`
	MatchedExternalID string     `json:"matched_external_id"`
	MatchedFeed       string     `json:"matched_feed,omitempty"`
	MatchScore        *float64   `json:"match_score,omitempty"`
	MatchConfidence   string     `json:"match_confidence,omitempty"`
	ResolvedBy        string     `json:"resolved_by,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}

// ReviewMatchPendingPayload is the body of a review.match_pending event.
type ReviewMatchPendingPayload struct {
	ReviewID            string   `json:"review_id"`
	BusinessID          string   `json:"business_id"`
	CandidateExternalID string   `json:"candidate_external_id,omitempty"`
	MatchScore          *float64 `json:"match_score,omitempty"`
	MatchConfidence     string   `json:"match_confidence,omitempty"`
}

// ReviewRejectedPayload is the body of a review.rejected event.
type ReviewRejectedPayload struct {
	ReviewID   string `json:"review_id"`
	BusinessID string `json:"business_id"`
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// SweepCompletedPayload is the body of a sweep.completed event.
type SweepCompletedPayload struct {
	SweepID           string     `json:"sweep_id"`
	BusinessID        string     `json:"business_id"`
	Status            string     `json:"status"`
	ReviewsChecked    int        `json:"reviews_checked"`
	ReviewsVerified   int        `json:"reviews_verified"`
	ReviewsQueued     int        `json:"reviews_queued"`
	CandidatesFetched int        `json:"candidates_fetched"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

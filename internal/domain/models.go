// Package domain provides domain models and business logic for the Review Verification Service.
package domain

// VerificationStatus represents the lifecycle states of a submitted review.
// These values must match the database enum verification_status.
type VerificationStatus string

const (
	VerificationStatusUnverified    VerificationStatus = "unverified"
	VerificationStatusVerified      VerificationStatus = "verified"
	VerificationStatusPendingManual VerificationStatus = "pending_manual"
	VerificationStatusRejected      VerificationStatus = "rejected"
)

// IsTerminal returns true if the status represents a final state that will not change.
func (s VerificationStatus) IsTerminal() bool {
	switch s {
	case VerificationStatusVerified, VerificationStatusRejected:
		return true
	default:
		return false
	}
}

// validStatusTransitions defines the allowed verification status transitions.
// Automated sweeps may only move a review out of unverified; manual resolution
// may only move it out of pending_manual. Terminal states never transition.
var validStatusTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationStatusUnverified:    {VerificationStatusVerified, VerificationStatusPendingManual},
	VerificationStatusPendingManual: {VerificationStatusVerified, VerificationStatusRejected},
	VerificationStatusVerified:      {},
	VerificationStatusRejected:      {},
}

// CanTransitionTo returns true if the status may legally move to the target state.
func (s VerificationStatus) CanTransitionTo(target VerificationStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SweepStatus represents the state of a verification sweep for one business.
// These values must match the database enum sweep_status.
type SweepStatus string

const (
	SweepStatusPending   SweepStatus = "pending"
	SweepStatusRunning   SweepStatus = "running"
	SweepStatusCompleted SweepStatus = "completed"
	SweepStatusPartial   SweepStatus = "partial"
	SweepStatusFailed    SweepStatus = "failed"
)

// FeedType represents the external review feed that supplied candidate reviews.
// These values must match the database enum feed_type.
type FeedType string

const (
	FeedTypeGooglePlaces FeedType = "google_places"
	FeedTypeYelp         FeedType = "yelp"
)

// ResolutionAction represents a human adjudicator's decision on a review
// that was queued for manual verification.
type ResolutionAction string

const (
	ResolutionApprove ResolutionAction = "approve"
	ResolutionReject  ResolutionAction = "reject"
)

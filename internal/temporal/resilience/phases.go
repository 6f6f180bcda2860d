package resilience

import "time"

// PhaseCriticality determines how the workflow handles exhausted retries
// for a given phase.
type PhaseCriticality int

const (
	// Critical phases cause the business's sweep to fail when retries are exhausted.
	Critical PhaseCriticality = iota

	// Important phases degrade to partial results when retries are exhausted.
	// The sweep continues with what it has.
	Important

	// NonCritical phases are silently skipped when retries are exhausted.
	// The sweep continues without marking the run as degraded.
	NonCritical
)

// String returns a human-readable name for the criticality level.
func (c PhaseCriticality) String() string {
	switch c {
	case Critical:
		return "critical"
	case Important:
		return "important"
	case NonCritical:
		return "non-critical"
	default:
		return "unknown"
	}
}

// PhaseConfig holds the retry and criticality configuration for a single
// workflow phase.
type PhaseConfig struct {
	// Name is the phase identifier (e.g. "fetching_candidates", "persisting").
	Name string

	// Criticality determines behaviour when retries are exhausted.
	Criticality PhaseCriticality

	// MaxRetries is the maximum number of retry attempts for transient errors.
	MaxRetries int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// BackoffMultiplier controls exponential growth of the backoff interval.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff interval.
	MaxBackoff time.Duration
}

// backoffForAttempt computes the backoff duration for the given attempt (0-indexed).
func (p PhaseConfig) backoffForAttempt(attempt int) time.Duration {
	backoff := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * p.BackoffMultiplier)
		if backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
			break
		}
	}
	return backoff
}

// DefaultPhaseConfigs returns the standard phase configurations for the
// verification sweep workflow.
//
// Candidate fetching is Important rather than Critical: a feed outage should
// cost one business its snapshot for this run, not fail the whole sweep.
// Persistence is Critical because a sweep whose decisions were never written
// has silently done nothing. Event publishing is NonCritical by contract.
func DefaultPhaseConfigs() map[string]PhaseConfig {
	return map[string]PhaseConfig{
		"listing_reviews": {
			Name:              "listing_reviews",
			Criticality:       Critical,
			MaxRetries:        3,
			InitialBackoff:    2 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        30 * time.Second,
		},
		"fetching_candidates": {
			Name:              "fetching_candidates",
			Criticality:       Important,
			MaxRetries:        2,
			InitialBackoff:    5 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        60 * time.Second,
		},
		"matching": {
			Name:              "matching",
			Criticality:       Critical,
			MaxRetries:        1,
			InitialBackoff:    1 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        10 * time.Second,
		},
		"persisting": {
			Name:              "persisting",
			Criticality:       Critical,
			MaxRetries:        3,
			InitialBackoff:    2 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        30 * time.Second,
		},
		"publishing_events": {
			Name:              "publishing_events",
			Criticality:       NonCritical,
			MaxRetries:        1,
			InitialBackoff:    2 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        15 * time.Second,
		},
	}
}

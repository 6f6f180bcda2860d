// Package resilience provides workflow-level error classification and phase
// execution with retry logic for the verification sweep Temporal workflows.
package resilience

import (
	"errors"
	"net/http"
	"strings"

	"go.temporal.io/sdk/temporal"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// ErrorCategory classifies errors into workflow-level categories that
// determine the retry and degradation behaviour of each phase.
type ErrorCategory int

const (
	// Transient errors are temporary failures that should be retried with
	// exponential backoff (e.g. network timeouts, feed rate limits).
	Transient ErrorCategory = iota

	// Permanent errors are non-recoverable. The workflow should either fail
	// (for critical phases) or degrade/skip (for non-critical phases).
	Permanent
)

// String returns a human-readable name for the category.
func (c ErrorCategory) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// transientSubstrings are error message substrings that indicate a transient failure
// when the error is not already classified by a structured error type.
var transientSubstrings = []string{
	"timeout",
	"network",
	"connection refused",
	"connection reset",
	"rate limit",
	"rate_limit",
	"server_error",
	"service unavailable",
	"temporary",
	"deadline exceeded",
	"i/o timeout",
}

// permanentSubstrings indicate a permanent failure.
// Substrings are chosen to avoid false positives: "unauthorized" instead of
// bare "auth", "invalid_input"/"invalid request"/"invalid parameter" instead
// of bare "invalid".
var permanentSubstrings = []string{
	"unauthorized",
	"authentication failed",
	"authorization failed",
	"forbidden",
	"bad_request",
	"bad request",
	"not_found",
	"not found",
	"invalid_input",
	"invalid request",
	"invalid parameter",
	"validation",
}

// Classify inspects err and returns its ErrorCategory.
//
// Classification priority:
//  1. Nil errors — Permanent (no-op; callers should not retry nil)
//  2. Structured feed errors (domain.ExternalAPIError) — uses StatusCode
//  3. Temporal ApplicationError — NonRetryable flag
//  4. Domain sentinel errors — ErrRateLimited, ErrInvalidInput, etc.
//  5. Error message substring matching (transient checked first for fail-safe bias)
//  6. Default: Transient (safer to retry than to fail)
func Classify(err error) ErrorCategory {
	if err == nil {
		return Permanent
	}

	// 1. Structured feed API errors carry the upstream status code.
	var apiErr *domain.ExternalAPIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return Transient
		case apiErr.StatusCode >= 500:
			return Transient
		case apiErr.StatusCode >= 400:
			return Permanent
		default:
			return Transient
		}
	}

	// 2. Check Temporal ApplicationError NonRetryable flag.
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.NonRetryable() {
		return Permanent
	}

	// 3. Check domain sentinel errors.
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrServiceUnavailable) {
		return Transient
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrFeedNotConnected) {
		return Permanent
	}

	// 4. Fall back to message substring matching.
	msg := strings.ToLower(err.Error())

	// Transient substrings checked before permanent for fail-safe bias:
	// if in doubt, retry is safer than giving up.
	for _, sub := range transientSubstrings {
		if strings.Contains(msg, sub) {
			return Transient
		}
	}

	for _, sub := range permanentSubstrings {
		if strings.Contains(msg, sub) {
			return Permanent
		}
	}

	// 5. Default: treat unknown errors as transient (safer to retry).
	return Transient
}

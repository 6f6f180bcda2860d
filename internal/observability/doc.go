// Package observability provides logging and metrics support for the
// review verification service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for sweeps, matching, and review feeds
//   - Context helpers for propagating observability data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("sweep_id", sweepID).Msg("sweep started")
//
// Add business context to a logger:
//
//	logger = observability.WithBusinessContext(logger, businessID, accountID)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("review_verification")
//
// Record metrics:
//
//	metrics.RecordSweepStarted()
//	metrics.RecordReviewVerified("google_places", 0.91)
//	metrics.RecordFeedRequest("yelp", "reviews", 0.25)
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithBusiness(ctx, businessID, accountID)
//
//	reqID := observability.RequestIDFromContext(ctx)
//	businessID, accountID := observability.BusinessFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - business_id: Business identifier
//   - account_id: Account owning the business
//   - sweep_id: Verification sweep identifier
//   - review_id: Submitted review identifier
//   - feed: Review feed (google_places, yelp)
//   - trace_id: Distributed trace identifier
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability

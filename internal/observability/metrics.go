package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the review verification service.
// Metrics are organized by subsystem: sweeps, reviews, matching, feeds, and
// events. All counters and histograms are registered via promauto for
// automatic registration with the default Prometheus registry.
type Metrics struct {
	// SweepsStarted counts the total number of verification sweeps initiated.
	SweepsStarted prometheus.Counter

	// SweepsCompleted counts the total number of sweeps that finished successfully.
	SweepsCompleted prometheus.Counter

	// SweepsFailed counts the total number of sweeps that ended in failure.
	SweepsFailed prometheus.Counter

	// SweepDuration observes the end-to-end duration of sweeps in seconds.
	SweepDuration prometheus.Histogram

	// BusinessesSwept observes the number of businesses processed per sweep run.
	BusinessesSwept prometheus.Histogram

	// ReviewsSubmitted counts submitted reviews accepted through the API.
	ReviewsSubmitted prometheus.Counter

	// ReviewsChecked counts unverified reviews evaluated during sweeps.
	ReviewsChecked prometheus.Counter

	// ReviewsVerified counts reviews auto-verified, labeled by feed.
	ReviewsVerified *prometheus.CounterVec

	// ReviewsQueued counts reviews routed to the manual review queue.
	ReviewsQueued prometheus.Counter

	// ManualResolutions counts manual queue resolutions, labeled by action.
	ManualResolutions *prometheus.CounterVec

	// MatchScore observes the distribution of best-match scores.
	MatchScore prometheus.Histogram

	// MatchesByConfidence counts scored matches, labeled by confidence band.
	MatchesByConfidence *prometheus.CounterVec

	// CandidatesScored counts external review candidates scored.
	CandidatesScored prometheus.Counter

	// FeedRequestsTotal counts HTTP requests to review feed APIs, labeled by feed and endpoint.
	FeedRequestsTotal *prometheus.CounterVec

	// FeedRequestsFailed counts failed HTTP requests to review feed APIs, labeled by feed, endpoint, and error type.
	FeedRequestsFailed *prometheus.CounterVec

	// FeedRequestDuration observes HTTP request duration to review feed APIs in seconds.
	FeedRequestDuration *prometheus.HistogramVec

	// FeedRateLimited counts rate-limited responses from review feed APIs, labeled by feed.
	FeedRateLimited *prometheus.CounterVec

	// CandidatesFetched counts external reviews fetched, labeled by feed.
	CandidatesFetched *prometheus.CounterVec

	// EventsPublished counts domain events published to Kafka, labeled by event type.
	EventsPublished *prometheus.CounterVec

	// EventsPublishFailed counts failed event publish attempts, labeled by event type.
	EventsPublishFailed *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Sweeps
		SweepsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_started_total",
			Help:      "Total number of verification sweeps started",
		}),
		SweepsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_completed_total",
			Help:      "Total number of verification sweeps completed successfully",
		}),
		SweepsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_failed_total",
			Help:      "Total number of verification sweeps that failed",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of verification sweeps in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800},
		}),
		BusinessesSwept: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "businesses_per_sweep",
			Help:      "Number of businesses processed per sweep run",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		// Reviews
		ReviewsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_submitted_total",
			Help:      "Total number of submitted reviews accepted",
		}),
		ReviewsChecked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_checked_total",
			Help:      "Total number of unverified reviews evaluated during sweeps",
		}),
		ReviewsVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_verified_total",
			Help:      "Total number of reviews auto-verified by feed",
		}, []string{"feed"}),
		ReviewsQueued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_queued_total",
			Help:      "Total number of reviews routed to the manual review queue",
		}),
		ManualResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_resolutions_total",
			Help:      "Total number of manual queue resolutions by action",
		}, []string{"action"}),

		// Matching
		MatchScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Distribution of best-match scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
		}),
		MatchesByConfidence: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_by_confidence_total",
			Help:      "Total number of scored matches by confidence band",
		}, []string{"confidence"}),
		CandidatesScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Total number of external review candidates scored",
		}),

		// Feeds
		FeedRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Total number of requests to review feeds",
		}, []string{"feed", "endpoint"}),
		FeedRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_failed_total",
			Help:      "Total number of failed requests to review feeds",
		}, []string{"feed", "endpoint", "error_type"}),
		FeedRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Duration of requests to review feeds in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"feed", "endpoint"}),
		FeedRateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_rate_limited_total",
			Help:      "Total number of rate limit responses from review feeds",
		}, []string{"feed"}),
		CandidatesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_fetched_total",
			Help:      "Total number of external reviews fetched by feed",
		}, []string{"feed"}),

		// Events
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published by type",
		}, []string{"event_type"}),
		EventsPublishFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_failed_total",
			Help:      "Total number of failed event publish attempts by type",
		}, []string{"event_type"}),
	}
}

// RecordSweepStarted records that a sweep has started.
func (m *Metrics) RecordSweepStarted() {
	m.SweepsStarted.Inc()
}

// RecordSweepCompleted records that a sweep has completed.
func (m *Metrics) RecordSweepCompleted(businessCount int, durationSeconds float64) {
	m.SweepsCompleted.Inc()
	m.SweepDuration.Observe(durationSeconds)
	m.BusinessesSwept.Observe(float64(businessCount))
}

// RecordSweepFailed records that a sweep has failed.
func (m *Metrics) RecordSweepFailed(durationSeconds float64) {
	m.SweepsFailed.Inc()
	m.SweepDuration.Observe(durationSeconds)
}

// RecordReviewSubmitted records a submitted review accepted through the API.
func (m *Metrics) RecordReviewSubmitted() {
	m.ReviewsSubmitted.Inc()
}

// RecordReviewsChecked records unverified reviews evaluated during a sweep.
func (m *Metrics) RecordReviewsChecked(count int) {
	m.ReviewsChecked.Add(float64(count))
}

// RecordReviewVerified records an auto-verified review and its match score.
func (m *Metrics) RecordReviewVerified(feed string, score float64) {
	m.ReviewsVerified.WithLabelValues(feed).Inc()
	m.MatchScore.Observe(score)
}

// RecordReviewQueued records a review routed to the manual queue.
func (m *Metrics) RecordReviewQueued(score float64) {
	m.ReviewsQueued.Inc()
	m.MatchScore.Observe(score)
}

// RecordManualResolution records a manual queue resolution.
func (m *Metrics) RecordManualResolution(action string) {
	m.ManualResolutions.WithLabelValues(action).Inc()
}

// RecordMatchConfidence records the confidence band of a scored match.
func (m *Metrics) RecordMatchConfidence(confidence string) {
	m.MatchesByConfidence.WithLabelValues(confidence).Inc()
}

// RecordCandidatesScored records candidates scored against a review.
func (m *Metrics) RecordCandidatesScored(count int) {
	m.CandidatesScored.Add(float64(count))
}

// RecordFeedRequest records a request to a review feed.
func (m *Metrics) RecordFeedRequest(feed, endpoint string, durationSeconds float64) {
	m.FeedRequestsTotal.WithLabelValues(feed, endpoint).Inc()
	m.FeedRequestDuration.WithLabelValues(feed, endpoint).Observe(durationSeconds)
}

// RecordFeedRequestFailed records a failed request to a review feed.
func (m *Metrics) RecordFeedRequestFailed(feed, endpoint, errorType string) {
	m.FeedRequestsFailed.WithLabelValues(feed, endpoint, errorType).Inc()
}

// RecordFeedRateLimited records a rate limit response from a review feed.
func (m *Metrics) RecordFeedRateLimited(feed string) {
	m.FeedRateLimited.WithLabelValues(feed).Inc()
}

// RecordCandidatesFetched records external reviews fetched from a feed.
func (m *Metrics) RecordCandidatesFetched(feed string, count int) {
	m.CandidatesFetched.WithLabelValues(feed).Add(float64(count))
}

// RecordEventPublished records a successfully published domain event.
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventPublishFailed records a failed event publish attempt.
func (m *Metrics) RecordEventPublishFailed(eventType string) {
	m.EventsPublishFailed.WithLabelValues(eventType).Inc()
}

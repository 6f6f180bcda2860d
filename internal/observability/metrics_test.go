package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: prometheus/promauto registers metrics globally, so we need to use
// unique namespaces per test to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	// Use unique namespace to avoid conflicts with other tests
	m := NewMetrics("test_review_verification_new")

	assert.NotNil(t, m.SweepsStarted)
	assert.NotNil(t, m.SweepsCompleted)
	assert.NotNil(t, m.SweepsFailed)
	assert.NotNil(t, m.SweepDuration)
	assert.NotNil(t, m.BusinessesSwept)
	assert.NotNil(t, m.ReviewsSubmitted)
	assert.NotNil(t, m.ReviewsChecked)
	assert.NotNil(t, m.ReviewsVerified)
	assert.NotNil(t, m.ReviewsQueued)
	assert.NotNil(t, m.ManualResolutions)
	assert.NotNil(t, m.MatchScore)
	assert.NotNil(t, m.MatchesByConfidence)
	assert.NotNil(t, m.FeedRequestsTotal)
	assert.NotNil(t, m.FeedRequestsFailed)
	assert.NotNil(t, m.EventsPublished)
	assert.NotNil(t, m.EventsPublishFailed)
}

func TestRecordSweepStarted(t *testing.T) {
	m := NewMetrics("test_sweep_started")

	initial := testutil.ToFloat64(m.SweepsStarted)
	m.RecordSweepStarted()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.SweepsStarted))
}

func TestRecordSweepCompleted(t *testing.T) {
	m := NewMetrics("test_sweep_completed")

	initial := testutil.ToFloat64(m.SweepsCompleted)
	m.RecordSweepCompleted(12, 5.5)
	assert.Equal(t, initial+1, testutil.ToFloat64(m.SweepsCompleted))

	// Check histogram
	histCount, err := getHistogramSampleCount(m.SweepDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordSweepFailed(t *testing.T) {
	m := NewMetrics("test_sweep_failed")

	initial := testutil.ToFloat64(m.SweepsFailed)
	m.RecordSweepFailed(3.0)
	assert.Equal(t, initial+1, testutil.ToFloat64(m.SweepsFailed))
}

func TestRecordReviewSubmitted(t *testing.T) {
	m := NewMetrics("test_review_submitted")

	initial := testutil.ToFloat64(m.ReviewsSubmitted)
	m.RecordReviewSubmitted()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.ReviewsSubmitted))
}

func TestRecordReviewsChecked(t *testing.T) {
	m := NewMetrics("test_reviews_checked")

	initial := testutil.ToFloat64(m.ReviewsChecked)
	m.RecordReviewsChecked(5)
	assert.Equal(t, initial+5, testutil.ToFloat64(m.ReviewsChecked))
}

func TestRecordReviewVerified(t *testing.T) {
	m := NewMetrics("test_review_verified")

	m.RecordReviewVerified("google_places", 0.91)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReviewsVerified.WithLabelValues("google_places")))

	histCount, err := getHistogramSampleCount(m.MatchScore)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordReviewQueued(t *testing.T) {
	m := NewMetrics("test_review_queued")

	initial := testutil.ToFloat64(m.ReviewsQueued)
	m.RecordReviewQueued(0.78)
	assert.Equal(t, initial+1, testutil.ToFloat64(m.ReviewsQueued))
}

func TestRecordManualResolution(t *testing.T) {
	m := NewMetrics("test_manual_resolution")

	m.RecordManualResolution("approve")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ManualResolutions.WithLabelValues("approve")))
}

func TestRecordMatchConfidence(t *testing.T) {
	m := NewMetrics("test_match_confidence")

	m.RecordMatchConfidence("high")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MatchesByConfidence.WithLabelValues("high")))
}

func TestRecordCandidatesScored(t *testing.T) {
	m := NewMetrics("test_candidates_scored")

	initial := testutil.ToFloat64(m.CandidatesScored)
	m.RecordCandidatesScored(25)
	assert.Equal(t, initial+25, testutil.ToFloat64(m.CandidatesScored))
}

func TestRecordFeedRequest(t *testing.T) {
	m := NewMetrics("test_feed_request")

	m.RecordFeedRequest("google_places", "reviews", 0.5)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FeedRequestsTotal.WithLabelValues("google_places", "reviews")))
}

func TestRecordFeedRequestFailed(t *testing.T) {
	m := NewMetrics("test_feed_request_failed")

	m.RecordFeedRequestFailed("yelp", "reviews", "timeout")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FeedRequestsFailed.WithLabelValues("yelp", "reviews", "timeout")))
}

func TestRecordFeedRateLimited(t *testing.T) {
	m := NewMetrics("test_feed_rate_limited")

	m.RecordFeedRateLimited("yelp")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FeedRateLimited.WithLabelValues("yelp")))
}

func TestRecordCandidatesFetched(t *testing.T) {
	m := NewMetrics("test_candidates_fetched")

	m.RecordCandidatesFetched("google_places", 40)
	assert.Equal(t, float64(40), testutil.ToFloat64(m.CandidatesFetched.WithLabelValues("google_places")))
}

func TestRecordEventPublished(t *testing.T) {
	m := NewMetrics("test_event_published")

	m.RecordEventPublished("review.verified")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("review.verified")))
}

func TestRecordEventPublishFailed(t *testing.T) {
	m := NewMetrics("test_event_publish_failed")

	m.RecordEventPublishFailed("sweep.completed")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublishFailed.WithLabelValues("sweep.completed")))
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}

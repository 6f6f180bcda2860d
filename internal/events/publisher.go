package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/reviewproof/review-verification-service/internal/config"
	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/observability"
)

// Publisher emits verification lifecycle events.
type Publisher interface {
	// PublishReviewVerified emits a review.verified event.
	PublishReviewVerified(ctx context.Context, review *domain.SubmittedReview) error

	// PublishReviewMatchPending emits a review.match_pending event.
	PublishReviewMatchPending(ctx context.Context, review *domain.SubmittedReview) error

	// PublishReviewRejected emits a review.rejected event.
	PublishReviewRejected(ctx context.Context, review *domain.SubmittedReview) error

	// PublishSweepCompleted emits a sweep.completed event.
	PublishSweepCompleted(ctx context.Context, sweep *domain.SweepRecord) error

	// Close flushes and releases the underlying transport.
	Close() error
}

// messageWriter is the subset of kafka.Writer the publisher needs.
// Narrowed to an interface so tests can capture written messages.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes events to a Kafka topic.
type KafkaPublisher struct {
	writer  messageWriter
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Compile-time check that KafkaPublisher implements Publisher.
var _ Publisher = (*KafkaPublisher)(nil)

// NewPublisher creates a Publisher from configuration.
// When Kafka is disabled it returns a NoopPublisher, so callers can always
// publish unconditionally.
func NewPublisher(cfg config.KafkaConfig, logger zerolog.Logger, metrics *observability.Metrics) Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("kafka publishing disabled, events will be dropped")
		return NoopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer:  writer,
		logger:  logger.With().Str("component", "event_publisher").Str("topic", cfg.Topic).Logger(),
		metrics: metrics,
	}
}

// PublishReviewVerified emits a review.verified event keyed by business ID.
func (p *KafkaPublisher) PublishReviewVerified(ctx context.Context, review *domain.SubmittedReview) error {
	payload := ReviewVerifiedPayload{
		ReviewID:          review.ID.String(),
		BusinessID:        review.BusinessID.String(),
		MatchedExternalID: review.MatchedExternalID,
		MatchedFeed:       string(review.MatchedFeed),
		MatchScore:        review.MatchScore,
		MatchConfidence:   review.MatchConfidence,
		ResolvedBy:        review.ResolvedBy,
		VerifiedAt:        review.VerifiedAt,
	}
	return p.publish(ctx, EventTypeReviewVerified, review.BusinessID.String(), payload)
}

// PublishReviewMatchPending emits a review.match_pending event keyed by business ID.
func (p *KafkaPublisher) PublishReviewMatchPending(ctx context.Context, review *domain.SubmittedReview) error {
	payload := ReviewMatchPendingPayload{
		ReviewID:            review.ID.String(),
		BusinessID:          review.BusinessID.String(),
		CandidateExternalID: review.CandidateExternalID,
		MatchScore:          review.MatchScore,
		MatchConfidence:     review.MatchConfidence,
	}
	return p.publish(ctx, EventTypeReviewMatchPending, review.BusinessID.String(), payload)
}

// PublishReviewRejected emits a review.rejected event keyed by business ID.
func (p *KafkaPublisher) PublishReviewRejected(ctx context.Context, review *domain.SubmittedReview) error {
	payload := ReviewRejectedPayload{
		ReviewID:   review.ID.String(),
		BusinessID: review.BusinessID.String(),
		ResolvedBy: review.ResolvedBy,
	}
	return p.publish(ctx, EventTypeReviewRejected, review.BusinessID.String(), payload)
}

// PublishSweepCompleted emits a sweep.completed event keyed by business ID.
func (p *KafkaPublisher) PublishSweepCompleted(ctx context.Context, sweep *domain.SweepRecord) error {
	payload := SweepCompletedPayload{
		SweepID:           sweep.ID.String(),
		BusinessID:        sweep.BusinessID.String(),
		Status:            string(sweep.Status),
		ReviewsChecked:    sweep.ReviewsChecked,
		ReviewsVerified:   sweep.ReviewsVerified,
		ReviewsQueued:     sweep.ReviewsQueued,
		CandidatesFetched: sweep.CandidatesFetched,
		ErrorMessage:      sweep.ErrorMessage,
		StartedAt:         sweep.StartedAt,
		CompletedAt:       sweep.CompletedAt,
	}
	return p.publish(ctx, EventTypeSweepCompleted, sweep.BusinessID.String(), payload)
}

// publish wraps the payload in an envelope and writes it to the topic.
func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) error {
	envelope, err := newEnvelope(eventType, payload)
	if err != nil {
		p.metrics.RecordEventPublishFailed(eventType)
		return fmt.Errorf("building %s envelope: %w", eventType, err)
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		p.metrics.RecordEventPublishFailed(eventType)
		return fmt.Errorf("marshaling %s envelope: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(envelope.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.RecordEventPublishFailed(eventType)
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("event_id", envelope.EventID).
			Msg("failed to publish event")
		return fmt.Errorf("publishing %s event: %w", eventType, err)
	}

	p.metrics.RecordEventPublished(eventType)
	p.logger.Debug().
		Str("event_type", eventType).
		Str("event_id", envelope.EventID).
		Str("key", key).
		Msg("published event")

	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info().Msg("closing event publisher")
	return p.writer.Close()
}

// NoopPublisher drops all events. Used when Kafka publishing is disabled.
type NoopPublisher struct{}

// Compile-time check that NoopPublisher implements Publisher.
var _ Publisher = NoopPublisher{}

// PublishReviewVerified does nothing.
func (NoopPublisher) PublishReviewVerified(context.Context, *domain.SubmittedReview) error {
	return nil
}

// PublishReviewMatchPending does nothing.
func (NoopPublisher) PublishReviewMatchPending(context.Context, *domain.SubmittedReview) error {
	return nil
}

// PublishReviewRejected does nothing.
func (NoopPublisher) PublishReviewRejected(context.Context, *domain.SubmittedReview) error {
	return nil
}

// PublishSweepCompleted does nothing.
func (NoopPublisher) PublishSweepCompleted(context.Context, *domain.SweepRecord) error {
	return nil
}

// Close does nothing.
func (NoopPublisher) Close() error { return nil }

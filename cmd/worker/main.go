// Package main provides the entry point for the review verification Temporal worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/client"

	"github.com/reviewproof/review-verification-service/internal/config"
	"github.com/reviewproof/review-verification-service/internal/database"
	"github.com/reviewproof/review-verification-service/internal/events"
	"github.com/reviewproof/review-verification-service/internal/matching"
	"github.com/reviewproof/review-verification-service/internal/observability"
	"github.com/reviewproof/review-verification-service/internal/repository"
	"github.com/reviewproof/review-verification-service/internal/reviewfeeds"
	"github.com/reviewproof/review-verification-service/internal/reviewfeeds/googleplaces"
	"github.com/reviewproof/review-verification-service/internal/reviewfeeds/yelp"
	"github.com/reviewproof/review-verification-service/internal/temporal"
	"github.com/reviewproof/review-verification-service/internal/temporal/activities"
	"github.com/reviewproof/review-verification-service/internal/temporal/workflows"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "worker").Logger()
	logger.Info().Msg("review-verification-service worker starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Create repositories.
	businessRepo := repository.NewPgBusinessRepository(db)
	reviewRepo := repository.NewPgReviewRepository(db)
	sweepRepo := repository.NewPgSweepRepository(db)

	// Create metrics.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("reviewproof")
	}

	// Create the review feed registry and register enabled feeds.
	registry := reviewfeeds.NewRegistry()
	registerReviewFeeds(registry, cfg, logger)

	// Create the matching scorer. Only the date window is configurable; the
	// weights and thresholds are fixed product behavior.
	scorer := matching.NewScorer(matching.Config{
		MaxDaysApart: cfg.Matching.MaxDaysApart,
	})

	// Create the Kafka event publisher.
	publisher := events.NewPublisher(cfg.Kafka, logger, metrics)
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close event publisher")
		}
	}()

	// Create Temporal client.
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    observability.NewTemporalLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()
	logger.Info().
		Str("host_port", cfg.Temporal.HostPort).
		Str("namespace", cfg.Temporal.Namespace).
		Msg("temporal client connected")

	// Create WorkerManager.
	workerConfig := temporal.DefaultWorkerConfig(cfg.Temporal.TaskQueue)
	manager, err := temporal.NewWorkerManager(temporalClient, workerConfig)
	if err != nil {
		return fmt.Errorf("create worker manager: %w", err)
	}

	// Register workflows.
	manager.RegisterWorkflow(workflows.VerificationSweepWorkflow)

	// Create and register all activity structs.
	fetchActivities := activities.NewFetchActivities(businessRepo, reviewRepo, registry, metrics)
	matchActivities := activities.NewMatchActivities(scorer, metrics)
	statusActivities := activities.NewStatusActivities(reviewRepo, sweepRepo, metrics)
	eventActivities := activities.NewEventActivities(reviewRepo, sweepRepo, publisher)

	manager.RegisterActivity(fetchActivities)
	manager.RegisterActivity(matchActivities)
	manager.RegisterActivity(statusActivities)
	manager.RegisterActivity(eventActivities)

	// Ensure the recurring fleet sweep schedule exists.
	if cfg.Sweep.CronSchedule != "" {
		workflowClient := temporal.NewVerificationWorkflowClient(temporalClient, cfg.Temporal.TaskQueue)
		runID, err := workflowClient.StartSweepSchedule(
			ctx,
			cfg.Sweep.ScheduleID,
			cfg.Sweep.CronSchedule,
			workflows.VerificationSweepWorkflow,
			temporal.SweepWorkflowInput{
				ReviewBatchSize:  cfg.Sweep.ReviewBatchSize,
				BusinessPageSize: cfg.Sweep.BusinessPageSize,
			},
		)
		if err != nil {
			return fmt.Errorf("start sweep schedule: %w", err)
		}
		logger.Info().
			Str("schedule_id", cfg.Sweep.ScheduleID).
			Str("cron", cfg.Sweep.CronSchedule).
			Str("run_id", runID).
			Msg("recurring sweep schedule registered")
	}

	logger.Info().
		Str("task_queue", cfg.Temporal.TaskQueue).
		Msg("starting temporal worker")

	// Start the worker and block until context is cancelled.
	if err := manager.Start(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info().Msg("worker stopped via signal")
			return nil
		}
		return fmt.Errorf("worker error: %w", err)
	}

	return nil
}

// registerReviewFeeds registers all enabled external review feeds with the registry.
func registerReviewFeeds(registry *reviewfeeds.Registry, cfg *config.Config, logger zerolog.Logger) {
	// Google Places.
	if cfg.ReviewFeeds.GooglePlaces.Enabled {
		gpCfg := cfg.ReviewFeeds.GooglePlaces
		gpClient := googleplaces.NewClient(googleplaces.Config{
			BaseURL:    gpCfg.BaseURL,
			APIKey:     gpCfg.APIKey,
			Timeout:    gpCfg.Timeout,
			RateLimit:  gpCfg.RateLimit,
			MaxResults: gpCfg.MaxResults,
			Enabled:    true,
		}, nil)
		registry.Register(gpClient)
		logger.Info().Msg("registered review feed: Google Places")
	}

	// Yelp Fusion.
	if cfg.ReviewFeeds.Yelp.Enabled {
		yCfg := cfg.ReviewFeeds.Yelp
		yClient := yelp.NewClient(yelp.Config{
			BaseURL:    yCfg.BaseURL,
			APIKey:     yCfg.APIKey,
			Timeout:    yCfg.Timeout,
			RateLimit:  yCfg.RateLimit,
			MaxResults: yCfg.MaxResults,
			Enabled:    true,
		}, nil)
		registry.Register(yClient)
		logger.Info().Msg("registered review feed: Yelp")
	}
}

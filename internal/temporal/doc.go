// Package temporal provides Temporal workflow client integration for the
// review verification service.
//
// This package handles workflow client initialization, workflow/activity
// registration, and worker lifecycle management.
//
// # Overview
//
// The temporal package provides:
//
//   - Client: Temporal client wrapper for starting/managing workflows
//   - Worker: Worker process for executing workflows and activities
//   - Workflow definitions for verification sweep orchestration
//   - Activity implementations for the sweep pipeline steps
//
// # Client Setup
//
// Create a Temporal client:
//
//	cfg := temporal.ClientConfig{
//	    HostPort:  "localhost:7233",
//	    Namespace: "review-verification",
//	    TaskQueue: "verification-sweep-tasks",
//	}
//
//	c, err := temporal.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
// # Starting Workflows
//
// Trigger an on-demand sweep for a single business:
//
//	wc := temporal.NewVerificationWorkflowClient(c, cfg.TaskQueue)
//	workflowID, runID, err := wc.StartSweepWorkflow(ctx, businessID,
//	    workflows.VerificationSweepWorkflow, temporal.SweepWorkflowInput{
//	        BusinessID: &businessID,
//	    })
//
// Or install the recurring fleet-wide sweep:
//
//	_, err := wc.StartSweepSchedule(ctx, "verification-sweep", "0 * * * *",
//	    workflows.VerificationSweepWorkflow, temporal.SweepWorkflowInput{})
//
// # Worker Setup
//
// Create a worker and register the sweep workflow and activities:
//
//	mgr, err := temporal.NewWorkerManager(c, temporal.DefaultWorkerConfig(cfg.TaskQueue))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mgr.RegisterWorkflow(workflows.VerificationSweepWorkflow)
//	mgr.RegisterActivity(fetchActivities)
//	mgr.RegisterActivity(matchActivities)
//	mgr.RegisterActivity(statusActivities)
//	mgr.RegisterActivity(eventActivities)
//
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Activity Types
//
// Activities are grouped by responsibility:
//
//   - Fetch activities: work listing and external candidate snapshots
//   - Match activities: scoring reviews against candidates (pure)
//   - Status activities: sweep records and conditional review transitions
//   - Event activities: verification event publishing
//
// # Error Handling
//
// Workflows use standard Temporal error handling:
//
//	if temporal.IsWorkflowNotFound(err) {
//	    // Workflow doesn't exist or already completed
//	}
//
//	if temporal.IsWorkflowAlreadyStarted(err) {
//	    // Workflow with same ID is already running
//	}
//
// # Thread Safety
//
// The Temporal client is safe for concurrent use. Workers manage their
// own goroutines for activity execution.
package temporal

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package supervisor runs the notification daemon's long-lived services under
suture v4.

# Overview

Services are grouped into three layers so a failure in one does not restart
the others:

	RootSupervisor ("learnquest")
	├── SessionSupervisor ("session-layer")
	│   └── TokenRefreshService (if session.refresh_window > 0)
	├── SyncSupervisor ("sync-layer")
	│   ├── SessionSyncService
	│   └── StatsPollService (if realtime.stats_poll_interval > 0)
	└── StatusSupervisor ("status-layer")
	    └── StatusServerService (if status.enabled)

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSyncService(services.NewSessionSyncService(sessions, syncer))
	tree.AddStatusService(services.NewStatusServerService(server, ":9464", 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

TreeConfig controls restart behavior. Zero values take suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

Failures decay exponentially. Once the counter passes FailureThreshold the
supervisor waits FailureBackoff before the next restart.

# Service Interface

All services implement suture.Service:
  - Return nil: stopped cleanly, not restarted
  - Return error: crashed, restarted with backoff
  - Context canceled: shutdown requested, return promptly

Supervisor events (starts, failures, backoff) are logged through the
sutureslog hook on the process slog logger.

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logger.Warn("service did not stop", "service", svc.Name)
	}
*/
package supervisor

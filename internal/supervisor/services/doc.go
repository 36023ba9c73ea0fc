// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package services provides suture.Service wrappers for the notification daemon.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and returns ctx.Err() on a graceful stop, so suture can tell shutdown from
failure.

# Available Services

Session Sync (SessionSyncService):
  - Applies the session state to the synchronizer on start and on change
  - Closes the push stream on stop

Stats Poller (StatsPollService):
  - Reloads notification stats while the push stream is down

Token Refresher (TokenRefreshService):
  - Refreshes the access token shortly before it expires

Status Server (StatusServerService):
  - Binds the listener and serves the local status API
  - Graceful shutdown with a configurable timeout
*/
package services

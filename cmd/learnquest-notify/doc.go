// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Command learnquest-notify keeps a local mirror of a LearnQuest user's
notifications in step with the platform and republishes changes.

# Application Architecture

The daemon runs its services under a Suture v4 supervisor tree:

	RootSupervisor ("learnquest")
	├── SessionSupervisor ("session-layer")
	│   └── Token refresh (optional, session.refresh_window > 0)
	├── SyncSupervisor ("sync-layer")
	│   ├── Session sync (loads and connects on sign-in, clears on sign-out)
	│   └── Stats poll (optional, while the push stream is down)
	└── StatusSupervisor ("status-layer")
	    └── Status HTTP server (optional, status.enabled)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and LEARNQUEST_* variables
 2. Logging: zerolog with JSON/console output modes
 3. Session: memory or BadgerDB token store, AES-GCM encrypted when keyed
 4. Endpoint resolver: ordered health probes with per-candidate circuit breakers
 5. API client and domain façades (auth, profile, course, content, notifications)
 6. Publisher: in-process watermill channel or NATS
 7. Synchronizer: notification mirror with SSE or WebSocket push
 8. Startup sign-in with the configured account, when no session was restored
 9. Supervisor tree

# Example Usage

	export LEARNQUEST_API_URL=https://api.learnquest.example/api
	export LEARNQUEST_API_FALLBACK_URLS=https://backup.learnquest.example/api
	export LEARNQUEST_EMAIL=student@example.com
	export LEARNQUEST_PASSWORD=secret
	export LEARNQUEST_STATUS_ENABLED=true
	./learnquest-notify

Publishing to NATS instead of the in-process channel:

	export LEARNQUEST_PUBLISH_BACKEND=nats
	export LEARNQUEST_PUBLISH_NATS_URL=nats://localhost:4222
	./learnquest-notify

# Signal Handling

SIGINT and SIGTERM cancel the root context. The status server drains in-flight
requests, the push stream is closed and the session store is released.
*/
package main

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

// Package config loads LearnQuest client configuration with koanf.
//
// Sources are layered, later layers winning:
//
//  1. Struct defaults (defaultConfig)
//  2. An optional YAML file (LEARNQUEST_CONFIG, then DefaultConfigPaths)
//  3. Environment variables mapped through envMappings
//
// The endpoint candidate list is assembled from api.base_url followed by
// api.fallback_urls:
//
//	LEARNQUEST_API_URL=https://api.learnquest.dev/api
//	LEARNQUEST_API_FALLBACK_URLS=http://api.learnquest.dev/api,http://localhost:5000/api
//
//	cfg, err := config.Load()
//	candidates := cfg.Candidates()
//
// Example YAML:
//
//	api:
//	  base_url: https://api.learnquest.dev/api
//	  fallback_urls: [http://localhost:5000/api]
//	  request_timeout: 15s
//	endpoint:
//	  probe_timeout: 3s
//	  accept_not_found: true
//	realtime:
//	  transport: sse
//	publish:
//	  backend: nats
//	  nats_url: nats://127.0.0.1:4222
//	session:
//	  store: badger
//	  path: /var/lib/learnquest/session
//	status:
//	  enabled: true
//	  listen_addr: 127.0.0.1:8089
//	  allowed_origins: [http://localhost:3000]
package config

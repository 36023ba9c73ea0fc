// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package config

import (
	"strings"
	"time"
)

// Config is the complete client configuration.
type Config struct {
	API           APIConfig           `koanf:"api"`
	Endpoint      EndpointConfig      `koanf:"endpoint"`
	Realtime      RealtimeConfig      `koanf:"realtime"`
	Session       SessionConfig       `koanf:"session"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Publish       PublishConfig       `koanf:"publish"`
	Account       AccountConfig       `koanf:"account"`
	Status        StatusConfig        `koanf:"status"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// APIConfig describes the backend and the request executor.
type APIConfig struct {
	// BaseURL is the preferred API root, e.g. https://api.learnquest.dev/api.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	// FallbackURLs are tried in order after BaseURL.
	FallbackURLs []string `koanf:"fallback_urls" validate:"dive,url"`

	// RequestTimeout is the default per-request deadline.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`

	UserAgent string `koanf:"user_agent"`

	// RateLimitRPS throttles outgoing requests; 0 disables the limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`
}

// EndpointConfig tunes liveness probing.
type EndpointConfig struct {
	HealthPath     string        `koanf:"health_path" validate:"required"`
	ProbeTimeout   time.Duration `koanf:"probe_timeout" validate:"gt=0"`
	AcceptNotFound bool          `koanf:"accept_not_found"`

	// BreakerFailures is the consecutive probe failures that skip a candidate
	// for BreakerTimeout. 0 disables the per-candidate breakers.
	BreakerFailures int           `koanf:"breaker_failures" validate:"gte=0"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gte=0"`
}

// RealtimeConfig selects and tunes the notification push stream.
type RealtimeConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Transport string `koanf:"transport" validate:"oneof=sse websocket"`

	ReconnectDelay    time.Duration `koanf:"reconnect_delay" validate:"gt=0"`
	MaxReconnectDelay time.Duration `koanf:"max_reconnect_delay" validate:"gtefield=ReconnectDelay"`

	// Dedupe replaces a locally held notification when the same id is pushed again.
	Dedupe bool `koanf:"dedupe"`

	// StatsPollInterval refreshes stats while the stream is down; 0 disables.
	StatsPollInterval time.Duration `koanf:"stats_poll_interval" validate:"gte=0"`
}

// PublishConfig selects where synchronizer snapshots and pushed
// notifications are republished.
type PublishConfig struct {
	// Backend is "channel" (in-process) or "nats".
	Backend string `koanf:"backend" validate:"oneof=channel nats"`

	NATSURL string `koanf:"nats_url" validate:"required_if=Backend nats"`

	// TopicPrefix is prepended to every topic, e.g. "learnquest".
	TopicPrefix string `koanf:"topic_prefix" validate:"required"`
}

// SessionConfig selects where access and refresh tokens are persisted.
type SessionConfig struct {
	Store string `koanf:"store" validate:"oneof=memory badger"`
	Path  string `koanf:"path" validate:"required_if=Store badger"`

	// EncryptionKey enables AES-GCM encryption of stored tokens.
	EncryptionKey string `koanf:"encryption_key"`

	// RefreshWindow triggers a proactive refresh when the access token
	// expires within this duration. 0 disables proactive refresh.
	RefreshWindow time.Duration `koanf:"refresh_window" validate:"gte=0"`
}

// NotificationsConfig tunes the initial page load.
type NotificationsConfig struct {
	PageSize   int  `koanf:"page_size" validate:"gte=1,lte=100"`
	UnreadOnly bool `koanf:"unread_only"`
}

// AccountConfig holds optional credentials used by the daemon to sign in.
type AccountConfig struct {
	Email    string `koanf:"email" validate:"omitempty,email"`
	Password string `koanf:"password"`
}

// StatusConfig controls the local status HTTP server.
type StatusConfig struct {
	Enabled         bool          `koanf:"enabled"`
	ListenAddr      string        `koanf:"listen_addr" validate:"required_if=Enabled true"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`

	// AllowedOrigins enables CORS for browser dashboards. Empty disables it.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RateLimitRequests per RateLimitWindow and client IP; 0 disables the limiter.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"required_with=RateLimitRequests"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Candidates returns the endpoint candidate list: BaseURL then FallbackURLs,
// trimmed of whitespace and trailing slashes, de-duplicated, order preserved.
func (c *Config) Candidates() []string {
	seen := make(map[string]bool, len(c.API.FallbackURLs)+1)
	out := make([]string, 0, len(c.API.FallbackURLs)+1)
	add := func(raw string) {
		u := strings.TrimRight(strings.TrimSpace(raw), "/")
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	add(c.API.BaseURL)
	for _, u := range c.API.FallbackURLs {
		add(u)
	}
	return out
}

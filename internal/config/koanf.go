// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when LEARNQUEST_CONFIG is unset.
var DefaultConfigPaths = []string{
	"learnquest.yaml",
	"learnquest.yml",
	"/etc/learnquest/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "LEARNQUEST_CONFIG"

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5000/api",
			RequestTimeout: 15 * time.Second,
			UserAgent:      "learnquest-client/1.0",
			RateLimitBurst: 10,
		},
		Endpoint: EndpointConfig{
			HealthPath:      "/health",
			ProbeTimeout:    3 * time.Second,
			AcceptNotFound:  true,
			BreakerFailures: 3,
			BreakerTimeout:  30 * time.Second,
		},
		Realtime: RealtimeConfig{
			Enabled:           true,
			Transport:         "sse",
			ReconnectDelay:    time.Second,
			MaxReconnectDelay: 32 * time.Second,
			Dedupe:            true,
			StatsPollInterval: time.Minute,
		},
		Session: SessionConfig{
			Store:         "memory",
			RefreshWindow: 2 * time.Minute,
		},
		Notifications: NotificationsConfig{
			PageSize: 20,
		},
		Publish: PublishConfig{
			Backend:     "channel",
			TopicPrefix: "learnquest",
		},
		Status: StatusConfig{
			Enabled:           false,
			ListenAddr:        "127.0.0.1:8089",
			ShutdownTimeout:   5 * time.Second,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates the result.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("LEARNQUEST_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"api.fallback_urls",
	"status.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps LEARNQUEST_-prefixed variables (lowercased, prefix kept)
// to koanf paths. Unmapped variables are ignored.
var envMappings = map[string]string{
	"learnquest_api_url":              "api.base_url",
	"learnquest_api_fallback_urls":    "api.fallback_urls",
	"learnquest_api_timeout":          "api.request_timeout",
	"learnquest_api_user_agent":       "api.user_agent",
	"learnquest_api_rate_limit_rps":   "api.rate_limit_rps",
	"learnquest_api_rate_limit_burst": "api.rate_limit_burst",

	"learnquest_health_path":      "endpoint.health_path",
	"learnquest_probe_timeout":    "endpoint.probe_timeout",
	"learnquest_accept_not_found": "endpoint.accept_not_found",
	"learnquest_breaker_failures": "endpoint.breaker_failures",
	"learnquest_breaker_timeout":  "endpoint.breaker_timeout",

	"learnquest_realtime_enabled":             "realtime.enabled",
	"learnquest_realtime_transport":           "realtime.transport",
	"learnquest_realtime_reconnect_delay":     "realtime.reconnect_delay",
	"learnquest_realtime_max_reconnect_delay": "realtime.max_reconnect_delay",
	"learnquest_realtime_dedupe":              "realtime.dedupe",
	"learnquest_stats_poll_interval":          "realtime.stats_poll_interval",

	"learnquest_session_store":          "session.store",
	"learnquest_session_path":           "session.path",
	"learnquest_session_encryption_key": "session.encryption_key",
	"learnquest_session_refresh_window": "session.refresh_window",

	"learnquest_notifications_page_size":   "notifications.page_size",
	"learnquest_notifications_unread_only": "notifications.unread_only",

	"learnquest_publish_backend":      "publish.backend",
	"learnquest_publish_nats_url":     "publish.nats_url",
	"learnquest_publish_topic_prefix": "publish.topic_prefix",

	"learnquest_email":    "account.email",
	"learnquest_password": "account.password",

	"learnquest_status_enabled":         "status.enabled",
	"learnquest_status_addr":            "status.listen_addr",
	"learnquest_status_allowed_origins": "status.allowed_origins",
	"learnquest_status_rate_limit":      "status.rate_limit_requests",

	"learnquest_log_level":  "logging.level",
	"learnquest_log_format": "logging.format",
	"learnquest_log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

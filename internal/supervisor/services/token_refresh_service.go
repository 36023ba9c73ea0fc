// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/api"
	"github.com/tomtom215/learnquest/internal/logging"
)

// Refresher is satisfied by *api.AuthService.
type Refresher interface {
	EnsureFresh(ctx context.Context, window time.Duration) (bool, error)
}

// TokenRefreshService refreshes the access token before it expires.
//
// Every interval it asks the auth service to refresh when the token expires
// within window. Failures are logged and retried on the next tick; a session
// the server rejects is cleared by the auth service itself.
type TokenRefreshService struct {
	auth     Refresher
	interval time.Duration
	window   time.Duration
	logger   zerolog.Logger
	name     string
}

// NewTokenRefreshService creates the refresher. interval must be positive.
func NewTokenRefreshService(auth Refresher, interval, window time.Duration) *TokenRefreshService {
	return &TokenRefreshService{
		auth:     auth,
		interval: interval,
		window:   window,
		logger:   logging.WithComponent("token-refresher"),
		name:     "token-refresher",
	}
}

// Serve implements suture.Service.
func (s *TokenRefreshService) Serve(ctx context.Context) error {
	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *TokenRefreshService) refresh(ctx context.Context) {
	refreshed, err := s.auth.EnsureFresh(ctx, s.window)
	switch {
	case errors.Is(err, api.ErrNotAuthenticated):
	case err != nil:
		s.logger.Warn().Err(err).Msg("Token refresh failed")
	case refreshed:
		s.logger.Info().Msg("Access token refreshed")
	}
}

// String names the service in suture events.
func (s *TokenRefreshService) String() string {
	return s.name
}

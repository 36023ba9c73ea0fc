// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/logging"
	lqsync "github.com/tomtom215/learnquest/internal/sync"
)

// StatsLoader is satisfied by *sync.Synchronizer.
type StatsLoader interface {
	State() lqsync.ConnectionState
	LoadStats(ctx context.Context) error
}

// Authenticator reports whether a session is signed in.
type Authenticator interface {
	IsAuthenticated() bool
}

// StatsPollService refreshes notification stats on an interval while the
// push stream is not connected. A connected stream carries stats itself.
type StatsPollService struct {
	loader   StatsLoader
	session  Authenticator
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewStatsPollService creates the poller. interval must be positive.
func NewStatsPollService(loader StatsLoader, session Authenticator, interval time.Duration) *StatsPollService {
	return &StatsPollService{
		loader:   loader,
		session:  session,
		interval: interval,
		logger:   logging.WithComponent("stats-poller"),
		name:     "stats-poller",
	}
}

// Serve implements suture.Service.
func (s *StatsPollService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *StatsPollService) poll(ctx context.Context) {
	if !s.session.IsAuthenticated() || s.loader.State() == lqsync.Connected {
		return
	}
	if err := s.loader.LoadStats(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("Stats poll failed")
	}
}

// String names the service in suture events.
func (s *StatsPollService) String() string {
	return s.name
}

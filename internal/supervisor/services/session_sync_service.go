// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/session"
)

// SessionSource is the session surface the follower watches.
// Satisfied by *session.Manager.
type SessionSource interface {
	IsAuthenticated() bool
	OnChange(l session.Listener) (cancel func())
}

// SessionFollower reacts to sign-in and sign-out.
// Satisfied by *sync.Synchronizer.
type SessionFollower interface {
	HandleSessionChange(ctx context.Context, authenticated bool) error
	DisconnectRealTime()
}

// SessionSyncService drives the synchronizer from the session.
//
// On start it applies the current session state, then every change the
// session reports. Changes are coalesced: only the latest state is applied
// when several arrive while one is being handled. On stop the push stream
// is closed.
type SessionSyncService struct {
	session  SessionSource
	follower SessionFollower
	logger   zerolog.Logger
	name     string
}

// NewSessionSyncService creates the service.
func NewSessionSyncService(s SessionSource, f SessionFollower) *SessionSyncService {
	return &SessionSyncService{
		session:  s,
		follower: f,
		logger:   logging.WithComponent("session-sync"),
		name:     "session-sync",
	}
}

// Serve implements suture.Service.
func (s *SessionSyncService) Serve(ctx context.Context) error {
	changes := make(chan bool, 1)
	cancel := s.session.OnChange(func(authenticated bool) {
		// Keep only the newest state.
		select {
		case <-changes:
		default:
		}
		select {
		case changes <- authenticated:
		default:
		}
	})
	defer cancel()
	defer s.follower.DisconnectRealTime()

	s.apply(ctx, s.session.IsAuthenticated())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case authenticated := <-changes:
			s.apply(ctx, authenticated)
		}
	}
}

func (s *SessionSyncService) apply(ctx context.Context, authenticated bool) {
	if err := s.follower.HandleSessionChange(ctx, authenticated); err != nil {
		// The stream reconnects on its own and the poller refreshes stats,
		// so a failed first load is not worth a restart.
		s.logger.Warn().Err(err).Bool("authenticated", authenticated).Msg("Session change handled with errors")
		return
	}
	s.logger.Debug().Bool("authenticated", authenticated).Msg("Session change applied")
}

// String names the service in suture events.
func (s *SessionSyncService) String() string {
	return s.name
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package statusserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/learnquest/internal/endpoint"
	"github.com/tomtom215/learnquest/internal/models"
	lqsync "github.com/tomtom215/learnquest/internal/sync"
)

// Notifications is the synchronizer surface the server exposes.
// Satisfied by *sync.Synchronizer.
type Notifications interface {
	Snapshot() lqsync.Snapshot
	LoadNotifications(ctx context.Context, filter models.NotificationFilter) error
	MarkAsRead(ctx context.Context, ids []int64) error
	MarkAllAsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, notificationID int64) error
	ConnectRealTime(ctx context.Context) error
	DisconnectRealTime()
}

// Endpoints reports the endpoint cache. Satisfied by *endpoint.State.
type Endpoints interface {
	Snapshot() endpoint.Snapshot
}

// Session reports the signed-in state. Satisfied by *session.Manager.
type Session interface {
	IsAuthenticated() bool
	ExpiresAt() (time.Time, bool)
}

// Options configures the router middleware.
type Options struct {
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Server serves the local status and control API.
type Server struct {
	notifications Notifications
	endpoints     Endpoints
	session       Session
	opts          Options
}

// New creates a server.
func New(n Notifications, e Endpoints, s Session, opts Options) *Server {
	return &Server{notifications: n, endpoints: e, session: s, opts: opts}
}

// Handler builds the chi router.
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/status
//	GET    /api/endpoints
//	GET    /api/notifications
//	POST   /api/notifications/refresh
//	POST   /api/notifications/read
//	POST   /api/notifications/read-all
//	DELETE /api/notifications/{id}
//	POST   /api/realtime/connect
//	POST   /api/realtime/disconnect
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(correlation)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(corsHandler(s.opts.AllowedOrigins))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(s.opts.RateLimitRequests, s.opts.RateLimitWindow))

		r.Get("/status", s.status)
		r.Get("/endpoints", s.endpointSnapshot)
		r.Get("/notifications", s.listNotifications)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/notifications/refresh", s.refreshNotifications)
			r.Post("/notifications/read", s.markRead)
			r.Post("/notifications/read-all", s.markAllRead)
			r.Delete("/notifications/{id}", s.deleteNotification)
			r.Post("/realtime/connect", s.connect)
		})
		r.Post("/realtime/disconnect", s.disconnect)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "route not found", nil)
	})
	return r
}

// requireSession rejects control calls while signed out; they would only
// fail upstream.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.session.IsAuthenticated() {
			respondError(w, http.StatusUnauthorized, CodeUnauthenticated, "not signed in", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

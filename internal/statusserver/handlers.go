// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package statusserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/learnquest/internal/models"
	lqsync "github.com/tomtom215/learnquest/internal/sync"
	"github.com/tomtom215/learnquest/internal/validation"
)

// maxBodyBytes bounds control request bodies.
const maxBodyBytes = 64 << 10

// StatusView is the body of GET /api/status.
type StatusView struct {
	Authenticated    bool       `json:"authenticated"`
	SessionExpiresAt *time.Time `json:"sessionExpiresAt,omitempty"`

	Endpoint   string   `json:"endpoint,omitempty"`
	Candidates []string `json:"candidates"`

	Realtime   string    `json:"realtime"`
	LastError  string    `json:"lastError,omitempty"`
	Unread     int       `json:"unread"`
	HighUnread int       `json:"highPriorityUnread"`
	Loaded     int       `json:"loaded"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondData(w, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.notifications.Snapshot()
	ep := s.endpoints.Snapshot()

	view := StatusView{
		Authenticated: s.session.IsAuthenticated(),
		Endpoint:      ep.Active,
		Candidates:    ep.Candidates,
		Realtime:      snap.State.String(),
		LastError:     snap.LastError,
		Unread:        snap.Stats.UnreadCount,
		HighUnread:    snap.Stats.HighPriorityUnread,
		Loaded:        len(snap.Notifications),
		UpdatedAt:     snap.UpdatedAt,
	}
	if exp, ok := s.session.ExpiresAt(); ok && view.Authenticated {
		view.SessionExpiresAt = &exp
	}
	respondData(w, view)
}

func (s *Server) endpointSnapshot(w http.ResponseWriter, r *http.Request) {
	respondData(w, s.endpoints.Snapshot())
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	respondData(w, s.notifications.Snapshot())
}

func (s *Server) refreshNotifications(w http.ResponseWriter, r *http.Request) {
	filter := s.notifications.Snapshot().Filter
	if err := s.notifications.LoadNotifications(r.Context(), filter); err != nil {
		respondUpstream(w, err)
		return
	}
	respondData(w, s.notifications.Snapshot())
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	var req models.MarkAsReadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondJSON(w, http.StatusBadRequest, &Response{
			Status:   "error",
			Metadata: Metadata{Timestamp: time.Now()},
			Error: &APIError{
				Code:    CodeValidation,
				Message: verr.Error(),
				Details: map[string]any{"fields": verr.FieldErrors()},
			},
		})
		return
	}
	if err := s.notifications.MarkAsRead(r.Context(), req.NotificationIDs); err != nil {
		respondUpstream(w, err)
		return
	}
	respondData(w, s.notifications.Snapshot().Stats)
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkAllAsRead(r.Context()); err != nil {
		respondUpstream(w, err)
		return
	}
	respondData(w, s.notifications.Snapshot().Stats)
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "notification id must be a positive integer", nil)
		return
	}
	if err := s.notifications.DeleteNotification(r.Context(), id); err != nil {
		respondUpstream(w, err)
		return
	}
	respondData(w, s.notifications.Snapshot().Stats)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.ConnectRealTime(r.Context()); err != nil {
		respondUpstream(w, err)
		return
	}
	respondData(w, map[string]string{"realtime": s.notifications.Snapshot().State.String()})
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	s.notifications.DisconnectRealTime()
	respondData(w, map[string]string{"realtime": s.notifications.Snapshot().State.String()})
}

// respondUpstream maps a synchronizer error to a response. Backend
// rejections keep their status code in the details.
func respondUpstream(w http.ResponseWriter, err error) {
	var opErr *lqsync.OperationError
	if errors.As(err, &opErr) {
		respondJSON(w, http.StatusBadGateway, &Response{
			Status:   "error",
			Metadata: Metadata{Timestamp: time.Now()},
			Error: &APIError{
				Code:    CodeUpstream,
				Message: opErr.Error(),
				Details: map[string]any{
					"statusCode": opErr.StatusCode,
					"errorCode":  opErr.ErrorCode,
					"failure":    string(opErr.Failure),
				},
			},
		})
		return
	}
	respondError(w, http.StatusBadGateway, CodeUpstream, "upstream call failed", err)
}

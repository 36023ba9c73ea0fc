// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/models"
)

// RealTimePath is the push stream path relative to the API base.
const RealTimePath = "/Notifications/real-time"

// NotificationService wraps the /Notifications endpoints.
type NotificationService struct {
	t      Transport
	tokens apiclient.TokenSource
}

// NewNotificationService creates the notification façade. tokens supplies
// the bearer token embedded in the push stream URL.
func NewNotificationService(t Transport, tokens apiclient.TokenSource) *NotificationService {
	return &NotificationService{t: t, tokens: tokens}
}

// List returns one page of notifications.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) apiclient.Envelope[models.NotificationPage] {
	q := pageQuery(filter.Page, filter.PageSize)
	if filter.UnreadOnly {
		q.Set("unreadOnly", "true")
	}
	if filter.Type != "" {
		q.Set("type", string(filter.Type))
	}
	if filter.Priority != "" {
		q.Set("priority", string(filter.Priority))
	}
	if filter.Since != nil {
		q.Set("since", filter.Since.UTC().Format(time.RFC3339))
	}
	return call[models.NotificationPage](ctx, s.t, get("/Notifications", q), filter)
}

// Stats returns the aggregate notification counts.
func (s *NotificationService) Stats(ctx context.Context) apiclient.Envelope[models.NotificationStats] {
	return apiclient.Call[models.NotificationStats](ctx, s.t, get("/Notifications/stats", nil))
}

// MarkAsRead marks the given notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, ids []int64) apiclient.Envelope[apiclient.Empty] {
	req := models.MarkAsReadRequest{NotificationIDs: ids}
	return call[apiclient.Empty](ctx, s.t, put("/Notifications/mark-as-read", req), req)
}

// MarkAllAsRead marks every notification of the user as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) apiclient.Envelope[apiclient.Empty] {
	return apiclient.Call[apiclient.Empty](ctx, s.t, put("/Notifications/mark-all-as-read", nil))
}

// Delete deletes one notification.
func (s *NotificationService) Delete(ctx context.Context, notificationID int64) apiclient.Envelope[apiclient.Empty] {
	return apiclient.Call[apiclient.Empty](ctx, s.t, del("/Notifications/"+id(notificationID)))
}

// DeleteAll deletes every notification of the user.
func (s *NotificationService) DeleteAll(ctx context.Context) apiclient.Envelope[apiclient.Empty] {
	return apiclient.Call[apiclient.Empty](ctx, s.t, del("/Notifications/delete-all"))
}

// RealTimeURL builds the push stream URL {base}/Notifications/real-time?token=...
// on the active endpoint.
func (s *NotificationService) RealTimeURL(ctx context.Context) (string, error) {
	token := s.tokens.AccessToken()
	if token == "" {
		return "", ErrNotAuthenticated
	}
	base, ok := s.t.Endpoint(ctx)
	if !ok {
		return "", ErrNoEndpoint
	}
	return strings.TrimRight(base, "/") + RealTimePath + "?" + url.Values{"token": {token}}.Encode(), nil
}

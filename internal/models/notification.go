// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package models

import (
	"time"
)

// NotificationType is the category of a notification.
type NotificationType string

// Notification categories sent by the backend.
const (
	NotificationCourseEnrollment NotificationType = "CourseEnrollment"
	NotificationCourseUpdate     NotificationType = "CourseUpdate"
	NotificationNewContent       NotificationType = "NewContent"
	NotificationAssignment       NotificationType = "Assignment"
	NotificationAchievement      NotificationType = "Achievement"
	NotificationReminder         NotificationType = "Reminder"
	NotificationAnnouncement     NotificationType = "Announcement"
	NotificationSystem           NotificationType = "System"
)

// Priority of a notification.
type Priority string

// Notification priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

// Notification is one entry of a user's notification center.
//
// IsRead only ever moves from false to true; ReadAt is set on the first
// mark-as-read and never changes afterwards.
type Notification struct {
	NotificationID int64            `json:"notificationId"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	Priority       Priority         `json:"priority"`
	IsRead         bool             `json:"isRead"`
	CreatedAt      time.Time        `json:"createdAt"`
	ReadAt         *time.Time       `json:"readAt,omitempty"`

	// Optional linkage
	CourseID      *int64 `json:"courseId,omitempty"`
	ContentID     *int64 `json:"contentId,omitempty"`
	AchievementID *int64 `json:"achievementId,omitempty"`
	ActionURL     string `json:"actionUrl,omitempty"`
}

// IsHighPriority reports whether the notification counts toward HighPriorityUnread.
func (n *Notification) IsHighPriority() bool {
	return n.Priority == PriorityHigh
}

// NotificationStats is the server-side aggregate over all of a user's notifications.
type NotificationStats struct {
	TotalNotifications      int            `json:"totalNotifications"`
	UnreadCount             int            `json:"unreadCount"`
	TodayCount              int            `json:"todayCount"`
	HighPriorityUnread      int            `json:"highPriorityUnread"`
	NotificationsByType     map[string]int `json:"notificationsByType,omitempty"`
	NotificationsByPriority map[string]int `json:"notificationsByPriority,omitempty"`
}

// Clone returns a deep copy.
func (s NotificationStats) Clone() NotificationStats {
	out := s
	if s.NotificationsByType != nil {
		out.NotificationsByType = make(map[string]int, len(s.NotificationsByType))
		for k, v := range s.NotificationsByType {
			out.NotificationsByType[k] = v
		}
	}
	if s.NotificationsByPriority != nil {
		out.NotificationsByPriority = make(map[string]int, len(s.NotificationsByPriority))
		for k, v := range s.NotificationsByPriority {
			out.NotificationsByPriority[k] = v
		}
	}
	return out
}

// NotificationFilter selects a page of notifications.
type NotificationFilter struct {
	Page       int              `json:"page,omitempty" validate:"gte=0"`
	PageSize   int              `json:"pageSize,omitempty" validate:"gte=0,lte=100"`
	UnreadOnly bool             `json:"unreadOnly,omitempty"`
	Type       NotificationType `json:"type,omitempty"`
	Priority   Priority         `json:"priority,omitempty" validate:"omitempty,oneof=High Normal Low"`
	Since      *time.Time       `json:"since,omitempty"`
}

// NotificationPage is one page of notifications, optionally carrying the
// stats snapshot taken with it.
type NotificationPage struct {
	Notifications []Notification     `json:"notifications"`
	TotalCount    int                `json:"totalCount"`
	Page          int                `json:"page"`
	PageSize      int                `json:"pageSize"`
	TotalPages    int                `json:"totalPages"`
	Stats         *NotificationStats `json:"stats,omitempty"`
}

// MarkAsReadRequest is the body of the mark-as-read call.
type MarkAsReadRequest struct {
	NotificationIDs []int64 `json:"notificationIds" validate:"required,min=1"`
}

// Real-time event names.
const (
	EventNotificationCreated = "notification_created"
	EventNotificationUpdated = "notification_updated"
	EventConnected           = "connected"
	EventHeartbeat           = "heartbeat"
)

// RealTimeEvent is one message of the notification push stream.
//
// Stats is authoritative: receivers replace their local aggregate with it.
type RealTimeEvent struct {
	Event        string             `json:"event"`
	Notification *Notification      `json:"notification,omitempty"`
	Stats        *NotificationStats `json:"stats,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

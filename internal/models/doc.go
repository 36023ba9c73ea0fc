// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package models defines the payloads exchanged with the LearnQuest backend.

The backend serializes camelCase JSON. Envelope-level casing differences
(data/Data, message/Message) are handled by apiclient, not here.

Model groups:

  - Notification, NotificationStats, RealTimeEvent: notification center and push stream
  - SignInRequest, AuthTokens, User: authentication
  - Profile, UpdateProfileRequest, ChangePasswordRequest: account profile
  - Course, CourseInput, CourseFilter, CourseCategory, Enrollment: catalog
  - Section, Content, ReorderRequest: course content

Request types carry go-playground/validator tags; internal/api validates
them before a request leaves the process.
*/
package models

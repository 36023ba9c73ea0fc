// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

// Package statusserver exposes the notification daemon over a local chi
// HTTP API: liveness, Prometheus metrics, the endpoint cache, the
// synchronizer snapshot, and control calls that mark, delete and reconnect.
//
// Every body is a Response envelope. Control calls need a signed-in session;
// upstream rejections come back as 502 with the backend's status code in
// error.details.
package statusserver

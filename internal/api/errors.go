// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

// Package api provides the LearnQuest domain façades.
//
// errors.go - Precondition errors
//
// Expected failures (network, HTTP status, malformed body) are reported in
// the returned envelope. The errors below are caller mistakes.
package api

import "errors"

var (
	// ErrNoRefreshToken indicates RefreshToken was called without a stored refresh token.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrNotAuthenticated indicates an operation needs a signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ErrNoEndpoint indicates no API endpoint candidate is reachable.
var ErrNoEndpoint = errors.New("no reachable API endpoint")

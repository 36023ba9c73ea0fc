// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

// Package session holds the signed-in user's access and refresh tokens.
//
// Manager is the in-process view read by every request (it implements
// apiclient.TokenSource). Tokens are persisted through a Store: MemoryStore
// for short-lived processes, BadgerStore for a daemon that should stay signed
// in across restarts, optionally sealing tokens with AES-GCM.
//
// Sign-in and sign-out are announced to listeners registered with OnChange;
// the notification synchronizer uses this to open and close its push stream.
package session

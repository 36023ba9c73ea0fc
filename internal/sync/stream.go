// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"context"
	"fmt"
	"time"
)

// ConnectionState is the push stream state owned by the Synchronizer.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalText renders the state by name in JSON snapshots.
func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Message is one event received on a push stream.
type Message struct {
	// Event is the SSE event type; empty for WebSocket frames.
	Event string
	ID    string
	Data  []byte
}

// StreamHandlers are the callbacks a push stream drives. OnOpen fires on
// every successful (re)connect, OnError on every failure. Callbacks run on
// the stream's goroutine, one at a time.
type StreamHandlers struct {
	OnOpen    func()
	OnMessage func(Message)
	OnError   func(error)
}

func (h StreamHandlers) open() {
	if h.OnOpen != nil {
		h.OnOpen()
	}
}

func (h StreamHandlers) message(m Message) {
	if h.OnMessage != nil {
		h.OnMessage(m)
	}
}

func (h StreamHandlers) fail(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// Subscription is the handle of an open push stream.
type Subscription interface {
	// Close stops the stream. It is idempotent and does not wait for a
	// callback already in flight.
	Close()

	// IsActive reports whether the stream is still running or reconnecting.
	// A stream that ended on a terminal error is inactive.
	IsActive() bool
}

// URLSource yields the stream URL. Dialers call it before every connection
// attempt, so a reconnect carries the current access token.
type URLSource func(ctx context.Context) (string, error)

// StaticURL returns a URLSource that always yields url.
func StaticURL(url string) URLSource {
	return func(context.Context) (string, error) { return url, nil }
}

// StreamDialer opens push streams. The stream lives until ctx is canceled,
// the subscription is closed, or a terminal error ends it. A URLSource error
// is terminal.
type StreamDialer interface {
	Open(ctx context.Context, url URLSource, handlers StreamHandlers) Subscription
}

// StreamError is a terminal handshake failure: the server answered, but not
// with a stream.
type StreamError struct {
	StatusCode  int
	ContentType string

	// Err is set when the stream could not be requested at all.
	Err error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return "push stream: " + e.Err.Error()
	}
	if e.ContentType != "" {
		return fmt.Sprintf("push stream rejected: status %d, content type %q", e.StatusCode, e.ContentType)
	}
	return fmt.Sprintf("push stream rejected: status %d", e.StatusCode)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Backoff doubles a reconnect delay up to a ceiling.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration

	current time.Duration
}

// Next returns the delay to wait before the next attempt.
func (b *Backoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.Initial
		if b.current <= 0 {
			b.current = time.Second
		}
		return b.current
	}
	b.current *= 2
	if b.Max > 0 && b.current > b.Max {
		b.current = b.Max
	}
	return b.current
}

// Reset restarts the sequence at Initial.
func (b *Backoff) Reset() {
	b.current = 0
}

// sleep waits d or until ctx is done. Reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

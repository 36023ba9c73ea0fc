// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
websocket.go - WebSocket push transport

Alternative to the SSE stream for deployments whose proxies buffer
text/event-stream responses.

WebSocket Endpoint: ws(s)://{api_base}/Notifications/real-time?token={token}
*/

package sync

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/logging"
)

// WebSocketDialer opens push streams over WebSocket. Text and binary frames
// are delivered as messages. Lost connections are re-dialed with exponential
// backoff; a handshake rejected with a 4xx status ends the stream.
type WebSocketDialer struct {
	Dialer *websocket.Dialer

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	ReadTimeout       time.Duration
}

// NewWebSocketDialer creates a dialer with 30s pings and a 60s read deadline.
func NewWebSocketDialer(reconnectDelay, maxReconnectDelay time.Duration) *WebSocketDialer {
	return &WebSocketDialer{
		Dialer: &websocket.Dialer{
			HandshakeTimeout:  10 * time.Second,
			EnableCompression: true,
		},
		ReconnectDelay:    reconnectDelay,
		MaxReconnectDelay: maxReconnectDelay,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
	}
}

// WebSocketURL converts an http(s) URL to ws(s). Other schemes are kept.
func WebSocketURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	default:
		return raw
	}
}

// Open implements StreamDialer.
func (d *WebSocketDialer) Open(ctx context.Context, url URLSource, h StreamHandlers) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &streamSub{cancel: cancel, done: make(chan struct{})}
	sub.active.Store(true)

	c := &wsStream{
		dialer:  d,
		source:  url,
		h:       guard(ctx, h),
		backoff: Backoff{Initial: d.ReconnectDelay, Max: d.MaxReconnectDelay},
		logger:  logging.WithComponent("websocket"),
	}
	go func() {
		defer close(sub.done)
		defer sub.active.Store(false)
		c.listen(ctx)
	}()
	return sub
}

type wsStream struct {
	dialer  *WebSocketDialer
	source  URLSource
	h       StreamHandlers
	backoff Backoff
	logger  zerolog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
}

// listen dials, reads until the connection drops and re-dials.
func (c *wsStream) listen(ctx context.Context) {
	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		if serr, ok := err.(*StreamError); ok {
			c.logger.Warn().Err(serr).Msg("WebSocket handshake rejected, giving up")
			c.h.fail(serr)
			return
		}
		c.h.fail(err)

		delay := c.backoff.Next()
		c.logger.Info().Err(err).Dur("delay", delay).Msg("Connection lost, reconnecting...")
		if !sleep(ctx, delay) {
			return
		}
	}
}

// connect runs one connection until it fails. It always returns a non-nil error.
func (c *wsStream) connect(ctx context.Context) error {
	dialer := c.dialer.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	raw, err := c.source(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StreamError{Err: err}
	}
	url := WebSocketURL(raw)

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Msg("Failed to close handshake response body")
		}
	}
	if err != nil {
		if resp != nil && isTerminalStatus(resp.StatusCode) {
			return &StreamError{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
		}
		if resp != nil {
			return fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	defer c.closeConnection()

	c.logger.Debug().Str("url", logging.RedactURL(url)).Msg("Connected")
	c.backoff.Reset()
	c.h.open()

	connCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.pingLoop(connCtx, conn)

	// Unblock the read when the stream is closed.
	go func() {
		<-connCtx.Done()
		if ctx.Err() != nil {
			c.closeConnection()
		}
	}()

	readTimeout := c.dialer.ReadTimeout
	conn.SetPongHandler(func(string) error {
		if readTimeout > 0 {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		}
		return nil
	})

	for {
		if readTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
				return err
			}
		}
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errStreamEnded
			}
			return err
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			c.h.message(Message{Data: data})
		}
	}
}

// pingLoop sends periodic ping control frames.
func (c *wsStream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	interval := c.dialer.PingInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.connMu.Unlock()
			if err != nil {
				c.logger.Debug().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}

// closeConnection sends a close frame and closes the connection.
func (c *wsStream) closeConnection() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	if err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(1*time.Second),
	); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close message")
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to close connection")
	}
	c.conn = nil
}

// isTerminalStatus reports handshake statuses that retrying will not fix.
func isTerminalStatus(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}

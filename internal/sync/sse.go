// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/logging"
)

// maxEventBytes bounds a single SSE line.
const maxEventBytes = 1 << 20

// errStreamEnded reports a stream closed by the server.
var errStreamEnded = errors.New("push stream closed by server")

// SSEDialer opens server-sent event streams with EventSource semantics:
// reconnect after a network drop, resume with Last-Event-ID and honor the
// server's retry field. A non-200 answer or a wrong content type ends the
// stream.
type SSEDialer struct {
	Client *http.Client

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	UserAgent         string
}

// NewSSEDialer creates a dialer. The client must not set a Timeout, since
// streams are long-lived.
func NewSSEDialer(reconnectDelay, maxReconnectDelay time.Duration) *SSEDialer {
	return &SSEDialer{
		Client:            &http.Client{},
		ReconnectDelay:    reconnectDelay,
		MaxReconnectDelay: maxReconnectDelay,
	}
}

// Open implements StreamDialer.
func (d *SSEDialer) Open(ctx context.Context, url URLSource, h StreamHandlers) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &streamSub{cancel: cancel, done: make(chan struct{})}
	sub.active.Store(true)

	s := &sseStream{
		dialer:  d,
		source:  url,
		h:       guard(ctx, h),
		backoff: Backoff{Initial: d.ReconnectDelay, Max: d.MaxReconnectDelay},
		logger:  logging.WithComponent("sse"),
	}
	go func() {
		defer close(sub.done)
		defer sub.active.Store(false)
		s.run(ctx)
	}()
	return sub
}

type sseStream struct {
	dialer  *SSEDialer
	source  URLSource
	h       StreamHandlers
	backoff Backoff
	logger  zerolog.Logger

	lastID string
	retry  time.Duration
}

func (s *sseStream) run(ctx context.Context) {
	for {
		err := s.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		var serr *StreamError
		if errors.As(err, &serr) {
			s.logger.Warn().Err(err).Msg("Push stream rejected, giving up")
			s.h.fail(err)
			return
		}

		s.h.fail(err)
		delay := s.backoff.Next()
		if s.retry > 0 {
			delay = s.retry
		}
		s.logger.Info().Err(err).Dur("delay", delay).Msg("Push stream lost, reconnecting")
		if !sleep(ctx, delay) {
			return
		}
	}
}

// connect runs one connection until it fails. It always returns a non-nil error.
func (s *sseStream) connect(ctx context.Context) error {
	url, err := s.source(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StreamError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return &StreamError{Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.lastID != "" {
		req.Header.Set("Last-Event-ID", s.lastID)
	}
	if s.dialer.UserAgent != "" {
		req.Header.Set("User-Agent", s.dialer.UserAgent)
	}

	client := s.dialer.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Debug().Err(cerr).Msg("Failed to close stream body")
		}
	}()

	ct := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ct)
	if resp.StatusCode != http.StatusOK || mediaType != "text/event-stream" {
		return &StreamError{StatusCode: resp.StatusCode, ContentType: ct}
	}

	s.logger.Debug().Str("url", logging.RedactURL(url)).Msg("Push stream open")
	s.backoff.Reset()
	s.h.open()

	err = s.read(resp.Body)
	if err == nil {
		err = errStreamEnded
	}
	return err
}

// read parses the event stream until EOF or a read error.
func (s *sseStream) read(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxEventBytes)

	var (
		data    bytes.Buffer
		event   string
		hasData bool
	)
	id := s.lastID
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if hasData {
				payload := bytes.TrimSuffix(data.Bytes(), []byte("\n"))
				s.h.message(Message{Event: event, ID: id, Data: append([]byte(nil), payload...)})
			}
			data.Reset()
			event, hasData = "", false
			id = s.lastID
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "event":
			event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				s.lastID = value
				id = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				s.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
	return scanner.Err()
}

// streamSub is the Subscription of a stream goroutine.
type streamSub struct {
	cancel context.CancelFunc
	done   chan struct{}
	active atomic.Bool
}

func (s *streamSub) Close() {
	s.active.Store(false)
	s.cancel()
}

func (s *streamSub) IsActive() bool {
	return s.active.Load()
}

// guard drops callbacks once ctx is done.
func guard(ctx context.Context, h StreamHandlers) StreamHandlers {
	return StreamHandlers{
		OnOpen: func() {
			if ctx.Err() == nil {
				h.open()
			}
		},
		OnMessage: func(m Message) {
			if ctx.Err() == nil {
				h.message(m)
			}
		},
		OnError: func(err error) {
			if ctx.Err() == nil {
				h.fail(err)
			}
		},
	}
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/metrics"
)

// DefaultTimeout applies when neither the executor nor the request sets one.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	AccessToken() string
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	HTTPClient *http.Client
	Tokens     TokenSource
	Timeout    time.Duration
	UserAgent  string

	// RateLimit throttles outgoing requests; 0 disables throttling.
	RateLimit rate.Limit
	RateBurst int
}

// Executor performs one HTTP exchange against a given base URL and turns the
// outcome into a Response. It holds no endpoint state.
type Executor struct {
	client    *http.Client
	tokens    TokenSource
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// NewExecutor creates an executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	e := &Executor{
		client:    cfg.HTTPClient,
		tokens:    cfg.Tokens,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    logging.WithComponent("apiclient"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}
	return e
}

// Do sends req to base and returns the normalized response. It never returns nil.
func (e *Executor) Do(ctx context.Context, base string, req *Request) *Response {
	start := time.Now()
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	metrics.TrackActiveRequest(true)
	resp := e.do(ctx, method, base, req)
	metrics.TrackActiveRequest(false)

	resp.Endpoint = base
	duration := time.Since(start)
	metrics.RecordAPIRequest(method, resp.Outcome(), duration)

	ev := logging.Ctx(ctx).Debug()
	if !resp.Success && resp.Failure != FailureHTTP {
		ev = logging.Ctx(ctx).Warn()
	}
	ev.Str("component", "apiclient").
		Str("method", method).
		Str("url", logging.RedactURL(req.URL(base))).
		Int("status", resp.StatusCode).
		Bool("success", resp.Success).
		Str("failure", string(resp.Failure)).
		Dur("duration", duration).
		Msg("API request")
	return resp
}

func (e *Executor) do(ctx context.Context, method, base string, req *Request) *Response {
	if req.Body != nil && req.Form != nil {
		return &Response{Failure: FailureInvalidRequest, Message: "request cannot carry both a JSON body and a multipart form"}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if e.limiter != nil {
		if err := e.limiter.Wait(reqCtx); err != nil {
			// Wait also fails early when the deadline cannot be met.
			if errors.Is(ctx.Err(), context.Canceled) {
				return &Response{Failure: FailureCanceled, Message: MsgCanceled}
			}
			return &Response{Failure: FailureTimeout, Message: MsgTimeout}
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return &Response{Failure: FailureInvalidRequest, Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, method, req.URL(base), body)
	if err != nil {
		return &Response{Failure: FailureInvalidRequest, Message: fmt.Sprintf("invalid request: %v", err)}
	}
	e.applyHeaders(ctx, httpReq, req, contentType)

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return e.transportFailure(ctx, reqCtx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return e.transportFailure(ctx, reqCtx, err)
	}
	return Adapt(httpResp.StatusCode, httpResp.Header.Get("Content-Type"), data)
}

// encodeBody returns the request body and its content type. The content type
// is application/json for everything except multipart, whose boundary-bearing
// type comes from the encoder.
func encodeBody(req *Request) (io.Reader, string, error) {
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.Encode()
		if err != nil {
			return nil, "", err
		}
		return buf, ct, nil
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return http.NoBody, "application/json", nil
	}
}

// applyHeaders sets defaults, then the bearer token, then caller headers.
func (e *Executor) applyHeaders(ctx context.Context, httpReq *http.Request, req *Request, contentType string) {
	h := httpReq.Header
	h.Set("Accept", "application/json")
	h.Set("Content-Type", contentType)
	if e.userAgent != "" {
		h.Set("User-Agent", e.userAgent)
	}

	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	h.Set("X-Correlation-Id", correlationID)

	if e.tokens != nil {
		if token := e.tokens.AccessToken(); token != "" {
			h.Set("Authorization", "Bearer "+token)
		}
	}

	for k, v := range req.Headers {
		if req.Form != nil && strings.EqualFold(k, "Content-Type") {
			continue
		}
		h.Set(k, v)
	}
}

// transportFailure classifies an error that prevented a complete HTTP exchange.
// parent is the caller's context, reqCtx the one carrying the request timeout.
func (e *Executor) transportFailure(parent, reqCtx context.Context, err error) *Response {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return &Response{Failure: FailureCanceled, Message: MsgCanceled}
	case reqCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return &Response{Failure: FailureTimeout, Message: MsgTimeout}
	default:
		return &Response{Failure: FailureNetwork, Message: "network error: " + err.Error()}
	}
}

// isTimeout reports net.Error timeouts from the transport.
func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

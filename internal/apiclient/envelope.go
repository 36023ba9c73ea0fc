// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package apiclient

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/learnquest/internal/validation"
)

// FailureKind classifies an unsuccessful Response.
type FailureKind string

// Failure kinds. The zero value means the request succeeded.
const (
	FailureNone           FailureKind = ""
	FailureHTTP           FailureKind = "http"
	FailureNetwork        FailureKind = "network"
	FailureTimeout        FailureKind = "timeout"
	FailureUnreachable    FailureKind = "unreachable"
	FailureInvalidRequest FailureKind = "invalid_request"
	FailureCanceled       FailureKind = "canceled"
	FailureDecode         FailureKind = "decode"
)

// Response is the normalized result of one request. Every code path of the
// executor and client produces one; expected failures are never Go errors.
type Response struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	ErrorCode  string              `json:"errorCode,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	StatusCode int                 `json:"statusCode,omitempty"`

	Failure FailureKind `json:"failure,omitempty"`

	// Endpoint is the base URL the request was sent to, if any.
	Endpoint string `json:"-"`
}

// IsConnectivityFailure reports whether the failure means the endpoint itself
// could not be talked to, as opposed to the server rejecting the request.
func (r *Response) IsConnectivityFailure() bool {
	switch r.Failure {
	case FailureNetwork, FailureTimeout, FailureUnreachable:
		return true
	default:
		return false
	}
}

// Outcome is the metric label for r.
func (r *Response) Outcome() string {
	if r.Success {
		return "success"
	}
	if r.Failure == FailureHTTP {
		return "http_error"
	}
	if r.Failure == FailureNone {
		return "failure"
	}
	return string(r.Failure)
}

// Envelope is a Response whose data has been decoded into T.
type Envelope[T any] struct {
	Success    bool                `json:"success"`
	Data       T                   `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	ErrorCode  string              `json:"errorCode,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	StatusCode int                 `json:"statusCode,omitempty"`
	Failure    FailureKind         `json:"failure,omitempty"`
}

// Empty is the data type of calls whose payload is ignored.
type Empty struct{}

// Decode converts r into an Envelope[T]. Data is decoded only for successful
// responses; a successful response whose data does not fit T becomes a
// FailureDecode envelope.
func Decode[T any](r *Response) Envelope[T] {
	env := Envelope[T]{
		Success:    r.Success,
		Message:    r.Message,
		ErrorCode:  r.ErrorCode,
		Errors:     r.Errors,
		StatusCode: r.StatusCode,
		Failure:    r.Failure,
	}
	if !r.Success || len(r.Data) == 0 || string(r.Data) == "null" {
		return env
	}
	if err := json.Unmarshal(r.Data, &env.Data); err != nil {
		var zero T
		env.Data = zero
		env.Success = false
		env.Failure = FailureDecode
		env.Message = fmt.Sprintf("unexpected response data: %v", err)
	}
	return env
}

// Failed builds a failure envelope of kind with message.
func Failed[T any](kind FailureKind, message string) Envelope[T] {
	return Envelope[T]{Failure: kind, Message: message}
}

// Invalid builds an invalid_request envelope from a validation failure. The
// field map uses the same shape as backend validation errors.
func Invalid[T any](verr *validation.RequestValidationError) Envelope[T] {
	return Envelope[T]{
		Failure: FailureInvalidRequest,
		Message: MsgInvalidData,
		Errors:  verr.FieldErrors(),
	}
}

// Map converts an envelope to another data type, keeping status fields.
func Map[T, U any](env Envelope[T], fn func(T) U) Envelope[U] {
	out := Envelope[U]{
		Success:    env.Success,
		Message:    env.Message,
		ErrorCode:  env.ErrorCode,
		Errors:     env.Errors,
		StatusCode: env.StatusCode,
		Failure:    env.Failure,
	}
	if env.Success {
		out.Data = fn(env.Data)
	}
	return out
}

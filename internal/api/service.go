// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/validation"
)

// Transport is the client surface façades use. *apiclient.Client implements it.
type Transport interface {
	apiclient.Doer
	Endpoint(ctx context.Context) (string, bool)
}

// call validates input (when non-nil) and sends req.
func call[T any](ctx context.Context, t apiclient.Doer, req *apiclient.Request, input any) apiclient.Envelope[T] {
	if input != nil {
		if verr := validation.ValidateStruct(input); verr != nil {
			return apiclient.Invalid[T](verr)
		}
	}
	return apiclient.Call[T](ctx, t, req)
}

func get(path string, query url.Values) *apiclient.Request {
	return &apiclient.Request{Method: http.MethodGet, Path: path, Query: query}
}

func post(path string, body any) *apiclient.Request {
	return &apiclient.Request{Method: http.MethodPost, Path: path, Body: body}
}

func put(path string, body any) *apiclient.Request {
	return &apiclient.Request{Method: http.MethodPut, Path: path, Body: body}
}

func del(path string) *apiclient.Request {
	return &apiclient.Request{Method: http.MethodDelete, Path: path}
}

func upload(method, path string, form *apiclient.Form) *apiclient.Request {
	return &apiclient.Request{Method: method, Path: path, Form: form}
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// setInt adds key to q when v is positive.
func setInt(q url.Values, key string, v int64) {
	if v > 0 {
		q.Set(key, strconv.FormatInt(v, 10))
	}
}

// formFailure reports a form that could not be built from input.
func formFailure[T any](err error) apiclient.Envelope[T] {
	return apiclient.Failed[T](apiclient.FailureInvalidRequest, "invalid form data: "+err.Error())
}

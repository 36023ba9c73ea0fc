// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/learnquest/internal/endpoint"
)

// Doer is what domain façades need from the client.
type Doer interface {
	Do(ctx context.Context, req *Request) *Response
}

// Client is the resilient API client: it resolves a live endpoint, runs the
// request through the executor and self-heals its endpoint cache after
// connectivity failures.
type Client struct {
	resolver *endpoint.Resolver
	exec     *Executor
}

// New creates a client over resolver and exec.
func New(resolver *endpoint.Resolver, exec *Executor) *Client {
	return &Client{resolver: resolver, exec: exec}
}

// Resolver returns the client's endpoint resolver.
func (c *Client) Resolver() *endpoint.Resolver {
	return c.resolver
}

// Endpoint resolves the active base URL.
func (c *Client) Endpoint(ctx context.Context) (string, bool) {
	return c.resolver.Resolve(ctx)
}

// Do sends req. When no candidate is reachable it returns an unreachable
// failure naming every candidate tried, without sending anything. A network
// or timeout failure invalidates the endpoint it was sent to; HTTP error
// statuses keep it.
func (c *Client) Do(ctx context.Context, req *Request) *Response {
	if req.IsAbsolute() {
		return c.exec.Do(ctx, "", req)
	}

	base, ok := c.resolver.Resolve(ctx)
	if !ok {
		if ctx.Err() != nil {
			return &Response{Failure: FailureCanceled, Message: MsgCanceled}
		}
		return Unreachable(c.resolver.State().Candidates())
	}

	resp := c.exec.Do(ctx, base, req)
	if resp.Failure == FailureNetwork || resp.Failure == FailureTimeout {
		c.resolver.InvalidateEndpoint(base)
	}
	return resp
}

// Unreachable builds the failure returned when every candidate is down.
func Unreachable(candidates []string) *Response {
	return &Response{
		Failure: FailureUnreachable,
		Message: fmt.Sprintf("no reachable API endpoint (tried: %s)", strings.Join(candidates, ", ")),
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) *Response {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) *Response {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) *Response {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) *Response {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Upload sends a multipart request with method (POST or PUT).
func (c *Client) Upload(ctx context.Context, method, path string, form *Form) *Response {
	return c.Do(ctx, &Request{Method: method, Path: path, Form: form})
}

// Call sends req through d and decodes the data into T.
func Call[T any](ctx context.Context, d Doer, req *Request) Envelope[T] {
	return Decode[T](d.Do(ctx, req))
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package apiclient

import (
	"net/url"
	"strings"
	"time"
)

// Request describes one API call. Body and Form are mutually exclusive.
type Request struct {
	Method string

	// Path is relative to the resolved endpoint (e.g. "/Courses/12").
	// An absolute http(s) URL bypasses endpoint resolution.
	Path string

	Query url.Values

	// Body is serialized as JSON.
	Body any

	// Form is sent as multipart/form-data.
	Form *Form

	// Headers are applied last and win over defaults, except that
	// Content-Type is never overridden for multipart bodies.
	Headers map[string]string

	// Timeout overrides the executor's default.
	Timeout time.Duration
}

// IsAbsolute reports whether Path is a full URL.
func (r *Request) IsAbsolute() bool {
	p := strings.ToLower(r.Path)
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// URL joins base and the request path and appends the query.
func (r *Request) URL(base string) string {
	var u string
	if r.IsAbsolute() {
		u = r.Path
	} else {
		u = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Path, "/")
	}
	if len(r.Query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + r.Query.Encode()
}

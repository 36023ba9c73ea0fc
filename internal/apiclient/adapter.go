// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package apiclient

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// Messages used when the backend does not supply one.
const (
	MsgInvalidData   = "invalid data"
	MsgUnauthorized  = "unauthorized"
	MsgForbidden     = "forbidden"
	MsgNotFound      = "not found"
	MsgServerError   = "server error"
	MsgRequestFailed = "request failed"
	MsgTimeout       = "timeout"
	MsgCanceled      = "request canceled"
)

// maxTextMessage bounds plain-text bodies copied into Message.
const maxTextMessage = 512

// StatusMessage maps an HTTP status to the fallback message of a failure.
func StatusMessage(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return MsgInvalidData
	case status == http.StatusUnauthorized:
		return MsgUnauthorized
	case status == http.StatusForbidden:
		return MsgForbidden
	case status == http.StatusNotFound:
		return MsgNotFound
	case status >= 500 && status <= 599:
		return MsgServerError
	default:
		return MsgRequestFailed
	}
}

// envelopeKeys lists, per field, the accepted member names in precedence
// order: camelCase first, PascalCase as fallback.
var envelopeKeys = struct {
	success, data, message, errors, errorCode []string
}{
	success:   []string{"success", "Success"},
	data:      []string{"data", "Data"},
	message:   []string{"message", "Message"},
	errors:    []string{"errors", "Errors"},
	errorCode: []string{"errorCode", "ErrorCode"},
}

// lookup returns the first member of obj named in keys.
func lookup(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Adapt normalizes a raw HTTP response into a Response.
//
// JSON bodies are read as {data|Data, message|Message, errors|Errors,
// errorCode|ErrorCode, success|Success}, preferring the lowercase member when
// both are present. A 2xx JSON body carrying none of those members is the
// data itself. A non-JSON body becomes the message. A 2xx body that declares
// JSON but does not parse is a decode failure; on any other status it is
// ignored and the failure stays an HTTP failure. Missing failure messages
// are filled from StatusMessage.
func Adapt(status int, contentType string, body []byte) *Response {
	ok2xx := status >= 200 && status < 300
	resp := &Response{Success: ok2xx, StatusCode: status}

	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		// nothing to parse
	case isJSON(contentType):
		if !adaptJSON(resp, trimmed) && ok2xx {
			resp.Success = false
			resp.Failure = FailureDecode
			resp.Message = "invalid JSON response: " + truncate(string(trimmed))
		}
	default:
		resp.Message = truncate(string(trimmed))
	}

	if !resp.Success {
		if resp.Failure == FailureNone {
			resp.Failure = FailureHTTP
		}
		if resp.Message == "" {
			resp.Message = StatusMessage(status)
		}
	}
	return resp
}

// adaptJSON fills resp from a JSON body. Returns false when body is not valid JSON.
func adaptJSON(resp *Response, body []byte) bool {
	if !json.Valid(body) {
		return false
	}
	if body[0] != '{' {
		// Arrays and scalars are bare data.
		if resp.Success {
			resp.Data = json.RawMessage(body)
		}
		return true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return false
	}

	enveloped := false
	if raw, ok := lookup(obj, envelopeKeys.success); ok {
		enveloped = true
		var s bool
		if json.Unmarshal(raw, &s) == nil && !s {
			resp.Success = false
		}
	}
	if raw, ok := lookup(obj, envelopeKeys.data); ok {
		enveloped = true
		resp.Data = raw
	}
	if raw, ok := lookup(obj, envelopeKeys.message); ok {
		enveloped = true
		resp.Message = rawString(raw)
	}
	if raw, ok := lookup(obj, envelopeKeys.errorCode); ok {
		enveloped = true
		resp.ErrorCode = rawString(raw)
	}
	if raw, ok := lookup(obj, envelopeKeys.errors); ok {
		enveloped = true
		resp.Errors = normalizeErrors(raw)
	}

	if !enveloped && resp.Success {
		resp.Data = json.RawMessage(body)
	}
	if !resp.Success && resp.Message == "" {
		resp.Message = firstError(resp.Errors)
	}
	return true
}

// rawString reads a JSON string member; other JSON values are returned as text.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// normalizeErrors accepts {field: [msg...]}, {field: msg} or a bare list and
// returns {field: [msg...]}.
func normalizeErrors(raw json.RawMessage) map[string][]string {
	var multi map[string][]string
	if err := json.Unmarshal(raw, &multi); err == nil {
		return nonEmpty(multi)
	}

	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err == nil {
		out := make(map[string][]string, len(loose))
		for field, v := range loose {
			switch val := v.(type) {
			case string:
				out[field] = []string{val}
			case []any:
				for _, item := range val {
					out[field] = append(out[field], fmt.Sprint(item))
				}
			case nil:
			default:
				out[field] = []string{fmt.Sprint(val)}
			}
		}
		return nonEmpty(out)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return map[string][]string{"": list}
	}
	return nil
}

func nonEmpty(m map[string][]string) map[string][]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

// firstError returns the first message of the alphabetically first field.
func firstError(errs map[string][]string) string {
	if len(errs) == 0 {
		return ""
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if len(errs[f]) > 0 {
			return errs[f][0]
		}
	}
	return ""
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

// truncate cuts s to maxTextMessage bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxTextMessage {
		return s
	}
	n := maxTextMessage
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package logging

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameter names whose values are masked by RedactURL.
var sensitiveParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"password":      true,
	"code":          true,
}

// MaskToken keeps the first and last four characters of a token.
// Tokens of twelve characters or fewer are fully masked.
//
//	MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.sig1") // "eyJh...sig1"
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// MaskEmail keeps the first two characters of the local part.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// RedactURL masks credential-bearing query parameters and userinfo passwords.
// Unparsable input is returned fully masked.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	if u.RawQuery == "" {
		return u.String()
	}
	q := u.Query()
	changed := false
	for key, values := range q {
		if !sensitiveParams[strings.ToLower(key)] {
			continue
		}
		for i := range values {
			values[i] = MaskToken(values[i])
		}
		changed = true
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tomtom215/learnquest/internal/validation"
)

// ErrNoCandidates is returned when neither a base URL nor a fallback URL is set.
var ErrNoCandidates = errors.New("at least one API base URL is required")

// Validate checks struct rules and cross-field constraints.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	candidates := c.Candidates()
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	for _, cand := range candidates {
		u, err := url.Parse(cand)
		if err != nil {
			return fmt.Errorf("invalid candidate %q: %w", cand, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("candidate %q must use http or https", cand)
		}
	}

	if c.Account.Email != "" && c.Account.Password == "" {
		return errors.New("account.password is required when account.email is set")
	}
	return nil
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package validation

import (
	"strings"
	"testing"
)

type signIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=Student Instructor"`
}

type endpointSettings struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Retries int    `koanf:"retries" validate:"gte=0,lte=10"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	if err := ValidateStruct(&signIn{Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStruct_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		field   string
		message string
	}{
		{"missing email", &signIn{Password: "secret1"}, "email", "email is required"},
		{"bad email", &signIn{Email: "nope", Password: "secret1"}, "email", "email must be a valid email address"},
		{"short password", &signIn{Email: "a@b.com", Password: "x"}, "password", "password must be at least 6 characters"},
		{"role", &signIn{Email: "a@b.com", Password: "secret1", Role: "Admin"}, "role", "role must be one of: Student Instructor"},
		{"koanf name", &endpointSettings{BaseURL: "not a url"}, "base_url", "base_url must be a valid URL"},
		{"range", &endpointSettings{BaseURL: "http://x", Retries: 11}, "retries", "retries must be less than or equal to 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if verr == nil {
				t.Fatal("expected validation error")
			}
			msgs := verr.FieldErrors()[tt.field]
			if len(msgs) != 1 || msgs[0] != tt.message {
				t.Errorf("FieldErrors()[%q] = %v, want [%q]", tt.field, msgs, tt.message)
			}
		})
	}
}

func TestRequestValidationError_Aggregates(t *testing.T) {
	verr := ValidateStruct(&signIn{})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	fields := verr.Fields()
	if len(fields) != 2 || fields[0] != "email" || fields[1] != "password" {
		t.Errorf("Fields() = %v, want [email password]", fields)
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("Error() should join messages, got %q", verr.Error())
	}
}

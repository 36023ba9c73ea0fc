// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package models

import "time"

// Profile is the editable part of a user account.
type Profile struct {
	UserID          int64      `json:"userId"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Bio             string     `json:"bio,omitempty"`
	PhoneNumber     string     `json:"phoneNumber,omitempty"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	Country         string     `json:"country,omitempty"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty"`
	Role            string     `json:"role"`
}

// UpdateProfileRequest is the body of PUT /Profile.
type UpdateProfileRequest struct {
	FirstName   string     `json:"firstName" validate:"required,max=100"`
	LastName    string     `json:"lastName" validate:"required,max=100"`
	Bio         string     `json:"bio,omitempty" validate:"max=1000"`
	PhoneNumber string     `json:"phoneNumber,omitempty" validate:"max=30"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Country     string     `json:"country,omitempty"`
}

// ChangePasswordRequest is the body of POST /Profile/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

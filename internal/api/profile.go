// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/models"
)

// ProfileService wraps the /Profile endpoints.
type ProfileService struct {
	t apiclient.Doer
}

// NewProfileService creates the profile façade.
func NewProfileService(t apiclient.Doer) *ProfileService {
	return &ProfileService{t: t}
}

// GetProfile returns the signed-in user's profile.
func (s *ProfileService) GetProfile(ctx context.Context) apiclient.Envelope[models.Profile] {
	return apiclient.Call[models.Profile](ctx, s.t, get("/Profile", nil))
}

// UpdateProfile replaces the editable profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) apiclient.Envelope[models.Profile] {
	return call[models.Profile](ctx, s.t, put("/Profile", req), req)
}

// UploadAvatar uploads a profile image as the "avatar" form file.
func (s *ProfileService) UploadAvatar(ctx context.Context, filename, contentType string, image io.Reader) apiclient.Envelope[models.Profile] {
	if filename == "" || image == nil {
		return apiclient.Failed[models.Profile](apiclient.FailureInvalidRequest, "avatar file is required")
	}
	form := apiclient.NewForm().AddFile("avatar", filename, contentType, image)
	return apiclient.Call[models.Profile](ctx, s.t, upload(http.MethodPost, "/Profile/avatar", form))
}

// ChangePassword changes the password of the signed-in user.
func (s *ProfileService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) apiclient.Envelope[apiclient.Empty] {
	return call[apiclient.Empty](ctx, s.t, put("/Profile/change-password", req), req)
}

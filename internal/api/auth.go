// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/metrics"
	"github.com/tomtom215/learnquest/internal/models"
)

// Session is the token holder the auth façade writes to.
// *session.Manager implements it.
type Session interface {
	AccessToken() string
	RefreshToken() string
	IsAuthenticated() bool
	Set(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
	NeedsRefresh(window time.Duration) bool
}

// AuthService wraps the /Auth endpoints and keeps the session in step with
// sign-in, refresh and logout.
type AuthService struct {
	t       apiclient.Doer
	session Session
	logger  zerolog.Logger
}

// NewAuthService creates the auth façade.
func NewAuthService(t apiclient.Doer, s Session) *AuthService {
	return &AuthService{t: t, session: s, logger: logging.WithComponent("auth")}
}

// SignIn authenticates and stores the returned token pair.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) apiclient.Envelope[models.AuthTokens] {
	env := call[models.AuthTokens](ctx, s.t, post("/Auth/signin", req), req)
	if env.Success {
		s.store(ctx, env.Data)
		s.logger.Info().Str("email", logging.MaskEmail(req.Email)).Msg("Signed in")
	}
	return env
}

// SignUp registers a new account. Sign-up does not sign in.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) apiclient.Envelope[models.User] {
	return call[models.User](ctx, s.t, post("/Auth/signup", req), req)
}

// RefreshToken exchanges the stored refresh token for a new pair. It returns
// ErrNoRefreshToken when no refresh token is held. A refresh rejected with
// 401 or 403 clears the session; connectivity failures keep it.
func (s *AuthService) RefreshToken(ctx context.Context) (apiclient.Envelope[models.AuthTokens], error) {
	refresh := s.session.RefreshToken()
	if refresh == "" {
		return apiclient.Envelope[models.AuthTokens]{}, ErrNoRefreshToken
	}

	env := apiclient.Call[models.AuthTokens](ctx, s.t, post("/Auth/refresh-token", models.RefreshTokenRequest{RefreshToken: refresh}))
	switch {
	case env.Success:
		s.store(ctx, env.Data)
	case env.StatusCode == http.StatusUnauthorized || env.StatusCode == http.StatusForbidden:
		s.logger.Warn().Int("status", env.StatusCode).Msg("Refresh token rejected, clearing session")
		if err := s.session.Clear(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear session")
		}
	}
	return env, nil
}

// EnsureFresh refreshes the session when the access token expires within
// window. It reports whether a refresh happened.
func (s *AuthService) EnsureFresh(ctx context.Context, window time.Duration) (bool, error) {
	if !s.session.IsAuthenticated() {
		return false, ErrNotAuthenticated
	}
	if !s.session.NeedsRefresh(window) {
		return false, nil
	}

	env, err := s.RefreshToken(ctx)
	if err != nil {
		metrics.RecordSessionRefresh(false)
		return false, err
	}
	metrics.RecordSessionRefresh(env.Success)
	if !env.Success {
		return false, fmt.Errorf("refresh session: %s", env.Message)
	}
	s.logger.Debug().Msg("Session refreshed")
	return true, nil
}

// Logout notifies the backend and clears the session whatever the outcome,
// so a dead backend never leaves the client signed in.
func (s *AuthService) Logout(ctx context.Context) apiclient.Envelope[apiclient.Empty] {
	var env apiclient.Envelope[apiclient.Empty]
	if s.session.IsAuthenticated() {
		env = apiclient.Call[apiclient.Empty](ctx, s.t, post("/Auth/logout", models.RefreshTokenRequest{RefreshToken: s.session.RefreshToken()}))
		if !env.Success {
			s.logger.Warn().Str("failure", string(env.Failure)).Str("message", env.Message).Msg("Logout request failed, clearing session anyway")
		}
	} else {
		env = apiclient.Envelope[apiclient.Empty]{Success: true}
	}

	if err := s.session.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear persisted session")
	}
	return env
}

// ForgotPassword requests a password reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) apiclient.Envelope[apiclient.Empty] {
	return call[apiclient.Empty](ctx, s.t, post("/Auth/forgot-password", req), req)
}

// ResetPassword sets a new password with the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) apiclient.Envelope[apiclient.Empty] {
	return call[apiclient.Empty](ctx, s.t, post("/Auth/reset-password", req), req)
}

// VerifyEmail confirms an email address with the emailed code.
func (s *AuthService) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) apiclient.Envelope[apiclient.Empty] {
	return call[apiclient.Empty](ctx, s.t, post("/Auth/verify-email", req), req)
}

// ResendVerification sends a new verification code.
func (s *AuthService) ResendVerification(ctx context.Context, req models.ForgotPasswordRequest) apiclient.Envelope[apiclient.Empty] {
	return call[apiclient.Empty](ctx, s.t, post("/Auth/resend-verification", req), req)
}

// CurrentUser returns the signed-in user.
func (s *AuthService) CurrentUser(ctx context.Context) (apiclient.Envelope[models.User], error) {
	if !s.session.IsAuthenticated() {
		return apiclient.Envelope[models.User]{}, ErrNotAuthenticated
	}
	return apiclient.Call[models.User](ctx, s.t, get("/Auth/me", nil)), nil
}

func (s *AuthService) store(ctx context.Context, tokens models.AuthTokens) {
	if tokens.Token == "" {
		s.logger.Warn().Msg("Auth response carried no token")
		return
	}
	if err := s.session.Set(ctx, tokens.Token, tokens.RefreshToken); err != nil {
		// The in-memory session is already updated; only persistence failed.
		s.logger.Error().Err(err).Msg("Failed to persist session")
	}
}

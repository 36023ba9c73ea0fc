// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

// Package logging provides the zerolog-based structured logger shared by every
// LearnQuest component.
//
// A process-global logger is configured once from main via Init and read
// through package-level helpers:
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("endpoint", base).Msg("Endpoint resolved")
//
// Component loggers attach a "component" field:
//
//	log := logging.WithComponent("endpoint")
//	log.Debug().Str("candidate", c).Msg("Probing candidate")
//
// Request-scoped logging carries a correlation ID through context. The same ID
// is sent to the backend in the X-Correlation-Id header so client and server
// logs can be joined:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Signing in")
//
// Bearer tokens and token query parameters must never reach the log stream.
// Use MaskToken and RedactURL before attaching such values to an event.
//
// Libraries that take a *slog.Logger (suture's event hook) get one backed by
// the same zerolog writer through NewSlogLogger.
package logging

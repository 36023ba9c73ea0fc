// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"golang.org/x/time/rate"

	"github.com/tomtom215/learnquest/internal/api"
	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/cache"
	"github.com/tomtom215/learnquest/internal/config"
	"github.com/tomtom215/learnquest/internal/endpoint"
	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/models"
	"github.com/tomtom215/learnquest/internal/session"
	"github.com/tomtom215/learnquest/internal/statusserver"
	"github.com/tomtom215/learnquest/internal/supervisor"
	"github.com/tomtom215/learnquest/internal/supervisor/services"
	lqsync "github.com/tomtom215/learnquest/internal/sync"
)

// categoryCacheTTL bounds how long the course category list is reused.
const categoryCacheTTL = 30 * time.Minute

// app holds every long-lived component of the daemon.
type app struct {
	cfg *config.Config

	session  *session.Manager
	resolver *endpoint.Resolver
	client   *apiclient.Client

	auth          *api.AuthService
	profile       *api.ProfileService
	courses       *api.CourseService
	content       *api.ContentService
	notifications *api.NotificationService

	categories *cache.Cache[[]models.CourseCategory]
	publisher  *lqsync.WatermillPublisher
	pubsub     *gochannel.GoChannel
	syncer     *lqsync.Synchronizer

	closers []func() error
}

// newApp builds the component graph from cfg. Nothing is started.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	store, err := openSessionStore(cfg.Session)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	a.session = session.NewManager(store)
	if err := a.session.Restore(ctx); err != nil {
		logging.Warn().Err(err).Msg("Could not restore persisted session, starting signed out")
	}

	state := endpoint.NewState(cfg.Candidates())
	prober := endpoint.NewHTTPProber(cfg.Endpoint.HealthPath, cfg.Endpoint.ProbeTimeout, cfg.Endpoint.AcceptNotFound)
	a.resolver = endpoint.NewResolver(state, prober, endpoint.Options{
		BreakerFailures: uint32(cfg.Endpoint.BreakerFailures), //nolint:gosec // validated gte=0
		BreakerTimeout:  cfg.Endpoint.BreakerTimeout,
	})

	exec := apiclient.NewExecutor(apiclient.ExecutorConfig{
		Tokens:    a.session,
		Timeout:   cfg.API.RequestTimeout,
		UserAgent: cfg.API.UserAgent,
		RateLimit: rate.Limit(cfg.API.RateLimitRPS),
		RateBurst: cfg.API.RateLimitBurst,
	})
	a.client = apiclient.New(a.resolver, exec)

	a.categories = cache.New[[]models.CourseCategory](categoryCacheTTL, categoryCacheTTL)
	a.closers = append(a.closers, func() error { a.categories.Close(); return nil })

	a.auth = api.NewAuthService(a.client, a.session)
	a.profile = api.NewProfileService(a.client)
	a.courses = api.NewCourseService(a.client, a.categories)
	a.content = api.NewContentService(a.client)
	a.notifications = api.NewNotificationService(a.client, a.session)

	if err := a.openPublisher(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.syncer = lqsync.New(a.notifications, lqsync.Config{
		Dialer:    newDialer(cfg.Realtime, cfg.API.UserAgent),
		Dedupe:    cfg.Realtime.Dedupe,
		Filter:    notificationFilter(cfg.Notifications),
		Publisher: a.publisher,
	})

	logging.Info().
		Strs("candidates", state.Candidates()).
		Str("session_store", cfg.Session.Store).
		Bool("realtime", cfg.Realtime.Enabled).
		Str("transport", cfg.Realtime.Transport).
		Str("publish_backend", cfg.Publish.Backend).
		Msg("Components initialized")
	return a, nil
}

// openSessionStore opens the configured token store.
func openSessionStore(cfg config.SessionConfig) (session.Store, error) {
	if cfg.Store != "badger" {
		return session.NewMemoryStore(), nil
	}

	var enc *session.Encryptor
	if cfg.EncryptionKey != "" {
		var err error
		enc, err = session.NewEncryptor(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("session encryption: %w", err)
		}
	} else {
		logging.Warn().Msg("Session store is not encrypted (session.encryption_key unset)")
	}

	store, err := session.OpenBadgerStore(cfg.Path, enc)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newDialer returns the push stream dialer, or nil when real-time is off.
func newDialer(cfg config.RealtimeConfig, userAgent string) lqsync.StreamDialer {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Transport == "websocket" {
		return lqsync.NewWebSocketDialer(cfg.ReconnectDelay, cfg.MaxReconnectDelay)
	}
	d := lqsync.NewSSEDialer(cfg.ReconnectDelay, cfg.MaxReconnectDelay)
	d.UserAgent = userAgent
	return d
}

// notificationFilter is the page loaded whenever a session starts.
func notificationFilter(cfg config.NotificationsConfig) models.NotificationFilter {
	return models.NotificationFilter{
		Page:       1,
		PageSize:   cfg.PageSize,
		UnreadOnly: cfg.UnreadOnly,
	}
}

// openPublisher creates the snapshot publisher for the configured backend.
// The in-process backend gets a logging consumer so pushed notifications are
// visible without a broker.
func (a *app) openPublisher(ctx context.Context) error {
	switch a.cfg.Publish.Backend {
	case "nats":
		pub, err := lqsync.NewNATSPublisher(a.cfg.Publish.NATSURL, a.cfg.Publish.TopicPrefix)
		if err != nil {
			return err
		}
		a.publisher = pub
		a.closers = append(a.closers, pub.Close)
		logging.Info().Str("url", logging.RedactURL(a.cfg.Publish.NATSURL)).Msg("Publishing to NATS")
		return nil
	default:
		a.pubsub = lqsync.NewChannelPubSub()
		a.publisher = lqsync.NewWatermillPublisher(a.pubsub, a.cfg.Publish.TopicPrefix)
		a.closers = append(a.closers, a.publisher.Close)

		msgs, err := a.pubsub.Subscribe(ctx, a.publisher.Topic(lqsync.TopicNotification))
		if err != nil {
			return fmt.Errorf("subscribe to notifications: %w", err)
		}
		go logNotifications(msgs)
		return nil
	}
}

// logNotifications drains pushed notifications until the pub/sub closes.
func logNotifications(msgs <-chan *message.Message) {
	for msg := range msgs {
		logging.Info().
			Str("notification_id", msg.Metadata.Get("notification_id")).
			Str("priority", msg.Metadata.Get("priority")).
			Str("correlation_id", msg.Metadata.Get("correlation_id")).
			Msg("Notification received")
		msg.Ack()
	}
}

// signIn uses the configured account when no session was restored.
func (a *app) signIn(ctx context.Context) error {
	acct := a.cfg.Account
	if acct.Email == "" || a.session.IsAuthenticated() {
		return nil
	}
	env := a.auth.SignIn(ctx, models.SignInRequest{
		Email:      acct.Email,
		Password:   acct.Password,
		RememberMe: true,
	})
	if !env.Success {
		return fmt.Errorf("sign in as %s failed (status %d, %s): %s",
			logging.MaskEmail(acct.Email), env.StatusCode, env.Failure, env.Message)
	}
	return nil
}

// buildTree registers the daemon services on a new supervisor tree.
func (a *app) buildTree(treeCfg supervisor.TreeConfig) (*supervisor.SupervisorTree, error) {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return nil, err
	}

	if a.cfg.Session.RefreshWindow > 0 {
		// Check at a quarter of the window so a refresh is never missed.
		interval := a.cfg.Session.RefreshWindow / 4
		tree.AddSessionService(services.NewTokenRefreshService(a.auth, interval, a.cfg.Session.RefreshWindow))
	}

	tree.AddSyncService(services.NewSessionSyncService(a.session, a.syncer))
	if a.cfg.Realtime.StatsPollInterval > 0 {
		tree.AddSyncService(services.NewStatsPollService(a.syncer, a.session, a.cfg.Realtime.StatsPollInterval))
	}

	if a.cfg.Status.Enabled {
		tree.AddStatusService(services.NewStatusServerService(a.statusHTTPServer(), a.cfg.Status.ListenAddr, a.cfg.Status.ShutdownTimeout))
	}
	return tree, nil
}

func (a *app) statusHTTPServer() *http.Server {
	srv := statusserver.New(a.syncer, a.resolver.State(), a.session, statusserver.Options{
		AllowedOrigins:    a.cfg.Status.AllowedOrigins,
		RateLimitRequests: a.cfg.Status.RateLimitRequests,
		RateLimitWindow:   a.cfg.Status.RateLimitWindow,
	})
	return &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Close releases stores and publishers in reverse creation order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/metrics"
	"github.com/tomtom215/learnquest/internal/models"
)

// NotificationAPI is the backend surface the synchronizer needs.
// *api.NotificationService implements it.
type NotificationAPI interface {
	List(ctx context.Context, filter models.NotificationFilter) apiclient.Envelope[models.NotificationPage]
	Stats(ctx context.Context) apiclient.Envelope[models.NotificationStats]
	MarkAsRead(ctx context.Context, ids []int64) apiclient.Envelope[apiclient.Empty]
	MarkAllAsRead(ctx context.Context) apiclient.Envelope[apiclient.Empty]
	Delete(ctx context.Context, notificationID int64) apiclient.Envelope[apiclient.Empty]
	DeleteAll(ctx context.Context) apiclient.Envelope[apiclient.Empty]
	RealTimeURL(ctx context.Context) (string, error)
}

// Config configures a Synchronizer.
type Config struct {
	// Dialer opens the push stream. Nil disables ConnectRealTime.
	Dialer StreamDialer

	// Dedupe moves a pushed notification already held locally to the front
	// instead of inserting a second copy.
	Dedupe bool

	// Filter is the page loaded when a session becomes authenticated.
	Filter models.NotificationFilter

	// Publisher, when set, receives snapshots and pushed notifications.
	Publisher Publisher

	Now func() time.Time
}

// Snapshot is a consistent copy of the synchronizer state.
type Snapshot struct {
	Notifications []models.Notification     `json:"notifications"`
	Stats         models.NotificationStats  `json:"stats"`
	State         ConnectionState           `json:"state"`
	LastError     string                    `json:"lastError,omitempty"`
	Filter        models.NotificationFilter `json:"filter"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// Synchronizer keeps a local view of the user's notifications and their
// stats in step with the server, from paged loads and the push stream.
//
// Mutations are server-confirmed: local state changes only after the
// backend accepts the request. All state is guarded by one mutex and never
// held across network calls, so overlapping operations apply in completion
// order.
type Synchronizer struct {
	api    NotificationAPI
	cfg    Config
	now    func() time.Time
	logger zerolog.Logger

	mu            sync.Mutex
	notifications []models.Notification
	stats         models.NotificationStats
	state         ConnectionState
	lastErr       error
	filter        models.NotificationFilter
	updatedAt     time.Time

	// gen identifies the current stream; callbacks from older streams are dropped.
	gen          uint64
	sub          Subscription
	streamCancel context.CancelFunc

	// seq numbers snapshots in the order they were taken under mu.
	seq uint64

	publishMu  sync.Mutex
	publishSeq uint64

	subMu       sync.Mutex
	subscribers map[uint64]*subscriber
	nextSubID   uint64
}

// New creates a synchronizer over api.
func New(api NotificationAPI, cfg Config) *Synchronizer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Synchronizer{
		api:         api,
		cfg:         cfg,
		now:         now,
		logger:      logging.WithComponent("sync"),
		filter:      cfg.Filter,
		subscribers: make(map[uint64]*subscriber),
	}
}

// LoadNotifications replaces the local list with one page from the server.
// The stats come from the page when it carries them, else from a separate
// stats call.
func (s *Synchronizer) LoadNotifications(ctx context.Context, filter models.NotificationFilter) error {
	env := s.api.List(ctx, filter)
	if !env.Success {
		return opError("load notifications", env)
	}

	page := env.Data
	var stats *models.NotificationStats
	if page.Stats != nil {
		c := page.Stats.Clone()
		stats = &c
	} else if senv := s.api.Stats(ctx); senv.Success {
		stats = &senv.Data
	} else {
		s.logger.Warn().Str("message", senv.Message).Msg("Stats refresh after page load failed")
	}

	s.mu.Lock()
	s.notifications = slices.Clone(page.Notifications)
	s.filter = filter
	if stats != nil {
		s.stats = *stats
	}
	s.touch()
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(page.Notifications)).Int("total", page.TotalCount).Msg("Notifications loaded")
	s.changed(ctx)
	return nil
}

// LoadStats refreshes the aggregate counts without touching the list.
func (s *Synchronizer) LoadStats(ctx context.Context) error {
	env := s.api.Stats(ctx)
	if !env.Success {
		return opError("load stats", env)
	}
	s.mu.Lock()
	s.stats = env.Data.Clone()
	s.touch()
	s.mu.Unlock()

	s.changed(ctx)
	return nil
}

// MarkAsRead marks ids read on the server, then locally, then reloads the
// stats. Ids already read locally are left as they are.
func (s *Synchronizer) MarkAsRead(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	env := s.api.MarkAsRead(ctx, ids)
	if !env.Success {
		return opError("mark as read", env)
	}

	now := s.now()
	s.mu.Lock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if !n.IsRead && slices.Contains(ids, n.NotificationID) {
			s.markRead(n, now)
		}
	}
	s.touch()
	s.mu.Unlock()

	s.changed(ctx)
	s.reloadStats(ctx)
	return nil
}

// MarkAllAsRead marks every notification read on the server, then every
// locally held one, then reloads the stats.
func (s *Synchronizer) MarkAllAsRead(ctx context.Context) error {
	env := s.api.MarkAllAsRead(ctx)
	if !env.Success {
		return opError("mark all as read", env)
	}

	now := s.now()
	s.mu.Lock()
	for i := range s.notifications {
		if n := &s.notifications[i]; !n.IsRead {
			s.markRead(n, now)
		}
	}
	// The server marked notifications outside the local page too.
	s.stats.UnreadCount = 0
	s.stats.HighPriorityUnread = 0
	s.touch()
	s.mu.Unlock()

	s.changed(ctx)
	s.reloadStats(ctx)
	return nil
}

// DeleteNotification deletes one notification on the server, removes it
// locally and reloads the stats.
func (s *Synchronizer) DeleteNotification(ctx context.Context, notificationID int64) error {
	env := s.api.Delete(ctx, notificationID)
	if !env.Success {
		return opError("delete notification", env)
	}

	s.mu.Lock()
	if i := s.indexOf(notificationID); i >= 0 {
		s.forget(s.notifications[i])
		s.notifications = slices.Delete(s.notifications, i, i+1)
	}
	s.touch()
	s.mu.Unlock()

	s.changed(ctx)
	s.reloadStats(ctx)
	return nil
}

// DeleteAllNotifications deletes everything on the server and clears the
// local list. The stats are zeroed locally; the result is known, so no
// refetch is made.
func (s *Synchronizer) DeleteAllNotifications(ctx context.Context) error {
	env := s.api.DeleteAll(ctx)
	if !env.Success {
		return opError("delete all notifications", env)
	}

	s.mu.Lock()
	s.notifications = nil
	s.stats = models.NotificationStats{}
	s.touch()
	s.mu.Unlock()

	s.changed(ctx)
	return nil
}

// ConnectRealTime opens the push stream. It is a no-op while a stream is
// connecting, connected or reconnecting. The stream URL is built again for
// every reconnect, so a refreshed access token is picked up.
func (s *Synchronizer) ConnectRealTime(ctx context.Context) error {
	if s.cfg.Dialer == nil {
		return errors.New("no push stream transport configured")
	}

	s.mu.Lock()
	if s.state != Disconnected || (s.sub != nil && s.sub.IsActive()) {
		s.mu.Unlock()
		return nil
	}
	if s.sub != nil {
		s.sub.Close()
		s.sub = nil
	}
	s.gen++
	gen := s.gen
	s.state = Connecting
	s.lastErr = nil
	s.touch()
	s.mu.Unlock()
	s.stateChanged(ctx, Connecting)

	url, err := s.api.RealTimeURL(ctx)
	if err != nil {
		err = fmt.Errorf("push stream url: %w", err)
		s.streamFailed(ctx, gen, err)
		return err
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := s.cfg.Dialer.Open(streamCtx, s.api.RealTimeURL, StreamHandlers{
		OnOpen:    func() { s.streamOpened(streamCtx, gen) },
		OnMessage: func(m Message) { s.streamMessage(streamCtx, gen, m) },
		OnError:   func(err error) { s.streamFailed(streamCtx, gen, err) },
	})

	s.mu.Lock()
	if s.gen != gen {
		// Disconnected while opening.
		s.mu.Unlock()
		sub.Close()
		cancel()
		return nil
	}
	s.sub = sub
	s.streamCancel = cancel
	s.mu.Unlock()

	s.logger.Info().Str("url", logging.RedactURL(url)).Msg("Push stream connecting")
	return nil
}

// DisconnectRealTime closes the push stream. Safe to call when disconnected.
func (s *Synchronizer) DisconnectRealTime() {
	s.mu.Lock()
	s.gen++
	sub, cancel := s.sub, s.streamCancel
	s.sub, s.streamCancel = nil, nil
	was := s.state
	s.state = Disconnected
	if was != Disconnected {
		s.touch()
	}
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if cancel != nil {
		cancel()
	}
	if was != Disconnected {
		s.logger.Info().Msg("Push stream disconnected")
		s.stateChanged(context.Background(), Disconnected)
	}
}

// HandleSessionChange follows the session: on sign-in it connects the push
// stream and loads the first page, on sign-out it disconnects and drops
// all local state.
func (s *Synchronizer) HandleSessionChange(ctx context.Context, authenticated bool) error {
	if !authenticated {
		s.DisconnectRealTime()
		s.mu.Lock()
		s.notifications = nil
		s.stats = models.NotificationStats{}
		s.lastErr = nil
		s.touch()
		s.mu.Unlock()
		metrics.SetUnread(0)
		s.changed(ctx)
		return nil
	}

	var errs []error
	if s.cfg.Dialer != nil {
		if err := s.ConnectRealTime(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.mu.Lock()
	filter := s.filter
	s.mu.Unlock()
	if err := s.LoadNotifications(ctx, filter); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// State returns the push stream state.
func (s *Synchronizer) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. Calls to
// one fn never overlap and never go back in time: a snapshot taken while fn
// is running is held and delivered when fn returns, replacing any older
// pending one. No lock is held while fn runs, so fn may call back into the
// synchronizer. The returned function unregisters fn.
func (s *Synchronizer) Subscribe(fn func(Snapshot)) (cancel func()) {
	sub := &subscriber{fn: fn}
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = sub
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
		sub.mu.Lock()
		sub.canceled = true
		sub.pending = nil
		sub.mu.Unlock()
	}
}

// subscriber serializes deliveries to one callback without holding a lock
// across it.
type subscriber struct {
	fn func(Snapshot)

	mu         sync.Mutex
	running    bool
	canceled   bool
	delivered  uint64
	pending    *Snapshot
	pendingSeq uint64
}

// offer delivers snap unless a newer snapshot already went out. If fn is
// running, on this goroutine or another, snap is parked for the running
// delivery to pick up.
func (sub *subscriber) offer(snap Snapshot, seq uint64) {
	sub.mu.Lock()
	if sub.canceled || seq <= sub.delivered || seq <= sub.pendingSeq {
		sub.mu.Unlock()
		return
	}
	if sub.running {
		sub.pending, sub.pendingSeq = &snap, seq
		sub.mu.Unlock()
		return
	}
	sub.running = true
	for {
		sub.delivered = seq
		sub.mu.Unlock()

		sub.fn(snap)

		sub.mu.Lock()
		if sub.pending == nil || sub.canceled {
			sub.pending = nil
			sub.running = false
			sub.mu.Unlock()
			return
		}
		snap, seq = *sub.pending, sub.pendingSeq
		sub.pending = nil
	}
}

func (s *Synchronizer) streamOpened(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = Connected
	s.lastErr = nil
	s.touch()
	s.mu.Unlock()

	s.logger.Info().Msg("Push stream connected")
	s.stateChanged(ctx, Connected)
}

func (s *Synchronizer) streamMessage(ctx context.Context, gen uint64, m Message) {
	var event models.RealTimeEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		s.logger.Warn().Err(err).Int("bytes", len(m.Data)).Msg("Ignoring malformed push event")
		metrics.RecordRealtimeEvent("malformed")
		return
	}
	if event.Event == "" {
		event.Event = m.Event
	}
	metrics.RecordRealtimeEvent(event.Event)

	if event.Notification == nil && event.Stats == nil {
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if event.Notification != nil {
		s.prepend(*event.Notification)
	}
	if event.Stats != nil {
		s.stats = event.Stats.Clone()
	}
	s.touch()
	s.mu.Unlock()

	if event.Notification != nil {
		s.logger.Debug().
			Int64("notification_id", event.Notification.NotificationID).
			Str("type", string(event.Notification.Type)).
			Msg("Notification pushed")
		if p := s.cfg.Publisher; p != nil {
			if err := p.PublishNotification(ctx, *event.Notification); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to publish notification")
			}
		}
	}
	s.changed(ctx)
}

func (s *Synchronizer) streamFailed(ctx context.Context, gen uint64, err error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = Disconnected
	s.lastErr = err
	s.touch()
	s.mu.Unlock()

	metrics.RecordRealtimeError()
	s.logger.Warn().Err(err).Msg("Push stream error")
	s.stateChanged(ctx, Disconnected)
}

// prepend inserts n at the front. With dedupe, a held copy is removed first.
// Caller holds s.mu.
func (s *Synchronizer) prepend(n models.Notification) {
	if s.cfg.Dedupe {
		if i := s.indexOf(n.NotificationID); i >= 0 {
			s.notifications = slices.Delete(s.notifications, i, i+1)
		}
	}
	s.notifications = slices.Insert(s.notifications, 0, n)
}

// markRead flips n to read and adjusts the counts. Caller holds s.mu.
func (s *Synchronizer) markRead(n *models.Notification, at time.Time) {
	n.IsRead = true
	n.ReadAt = &at
	s.stats.UnreadCount = max(s.stats.UnreadCount-1, 0)
	if n.IsHighPriority() {
		s.stats.HighPriorityUnread = max(s.stats.HighPriorityUnread-1, 0)
	}
}

// forget removes n from the counts. Caller holds s.mu.
func (s *Synchronizer) forget(n models.Notification) {
	st := &s.stats
	st.TotalNotifications = max(st.TotalNotifications-1, 0)
	if !n.IsRead {
		st.UnreadCount = max(st.UnreadCount-1, 0)
		if n.IsHighPriority() {
			st.HighPriorityUnread = max(st.HighPriorityUnread-1, 0)
		}
	}
	if sameDay(n.CreatedAt, s.now()) {
		st.TodayCount = max(st.TodayCount-1, 0)
	}
	decrement(st.NotificationsByType, string(n.Type))
	decrement(st.NotificationsByPriority, string(n.Priority))
}

func (s *Synchronizer) indexOf(id int64) int {
	return slices.IndexFunc(s.notifications, func(n models.Notification) bool {
		return n.NotificationID == id
	})
}

// reloadStats resynchronizes the counts after a confirmed mutation. A failure
// keeps the locally adjusted counts.
func (s *Synchronizer) reloadStats(ctx context.Context) {
	if err := s.LoadStats(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Stats reload failed, keeping local counts")
	}
}

func (s *Synchronizer) touch() {
	s.updatedAt = s.now()
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	snap := Snapshot{
		Notifications: slices.Clone(s.notifications),
		Stats:         s.stats.Clone(),
		State:         s.state,
		Filter:        s.filter,
		UpdatedAt:     s.updatedAt,
	}
	if snap.Notifications == nil {
		snap.Notifications = []models.Notification{}
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

func (s *Synchronizer) stateChanged(ctx context.Context, state ConnectionState) {
	metrics.SetRealtimeState(int(state))
	s.changed(ctx)
}

// changed delivers a fresh snapshot to subscribers and the publisher. The
// sequence number taken with the snapshot keeps a late delivery from
// overwriting a newer one.
func (s *Synchronizer) changed(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	s.subMu.Unlock()
	slices.Sort(ids)

	for _, id := range ids {
		s.subMu.Lock()
		sub, ok := s.subscribers[id]
		s.subMu.Unlock()
		if ok {
			sub.offer(snap, seq)
		}
	}

	s.publishSnapshot(ctx, snap, seq)
}

// publishSnapshot updates the unread gauge and publishes snap unless a newer
// snapshot was already published.
func (s *Synchronizer) publishSnapshot(ctx context.Context, snap Snapshot, seq uint64) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if seq <= s.publishSeq {
		return
	}
	s.publishSeq = seq
	metrics.SetUnread(snap.Stats.UnreadCount)

	if p := s.cfg.Publisher; p != nil {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish snapshot")
		}
	}
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func decrement(m map[string]int, key string) {
	if m == nil || key == "" {
		return
	}
	if v, ok := m[key]; ok {
		if v <= 1 {
			delete(m, key)
		} else {
			m[key] = v - 1
		}
	}
}

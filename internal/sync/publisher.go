// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/models"
)

// Topic suffixes appended to the configured prefix.
const (
	TopicSnapshot     = "snapshot"
	TopicNotification = "notification.received"
)

// Publisher republishes synchronizer output to other consumers. Errors are
// logged by the synchronizer and never fail the operation that caused them.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap Snapshot) error
	PublishNotification(ctx context.Context, n models.Notification) error
}

// WatermillPublisher publishes JSON messages through any watermill publisher.
type WatermillPublisher struct {
	pub    message.Publisher
	prefix string

	mu     sync.RWMutex
	closed bool
}

// NewWatermillPublisher wraps pub. Topics are "{prefix}.snapshot" and
// "{prefix}.notification.received".
func NewWatermillPublisher(pub message.Publisher, prefix string) *WatermillPublisher {
	return &WatermillPublisher{pub: pub, prefix: prefix}
}

// NewChannelPubSub creates the in-process pub/sub used when no broker is
// configured. Subscribers must be attached before messages are published.
func NewChannelPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, WatermillLogger())
}

// NewNATSPublisher publishes over core NATS (JetStream disabled).
func NewNATSPublisher(url, prefix string) (*WatermillPublisher, error) {
	logger := WatermillLogger()
	natsOpts := []natsgo.Option{
		natsgo.Name("learnquest-notify"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return NewWatermillPublisher(pub, prefix), nil
}

// WatermillLogger adapts the process logger for watermill.
func WatermillLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// Topic returns the full topic for suffix.
func (p *WatermillPublisher) Topic(suffix string) string {
	if p.prefix == "" {
		return suffix
	}
	return p.prefix + "." + suffix
}

// PublishSnapshot implements Publisher.
func (p *WatermillPublisher) PublishSnapshot(ctx context.Context, snap Snapshot) error {
	msg, err := newMessage(ctx, snap)
	if err != nil {
		return err
	}
	msg.Metadata.Set("state", snap.State.String())
	msg.Metadata.Set("unread", strconv.Itoa(snap.Stats.UnreadCount))
	return p.publish(TopicSnapshot, msg)
}

// PublishNotification implements Publisher.
func (p *WatermillPublisher) PublishNotification(ctx context.Context, n models.Notification) error {
	msg, err := newMessage(ctx, n)
	if err != nil {
		return err
	}
	msg.Metadata.Set("notification_id", strconv.FormatInt(n.NotificationID, 10))
	msg.Metadata.Set("type", string(n.Type))
	msg.Metadata.Set("priority", string(n.Priority))
	return p.publish(TopicNotification, msg)
}

func (p *WatermillPublisher) publish(suffix string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}
	if err := p.pub.Publish(p.Topic(suffix), msg); err != nil {
		return fmt.Errorf("publish %s: %w", suffix, err)
	}
	return nil
}

// Close closes the underlying publisher. Safe to call more than once.
func (p *WatermillPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.pub.Close()
}

func newMessage(ctx context.Context, v any) (*message.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	msg.SetContext(ctx)
	return msg, nil
}

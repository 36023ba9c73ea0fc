// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package sync mirrors a user's notification center locally.

A Synchronizer holds one page of notifications and the server's aggregate
stats. It is fed two ways: paged loads through the notification API, and
events from a push stream opened with a StreamDialer.

	syncer := sync.New(notifications, sync.Config{
	    Dialer:    sync.NewSSEDialer(time.Second, 30*time.Second),
	    Dedupe:    true,
	    Publisher: sync.NewWatermillPublisher(sync.NewChannelPubSub(), "learnquest"),
	})
	session.OnChange(func(authenticated bool) {
	    _ = syncer.HandleSessionChange(ctx, authenticated)
	})

Mutations (mark as read, delete) change local state only after the server
confirms them. The local unread count is adjusted immediately and then
replaced by a stats reload; if the reload fails the adjusted count stays.
Delete-all zeroes the stats without a reload.

Pushed notifications are prepended, newest first. Stats carried by a push
event replace the local stats wholesale.

# Transports

SSEDialer speaks text/event-stream with EventSource reconnect semantics.
WebSocketDialer uses gorilla/websocket for proxies that buffer SSE. Both
reconnect with exponential backoff and end the stream on a rejected
handshake (a 4xx status or a wrong content type).

# Connection State

	Disconnected -> Connecting -> Connected
	      ^              |            |
	      +--------------+------------+   (error, disconnect, sign-out)

Callbacks from a stream that was replaced or closed are ignored.

# Publishing

A Publisher receives a snapshot after every change and every pushed
notification. WatermillPublisher publishes over an in-process gochannel or
core NATS, on topics "{prefix}.snapshot" and "{prefix}.notification.received".
*/
package sync

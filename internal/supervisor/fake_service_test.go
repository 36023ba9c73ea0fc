// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeService replays a script of Serve outcomes. Each run returns the next
// scripted error immediately; once the script is exhausted Serve blocks
// until its context ends.
type fakeService struct {
	name   string
	starts atomic.Int32
	stops  atomic.Int32

	mu     sync.Mutex
	script []error
}

func newFakeService(name string, script ...error) *fakeService {
	return &fakeService{name: name, script: script}
}

func (f *fakeService) Serve(ctx context.Context) error {
	f.starts.Add(1)
	defer f.stops.Add(1)

	f.mu.Lock()
	var next error
	scripted := len(f.script) > 0
	if scripted {
		next, f.script = f.script[0], f.script[1:]
	}
	f.mu.Unlock()

	if scripted {
		return next
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) String() string { return f.name }

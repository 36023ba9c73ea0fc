// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package cache provides a thread-safe, generic in-memory cache with TTL expiry.

The course façade keeps the category list here: it changes rarely and is
requested by every catalog view.

	categories := cache.New[[]models.CourseCategory](10*time.Minute, time.Minute)
	defer categories.Close()

	list, ok := categories.GetOrLoad("categories", func() ([]models.CourseCategory, bool) {
	    env := fetch()
	    return env.Data, env.Success
	})

Expired entries are dropped lazily on Get and periodically by a sweeper
goroutine that stops on Close. Only successful loads are cached.
*/
package cache

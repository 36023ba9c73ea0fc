// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"errors"
	"fmt"

	"github.com/tomtom215/learnquest/internal/apiclient"
)

// ErrOperationFailed matches every *OperationError.
var ErrOperationFailed = errors.New("notification operation failed")

// OperationError reports a synchronizer operation the backend did not
// confirm. Local state is unchanged when one is returned.
type OperationError struct {
	Op         string
	Message    string
	StatusCode int
	ErrorCode  string
	Failure    apiclient.FailureKind
}

func (e *OperationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is makes errors.Is(err, ErrOperationFailed) true.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

func opError[T any](op string, env apiclient.Envelope[T]) *OperationError {
	return &OperationError{
		Op:         op,
		Message:    env.Message,
		StatusCode: env.StatusCode,
		ErrorCode:  env.ErrorCode,
		Failure:    env.Failure,
	}
}

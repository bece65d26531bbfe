// warestamp
// Copyright (c) 2025 The Warestamp Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of warestamp.
//
// warestamp is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// warestamp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with warestamp; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package retry provides the shared bounded-retry helper used for reporter
// dialing and reader transceive attempts.
package retry

import (
	"errors"
	"time"
)

// ErrExhausted is returned when all attempts requested a retry.
var ErrExhausted = errors.New("retries exhausted")

// Operation is a retryable unit of work.
// Returns: result, shouldRetry, error. A non-nil error is permanent and
// stops retrying immediately.
type Operation[T any] func() (T, bool, error)

// Config configures retry behavior.
type Config struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int
	// Delay is slept between attempts.
	Delay time.Duration
}

// Do executes an operation with bounded retries and a fixed delay.
func Do[T any](cfg Config, op Operation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, shouldRetry, err := op()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		if attempt >= cfg.MaxRetries {
			break
		}
		if cfg.Delay > 0 {
			time.Sleep(cfg.Delay)
		}
	}

	return zero, ErrExhausted
}

// Deadline executes an operation repeatedly until it succeeds or the
// timeout elapses, with a millisecond pause between attempts. Used for
// waiting on reader hardware to settle.
func Deadline[T any](timeout time.Duration, op Operation[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		result, shouldRetry, err := op()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		time.Sleep(time.Millisecond)
	}

	return zero, ErrExhausted
}

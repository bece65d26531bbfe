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

package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Do(Config{MaxRetries: 3}, func() (int, bool, error) {
		calls++
		return 42, false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Do(Config{MaxRetries: 3}, func() (string, bool, error) {
		calls++
		if calls < 3 {
			return "", true, nil
		}
		return "ok", false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(Config{MaxRetries: 2}, func() (int, bool, error) {
		calls++
		return 0, true, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
	// First attempt plus two retries.
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	cause := errors.New("broken")
	calls := 0
	_, err := Do(Config{MaxRetries: 5}, func() (int, bool, error) {
		calls++
		return 0, false, cause
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDeadlineReturnsBeforeTimeout(t *testing.T) {
	t.Parallel()

	result, err := Deadline(time.Second, func() (int, bool, error) {
		return 7, false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestDeadlineExpires(t *testing.T) {
	t.Parallel()

	_, err := Deadline(20*time.Millisecond, func() (int, bool, error) {
		return 0, true, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
}

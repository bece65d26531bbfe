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

package warestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerSuppressesRepeatWithinCooldown(t *testing.T) {
	t.Parallel()

	tr := NewTracker(3*time.Second, 5*time.Second)
	base := time.Unix(1000, 0)

	assert.True(t, tr.Admit("04A1B2C3", base))
	assert.False(t, tr.Admit("04A1B2C3", base.Add(time.Second)))
	assert.False(t, tr.Admit("04A1B2C3", base.Add(2999*time.Millisecond)))
	assert.True(t, tr.Admit("04A1B2C3", base.Add(3*time.Second)))
}

func TestTrackerAdmitsDifferentCardImmediately(t *testing.T) {
	t.Parallel()

	tr := NewTracker(3*time.Second, 5*time.Second)
	base := time.Unix(1000, 0)

	assert.True(t, tr.Admit("04A1B2C3", base))
	assert.True(t, tr.Admit("11223344", base.Add(100*time.Millisecond)))
	// Back to the first card: the window restarted on the second admit,
	// but the identity changed, so the first card is fresh again.
	assert.True(t, tr.Admit("04A1B2C3", base.Add(200*time.Millisecond)))
}

func TestTrackerNormalizesCase(t *testing.T) {
	t.Parallel()

	tr := NewTracker(3*time.Second, 5*time.Second)
	base := time.Unix(1000, 0)

	assert.True(t, tr.Admit("04a1b2c3", base))
	assert.False(t, tr.Admit("04A1B2C3", base.Add(time.Second)))
}

func TestTrackerExpireTransition(t *testing.T) {
	t.Parallel()

	tr := NewTracker(3*time.Second, 5*time.Second)
	base := time.Unix(1000, 0)

	// Nothing present yet: no transition.
	assert.False(t, tr.Expire(base))

	tr.Admit("04A1B2C3", base)
	assert.True(t, tr.Present())

	assert.False(t, tr.Expire(base.Add(4999*time.Millisecond)))
	assert.True(t, tr.Present())

	// The transition fires exactly once.
	assert.True(t, tr.Expire(base.Add(5*time.Second)))
	assert.False(t, tr.Present())
	assert.False(t, tr.Expire(base.Add(6*time.Second)))
}

func TestTrackerReset(t *testing.T) {
	t.Parallel()

	tr := NewTracker(3*time.Second, 5*time.Second)
	base := time.Unix(1000, 0)

	tr.Admit("04A1B2C3", base)
	tr.Reset()

	assert.False(t, tr.Present())
	// After reset the same card is admitted as if never seen.
	assert.True(t, tr.Admit("04A1B2C3", base.Add(time.Millisecond)))
}

func TestTrackerDefaultsOnNonPositiveWindows(t *testing.T) {
	t.Parallel()

	tr := NewTracker(0, -time.Second)
	base := time.Unix(1000, 0)

	assert.True(t, tr.Admit("AA", base))
	assert.False(t, tr.Admit("AA", base.Add(DefaultCooldown-time.Millisecond)))
	assert.True(t, tr.Admit("AA", base.Add(DefaultCooldown)))
}

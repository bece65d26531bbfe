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
	"strings"
	"time"
)

// Presence tracking defaults.
const (
	// DefaultCooldown is the minimum elapsed time before the same card may
	// be processed again.
	DefaultCooldown = 3 * time.Second

	// DefaultPresenceTimeout clears the card-present flag once no card has
	// been processed for this long.
	DefaultPresenceTimeout = 5 * time.Second
)

// Tracker debounces repeated reads of the same physical card. A card sitting
// on the reader is detected on every poll; the tracker admits it once per
// cooldown window. A separate, longer timeout clears the present flag so the
// presenter can return to its ready screen.
//
// Identities are compared case-insensitively (normalized to uppercase).
// Tracker state is in-memory only; a restart forgets all history.
type Tracker struct {
	lastProcessed   time.Time
	lastUID         string
	cooldown        time.Duration
	presenceTimeout time.Duration
	present         bool
}

// NewTracker creates a tracker with the given windows. Non-positive values
// fall back to the defaults.
func NewTracker(cooldown, presenceTimeout time.Duration) *Tracker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if presenceTimeout <= 0 {
		presenceTimeout = DefaultPresenceTimeout
	}
	return &Tracker{
		cooldown:        cooldown,
		presenceTimeout: presenceTimeout,
	}
}

// Admit decides whether a newly detected card should be processed now.
// The same identity within the cooldown window is suppressed; anything else
// is accepted and recorded as last processed.
func (t *Tracker) Admit(uid string, now time.Time) bool {
	uid = strings.ToUpper(uid)

	if t.lastUID == uid && now.Sub(t.lastProcessed) < t.cooldown {
		return false
	}

	t.lastUID = uid
	t.lastProcessed = now
	t.present = true
	return true
}

// Expire clears the present flag once nothing has been processed for the
// presence timeout. It returns true on the transition from present to idle,
// which is the caller's cue to render the ready screen.
func (t *Tracker) Expire(now time.Time) bool {
	if !t.present {
		return false
	}
	if now.Sub(t.lastProcessed) < t.presenceTimeout {
		return false
	}
	t.present = false
	return true
}

// Present reports whether a card is considered present.
func (t *Tracker) Present() bool {
	return t.present
}

// Reset forgets all tracked state.
func (t *Tracker) Reset() {
	t.lastUID = ""
	t.lastProcessed = time.Time{}
	t.present = false
}

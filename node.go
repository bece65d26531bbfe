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
	"errors"
	"time"
)

// DefaultSeedID is the first ID issued after a node restart. Issuance state
// is process-lifetime only; the receiving station keeps the durable ledger.
const DefaultSeedID uint32 = 1000

// NodeState is the mutable per-node issuance state, passed into and returned
// from each processing cycle. There are no package-level counters.
type NodeState struct {
	// NextID is the ID the next verified write will consume.
	NextID uint32

	// Processing gates detection while a write cycle is in flight, so no
	// two cards are ever processed concurrently.
	Processing bool
}

// NewNodeState returns the state a freshly started node begins with.
func NewNodeState() NodeState {
	return NodeState{NextID: DefaultSeedID}
}

// CardNode ties the reader, display and reporter together into the card
// writer node's per-cycle procedure. All work is synchronous; the caller
// drives ProcessCycle from a single polling loop.
type CardNode struct {
	reader   CardReader
	display  Display
	reporter Reporter
	stamper  *Stamper
	tracker  *Tracker

	heartbeatEvery time.Duration
	lastHeartbeat  time.Time
}

// NewCardNode creates a card writer node. The reader, display and reporter
// are required collaborators; options tune the tracker windows, target block
// and sector key.
func NewCardNode(reader CardReader, display Display, reporter Reporter, opts ...NodeOption) *CardNode {
	cfg := defaultNodeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &CardNode{
		reader:         reader,
		display:        display,
		reporter:       reporter,
		stamper:        NewStamper(reader, WithKey(cfg.key), WithBlock(cfg.block)),
		tracker:        NewTracker(cfg.cooldown, cfg.presenceTimeout),
		heartbeatEvery: cfg.heartbeatEvery,
	}
}

// Tracker exposes the presence tracker, mainly for tests and diagnostics.
func (n *CardNode) Tracker() *Tracker {
	return n.tracker
}

// ProcessCycle runs one detection cycle and returns the updated state.
//
// For an admitted card the sequence within the cycle is fixed: display
// update, network report, counter advance. A failed write never consumes an
// ID. Cards re-presented within the cooldown window are released without
// side effects. Reporter errors are swallowed here; the reporter logs them
// and the next cycle's connectivity check handles reconnection.
func (n *CardNode) ProcessCycle(state NodeState, now time.Time) NodeState {
	if n.tracker.Expire(now) {
		n.display.Ready(state.NextID)
	}

	if state.Processing {
		return state
	}

	card, err := n.reader.Detect()
	if err != nil {
		if errors.Is(err, ErrNoCard) {
			n.idleHeartbeat(now)
		}
		return state
	}

	uid := card.UIDHex()
	if !n.tracker.Admit(uid, now) {
		n.reader.Release()
		return state
	}

	state.Processing = true
	n.display.Processing(uid)

	stampErr := n.stamper.Stamp(card, state.NextID, now)
	n.reader.Release()

	if stampErr != nil {
		n.display.Failure(uid)
		_ = n.reporter.CardError(uid, ReasonToken(stampErr))
		state.Processing = false
		return state
	}

	n.display.Success(uid, state.NextID)
	_ = n.reporter.CardProcessed(uid, state.NextID, n.stamper.Block())
	state.NextID++
	state.Processing = false
	return state
}

// idleHeartbeat reports liveness on empty-field cycles, paced by the
// heartbeat interval. Disabled when the interval is zero.
func (n *CardNode) idleHeartbeat(now time.Time) {
	if n.heartbeatEvery <= 0 {
		return
	}
	if now.Sub(n.lastHeartbeat) < n.heartbeatEvery {
		return
	}
	n.lastHeartbeat = now
	_ = n.reporter.Heartbeat()
}

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
	"time"
)

// nodeConfig holds CardNode construction parameters.
type nodeConfig struct {
	key             Key
	cooldown        time.Duration
	presenceTimeout time.Duration
	heartbeatEvery  time.Duration
	block           uint8
}

func defaultNodeConfig() nodeConfig {
	return nodeConfig{
		key:             DefaultKey,
		cooldown:        DefaultCooldown,
		presenceTimeout: DefaultPresenceTimeout,
		heartbeatEvery:  30 * time.Second,
		block:           DefaultBlock,
	}
}

// NodeOption is a functional option for configuring a CardNode.
type NodeOption func(*nodeConfig)

// WithCooldown sets the same-card reprocessing cooldown.
func WithCooldown(d time.Duration) NodeOption {
	return func(c *nodeConfig) { c.cooldown = d }
}

// WithPresenceTimeout sets how long after the last processed card the node
// returns to its ready screen.
func WithPresenceTimeout(d time.Duration) NodeOption {
	return func(c *nodeConfig) { c.presenceTimeout = d }
}

// WithHeartbeatInterval sets the idle heartbeat pacing. Zero disables
// heartbeats.
func WithHeartbeatInterval(d time.Duration) NodeOption {
	return func(c *nodeConfig) { c.heartbeatEvery = d }
}

// WithSectorKey sets the sector key for the write-verify procedure.
func WithSectorKey(key Key) NodeOption {
	return func(c *nodeConfig) { c.key = key }
}

// WithTargetBlock sets the block the record is written to.
func WithTargetBlock(block uint8) NodeOption {
	return func(c *nodeConfig) { c.block = block }
}

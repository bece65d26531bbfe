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

// Display is the contract for the node's status screen. Each call clears
// prior content and draws one fixed screen; calls are idempotent and no
// state is retained between them.
type Display interface {
	// Startup is shown once while the node initializes.
	Startup()

	// ConnectingNetwork is shown while the node joins its network,
	// labeled with the network or peer name.
	ConnectingNetwork(name string)

	// NetworkResult reports the outcome of the join attempt.
	NetworkResult(ok bool)

	// Ready shows the idle screen with the next ID to be issued.
	Ready(nextID uint32)

	// Processing is shown while a card write is in flight.
	Processing(uid string)

	// Success shows the written ID after a verified write.
	Success(uid string, id uint32)

	// Failure is shown when a write-verify attempt failed.
	Failure(uid string)
}

// Reporter is the contract for pushing one-line status events to the TCP
// peer. Implementations log and swallow transient transport failures; the
// node loop never retries a send inline.
type Reporter interface {
	// Ready ensures the link is up. The readiness sentinel is sent by the
	// implementation on every successful (re)connect.
	Ready() error

	// CardProcessed reports a verified write.
	CardProcessed(uid string, id uint32, block uint8) error

	// CardError reports a failed write-verify attempt with a reason token.
	CardError(uid, reason string) error

	// Heartbeat reports liveness on idle cycles.
	Heartbeat() error
}

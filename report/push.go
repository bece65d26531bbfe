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

package report

import (
	"fmt"
	"net"
	"time"
)

// Pusher sends one line per short-lived connection: dial, write, close.
// One best-effort attempt per cycle, no retry; the next cycle pushes fresh
// data anyway.
type Pusher struct {
	// Timeout bounds the dial and the write together.
	Timeout time.Duration
}

// NewPusher creates a pusher with the given per-push timeout.
func NewPusher(timeout time.Duration) *Pusher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Pusher{Timeout: timeout}
}

// Push opens a connection to addr, writes one newline-terminated line and
// closes.
func (p *Pusher) Push(addr, line string) error {
	conn, err := net.DialTimeout("tcp", addr, p.Timeout)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConnectFailed, addr)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetWriteDeadline(time.Now().Add(p.Timeout)); err != nil {
		return fmt.Errorf("set deadline for %s: %w", addr, err)
	}
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("push to %s: %w", addr, err)
	}
	return nil
}

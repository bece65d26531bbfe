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

// Package report pushes status lines to the node's TCP peers.
//
// Two modes exist. LineReporter keeps one long-lived connection to the
// station and reconnects lazily before each send. Pusher opens one
// short-lived connection per destination per reading, for the sensor nodes.
package report

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/warestamp/warestamp/internal/retry"
	"github.com/warestamp/warestamp/wire"
)

// ErrConnectFailed is returned when the station cannot be reached. The
// condition is recoverable; the next send attempts a fresh connection.
var ErrConnectFailed = errors.New("connect to station failed")

// Config holds LineReporter connection parameters.
type Config struct {
	// Addr is the station host:port.
	Addr string
	// DialTimeout bounds one connection attempt.
	DialTimeout time.Duration
	// WriteTimeout bounds one line send.
	WriteTimeout time.Duration
	// DialRetries is the number of extra dial attempts per send.
	DialRetries int
	// DialBackoff is slept between dial attempts.
	DialBackoff time.Duration
}

// DefaultConfig returns the reporter defaults.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:         addr,
		DialTimeout:  3 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialRetries:  2,
		DialBackoff:  200 * time.Millisecond,
	}
}

// LineReporter maintains a long-lived line connection to the station and
// implements warestamp.Reporter. On every successful (re)connect it sends
// the SYSTEM_READY sentinel before anything else. Send failures close the
// connection and are reported once; there is no inline resend.
//
// LineReporter is used from the single node loop and is not safe for
// concurrent use.
type LineReporter struct {
	conn net.Conn
	log  *zap.Logger
	cfg  Config
}

// New creates a reporter for the given station address. No connection is
// opened until the first send.
func New(cfg Config, log *zap.Logger) *LineReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &LineReporter{cfg: cfg, log: log}
}

// Connected reports whether a connection is currently open.
func (r *LineReporter) Connected() bool {
	return r.conn != nil
}

// Ready ensures the link is up, dialing if necessary. The readiness
// sentinel is sent as part of connecting.
func (r *LineReporter) Ready() error {
	return r.ensure()
}

// CardProcessed reports a verified write.
func (r *LineReporter) CardProcessed(uid string, id uint32, block uint8) error {
	return r.send(wire.CardProcessed(uid, id, block))
}

// CardError reports a failed write-verify attempt.
func (r *LineReporter) CardError(uid, reason string) error {
	return r.send(wire.CardError(uid, reason))
}

// Heartbeat reports liveness.
func (r *LineReporter) Heartbeat() error {
	return r.send(wire.Heartbeat())
}

// Close drops the connection if one is open.
func (r *LineReporter) Close() error {
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	if err != nil {
		return fmt.Errorf("close station connection: %w", err)
	}
	return nil
}

// ensure dials the station if no connection is open and pushes the
// readiness sentinel on a fresh connection.
func (r *LineReporter) ensure() error {
	if r.conn != nil {
		return nil
	}

	conn, err := retry.Do(retry.Config{
		MaxRetries: r.cfg.DialRetries,
		Delay:      r.cfg.DialBackoff,
	}, func() (net.Conn, bool, error) {
		conn, dialErr := net.DialTimeout("tcp", r.cfg.Addr, r.cfg.DialTimeout)
		if dialErr != nil {
			r.log.Warn("station dial failed",
				zap.String("addr", r.cfg.Addr),
				zap.Error(dialErr),
			)
			return nil, true, nil
		}
		return conn, false, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConnectFailed, r.cfg.Addr)
	}

	r.conn = conn
	r.log.Info("connected to station", zap.String("addr", r.cfg.Addr))

	if err := r.writeLine(wire.Ready()); err != nil {
		return err
	}
	return nil
}

// send ensures connectivity and writes one line. On failure the connection
// is dropped so the next send reconnects.
func (r *LineReporter) send(msg wire.Message) error {
	if err := r.ensure(); err != nil {
		return err
	}
	return r.writeLine(msg)
}

func (r *LineReporter) writeLine(msg wire.Message) error {
	line := msg.String()
	if r.cfg.WriteTimeout > 0 {
		if err := r.conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout)); err != nil {
			r.log.Warn("set write deadline failed", zap.Error(err))
		}
	}

	if _, err := r.conn.Write([]byte(line + "\n")); err != nil {
		r.log.Warn("station send failed",
			zap.String("line", line),
			zap.Error(err),
		)
		_ = r.conn.Close()
		r.conn = nil
		return fmt.Errorf("send %q: %w", msg.Event, err)
	}

	r.log.Debug("sent to station", zap.String("line", line))
	return nil
}

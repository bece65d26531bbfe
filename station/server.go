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

// Package station implements the receiving end of the card node protocol:
// a TCP listener that acknowledges status lines, appends an operations log
// and keeps the durable ledger of issued IDs.
package station

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warestamp/warestamp/wire"
)

// Config holds station parameters.
type Config struct {
	// Addr is the listen address, e.g. ":1234".
	Addr string
	// LedgerPath is the JSON ledger location.
	LedgerPath string
	// OpsLogPath receives one appended line per card operation. Empty
	// disables the operations log.
	OpsLogPath string
}

// Server accepts persistent card-node connections and replies to each line
// with the matching acknowledgement.
type Server struct {
	cfg    Config
	ledger *Ledger
	log    *zap.Logger

	ln net.Listener
	wg sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New creates a station server.
func New(cfg Config, ledger *Ledger, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, ledger: ledger, log: log}
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listener and serves connections until the context is
// cancelled. It returns once the listener is bound; Serve work continues in
// background goroutines until Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("station already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.started = true
	s.log.Info("station listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ctx)
	}()

	context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})

	return nil
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.log.Info("node connected", zap.String("remote", remote))
	defer func() {
		_ = conn.Close()
		s.log.Info("node disconnected", zap.String("remote", remote))
	}()

	// Stop releases the context registration once the connection ends, so
	// short-lived nodes do not accumulate callbacks on a long-running server.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		reply := s.handleLine(scanner.Text(), remote)
		if reply == "" {
			continue
		}
		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			s.log.Warn("reply failed", zap.String("remote", remote), zap.Error(err))
			return
		}
	}
}

// handleLine processes one protocol line and returns the reply, or an empty
// string when no reply is due.
func (s *Server) handleLine(line, remote string) string {
	msg, err := wire.Parse(line)
	if err != nil {
		return ""
	}

	switch msg.Event {
	case wire.EventReady:
		s.log.Info("node ready", zap.String("remote", remote))
		return wire.AckReady

	case wire.EventHeartbeat:
		return wire.AckHeartbeat

	case wire.EventCardProcessed:
		return s.handleProcessed(msg, remote)

	case wire.EventCardError:
		uid, _ := msg.Get(wire.KeyUID)
		reason, _ := msg.Get(wire.KeyError)
		s.log.Warn("card error reported",
			zap.String("remote", remote),
			zap.String("uid", uid),
			zap.String("reason", reason),
		)
		s.appendOpLog(fmt.Sprintf("UID: %s, Status: ERROR (%s)", uid, reason))
		return wire.AckLogged

	default:
		s.log.Warn("unknown command",
			zap.String("remote", remote),
			zap.String("event", msg.Event),
		)
		return wire.ErrUnknownCommand
	}
}

func (s *Server) handleProcessed(msg wire.Message, remote string) string {
	uid, _ := msg.Get(wire.KeyUID)
	block, _ := msg.Get(wire.KeyBlock)

	id, err := wire.ProcessedID(msg)
	if err != nil {
		s.log.Warn("malformed processed line",
			zap.String("remote", remote),
			zap.Error(err),
		)
		return wire.ErrUnknownCommand
	}

	if err := s.ledger.RecordIssued(id); err != nil {
		s.log.Error("ledger update failed", zap.Uint32("id", id), zap.Error(err))
	}

	s.log.Info("card processed",
		zap.String("remote", remote),
		zap.String("uid", uid),
		zap.Uint32("id", id),
		zap.String("block", block),
	)
	s.appendOpLog(fmt.Sprintf("UID: %s, ID: %d, Block: %s, Status: SUCCESS", uid, id, block))
	return wire.AckLogged
}

// appendOpLog appends one timestamped line to the operations log. Failures
// are logged and otherwise ignored; the log is an audit aid, not a source
// of truth.
func (s *Server) appendOpLog(entry string) {
	if s.cfg.OpsLogPath == "" {
		return
	}

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), entry)
	f, err := os.OpenFile(s.cfg.OpsLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.log.Warn("operations log open failed", zap.Error(err))
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(line); err != nil {
		s.log.Warn("operations log write failed", zap.Error(err))
	}
}

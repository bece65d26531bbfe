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

package station

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	server *Server
	ledger *Ledger
	opsLog string
}

func startServer(t *testing.T) *serverFixture {
	t.Helper()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.json")
	opsLog := filepath.Join(dir, "operations.log")

	ledger, err := OpenLedger(ledgerPath)
	require.NoError(t, err)

	srv := New(Config{
		Addr:       "127.0.0.1:0",
		LedgerPath: ledgerPath,
		OpsLogPath: opsLog,
	}, ledger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = srv.Stop()
	})

	return &serverFixture{server: srv, ledger: ledger, opsLog: opsLog}
}

func (f *serverFixture) dial(t *testing.T) (net.Conn, *bufio.Scanner) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", f.server.Addr().String(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, bufio.NewScanner(conn)
}

func sendLine(t *testing.T, conn net.Conn, scanner *bufio.Scanner, line string) string {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.True(t, scanner.Scan(), "no reply to %q", line)
	return scanner.Text()
}

func TestServerAcknowledgesProtocolLines(t *testing.T) {
	t.Parallel()

	f := startServer(t)
	conn, scanner := f.dial(t)

	assert.Equal(t, "ACK_SYSTEM_READY", sendLine(t, conn, scanner, "SYSTEM_READY"))
	assert.Equal(t, "HEARTBEAT_ACK", sendLine(t, conn, scanner, "HEARTBEAT"))
	assert.Equal(t, "ACK_LOGGED",
		sendLine(t, conn, scanner, "CARD_PROCESSED|UID:04A1B2C3|ID:1000|BLOCK:8"))
	assert.Equal(t, "ACK_LOGGED",
		sendLine(t, conn, scanner, "CARD_ERROR|UID:04A1B2C3|ERROR:Write_Failed"))
	assert.Equal(t, "ERROR_UNKNOWN_COMMAND", sendLine(t, conn, scanner, "BOGUS"))
}

func TestServerRecordsProcessedIDs(t *testing.T) {
	t.Parallel()

	f := startServer(t)
	conn, scanner := f.dial(t)

	sendLine(t, conn, scanner, "CARD_PROCESSED|UID:04A1B2C3|ID:1000|BLOCK:8")
	sendLine(t, conn, scanner, "CARD_PROCESSED|UID:11223344|ID:1001|BLOCK:8")

	assert.Equal(t, uint32(1002), f.ledger.NextID())
	assert.Equal(t, 2, f.ledger.UsedCount())
}

func TestServerRejectsMalformedProcessedLine(t *testing.T) {
	t.Parallel()

	f := startServer(t)
	conn, scanner := f.dial(t)

	reply := sendLine(t, conn, scanner, "CARD_PROCESSED|UID:AA|ID:banana|BLOCK:8")
	assert.Equal(t, "ERROR_UNKNOWN_COMMAND", reply)
	assert.Zero(t, f.ledger.UsedCount())
}

func TestServerAppendsOperationsLog(t *testing.T) {
	t.Parallel()

	f := startServer(t)
	conn, scanner := f.dial(t)

	sendLine(t, conn, scanner, "CARD_PROCESSED|UID:04A1B2C3|ID:1000|BLOCK:8")
	sendLine(t, conn, scanner, "CARD_ERROR|UID:11223344|ERROR:Unsupported_Card")

	data, err := os.ReadFile(f.opsLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "UID: 04A1B2C3, ID: 1000, Block: 8, Status: SUCCESS")
	assert.Contains(t, string(data), "UID: 11223344, Status: ERROR (Unsupported_Card)")
}

func TestServerHandlesMultipleNodes(t *testing.T) {
	t.Parallel()

	f := startServer(t)
	connA, scannerA := f.dial(t)
	connB, scannerB := f.dial(t)

	assert.Equal(t, "ACK_SYSTEM_READY", sendLine(t, connA, scannerA, "SYSTEM_READY"))
	assert.Equal(t, "ACK_SYSTEM_READY", sendLine(t, connB, scannerB, "SYSTEM_READY"))

	sendLine(t, connA, scannerA, "CARD_PROCESSED|UID:AA|ID:1000|BLOCK:8")
	sendLine(t, connB, scannerB, "CARD_PROCESSED|UID:BB|ID:2000|BLOCK:8")

	assert.Equal(t, 2, f.ledger.UsedCount())
}

func TestServerStartTwiceFails(t *testing.T) {
	t.Parallel()

	f := startServer(t)
	err := f.server.Start(context.Background())
	require.Error(t, err)
}

func TestServerShutdownClosesLiveConnection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.json")
	ledger, err := OpenLedger(ledgerPath)
	require.NoError(t, err)

	srv := New(Config{
		Addr:       "127.0.0.1:0",
		LedgerPath: ledgerPath,
		OpsLogPath: filepath.Join(dir, "operations.log"),
	}, ledger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = srv.Stop()
	})

	// Churn a few short-lived nodes before the one that stays connected.
	for i := 0; i < 3; i++ {
		conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	scanner := bufio.NewScanner(conn)
	require.Equal(t, "HEARTBEAT_ACK", sendLine(t, conn, scanner, "HEARTBEAT"))

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err, "shutdown should close the node connection")
}

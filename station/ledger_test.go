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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerStartsFresh(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := OpenLedger(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), l.NextID())
	assert.Zero(t, l.UsedCount())
}

func TestLedgerRecordAdvancesNextID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := OpenLedger(path)
	require.NoError(t, err)

	require.NoError(t, l.RecordIssued(1000))
	assert.Equal(t, uint32(1001), l.NextID())
	assert.Equal(t, 1, l.UsedCount())

	// Lower IDs do not move NextID backwards.
	require.NoError(t, l.RecordIssued(5))
	assert.Equal(t, uint32(1001), l.NextID())
	assert.Equal(t, 2, l.UsedCount())
}

func TestLedgerRecordIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := OpenLedger(path)
	require.NoError(t, err)

	require.NoError(t, l.RecordIssued(1000))
	require.NoError(t, l.RecordIssued(1000))
	assert.Equal(t, 1, l.UsedCount())
}

func TestLedgerPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := OpenLedger(path)
	require.NoError(t, err)
	require.NoError(t, l.RecordIssued(1000))
	require.NoError(t, l.RecordIssued(1001))

	reopened, err := OpenLedger(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1002), reopened.NextID())
	assert.Equal(t, 2, reopened.UsedCount())
}

func TestLedgerRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenLedger(path)
	require.Error(t, err)
}

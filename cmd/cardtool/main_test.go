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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warestamp/warestamp"
	"github.com/warestamp/warestamp/internal/cardtest"
)

func TestBlockRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		first, last uint
		wantErr     bool
	}{
		{name: "default range", first: 4, last: 11},
		{name: "single block", first: 8, last: 8},
		{name: "last addressable block", first: 248, last: 255},
		{name: "first above last", first: 12, last: 4, wantErr: true},
		{name: "last beyond card space", first: 0, last: 256, wantErr: true},
		{name: "both beyond card space", first: 300, last: 400, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first, last, err := blockRange(tt.first, tt.last)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint8(tt.first), first)
			assert.Equal(t, uint8(tt.last), last)
		})
	}
}

func TestDumpBlocksUpperBoundTerminates(t *testing.T) {
	t.Parallel()

	card := cardtest.NewClassic1K(nil)
	card.Memory[252] = []byte{0xDE, 0xAD, 0xBE, 0xEF,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	reader := cardtest.NewReader(card)

	dump, err := dumpBlocks(reader, warestamp.DefaultKey, 248, 255)
	require.NoError(t, err)

	// Trailer blocks 251 and 255 are skipped, the rest are readable.
	assert.Len(t, dump, 6)
	assert.Equal(t, card.Memory[252], dump[252])
	assert.NotContains(t, dump, uint8(251))
	assert.NotContains(t, dump, uint8(255))
}

func TestDumpBlocksSkipsUnreadableSectors(t *testing.T) {
	t.Parallel()

	reader := cardtest.NewReader(cardtest.NewClassic1K(nil))
	wrongKey := warestamp.Key{0, 1, 2, 3, 4, 5}

	_, err := dumpBlocks(reader, wrongKey, 4, 11)
	require.Error(t, err)
}

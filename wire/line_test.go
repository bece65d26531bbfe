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

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStringForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "ready sentinel",
			msg:  Ready(),
			want: "SYSTEM_READY",
		},
		{
			name: "heartbeat",
			msg:  Heartbeat(),
			want: "HEARTBEAT",
		},
		{
			name: "card processed",
			msg:  CardProcessed("04A1B2C3", 1000, 8),
			want: "CARD_PROCESSED|UID:04A1B2C3|ID:1000|BLOCK:8",
		},
		{
			name: "card error",
			msg:  CardError("04A1B2C3", "Write_Failed"),
			want: "CARD_ERROR|UID:04A1B2C3|ERROR:Write_Failed",
		},
		{
			name: "unsupported card error",
			msg:  CardError("11223344", "Unsupported_Card"),
			want: "CARD_ERROR|UID:11223344|ERROR:Unsupported_Card",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.msg.String())
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	msg, err := Parse("CARD_PROCESSED|UID:04A1B2C3|ID:1000|BLOCK:8\n")
	require.NoError(t, err)

	assert.Equal(t, EventCardProcessed, msg.Event)
	uid, ok := msg.Get(KeyUID)
	require.True(t, ok)
	assert.Equal(t, "04A1B2C3", uid)

	id, err := ProcessedID(msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), id)

	block, ok := msg.Get(KeyBlock)
	require.True(t, ok)
	assert.Equal(t, "8", block)
}

func TestParseEmptyLine(t *testing.T) {
	t.Parallel()

	_, err := Parse("   \r\n")
	assert.ErrorIs(t, err, ErrEmptyLine)
}

func TestParseToleratesFieldWithoutColon(t *testing.T) {
	t.Parallel()

	msg, err := Parse("CARD_ERROR|UID:AA|ODDFIELD")
	require.NoError(t, err)
	value, ok := msg.Get("ODDFIELD")
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestProcessedIDRejectsWrongEvent(t *testing.T) {
	t.Parallel()

	_, err := ProcessedID(Ready())
	require.Error(t, err)
}

func TestProcessedIDRejectsBadNumber(t *testing.T) {
	t.Parallel()

	msg, err := Parse("CARD_PROCESSED|UID:AA|ID:banana|BLOCK:8")
	require.NoError(t, err)
	_, err = ProcessedID(msg)
	require.Error(t, err)
}

func TestGetMissingKey(t *testing.T) {
	t.Parallel()

	_, ok := Ready().Get(KeyUID)
	assert.False(t, ok)
}

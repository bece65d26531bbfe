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

package mcp3008

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func playbackADC(t *testing.T, ops []conntest.IO) *ADC {
	t.Helper()
	port := &spitest.Playback{
		Playback: conntest.Playback{Ops: ops, DontPanic: true},
	}
	conn, err := port.Connect(1350*physic.KiloHertz, spi.Mode0, 8)
	require.NoError(t, err)
	return &ADC{port: port, conn: conn}
}

func TestSampleDecodesTenBits(t *testing.T) {
	t.Parallel()

	adc := playbackADC(t, []conntest.IO{
		// Channel 0: result 0x28F = 655.
		{W: []byte{0x01, 0x80, 0x00}, R: []byte{0x00, 0x02, 0x8F}},
		// Channel 7: full scale.
		{W: []byte{0x01, 0xF0, 0x00}, R: []byte{0x00, 0x03, 0xFF}},
	})

	raw, err := adc.Sample(0)
	require.NoError(t, err)
	assert.Equal(t, 655, raw)

	raw, err = adc.Sample(7)
	require.NoError(t, err)
	assert.Equal(t, MaxRaw, raw)
}

func TestSampleMasksUpperBits(t *testing.T) {
	t.Parallel()

	// Bits above the 10-bit result are undefined on the wire and must be
	// ignored.
	adc := playbackADC(t, []conntest.IO{
		{W: []byte{0x01, 0x90, 0x00}, R: []byte{0xFF, 0xFF, 0x00}},
	})

	raw, err := adc.Sample(1)
	require.NoError(t, err)
	assert.Equal(t, 0x300, raw)
}

func TestSampleRejectsBadChannel(t *testing.T) {
	t.Parallel()

	adc := &ADC{}
	_, err := adc.Sample(-1)
	require.Error(t, err)
	_, err = adc.Sample(8)
	require.Error(t, err)
}

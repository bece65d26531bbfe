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

package warestamp_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warestamp/warestamp"
	"github.com/warestamp/warestamp/internal/cardtest"
)

func detectCard(t *testing.T, reader *cardtest.Reader) *warestamp.Card {
	t.Helper()
	card, err := reader.Detect()
	require.NoError(t, err)
	return card
}

func TestStampWritesVerifiedRecord(t *testing.T) {
	t.Parallel()

	reader := cardtest.NewReader(cardtest.NewClassic1K(nil))
	stamper := warestamp.NewStamper(reader)
	now := time.Unix(1700000000, 0)

	card := detectCard(t, reader)
	require.NoError(t, stamper.Stamp(card, 1000, now))

	rec, err := warestamp.ParseRecord(reader.Card.Block(warestamp.DefaultBlock))
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), rec.ID)
	assert.True(t, rec.Issued.Equal(now))
	assert.Equal(t, 1, reader.Writes)
	assert.Equal(t, 1, reader.Reads)
}

func TestStampRejectsForeignCard(t *testing.T) {
	t.Parallel()

	reader := cardtest.NewReader(cardtest.NewForeign(nil))
	stamper := warestamp.NewStamper(reader)

	err := stamper.Stamp(detectCard(t, reader), 1000, time.Now())
	require.Error(t, err)

	var writeErr *warestamp.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, warestamp.UnsupportedCard, writeErr.Kind)
	// Nothing touched the card.
	assert.Zero(t, reader.Writes)
	assert.Zero(t, reader.Reads)
}

func TestStampAcceptsClassic4K(t *testing.T) {
	t.Parallel()

	reader := cardtest.NewReader(cardtest.NewClassic4K(nil))
	stamper := warestamp.NewStamper(reader)

	require.NoError(t, stamper.Stamp(detectCard(t, reader), 2000, time.Now()))
}

func TestStampFailureKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		configure func(*cardtest.Reader)
		name      string
		wantKind  warestamp.WriteErrorKind
	}{
		{
			name:      "auth failure",
			configure: func(r *cardtest.Reader) { r.FailAuth = true },
			wantKind:  warestamp.AuthFailed,
		},
		{
			name:      "write failure",
			configure: func(r *cardtest.Reader) { r.FailWrite = true },
			wantKind:  warestamp.WriteFailed,
		},
		{
			name:      "readback failure",
			configure: func(r *cardtest.Reader) { r.FailRead = true },
			wantKind:  warestamp.ReadbackFailed,
		},
		{
			name:      "verification mismatch",
			configure: func(r *cardtest.Reader) { r.CorruptRead = true },
			wantKind:  warestamp.VerificationMismatch,
		},
		{
			name:      "short readback",
			configure: func(r *cardtest.Reader) { r.ShortRead = true },
			wantKind:  warestamp.ReadbackFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := cardtest.NewReader(cardtest.NewClassic1K(nil))
			tt.configure(reader)
			stamper := warestamp.NewStamper(reader)

			err := stamper.Stamp(detectCard(t, reader), 1000, time.Now())
			require.Error(t, err)

			var writeErr *warestamp.WriteError
			require.ErrorAs(t, err, &writeErr)
			assert.Equal(t, tt.wantKind, writeErr.Kind)
			assert.Equal(t, "04A1B2C3", writeErr.UID)
		})
	}
}

func TestStampWithWrongKey(t *testing.T) {
	t.Parallel()

	reader := cardtest.NewReader(cardtest.NewClassic1K(nil))
	stamper := warestamp.NewStamper(reader, warestamp.WithKey(warestamp.Key{1, 2, 3, 4, 5, 6}))

	err := stamper.Stamp(detectCard(t, reader), 1000, time.Now())
	require.Error(t, err)

	var writeErr *warestamp.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, warestamp.AuthFailed, writeErr.Kind)
	assert.True(t, errors.Is(err, warestamp.NewStatusError("", warestamp.StatusMIFARENack)))
}

func TestStampWithCustomBlock(t *testing.T) {
	t.Parallel()

	reader := cardtest.NewReader(cardtest.NewClassic1K(nil))
	stamper := warestamp.NewStamper(reader, warestamp.WithBlock(12))
	require.Equal(t, uint8(12), stamper.Block())

	require.NoError(t, stamper.Stamp(detectCard(t, reader), 1000, time.Now()))
	rec, err := warestamp.ParseRecord(reader.Card.Block(12))
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), rec.ID)
}

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

import (
	"fmt"
	"time"
)

// DefaultBlock is the card block the record is written to.
const DefaultBlock uint8 = 8

// Stamper runs the write-verify procedure against a card reader. It holds
// the sector key and target block but no issuance state; the caller owns the
// ID counter and advances it only after Stamp returns nil.
type Stamper struct {
	reader CardReader
	key    Key
	block  uint8
}

// StamperOption configures a Stamper.
type StamperOption func(*Stamper)

// WithKey sets the sector key used for authentication.
func WithKey(key Key) StamperOption {
	return func(s *Stamper) { s.key = key }
}

// WithBlock sets the target block for the record.
func WithBlock(block uint8) StamperOption {
	return func(s *Stamper) { s.block = block }
}

// NewStamper creates a stamper for the given reader. By default it writes to
// DefaultBlock using DefaultKey.
func NewStamper(reader CardReader, opts ...StamperOption) *Stamper {
	s := &Stamper{
		reader: reader,
		key:    DefaultKey,
		block:  DefaultBlock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Block returns the target block number.
func (s *Stamper) Block() uint8 {
	return s.block
}

// Stamp writes the record for the given ID to the card and verifies it by
// reading the block back. The sequence is fixed: classify, authenticate,
// write, read back, compare. Any failure is returned as a *WriteError and
// leaves the card in an undefined but released-on-caller state; the ID must
// not be considered consumed unless Stamp returns nil.
func (s *Stamper) Stamp(card *Card, id uint32, now time.Time) error {
	uid := card.UIDHex()

	if card.Type() == CardTypeUnknown {
		return &WriteError{
			Kind: UnsupportedCard,
			UID:  uid,
			Err:  fmt.Errorf("sak %#02x", card.SAK),
		}
	}

	if err := s.reader.Authenticate(s.block, s.key); err != nil {
		return &WriteError{Kind: AuthFailed, UID: uid, Err: err}
	}

	record := Record{ID: id, Issued: now}
	if err := s.reader.WriteBlock(s.block, record.Marshal()); err != nil {
		return &WriteError{Kind: WriteFailed, UID: uid, Err: err}
	}

	readback, err := s.reader.ReadBlock(s.block)
	if err != nil {
		return &WriteError{Kind: ReadbackFailed, UID: uid, Err: err}
	}
	if len(readback) != BlockSize {
		return &WriteError{
			Kind: ReadbackFailed,
			UID:  uid,
			Err:  fmt.Errorf("readback returned %d bytes, want %d", len(readback), BlockSize),
		}
	}

	if got := recordID(readback); got != id {
		return &WriteError{
			Kind: VerificationMismatch,
			UID:  uid,
			Err:  fmt.Errorf("wrote id %d, read back %d", id, got),
		}
	}

	return nil
}

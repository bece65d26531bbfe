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
	"encoding/hex"
	"strings"
)

// MIFARE memory structure
// BlockSize is the size of one MIFARE Classic block in bytes.
const BlockSize = 16

// Key is a 6-byte MIFARE Classic sector key.
type Key [6]byte

// DefaultKey is the transport key blank MIFARE Classic cards ship with.
// The stamping procedure authenticates with it as key A.
var DefaultKey = Key{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// CardType identifies a detected card variant.
type CardType int

// Supported MIFARE Classic variants. Anything else is rejected by the
// write-verify procedure.
const (
	CardTypeUnknown CardType = iota
	CardTypeClassicMini
	CardTypeClassic1K
	CardTypeClassic4K
)

// String returns the card type name.
func (t CardType) String() string {
	switch t {
	case CardTypeClassicMini:
		return "MIFARE Classic Mini"
	case CardTypeClassic1K:
		return "MIFARE Classic 1K"
	case CardTypeClassic4K:
		return "MIFARE Classic 4K"
	default:
		return "unknown"
	}
}

// SAK values per the ISO14443-3 select acknowledge byte.
const (
	sakClassicMini = 0x09
	sakClassic1K   = 0x08
	sakClassic4K   = 0x18
)

// classifySAK maps a select acknowledge byte to a card type.
func classifySAK(sak byte) CardType {
	switch sak {
	case sakClassicMini:
		return CardTypeClassicMini
	case sakClassic1K:
		return CardTypeClassic1K
	case sakClassic4K:
		return CardTypeClassic4K
	default:
		return CardTypeUnknown
	}
}

// Card is a card currently selected in the reader field.
type Card struct {
	// UID is the card serial number as read from the anticollision loop.
	UID []byte
	// SAK is the select acknowledge byte used for type classification.
	SAK byte
}

// Type classifies the card from its SAK byte.
func (c *Card) Type() CardType {
	return classifySAK(c.SAK)
}

// UIDHex returns the card serial as an uppercase hex string. Presence
// tracking and all reported identities use this normalized form.
func (c *Card) UIDHex() string {
	return strings.ToUpper(hex.EncodeToString(c.UID))
}

// CardReader is the narrow capability surface a card reader driver exposes
// to the stamping procedure. Implementations are not required to be safe for
// concurrent use; all calls come from the single node loop.
type CardReader interface {
	// Detect polls the field once and selects a card if one is present.
	// Returns ErrNoCard when the field is empty.
	Detect() (*Card, error)

	// Authenticate runs the MIFARE challenge for the sector containing the
	// given block, using the key as key A.
	Authenticate(block uint8, key Key) error

	// WriteBlock writes exactly 16 bytes to an authenticated block.
	WriteBlock(block uint8, data []byte) error

	// ReadBlock reads 16 bytes from an authenticated block.
	ReadBlock(block uint8) ([]byte, error)

	// Release halts the selected card and drops the crypto session so the
	// field can be polled again.
	Release()
}

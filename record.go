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
	"encoding/binary"
	"fmt"
	"time"
)

// Record is the payload committed to a card block: the issued ID followed by
// the issue time, both little-endian uint32, padded with zeros to block size.
//
//	bytes 0..3   issued ID
//	bytes 4..7   issue time, Unix epoch seconds
//	bytes 8..15  zero padding
type Record struct {
	Issued time.Time
	ID     uint32
}

// Marshal encodes the record into a fresh 16-byte block.
func (r Record) Marshal() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(buf[0:4], r.ID)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(r.Issued.Unix()))
	return buf
}

// ParseRecord decodes a block previously written by Marshal.
func ParseRecord(data []byte) (Record, error) {
	if len(data) != BlockSize {
		return Record{}, fmt.Errorf("parse record: %w (got %d)", ErrInvalidBlockSize, len(data))
	}
	return Record{
		ID:     binary.LittleEndian.Uint32(data[0:4]),
		Issued: time.Unix(int64(binary.LittleEndian.Uint32(data[4:8])), 0).UTC(),
	}, nil
}

// recordID extracts the issued ID from a raw block without a full parse.
// Used by readback verification, which only compares the ID field.
func recordID(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[0:4])
}

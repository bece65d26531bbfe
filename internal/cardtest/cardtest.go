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

// Package cardtest provides simulated cards, readers, displays and
// reporters for testing the node logic without hardware.
package cardtest

import (
	"fmt"

	"github.com/warestamp/warestamp"
)

// Well-known test UIDs.
var (
	UID1K = []byte{0x04, 0xA1, 0xB2, 0xC3}
	UID4K = []byte{0x11, 0x22, 0x33, 0x44}
)

// VirtualCard simulates a MIFARE Classic card: block memory, a key A per
// card and a presence flag.
type VirtualCard struct {
	UID     []byte
	Memory  map[uint8][]byte
	KeyA    warestamp.Key
	SAK     byte
	Present bool
}

// NewClassic1K creates a present 1K card keyed with the transport key.
func NewClassic1K(uid []byte) *VirtualCard {
	if uid == nil {
		uid = UID1K
	}
	return &VirtualCard{
		UID:     uid,
		SAK:     0x08,
		KeyA:    warestamp.DefaultKey,
		Memory:  make(map[uint8][]byte),
		Present: true,
	}
}

// NewClassic4K creates a present 4K card keyed with the transport key.
func NewClassic4K(uid []byte) *VirtualCard {
	if uid == nil {
		uid = UID4K
	}
	c := NewClassic1K(uid)
	c.SAK = 0x18
	return c
}

// NewForeign creates a present card of an unsupported type.
func NewForeign(uid []byte) *VirtualCard {
	c := NewClassic1K(uid)
	c.SAK = 0x00
	return c
}

// Block returns the card's copy of a block, zeros if never written.
func (c *VirtualCard) Block(block uint8) []byte {
	if data, ok := c.Memory[block]; ok {
		return data
	}
	return make([]byte, warestamp.BlockSize)
}

// Reader is a scripted warestamp.CardReader over a VirtualCard.
// Zero-value fail flags give a fully working reader.
type Reader struct {
	Card *VirtualCard

	// Failure scripting, checked in procedure order.
	FailAuth     bool
	FailWrite    bool
	FailRead     bool
	CorruptRead  bool // readback returns zeroed data
	ShortRead    bool // readback returns a truncated slice
	authedSector int

	// Call bookkeeping.
	Detects  int
	Writes   int
	Reads    int
	Releases int
}

// NewReader creates a reader with the given card in the field.
func NewReader(card *VirtualCard) *Reader {
	return &Reader{Card: card, authedSector: -1}
}

// Detect reports the card if present.
func (r *Reader) Detect() (*warestamp.Card, error) {
	r.Detects++
	if r.Card == nil || !r.Card.Present {
		return nil, warestamp.ErrNoCard
	}
	return &warestamp.Card{UID: r.Card.UID, SAK: r.Card.SAK}, nil
}

// Authenticate checks the key against the card's key A.
func (r *Reader) Authenticate(block uint8, key warestamp.Key) error {
	if r.FailAuth || key != r.Card.KeyA {
		r.authedSector = -1
		return warestamp.NewStatusError("authenticate", warestamp.StatusMIFARENack)
	}
	r.authedSector = int(block) / 4
	return nil
}

// WriteBlock stores the data if the sector is authenticated.
func (r *Reader) WriteBlock(block uint8, data []byte) error {
	r.Writes++
	if len(data) != warestamp.BlockSize {
		return warestamp.ErrInvalidBlockSize
	}
	if r.FailWrite {
		return warestamp.NewStatusError("write block", warestamp.StatusTimeout)
	}
	if r.authedSector != int(block)/4 {
		return fmt.Errorf("not authenticated to sector %d", block/4)
	}
	stored := make([]byte, warestamp.BlockSize)
	copy(stored, data)
	r.Card.Memory[block] = stored
	return nil
}

// ReadBlock returns the stored data if the sector is authenticated.
func (r *Reader) ReadBlock(block uint8) ([]byte, error) {
	r.Reads++
	if r.FailRead {
		return nil, warestamp.NewStatusError("read block", warestamp.StatusCRCWrong)
	}
	if r.authedSector != int(block)/4 {
		return nil, fmt.Errorf("not authenticated to sector %d", block/4)
	}
	if r.CorruptRead {
		return make([]byte, warestamp.BlockSize), nil
	}
	if r.ShortRead {
		return r.Card.Block(block)[:2], nil
	}
	return r.Card.Block(block), nil
}

// Release drops the session.
func (r *Reader) Release() {
	r.Releases++
	r.authedSector = -1
}

// DisplayCall records one render operation.
type DisplayCall struct {
	Screen string
	UID    string
	ID     uint32
}

// Display records render calls for assertions.
type Display struct {
	Calls []DisplayCall
}

func (d *Display) record(screen, uid string, id uint32) {
	d.Calls = append(d.Calls, DisplayCall{Screen: screen, UID: uid, ID: id})
}

// Screens returns the rendered screen names in order.
func (d *Display) Screens() []string {
	names := make([]string, 0, len(d.Calls))
	for _, c := range d.Calls {
		names = append(names, c.Screen)
	}
	return names
}

func (d *Display) Startup()                      { d.record("startup", "", 0) }
func (d *Display) ConnectingNetwork(name string) { d.record("connecting", name, 0) }
func (d *Display) NetworkResult(ok bool) {
	if ok {
		d.record("network-ok", "", 0)
	} else {
		d.record("network-fail", "", 0)
	}
}
func (d *Display) Ready(nextID uint32)           { d.record("ready", "", nextID) }
func (d *Display) Processing(uid string)         { d.record("processing", uid, 0) }
func (d *Display) Success(uid string, id uint32) { d.record("success", uid, id) }
func (d *Display) Failure(uid string)            { d.record("failure", uid, 0) }

// Reporter records reported lines in wire form.
type Reporter struct {
	Lines []string
	// Err, when set, is returned from every report call.
	Err error
}

func (r *Reporter) add(line string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Lines = append(r.Lines, line)
	return nil
}

func (r *Reporter) Ready() error { return r.add("SYSTEM_READY") }

func (r *Reporter) CardProcessed(uid string, id uint32, block uint8) error {
	return r.add(fmt.Sprintf("CARD_PROCESSED|UID:%s|ID:%d|BLOCK:%d", uid, id, block))
}

func (r *Reporter) CardError(uid, reason string) error {
	return r.add(fmt.Sprintf("CARD_ERROR|UID:%s|ERROR:%s", uid, reason))
}

func (r *Reporter) Heartbeat() error { return r.add("HEARTBEAT") }

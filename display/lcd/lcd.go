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

// Package lcd renders the card node's fixed status screens on a 16x2
// HD44780 character display behind a PCF8574 I2C backpack. It implements
// warestamp.Display.
package lcd

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultAddr is the usual PCF8574 backpack address.
const DefaultAddr uint16 = 0x27

// Display geometry.
const (
	cols = 16
	rows = 2
)

// PCF8574 pin mapping of the common backpack.
const (
	pinRS        = 0x01
	pinEnable    = 0x04
	pinBacklight = 0x08
)

// HD44780 commands.
const (
	cmdClear        = 0x01
	cmdEntryMode    = 0x06 // increment, no shift
	cmdDisplayOn    = 0x0C // display on, cursor off
	cmdFunction4Bit = 0x28 // 4-bit, 2 lines, 5x8 font
	cmdSetDDRAM     = 0x80
)

var rowOffsets = [rows]byte{0x00, 0x40}

// Screen is a 16x2 character LCD. Not safe for concurrent use; all calls
// come from the single node loop.
type Screen struct {
	bus  i2c.BusCloser
	dev  i2c.Dev
	wait func(time.Duration)
}

// New opens the I2C bus and initializes the controller into 4-bit mode.
// An error here is fatal for the node: without the display it has no way
// to signal state.
func New(busName string, addr uint16) (*Screen, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", busName, err)
	}

	s := &Screen{
		bus:  bus,
		dev:  i2c.Dev{Bus: bus, Addr: addr},
		wait: time.Sleep,
	}
	if err := s.init(); err != nil {
		_ = bus.Close()
		return nil, err
	}
	return s, nil
}

// init performs the documented 4-bit wakeup dance.
func (s *Screen) init() error {
	s.wait(50 * time.Millisecond)

	// Three 8-bit function-set knocks, then the switch to 4-bit mode.
	for _, nibble := range []byte{0x30, 0x30, 0x30, 0x20} {
		if err := s.strobe(nibble | pinBacklight); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}
		s.wait(5 * time.Millisecond)
	}

	for _, command := range []byte{cmdFunction4Bit, cmdDisplayOn, cmdEntryMode, cmdClear} {
		if err := s.command(command); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}
	}
	s.wait(2 * time.Millisecond)
	return nil
}

// Close blanks the display and releases the bus.
func (s *Screen) Close() error {
	_ = s.command(cmdClear)
	if err := s.bus.Close(); err != nil {
		return fmt.Errorf("close i2c bus: %w", err)
	}
	return nil
}

// strobe writes one nibble-carrying byte with an enable pulse.
func (s *Screen) strobe(value byte) error {
	if err := s.dev.Tx([]byte{value | pinEnable}, nil); err != nil {
		return err
	}
	return s.dev.Tx([]byte{value &^ byte(pinEnable)}, nil)
}

// send writes one byte as two nibbles with the given mode bits.
func (s *Screen) send(value, mode byte) error {
	high := (value & 0xF0) | mode | pinBacklight
	low := (value << 4 & 0xF0) | mode | pinBacklight
	if err := s.strobe(high); err != nil {
		return err
	}
	return s.strobe(low)
}

func (s *Screen) command(value byte) error {
	return s.send(value, 0)
}

func (s *Screen) write(value byte) error {
	return s.send(value, pinRS)
}

// render clears the display and draws up to two lines, truncated to the
// display width.
func (s *Screen) render(line1, line2 string) {
	// Rendering is best effort: a glitched frame fixes itself on the next
	// state change, and the node must not stall on display errors.
	if err := s.command(cmdClear); err != nil {
		return
	}
	s.wait(2 * time.Millisecond)

	for row, text := range []string{line1, line2} {
		if text == "" {
			continue
		}
		if len(text) > cols {
			text = text[:cols]
		}
		if err := s.command(cmdSetDDRAM | rowOffsets[row]); err != nil {
			return
		}
		for _, ch := range []byte(text) {
			if err := s.write(ch); err != nil {
				return
			}
		}
	}
}

// Startup shows the boot screen.
func (s *Screen) Startup() {
	s.render("Warestamp node", "starting...")
}

// ConnectingNetwork shows the join-in-progress screen.
func (s *Screen) ConnectingNetwork(name string) {
	s.render("Connecting to", name)
}

// NetworkResult shows the join outcome.
func (s *Screen) NetworkResult(ok bool) {
	if ok {
		s.render("Network online", "")
		return
	}
	s.render("Network offline", "running local")
}

// Ready shows the idle screen with the next ID.
func (s *Screen) Ready(nextID uint32) {
	s.render("Scan card", fmt.Sprintf("next ID %d", nextID))
}

// Processing shows the write-in-flight screen.
func (s *Screen) Processing(uid string) {
	s.render("Writing card...", uid)
}

// Success shows the verified-write screen.
func (s *Screen) Success(uid string, id uint32) {
	s.render(fmt.Sprintf("OK  ID %d", id), uid)
}

// Failure shows the failed-write screen.
func (s *Screen) Failure(uid string) {
	s.render("Write FAILED", uid)
}

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

/*
Package warestamp implements the warehouse stamping nodes: small single-loop
programs that issue monotonically increasing IDs onto MIFARE Classic cards and
push sensor readings to TCP peers.

The root package holds the hardware-independent core:

  - CardReader, the narrow capability interface a card reader driver must
    satisfy (detect, authenticate, write block, read block, release)
  - Stamper, the authenticate -> write -> read back -> verify procedure
  - Tracker, the card presence/cooldown debouncer
  - Record, the fixed 16-byte payload committed to a card block
  - Display and Reporter, the contracts for the status LCD and the TCP peer

Hardware drivers live under driver/ (MFRC522 card reader, MCP3008 ADC),
the LCD presenter under display/lcd, the line protocol under wire, network
reporters under report, the sensor scaling pipeline under sensor, and the
receiving server under station. Binaries are under cmd/.

Basic usage:

	import (
	    "github.com/warestamp/warestamp"
	    "github.com/warestamp/warestamp/driver/mfrc522"
	)

	reader, err := mfrc522.New("/dev/spidev0.0", logger)
	if err != nil {
	    log.Fatal(err)
	}
	defer reader.Close()

	node := warestamp.NewCardNode(reader, display, reporter,
	    warestamp.WithCooldown(3*time.Second),
	)

	state := warestamp.NewNodeState()
	for range time.Tick(250 * time.Millisecond) {
	    state = node.ProcessCycle(state, time.Now())
	}

The package is written for a single control loop: no type here is safe for
concurrent use unless stated otherwise.
*/
package warestamp

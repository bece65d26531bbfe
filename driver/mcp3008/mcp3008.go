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

// Package mcp3008 samples the MCP3008 8-channel 10-bit ADC over SPI and
// implements sensor.Sampler. The gas and soil probes hang off its inputs.
package mcp3008

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Channels on the MCP3008.
const numChannels = 8

// MaxRaw is the full-scale reading of the 10-bit converter.
const MaxRaw = 1023

// ADC is an MCP3008 on an SPI port. Not safe for concurrent use.
type ADC struct {
	port spi.PortCloser
	conn spi.Conn
}

// New opens the SPI port and connects at the converter's rated clock.
func New(portName string) (*ADC, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open spi port %s: %w", portName, err)
	}

	conn, err := port.Connect(1350*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	return &ADC{port: port, conn: conn}, nil
}

// Sample reads one single-ended channel. The exchange is the standard
// 3-byte frame: start bit, single-ended mode + channel, then the 10-bit
// result straddling the last two response bytes.
func (a *ADC) Sample(channel int) (int, error) {
	if channel < 0 || channel >= numChannels {
		return 0, fmt.Errorf("mcp3008: channel %d out of range", channel)
	}

	w := []byte{0x01, byte(0x80 | channel<<4), 0x00}
	r := make([]byte, len(w))
	if err := a.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("mcp3008: sample channel %d: %w", channel, err)
	}

	return int(r[1]&0x03)<<8 | int(r[2]), nil
}

// Close releases the SPI port.
func (a *ADC) Close() error {
	if err := a.port.Close(); err != nil {
		return fmt.Errorf("close spi port: %w", err)
	}
	return nil
}

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

// Package sensor implements the analog reading pipeline shared by the gas
// and soil nodes: sample, linearly rescale, clamp to a percentage.
package sensor

import (
	"fmt"
	"math"
)

// Sampler reads one raw value from an analog channel.
type Sampler interface {
	// Sample returns the device-native raw value for the channel.
	Sample(channel int) (int, error)
}

// Calibration maps a sensor's raw range onto 0-100%.
//
// RawMin may be greater than RawMax: some sensors report a raw value that
// decreases as the measured quantity increases (the soil probe's dry value
// is above its wet value). The map is then an inverted linear scale. This
// direction is intentional and must be preserved.
type Calibration struct {
	// RawMin is the raw value mapped to 0%.
	RawMin int
	// RawMax is the raw value mapped to 100%.
	RawMax int
}

// Percent rescales a raw value into a clamped 0-100 percentage:
//
//	percent = clamp(round((raw-RawMin) * 100 / (RawMax-RawMin)), 0, 100)
func (c Calibration) Percent(raw int) int {
	if c.RawMin == c.RawMax {
		return 0
	}
	scaled := float64(raw-c.RawMin) * 100 / float64(c.RawMax-c.RawMin)
	pct := int(math.Round(scaled))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Channel is one configured analog input.
type Channel struct {
	// Name labels the channel in logs.
	Name string
	// Input is the ADC input number.
	Input int
	// Cal is the channel's calibration.
	Cal Calibration
}

// Reading is one sampled and scaled value. Created each cycle, discarded
// after transmission.
type Reading struct {
	Name    string
	Raw     int
	Percent int
}

// Read samples a channel once and scales the result.
func Read(s Sampler, ch Channel) (Reading, error) {
	raw, err := s.Sample(ch.Input)
	if err != nil {
		return Reading{}, fmt.Errorf("sample %s (input %d): %w", ch.Name, ch.Input, err)
	}
	return Reading{
		Name:    ch.Name,
		Raw:     raw,
		Percent: ch.Cal.Percent(raw),
	}, nil
}

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

//go:build !linux

// Package detect enumerates candidate peripheral buses so the binaries can
// pick a default device when none is configured.
package detect

import "fmt"

// SPIPorts returns nil; bus enumeration is Linux-only.
func SPIPorts() []string { return nil }

// I2CBuses returns nil; bus enumeration is Linux-only.
func I2CBuses() []string { return nil }

// FirstSPIPort reports that enumeration is unsupported on this platform.
func FirstSPIPort() (string, error) {
	return "", fmt.Errorf("SPI device enumeration not supported on this platform")
}

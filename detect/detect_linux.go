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

//go:build linux

// Package detect enumerates candidate peripheral buses so the binaries can
// pick a default device when none is configured.
package detect

import (
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// SPIPorts returns the accessible SPI device nodes, sorted.
func SPIPorts() []string {
	return accessible("/dev/spidev*")
}

// I2CBuses returns the accessible I2C bus device nodes, sorted.
func I2CBuses() []string {
	return accessible("/dev/i2c-*")
}

// FirstSPIPort returns the first accessible SPI device node, or an error
// when none exists.
func FirstSPIPort() (string, error) {
	ports := SPIPorts()
	if len(ports) == 0 {
		return "", fmt.Errorf("no accessible SPI device found")
	}
	return ports[0], nil
}

// accessible globs device nodes and keeps those the process can open
// read-write.
func accessible(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}

	var found []string
	for _, path := range matches {
		if unix.Access(path, unix.R_OK|unix.W_OK) == nil {
			found = append(found, path)
		}
	}
	sort.Strings(found)
	return found
}

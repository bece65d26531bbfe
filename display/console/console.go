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

// Package console is a warestamp.Display that logs the screens instead of
// drawing them, for nodes running without an LCD attached.
package console

import (
	"go.uber.org/zap"
)

// Display logs each screen transition.
type Display struct {
	log *zap.Logger
}

// New creates a console display.
func New(log *zap.Logger) *Display {
	if log == nil {
		log = zap.NewNop()
	}
	return &Display{log: log}
}

func (d *Display) Startup() {
	d.log.Info("screen: startup")
}

func (d *Display) ConnectingNetwork(name string) {
	d.log.Info("screen: connecting", zap.String("network", name))
}

func (d *Display) NetworkResult(ok bool) {
	d.log.Info("screen: network result", zap.Bool("ok", ok))
}

func (d *Display) Ready(nextID uint32) {
	d.log.Info("screen: ready", zap.Uint32("next_id", nextID))
}

func (d *Display) Processing(uid string) {
	d.log.Info("screen: processing", zap.String("uid", uid))
}

func (d *Display) Success(uid string, id uint32) {
	d.log.Info("screen: success", zap.String("uid", uid), zap.Uint32("id", id))
}

func (d *Display) Failure(uid string) {
	d.log.Info("screen: failure", zap.String("uid", uid))
}

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

package sensor

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/warestamp/warestamp/report"
)

// Wire formats pushed by the dual node. Stable for compatibility with the
// receiving listeners.
//
//	gas line:  "<gas1Percent>%,<gas2Percent>%"
//	soil line: "<moisturePercent>%"

// GasLine formats the two-channel gas reading line.
func GasLine(gas1, gas2 Reading) string {
	return fmt.Sprintf("%d%%,%d%%", gas1.Percent, gas2.Percent)
}

// SoilLine formats the soil moisture line.
func SoilLine(soil Reading) string {
	return fmt.Sprintf("%d%%", soil.Percent)
}

// DualConfig configures the dual gas/soil node.
type DualConfig struct {
	// GasAddr receives the gas line each cycle.
	GasAddr string
	// SoilAddr receives the soil line each cycle.
	SoilAddr string
	// Gas1, Gas2 are the two gas channels.
	Gas1 Channel
	Gas2 Channel
	// Soil is the moisture channel. Its calibration is typically inverted
	// (dry raw value above wet raw value).
	Soil Channel
}

// DualNode samples two gas channels and one moisture channel per cycle and
// pushes each line over a fresh short-lived connection. Push failures are
// logged and dropped; the next cycle carries fresh data.
type DualNode struct {
	sampler Sampler
	pusher  *report.Pusher
	log     *zap.Logger
	cfg     DualConfig
}

// NewDualNode creates a dual sensor node.
func NewDualNode(sampler Sampler, pusher *report.Pusher, cfg DualConfig, log *zap.Logger) *DualNode {
	if log == nil {
		log = zap.NewNop()
	}
	return &DualNode{sampler: sampler, pusher: pusher, cfg: cfg, log: log}
}

// Cycle runs one sample-scale-push round. Sampling errors abort the cycle;
// push errors do not.
func (n *DualNode) Cycle() error {
	gas1, err := Read(n.sampler, n.cfg.Gas1)
	if err != nil {
		return err
	}
	gas2, err := Read(n.sampler, n.cfg.Gas2)
	if err != nil {
		return err
	}
	soil, err := Read(n.sampler, n.cfg.Soil)
	if err != nil {
		return err
	}

	n.log.Info("readings",
		zap.Int(gas1.Name, gas1.Percent),
		zap.Int(gas2.Name, gas2.Percent),
		zap.Int(soil.Name, soil.Percent),
	)

	n.push(n.cfg.GasAddr, GasLine(gas1, gas2))
	n.push(n.cfg.SoilAddr, SoilLine(soil))
	return nil
}

func (n *DualNode) push(addr, line string) {
	if addr == "" {
		return
	}
	if err := n.pusher.Push(addr, line); err != nil {
		n.log.Warn("push failed", zap.String("addr", addr), zap.Error(err))
	}
}

// GasNode is the one-shot gas reader: sample, scale, log one line per
// cycle. The sink is typically a serial console; a nil sink logs only.
type GasNode struct {
	sampler Sampler
	sink    io.Writer
	log     *zap.Logger
	ch      Channel
}

// NewGasNode creates a gas reader logging to the given sink.
func NewGasNode(sampler Sampler, ch Channel, sink io.Writer, log *zap.Logger) *GasNode {
	if log == nil {
		log = zap.NewNop()
	}
	return &GasNode{sampler: sampler, ch: ch, sink: sink, log: log}
}

// Cycle samples once and logs the scaled percentage.
func (n *GasNode) Cycle() error {
	r, err := Read(n.sampler, n.ch)
	if err != nil {
		return err
	}

	n.log.Info("reading",
		zap.String("channel", r.Name),
		zap.Int("raw", r.Raw),
		zap.Int("percent", r.Percent),
	)

	if n.sink != nil {
		if _, err := fmt.Fprintf(n.sink, "%s: %d%% (raw %d)\r\n", r.Name, r.Percent, r.Raw); err != nil {
			return fmt.Errorf("write reading to console: %w", err)
		}
	}
	return nil
}

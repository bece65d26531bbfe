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

// Command cardnode runs the card writer node: MFRC522 reader, LCD status
// display and a persistent line connection to the station.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warestamp/warestamp"
	"github.com/warestamp/warestamp/detect"
	"github.com/warestamp/warestamp/display/console"
	"github.com/warestamp/warestamp/display/lcd"
	"github.com/warestamp/warestamp/driver/mfrc522"
	"github.com/warestamp/warestamp/internal/config"
	"github.com/warestamp/warestamp/report"
)

func main() {
	config.Load()
	cfg := config.LoadCardNode()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting card node",
		zap.String("station", cfg.StationAddr),
		zap.Uint8("block", cfg.Block),
	)

	spiPort := cfg.SPIPort
	if spiPort == "" {
		spiPort, err = detect.FirstSPIPort()
		if err != nil {
			// Without the reader the node has no purpose; halting here is
			// the designed behavior, not a crash path.
			logger.Fatal("no card reader available", zap.Error(err))
		}
	}

	reader, err := mfrc522.New(spiPort, logger)
	if err != nil {
		logger.Fatal("card reader init failed", zap.String("port", spiPort), zap.Error(err))
	}
	defer func() { _ = reader.Close() }()

	i2cBus := cfg.I2CBus
	if buses := detect.I2CBuses(); i2cBus == "" && len(buses) > 0 {
		i2cBus = buses[0]
	}

	var screen warestamp.Display
	if cfg.Display == "console" {
		screen = console.New(logger)
	} else {
		lcdScreen, err := lcd.New(i2cBus, cfg.LCDAddr)
		if err != nil {
			// Like the reader, the screen is essential: the operator has no
			// other view of the node, so halting beats running blind.
			logger.Fatal("display init failed", zap.String("bus", i2cBus), zap.Error(err))
		}
		defer func() { _ = lcdScreen.Close() }()
		screen = lcdScreen
	}

	screen.Startup()

	reporter := report.New(report.DefaultConfig(cfg.StationAddr), logger)
	defer func() { _ = reporter.Close() }()

	screen.ConnectingNetwork(cfg.StationAddr)
	if err := reporter.Ready(); err != nil {
		// Degraded mode: keep stamping cards, retry the station each cycle.
		logger.Warn("station unreachable, continuing offline", zap.Error(err))
		screen.NetworkResult(false)
	} else {
		screen.NetworkResult(true)
	}

	opts := []warestamp.NodeOption{
		warestamp.WithCooldown(cfg.Cooldown),
		warestamp.WithPresenceTimeout(cfg.PresenceTimeout),
		warestamp.WithTargetBlock(cfg.Block),
		warestamp.WithHeartbeatInterval(cfg.Heartbeat),
	}
	if cfg.KeyHex != "" {
		key, keyErr := parseKey(cfg.KeyHex)
		if keyErr != nil {
			logger.Fatal("bad SECTOR_KEY", zap.Error(keyErr))
		}
		opts = append(opts, warestamp.WithSectorKey(key))
	}
	node := warestamp.NewCardNode(reader, screen, reporter, opts...)

	state := warestamp.NewNodeState()
	screen.Ready(state.NextID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			return
		case <-ticker.C:
			state = node.ProcessCycle(state, time.Now())
		}
	}
}

func parseKey(keyHex string) (warestamp.Key, error) {
	var key warestamp.Key
	raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil || len(raw) != len(key) {
		return key, fmt.Errorf("sector key must be %d bytes of hex", len(key))
	}
	copy(key[:], raw)
	return key, nil
}

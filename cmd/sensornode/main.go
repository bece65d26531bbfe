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

// Command sensornode runs the dual gas/soil node: sample three ADC
// channels each cycle and push the scaled lines to the two listeners.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warestamp/warestamp/detect"
	"github.com/warestamp/warestamp/driver/mcp3008"
	"github.com/warestamp/warestamp/internal/config"
	"github.com/warestamp/warestamp/report"
	"github.com/warestamp/warestamp/sensor"
)

func main() {
	config.Load()
	cfg := config.LoadSensorNode()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	spiPort := cfg.SPIPort
	if spiPort == "" {
		spiPort, err = detect.FirstSPIPort()
		if err != nil {
			logger.Fatal("no ADC available", zap.Error(err))
		}
	}

	adc, err := mcp3008.New(spiPort)
	if err != nil {
		logger.Fatal("ADC init failed", zap.String("port", spiPort), zap.Error(err))
	}
	defer func() { _ = adc.Close() }()

	node := sensor.NewDualNode(adc, report.NewPusher(cfg.PushTimeout), sensor.DualConfig{
		GasAddr:  cfg.GasAddr,
		SoilAddr: cfg.SoilAddr,
		Gas1:     cfg.Gas1,
		Gas2:     cfg.Gas2,
		Soil:     cfg.Soil,
	}, logger)

	logger.Info("starting sensor node",
		zap.String("spi", spiPort),
		zap.String("gas_addr", cfg.GasAddr),
		zap.String("soil_addr", cfg.SoilAddr),
		zap.Duration("interval", cfg.Interval),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			return
		case <-ticker.C:
			if err := node.Cycle(); err != nil {
				logger.Warn("cycle failed", zap.Error(err))
			}
		}
	}
}

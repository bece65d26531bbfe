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

// Command gasnode runs the one-shot gas reader: sample the ADC, scale,
// log the percentage. Readings are mirrored to a serial console when one
// is configured.
package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/warestamp/warestamp/detect"
	"github.com/warestamp/warestamp/driver/mcp3008"
	"github.com/warestamp/warestamp/internal/config"
	"github.com/warestamp/warestamp/sensor"
)

func main() {
	config.Load()
	cfg := config.LoadGasNode()

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

	var sink io.Writer
	if cfg.SerialPort != "" {
		port, serialErr := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: cfg.BaudRate})
		if serialErr != nil {
			logger.Fatal("serial console open failed",
				zap.String("port", cfg.SerialPort),
				zap.Error(serialErr),
			)
		}
		defer func() { _ = port.Close() }()
		sink = port
	}

	node := sensor.NewGasNode(adc, cfg.Channel, sink, logger)
	logger.Info("starting gas reader",
		zap.String("spi", spiPort),
		zap.Int("input", cfg.Channel.Input),
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

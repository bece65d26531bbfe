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

// Command stationd runs the receiving station: a TCP server that
// acknowledges card-node status lines and keeps the ledger of issued IDs.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/warestamp/warestamp/internal/config"
	"github.com/warestamp/warestamp/station"
)

func main() {
	config.Load()
	cfg := config.LoadStation()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ledger, err := station.OpenLedger(cfg.LedgerPath)
	if err != nil {
		logger.Fatal("ledger open failed", zap.String("path", cfg.LedgerPath), zap.Error(err))
	}
	logger.Info("ledger loaded",
		zap.Uint32("next_id", ledger.NextID()),
		zap.Int("used", ledger.UsedCount()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := station.New(station.Config{
		Addr:       cfg.Addr,
		LedgerPath: cfg.LedgerPath,
		OpsLogPath: cfg.OpsLogPath,
	}, ledger, logger)

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("station start failed", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutting down")
	if err := srv.Stop(); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}

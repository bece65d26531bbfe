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

// Package config maps the environment onto per-node configuration, with
// defaults matching the deployed hardware. A .env file in the working
// directory is overlaid first when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/warestamp/warestamp/sensor"
)

// CardNode holds the card writer node configuration.
type CardNode struct {
	StationAddr     string
	SPIPort         string
	I2CBus          string
	Display         string // "lcd" or "console"
	KeyHex          string
	LCDAddr         uint16
	Block           uint8
	Cooldown        time.Duration
	PresenceTimeout time.Duration
	PollInterval    time.Duration
	Heartbeat       time.Duration
}

// SensorNode holds the dual gas/soil node configuration.
type SensorNode struct {
	GasAddr     string
	SoilAddr    string
	SPIPort     string
	Interval    time.Duration
	PushTimeout time.Duration
	Gas1        sensor.Channel
	Gas2        sensor.Channel
	Soil        sensor.Channel
}

// GasNode holds the single gas reader configuration.
type GasNode struct {
	SPIPort    string
	SerialPort string
	BaudRate   int
	Interval   time.Duration
	Channel    sensor.Channel
}

// Station holds the station server configuration.
type Station struct {
	Addr       string
	LedgerPath string
	OpsLogPath string
}

// Load overlays a .env file when present. Missing files are fine; the
// environment and built-in defaults carry the configuration.
func Load() {
	_ = godotenv.Load()
}

// LoadCardNode reads the card node configuration.
func LoadCardNode() CardNode {
	return CardNode{
		StationAddr:     getEnv("STATION_ADDR", "192.168.1.50:1234"),
		SPIPort:         getEnv("SPI_PORT", ""),
		I2CBus:          getEnv("I2C_BUS", ""),
		Display:         getEnv("DISPLAY_MODE", "lcd"),
		KeyHex:          getEnv("SECTOR_KEY", ""),
		LCDAddr:         uint16(getEnvInt("LCD_ADDR", 0x27)),
		Block:           uint8(getEnvInt("TARGET_BLOCK", 8)),
		Cooldown:        getEnvDuration("CARD_COOLDOWN", 3*time.Second),
		PresenceTimeout: getEnvDuration("PRESENCE_TIMEOUT", 5*time.Second),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 250*time.Millisecond),
		Heartbeat:       getEnvDuration("HEARTBEAT_INTERVAL", 30*time.Second),
	}
}

// LoadSensorNode reads the dual sensor node configuration. The soil
// calibration is inverted on purpose: the probe's raw value falls as
// moisture rises.
func LoadSensorNode() SensorNode {
	return SensorNode{
		GasAddr:     getEnv("GAS_ADDR", "192.168.1.50:5000"),
		SoilAddr:    getEnv("SOIL_ADDR", "192.168.1.50:5001"),
		SPIPort:     getEnv("SPI_PORT", ""),
		Interval:    getEnvDuration("SAMPLE_INTERVAL", 5*time.Second),
		PushTimeout: getEnvDuration("PUSH_TIMEOUT", 3*time.Second),
		Gas1: sensor.Channel{
			Name:  "mq4",
			Input: getEnvInt("GAS1_INPUT", 0),
			Cal: sensor.Calibration{
				RawMin: getEnvInt("GAS1_RAW_MIN", 300),
				RawMax: getEnvInt("GAS1_RAW_MAX", 3000),
			},
		},
		Gas2: sensor.Channel{
			Name:  "mq6",
			Input: getEnvInt("GAS2_INPUT", 1),
			Cal: sensor.Calibration{
				RawMin: getEnvInt("GAS2_RAW_MIN", 300),
				RawMax: getEnvInt("GAS2_RAW_MAX", 3000),
			},
		},
		Soil: sensor.Channel{
			Name:  "soil",
			Input: getEnvInt("SOIL_INPUT", 2),
			Cal: sensor.Calibration{
				RawMin: getEnvInt("SOIL_RAW_MIN", 2800),
				RawMax: getEnvInt("SOIL_RAW_MAX", 1000),
			},
		},
	}
}

// LoadGasNode reads the gas reader configuration.
func LoadGasNode() GasNode {
	return GasNode{
		SPIPort:    getEnv("SPI_PORT", ""),
		SerialPort: getEnv("SERIAL_PORT", ""),
		BaudRate:   getEnvInt("SERIAL_BAUD", 115200),
		Interval:   getEnvDuration("SAMPLE_INTERVAL", 2*time.Second),
		Channel: sensor.Channel{
			Name:  "gas",
			Input: getEnvInt("GAS_INPUT", 0),
			Cal: sensor.Calibration{
				RawMin: getEnvInt("GAS_RAW_MIN", 300),
				RawMax: getEnvInt("GAS_RAW_MAX", 3000),
			},
		},
	}
}

// LoadStation reads the station server configuration.
func LoadStation() Station {
	return Station{
		Addr:       getEnv("STATION_LISTEN", ":1234"),
		LedgerPath: getEnv("LEDGER_PATH", "ledger.json"),
		OpsLogPath: getEnv("OPS_LOG_PATH", "operations.log"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

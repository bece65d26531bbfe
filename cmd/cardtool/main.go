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

// Command cardtool is a bench diagnostic for MIFARE Classic cards: wait
// for a card, dump a block range, decode any stamp record found and
// report NDEF content if the card carries one.
//
// Usage:
//
//	cardtool [-port /dev/spidev0.0] [-first 4] [-last 11] [-key FFFFFFFFFFFF]
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hsanjuan/go-ndef"
	"go.uber.org/zap"

	"github.com/warestamp/warestamp"
	"github.com/warestamp/warestamp/detect"
	"github.com/warestamp/warestamp/driver/mfrc522"
)

func main() {
	var (
		portFlag  = flag.String("port", "", "SPI port of the reader (auto-detected when empty)")
		firstFlag = flag.Uint("first", 4, "first block to dump")
		lastFlag  = flag.Uint("last", 11, "last block to dump")
		keyFlag   = flag.String("key", "FFFFFFFFFFFF", "sector key A, 6 bytes hex")
		waitFlag  = flag.Duration("wait", 30*time.Second, "how long to wait for a card")
	)
	flag.Parse()

	first, last, err := blockRange(*firstFlag, *lastFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(*portFlag, first, last, *keyFlag, *waitFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// blockRange validates the dump bounds before narrowing them to card
// block addresses.
func blockRange(first, last uint) (uint8, uint8, error) {
	if first > last {
		return 0, 0, fmt.Errorf("invalid block range %d..%d", first, last)
	}
	if last > 255 {
		return 0, 0, fmt.Errorf("block %d out of range, cards address blocks 0..255", last)
	}
	return uint8(first), uint8(last), nil
}

func run(portName string, first, last uint8, keyHex string, wait time.Duration) error {
	key, err := parseKey(keyHex)
	if err != nil {
		return err
	}

	if portName == "" {
		portName, err = detect.FirstSPIPort()
		if err != nil {
			return err
		}
	}

	reader, err := mfrc522.New(portName, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open reader on %s: %w", portName, err)
	}
	defer func() { _ = reader.Close() }()

	fmt.Printf("Waiting for card on %s (up to %s)...\n", portName, wait)
	card, err := waitForCard(reader, wait)
	if err != nil {
		return err
	}
	defer reader.Release()

	fmt.Printf("Card: UID=%s SAK=0x%02X Type=%s\n\n", card.UIDHex(), card.SAK, card.Type())

	dump, err := dumpBlocks(reader, key, first, last)
	if err != nil {
		return err
	}

	reportRecords(dump)
	reportNDEF(dump)
	return nil
}

func waitForCard(reader *mfrc522.Reader, wait time.Duration) (*warestamp.Card, error) {
	deadline := time.Now().Add(wait)
	for {
		card, err := reader.Detect()
		if err == nil {
			return card, nil
		}
		if !errors.Is(err, warestamp.ErrNoCard) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, errors.New("no card presented")
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// blockReader is the slice of the reader dumpBlocks needs. mfrc522.Reader
// satisfies it.
type blockReader interface {
	Authenticate(block uint8, key warestamp.Key) error
	ReadBlock(block uint8) ([]byte, error)
}

func dumpBlocks(reader blockReader, key warestamp.Key, first, last uint8) (map[uint8][]byte, error) {
	dump := make(map[uint8][]byte)
	authedSector := -1

	// Iterate over int: block 255 is a valid bound and uint8 would wrap.
	for b := int(first); b <= int(last); b++ {
		block := uint8(b)
		if isTrailerBlock(block) {
			continue
		}
		if sector := int(block / 4); sector != authedSector {
			if err := reader.Authenticate(block, key); err != nil {
				fmt.Printf("Block %3d: auth failed (%v)\n", block, err)
				continue
			}
			authedSector = sector
		}

		data, err := reader.ReadBlock(block)
		if err != nil {
			fmt.Printf("Block %3d: read failed (%v)\n", block, err)
			continue
		}
		dump[block] = data
		fmt.Printf("Block %3d: % X\n", block, data)
	}

	if len(dump) == 0 {
		return nil, errors.New("no blocks readable with the given key")
	}
	return dump, nil
}

// isTrailerBlock reports whether block holds a sector trailer (keys and
// access bits) on a 1K layout.
func isTrailerBlock(block uint8) bool {
	return block%4 == 3
}

func reportRecords(dump map[uint8][]byte) {
	fmt.Println()
	blocks := make([]uint8, 0, len(dump))
	for block := range dump {
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })

	found := false
	for _, block := range blocks {
		rec, err := warestamp.ParseRecord(dump[block])
		if err != nil || rec.ID == 0 {
			continue
		}
		found = true
		fmt.Printf("Block %3d: stamp record ID=%d issued=%s\n",
			block, rec.ID, rec.Issued.UTC().Format(time.RFC3339))
	}
	if !found {
		fmt.Println("No stamp records found.")
	}
}

// reportNDEF scans the dumped data for an NDEF TLV and decodes the
// message when one is present. Cards formatted for NDEF carry the TLV in
// sector 1 and up.
func reportNDEF(dump map[uint8][]byte) {
	var buf []byte
	for block := uint8(4); block < 64; block++ {
		if data, ok := dump[block]; ok {
			buf = append(buf, data...)
		}
	}

	payload, ok := extractNDEFTLV(buf)
	if !ok {
		return
	}

	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(payload); err != nil {
		fmt.Printf("NDEF TLV present but undecodable: %v\n", err)
		return
	}
	fmt.Printf("NDEF message: %s\n", strings.TrimSpace(msg.String()))
}

// extractNDEFTLV pulls the NDEF message payload out of a TLV stream:
// type 0x03, one- or three-byte length, then the message, terminated by
// 0xFE.
func extractNDEFTLV(buf []byte) ([]byte, bool) {
	for i := 0; i < len(buf); {
		switch buf[i] {
		case 0x00: // null TLV
			i++
		case 0xFE: // terminator
			return nil, false
		case 0x03: // NDEF message TLV
			if i+1 >= len(buf) {
				return nil, false
			}
			length := int(buf[i+1])
			start := i + 2
			if length == 0xFF {
				if i+3 >= len(buf) {
					return nil, false
				}
				length = int(buf[i+2])<<8 | int(buf[i+3])
				start = i + 4
			}
			if start+length > len(buf) {
				return nil, false
			}
			return buf[start : start+length], true
		default:
			// Unknown TLV with a length byte; skip it.
			if i+1 >= len(buf) {
				return nil, false
			}
			i += 2 + int(buf[i+1])
		}
	}
	return nil, false
}

func parseKey(keyHex string) (warestamp.Key, error) {
	var key warestamp.Key
	raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil || len(raw) != len(key) {
		return key, fmt.Errorf("key must be %d bytes of hex", len(key))
	}
	copy(key[:], raw)
	return key, nil
}

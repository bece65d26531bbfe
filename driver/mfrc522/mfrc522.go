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

// Package mfrc522 drives an MFRC522 contactless reader IC over SPI and
// implements warestamp.CardReader: single-card detection, MIFARE Classic
// sector authentication and 16-byte block reads and writes.
package mfrc522

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/warestamp/warestamp"
	"github.com/warestamp/warestamp/internal/retry"
)

// regConn is the register-level bus access the protocol layer uses.
// Split from spi.Conn so tests can script register traffic.
type regConn interface {
	readReg(reg byte) (byte, error)
	writeReg(reg, value byte) error
}

// spiRegs implements regConn over a periph SPI connection using the
// MFRC522 address framing: bit 7 read flag, address in bits 6..1.
type spiRegs struct {
	conn spi.Conn
}

func (s *spiRegs) readReg(reg byte) (byte, error) {
	w := []byte{(reg << 1) | 0x80, 0x00}
	r := make([]byte, len(w))
	if err := s.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("spi read reg %#02x: %w", reg, err)
	}
	return r[1], nil
}

func (s *spiRegs) writeReg(reg, value byte) error {
	if err := s.conn.Tx([]byte{(reg << 1) & 0x7E, value}, nil); err != nil {
		return fmt.Errorf("spi write reg %#02x: %w", reg, err)
	}
	return nil
}

// Reader is an MFRC522-backed card reader. Not safe for concurrent use;
// all calls come from the single node loop.
type Reader struct {
	port    spi.PortCloser
	regs    regConn
	log     *zap.Logger
	timeout time.Duration
	speed   physic.Frequency

	// txLastBits is the bit count of the last transmitted byte for the
	// frame in flight; folded into BitFramingReg next to StartSend.
	txLastBits byte

	// selectedUID holds the first 4 UID bytes of the card selected by the
	// last Detect; MFAuthent needs them. Cleared by Release.
	selectedUID []byte
}

// Option configures a Reader.
type Option func(*Reader)

// WithTimeout bounds each RF transaction wait.
func WithTimeout(d time.Duration) Option {
	return func(r *Reader) { r.timeout = d }
}

// WithSpeed sets the SPI clock. The IC tops out at 10 MHz.
func WithSpeed(f physic.Frequency) Option {
	return func(r *Reader) { r.speed = f }
}

// New opens the SPI port and initializes the IC: soft reset, timer and
// modulation setup, antenna on. Initialization failure is fatal for the
// node, so callers treat an error here as unrecoverable.
func New(portName string, log *zap.Logger, opts ...Option) (*Reader, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open spi port %s: %w", portName, err)
	}

	r := &Reader{
		port:    port,
		log:     log,
		timeout: 50 * time.Millisecond,
		speed:   4 * physic.MegaHertz,
	}
	for _, opt := range opts {
		opt(r)
	}

	conn, err := port.Connect(r.speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}
	r.regs = &spiRegs{conn: conn}

	if err := r.init(); err != nil {
		_ = port.Close()
		return nil, err
	}

	version, err := r.regs.readReg(regVersion)
	if err == nil {
		log.Info("mfrc522 ready", zap.String("version", fmt.Sprintf("%#02x", version)))
	}
	return r, nil
}

// init runs the standard power-up sequence.
func (r *Reader) init() error {
	steps := []struct {
		reg   byte
		value byte
	}{
		{regCommand, cmdSoftReset},
		// 25 ms timeout timer: TAuto, prescaler 169, reload 1000.
		{regTMode, 0x80},
		{regTPrescaler, 0xA9},
		{regTReloadH, 0x03},
		{regTReloadL, 0xE8},
		// 100% ASK modulation, CRC preset 0x6363 per ISO14443A.
		{regTxASK, 0x40},
		{regMode, 0x3D},
	}
	for _, s := range steps {
		if err := r.regs.writeReg(s.reg, s.value); err != nil {
			return fmt.Errorf("mfrc522 init: %w", err)
		}
	}
	return r.antennaOn()
}

func (r *Reader) antennaOn() error {
	value, err := r.regs.readReg(regTxControl)
	if err != nil {
		return fmt.Errorf("read tx control: %w", err)
	}
	if value&0x03 == 0x03 {
		return nil
	}
	if err := r.regs.writeReg(regTxControl, value|0x03); err != nil {
		return fmt.Errorf("enable antenna: %w", err)
	}
	return nil
}

// Close turns the reader off and releases the SPI port.
func (r *Reader) Close() error {
	_ = r.regs.writeReg(regCommand, cmdSoftReset)
	if err := r.port.Close(); err != nil {
		return fmt.Errorf("close spi port: %w", err)
	}
	return nil
}

// Detect polls the field once: REQA, anticollision, select. Returns
// warestamp.ErrNoCard when nothing answers the request frame.
func (r *Reader) Detect() (*warestamp.Card, error) {
	// REQA is a short 7-bit frame.
	_, _, err := r.transceive([]byte{piccRequestIdle}, 7)
	if err != nil {
		if isStatus(err, warestamp.StatusTimeout) {
			return nil, warestamp.ErrNoCard
		}
		return nil, err
	}

	uid, err := r.anticollision()
	if err != nil {
		return nil, err
	}

	sak, err := r.selectCard(uid)
	if err != nil {
		return nil, err
	}

	r.selectedUID = append([]byte(nil), uid[:4]...)
	card := &warestamp.Card{UID: uid, SAK: sak}
	r.log.Debug("card selected",
		zap.String("uid", card.UIDHex()),
		zap.Uint8("sak", sak),
	)
	return card, nil
}

// anticollision runs cascade level 1 and returns the 4-byte UID.
func (r *Reader) anticollision() ([]byte, error) {
	back, _, err := r.transceive([]byte{piccAnticollision, 0x20}, 0)
	if err != nil {
		return nil, fmt.Errorf("anticollision: %w", err)
	}
	if len(back) != 5 {
		return nil, warestamp.NewStatusError("anticollision", warestamp.StatusGeneralError)
	}

	if err := checkBCC(back); err != nil {
		return nil, err
	}
	return back[:4], nil
}

// checkBCC validates the anticollision checksum byte.
func checkBCC(frame []byte) error {
	var bcc byte
	for _, b := range frame[:4] {
		bcc ^= b
	}
	if bcc != frame[4] {
		return warestamp.NewStatusError("anticollision bcc", warestamp.StatusGeneralError)
	}
	return nil
}

// selectCard sends SELECT for the UID and returns the SAK byte.
func (r *Reader) selectCard(uid []byte) (byte, error) {
	frame := []byte{piccAnticollision, 0x70}
	frame = append(frame, uid...)
	var bcc byte
	for _, b := range uid {
		bcc ^= b
	}
	frame = append(frame, bcc)

	crc, err := r.calcCRC(frame)
	if err != nil {
		return 0, fmt.Errorf("select: %w", err)
	}
	frame = append(frame, crc...)

	back, _, err := r.transceive(frame, 0)
	if err != nil {
		return 0, fmt.Errorf("select: %w", err)
	}
	if len(back) < 1 {
		return 0, warestamp.NewStatusError("select", warestamp.StatusGeneralError)
	}
	return back[0], nil
}

// Authenticate runs MFAuthent for the sector containing the block, key A.
// A card must have been selected by Detect first.
func (r *Reader) Authenticate(block uint8, key warestamp.Key) error {
	if len(r.selectedUID) != 4 {
		return warestamp.NewStatusError("authenticate", warestamp.StatusInvalid)
	}

	frame := []byte{piccAuthKeyA, block}
	frame = append(frame, key[:]...)
	frame = append(frame, r.selectedUID...)

	if err := r.runCommand(cmdMFAuthent, frame, irqIdle); err != nil {
		return err
	}

	status2, err := r.regs.readReg(regStatus2)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if status2&statusMFCrypto1On == 0 {
		return warestamp.NewStatusError("authenticate", warestamp.StatusMIFARENack)
	}
	return nil
}

// ReadBlock reads one 16-byte block from an authenticated sector.
func (r *Reader) ReadBlock(block uint8) ([]byte, error) {
	frame := []byte{piccRead, block}
	crc, err := r.calcCRC(frame)
	if err != nil {
		return nil, fmt.Errorf("read block %d: %w", block, err)
	}
	frame = append(frame, crc...)

	back, _, err := r.transceive(frame, 0)
	if err != nil {
		return nil, fmt.Errorf("read block %d: %w", block, err)
	}
	if len(back) < warestamp.BlockSize {
		return nil, warestamp.NewStatusError("read block", warestamp.StatusGeneralError)
	}
	return back[:warestamp.BlockSize], nil
}

// WriteBlock writes one 16-byte block to an authenticated sector. MIFARE
// write is two-step: command frame, 4-bit ACK, data frame, 4-bit ACK.
func (r *Reader) WriteBlock(block uint8, data []byte) error {
	if len(data) != warestamp.BlockSize {
		return warestamp.ErrInvalidBlockSize
	}

	if err := r.writeStep([]byte{piccWrite, block}); err != nil {
		return fmt.Errorf("write block %d command: %w", block, err)
	}
	if err := r.writeStep(data); err != nil {
		return fmt.Errorf("write block %d data: %w", block, err)
	}
	return nil
}

// writeStep sends one write-phase frame and checks the MIFARE ACK nibble.
func (r *Reader) writeStep(payload []byte) error {
	frame := make([]byte, len(payload), len(payload)+2)
	copy(frame, payload)
	crc, err := r.calcCRC(frame)
	if err != nil {
		return err
	}
	frame = append(frame, crc...)

	back, bits, err := r.transceive(frame, 0)
	if err != nil {
		return err
	}
	if bits != 4 || len(back) == 0 || back[0]&0x0F != mifareAck {
		return warestamp.NewStatusError("mifare write", warestamp.StatusMIFARENack)
	}
	return nil
}

// Release halts the card and drops the crypto session so the field can be
// polled fresh. Errors are swallowed: HaltA is answered by silence, so a
// timeout here is the success path.
func (r *Reader) Release() {
	frame := []byte{piccHaltA, 0x00}
	if crc, err := r.calcCRC(frame); err == nil {
		frame = append(frame, crc...)
		_, _, _ = r.transceive(frame, 0)
	}

	if status2, err := r.regs.readReg(regStatus2); err == nil {
		_ = r.regs.writeReg(regStatus2, status2&^byte(statusMFCrypto1On))
	}
	r.selectedUID = nil
}

// runCommand loads the FIFO, starts the command and waits for the wanted
// IRQ bits. A timer IRQ or deadline expiry maps to StatusTimeout.
func (r *Reader) runCommand(command byte, data []byte, wantIrq byte) error {
	prep := []struct {
		reg   byte
		value byte
	}{
		{regCommand, cmdIdle},
		{regComIrq, 0x7F},    // clear pending IRQs
		{regFIFOLevel, 0x80}, // flush FIFO
	}
	for _, s := range prep {
		if err := r.regs.writeReg(s.reg, s.value); err != nil {
			return err
		}
	}

	for _, b := range data {
		if err := r.regs.writeReg(regFIFOData, b); err != nil {
			return err
		}
	}
	if err := r.regs.writeReg(regCommand, command); err != nil {
		return err
	}
	if command == cmdTransceive {
		// StartSend
		if err := r.regs.writeReg(regBitFraming, 0x80|r.txLastBits); err != nil {
			return err
		}
	}

	_, err := retry.Deadline(r.timeout, func() (struct{}, bool, error) {
		irq, readErr := r.regs.readReg(regComIrq)
		if readErr != nil {
			return struct{}{}, false, readErr
		}
		if irq&wantIrq != 0 {
			return struct{}{}, false, nil
		}
		if irq&irqTimer != 0 {
			return struct{}{}, false, warestamp.NewStatusError("rf transaction", warestamp.StatusTimeout)
		}
		return struct{}{}, true, nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return warestamp.NewStatusError("rf transaction", warestamp.StatusTimeout)
		}
		return err
	}
	return nil
}

// transceive exchanges one frame with the card. validBits selects a short
// trailing frame (REQA); zero means full bytes. Returns the response bytes
// and the valid bit count of the last byte (8 for full frames).
func (r *Reader) transceive(send []byte, validBits byte) ([]byte, int, error) {
	r.txLastBits = validBits & 0x07

	if err := r.runCommand(cmdTransceive, send, irqRx|irqIdle); err != nil {
		return nil, 0, err
	}

	errReg, err := r.regs.readReg(regError)
	if err != nil {
		return nil, 0, err
	}
	if errReg&errCollision != 0 {
		return nil, 0, warestamp.NewStatusError("transceive", warestamp.StatusCollision)
	}
	if errReg&(errProtocol|errParity|errBufferOvfl) != 0 {
		return nil, 0, warestamp.NewStatusError("transceive", warestamp.StatusGeneralError)
	}

	level, err := r.regs.readReg(regFIFOLevel)
	if err != nil {
		return nil, 0, err
	}
	back := make([]byte, 0, level)
	for i := byte(0); i < level; i++ {
		b, readErr := r.regs.readReg(regFIFOData)
		if readErr != nil {
			return nil, 0, readErr
		}
		back = append(back, b)
	}

	control, err := r.regs.readReg(regControl)
	if err != nil {
		return nil, 0, err
	}
	lastBits := int(control & 0x07)
	if lastBits == 0 {
		lastBits = 8
	}
	return back, lastBits, nil
}

// calcCRC runs the CRC coprocessor over the frame.
func (r *Reader) calcCRC(data []byte) ([]byte, error) {
	prep := []struct {
		reg   byte
		value byte
	}{
		{regCommand, cmdIdle},
		{regDivIrq, 0x04},    // clear CRC IRQ
		{regFIFOLevel, 0x80}, // flush FIFO
	}
	for _, s := range prep {
		if err := r.regs.writeReg(s.reg, s.value); err != nil {
			return nil, err
		}
	}
	for _, b := range data {
		if err := r.regs.writeReg(regFIFOData, b); err != nil {
			return nil, err
		}
	}
	if err := r.regs.writeReg(regCommand, cmdCalcCRC); err != nil {
		return nil, err
	}

	_, err := retry.Deadline(r.timeout, func() (struct{}, bool, error) {
		irq, readErr := r.regs.readReg(regDivIrq)
		if readErr != nil {
			return struct{}{}, false, readErr
		}
		return struct{}{}, irq&0x04 == 0, nil
	})
	if err != nil {
		return nil, warestamp.NewStatusError("crc", warestamp.StatusTimeout)
	}

	low, err := r.regs.readReg(regCRCResultL)
	if err != nil {
		return nil, err
	}
	high, err := r.regs.readReg(regCRCResultH)
	if err != nil {
		return nil, err
	}
	return []byte{low, high}, nil
}

// isStatus reports whether err is a StatusError with the given code.
func isStatus(err error, status warestamp.Status) bool {
	var se *warestamp.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == status
}

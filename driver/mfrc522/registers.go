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

package mfrc522

// MFRC522 registers (datasheet section 9).
const (
	regCommand    = 0x01
	regComIEn     = 0x02
	regComIrq     = 0x04
	regDivIrq     = 0x05
	regError      = 0x06
	regStatus2    = 0x08
	regFIFOData   = 0x09
	regFIFOLevel  = 0x0A
	regControl    = 0x0C
	regBitFraming = 0x0D
	regCollision  = 0x0E
	regMode       = 0x11
	regTxControl  = 0x14
	regTxASK      = 0x15
	regCRCResultH = 0x21
	regCRCResultL = 0x22
	regTMode      = 0x2A
	regTPrescaler = 0x2B
	regTReloadH   = 0x2C
	regTReloadL   = 0x2D
	regVersion    = 0x37
)

// MFRC522 commands (datasheet section 10).
const (
	cmdIdle       = 0x00
	cmdCalcCRC    = 0x03
	cmdTransceive = 0x0C
	cmdMFAuthent  = 0x0E
	cmdSoftReset  = 0x0F
)

// ComIrqReg bits.
const (
	irqRx    = 0x20
	irqIdle  = 0x10
	irqErr   = 0x02
	irqTimer = 0x01
)

// ErrorReg bits checked after a transceive.
const (
	errProtocol   = 0x01
	errParity     = 0x02
	errCollision  = 0x08
	errBufferOvfl = 0x10
)

// Status2Reg bits.
const statusMFCrypto1On = 0x08

// ISO14443A / MIFARE commands sent over the RF interface.
const (
	piccRequestIdle   = 0x26 // REQA, 7-bit frame
	piccAnticollision = 0x93 // cascade level 1
	piccHaltA         = 0x50
	piccAuthKeyA      = 0x60
	piccRead          = 0x30
	piccWrite         = 0xA0
)

// MIFARE 4-bit acknowledge.
const mifareAck = 0x0A

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

package warestamp

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the package.
var (
	// ErrNoCard is returned by CardReader.Detect when no card is in the field.
	// It is a normal polling outcome, not a failure.
	ErrNoCard = errors.New("no card in field")

	// ErrInvalidBlockSize is returned when block data is not exactly 16 bytes.
	ErrInvalidBlockSize = errors.New("block data must be 16 bytes")
)

// Status is a vendor status code reported by the card reader IC.
type Status byte

// Reader status codes, mirroring the MFRC522 result set.
const (
	StatusOK Status = iota
	StatusGeneralError
	StatusCollision
	StatusTimeout
	StatusNoRoom
	StatusInternalError
	StatusInvalid
	StatusCRCWrong
	StatusMIFARENack Status = 0xFF
)

// String returns a short name for the status code.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusGeneralError:
		return "error"
	case StatusCollision:
		return "collision"
	case StatusTimeout:
		return "timeout"
	case StatusNoRoom:
		return "no room"
	case StatusInternalError:
		return "internal error"
	case StatusInvalid:
		return "invalid"
	case StatusCRCWrong:
		return "crc wrong"
	case StatusMIFARENack:
		return "mifare nack"
	default:
		return fmt.Sprintf("status %#02x", byte(s))
	}
}

// StatusError reports a reader operation that completed with a non-OK
// vendor status code.
type StatusError struct {
	Op     string
	Status Status
}

// NewStatusError creates a StatusError for the given operation.
func NewStatusError(op string, status Status) *StatusError {
	return &StatusError{Op: op, Status: status}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: reader status %s (%#02x)", e.Op, e.Status, byte(e.Status))
}

// Is allows errors.Is comparison against another StatusError by status code.
func (e *StatusError) Is(target error) bool {
	var other *StatusError
	if !errors.As(target, &other) {
		return false
	}
	return e.Status == other.Status
}

// WriteErrorKind classifies a failed write-verify attempt.
type WriteErrorKind int

// Write-verify failure kinds, in procedure order.
const (
	UnsupportedCard WriteErrorKind = iota
	AuthFailed
	WriteFailed
	ReadbackFailed
	VerificationMismatch
)

// String returns the kind's name.
func (k WriteErrorKind) String() string {
	switch k {
	case UnsupportedCard:
		return "unsupported card"
	case AuthFailed:
		return "authentication failed"
	case WriteFailed:
		return "write failed"
	case ReadbackFailed:
		return "readback failed"
	case VerificationMismatch:
		return "verification mismatch"
	default:
		return fmt.Sprintf("write error kind %d", int(k))
	}
}

// ReasonToken returns the wire token reported to the station for this kind.
// The peer distinguishes only unsupported cards from write-path failures.
func (k WriteErrorKind) ReasonToken() string {
	if k == UnsupportedCard {
		return "Unsupported_Card"
	}
	return "Write_Failed"
}

// WriteError is a failed write-verify attempt. It carries the failure kind,
// the card identity and, where a reader operation failed, the underlying
// error with its vendor status code.
type WriteError struct {
	Err  error
	UID  string
	Kind WriteErrorKind
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card %s: %s: %v", e.UID, e.Kind, e.Err)
	}
	return fmt.Sprintf("card %s: %s", e.UID, e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// ReasonToken maps any error to its wire token. Non-WriteError failures
// report as generic write failures.
func ReasonToken(err error) string {
	var we *WriteError
	if errors.As(err, &we) {
		return we.Kind.ReasonToken()
	}
	return WriteFailed.ReasonToken()
}

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

// Package wire implements the pipe-separated line protocol spoken between
// the card node and the station:
//
//	EVENT|key:value|key:value
//
// Field order is part of the contract and is preserved on both encode and
// decode. Lines are newline-terminated on the wire; the terminator is not
// part of a Message.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Events sent by the card node.
const (
	EventReady         = "SYSTEM_READY"
	EventCardProcessed = "CARD_PROCESSED"
	EventCardError     = "CARD_ERROR"
	EventHeartbeat     = "HEARTBEAT"
)

// Replies sent by the station.
const (
	AckReady          = "ACK_SYSTEM_READY"
	AckLogged         = "ACK_LOGGED"
	AckHeartbeat      = "HEARTBEAT_ACK"
	ErrUnknownCommand = "ERROR_UNKNOWN_COMMAND"
)

// Field keys used by the card node events.
const (
	KeyUID   = "UID"
	KeyID    = "ID"
	KeyBlock = "BLOCK"
	KeyError = "ERROR"
)

// ErrEmptyLine is returned by Parse for blank input.
var ErrEmptyLine = errors.New("empty line")

// Field is one key:value pair of a message.
type Field struct {
	Key   string
	Value string
}

// Message is one decoded protocol line.
type Message struct {
	Event  string
	Fields []Field
}

// String encodes the message in wire form, without the trailing newline.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Event)
	for _, f := range m.Fields {
		b.WriteByte('|')
		b.WriteString(f.Key)
		b.WriteByte(':')
		b.WriteString(f.Value)
	}
	return b.String()
}

// Get returns the first value for the given key.
func (m Message) Get(key string) (string, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Parse decodes one line. Fields without a colon are tolerated and decoded
// with an empty value, matching the lenient peer behavior.
func Parse(line string) (Message, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Message{}, ErrEmptyLine
	}

	parts := strings.Split(line, "|")
	msg := Message{Event: parts[0]}
	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, ":")
		if !found {
			msg.Fields = append(msg.Fields, Field{Key: part})
			continue
		}
		msg.Fields = append(msg.Fields, Field{Key: key, Value: value})
	}
	return msg, nil
}

// Ready builds the readiness sentinel. It carries no fields.
func Ready() Message {
	return Message{Event: EventReady}
}

// Heartbeat builds a liveness message.
func Heartbeat() Message {
	return Message{Event: EventHeartbeat}
}

// CardProcessed builds the verified-write report line.
func CardProcessed(uid string, id uint32, block uint8) Message {
	return Message{
		Event: EventCardProcessed,
		Fields: []Field{
			{Key: KeyUID, Value: uid},
			{Key: KeyID, Value: strconv.FormatUint(uint64(id), 10)},
			{Key: KeyBlock, Value: strconv.Itoa(int(block))},
		},
	}
}

// CardError builds the failed-write report line.
func CardError(uid, reason string) Message {
	return Message{
		Event: EventCardError,
		Fields: []Field{
			{Key: KeyUID, Value: uid},
			{Key: KeyError, Value: reason},
		},
	}
}

// ProcessedID extracts the issued ID from a CARD_PROCESSED message.
func ProcessedID(m Message) (uint32, error) {
	if m.Event != EventCardProcessed {
		return 0, fmt.Errorf("not a %s message: %s", EventCardProcessed, m.Event)
	}
	raw, ok := m.Get(KeyID)
	if !ok {
		return 0, fmt.Errorf("%s message missing %s field", EventCardProcessed, KeyID)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s field %q: %w", KeyID, raw, err)
	}
	return uint32(id), nil
}

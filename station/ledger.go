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

package station

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Ledger tracks which IDs the nodes have committed to cards. Unlike the
// nodes, the station persists across restarts: the state is a small JSON
// document rewritten atomically on every recorded issue.
type Ledger struct {
	path  string
	mu    sync.Mutex
	state ledgerState
}

type ledgerState struct {
	NextID  uint32   `json:"next_id"`
	UsedIDs []uint32 `json:"used_ids"`
}

// OpenLedger loads the ledger at path, starting fresh if none exists.
func OpenLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, state: ledgerState{NextID: 1}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &l.state); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	return l, nil
}

// NextID returns the lowest ID not yet recorded as used.
func (l *Ledger) NextID() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.NextID
}

// UsedCount returns how many IDs have been recorded.
func (l *Ledger) UsedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state.UsedIDs)
}

// RecordIssued marks an ID as committed to a card and persists the ledger.
// Recording the same ID twice is a no-op.
func (l *Ledger) RecordIssued(id uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, used := range l.state.UsedIDs {
		if used == id {
			return nil
		}
	}

	l.state.UsedIDs = append(l.state.UsedIDs, id)
	if id >= l.state.NextID {
		l.state.NextID = id + 1
	}
	return l.save()
}

// save rewrites the ledger file atomically via a temp file rename.
func (l *Ledger) save() error {
	data, err := json.Marshal(l.state)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

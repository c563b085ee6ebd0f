/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package hwmode

import (
	"errors"
	"fmt"
	"strings"

	"bgwlan/common/wifi"

	"github.com/bluele/gcache"
)

const lookupCacheSize = 64

// ErrNotFound is returned when no hardware mode satisfies a request.
var ErrNotFound = errors.New("no matching hw mode")

// Request describes the minimum capabilities a caller needs from a hardware
// mode.  Stream counts and bandwidths are lower bounds; the DBS, agile-DFS and
// SBS flags must match exactly.
type Request struct {
	MAC0TxSS int
	MAC0RxSS int
	MAC0BW   wifi.Bandwidth
	MAC1TxSS int
	MAC1RxSS int
	MAC1BW   wifi.Bandwidth
	MAC0Band MacBand
	DBS      bool
	AgileDFS bool
	SBS      bool
}

// Table is the immutable list of hardware modes the firmware supports.
type Table struct {
	modes []Descriptor
	cache gcache.Cache
}

// NewTable builds a Table from a list of descriptors.  Duplicate IDs are
// rejected, since reverse lookups would be ambiguous.
func NewTable(modes []Descriptor) (*Table, error) {
	seen := make(map[int]bool)
	for _, m := range modes {
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate hw mode id %d", m.ID)
		}
		seen[m.ID] = true
	}

	t := &Table{
		modes: append([]Descriptor(nil), modes...),
	}
	t.cache = gcache.New(lookupCacheSize).LRU().
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return t.scan(key.(Request)), nil
		}).Build()

	return t, nil
}

// FromFirmware decodes the packed words reported by the firmware.  Each
// word's position in the list is its hardware mode ID.
func FromFirmware(words []uint32) (*Table, error) {
	modes := make([]Descriptor, 0, len(words))
	for i, w := range words {
		d, err := Decode(i, w)
		if err != nil {
			return nil, err
		}
		modes = append(modes, d)
	}
	return NewTable(modes)
}

// Modes returns a copy of the table contents.
func (t *Table) Modes() []Descriptor {
	return append([]Descriptor(nil), t.modes...)
}

// Len returns the number of modes in the table.
func (t *Table) Len() int {
	return len(t.modes)
}

func (d Descriptor) satisfies(r Request) bool {
	if d.MAC0TxSS < r.MAC0TxSS || d.MAC0RxSS < r.MAC0RxSS ||
		d.MAC0BW < r.MAC0BW {
		return false
	}
	if d.MAC1TxSS < r.MAC1TxSS || d.MAC1RxSS < r.MAC1RxSS ||
		d.MAC1BW < r.MAC1BW {
		return false
	}
	if d.DBS != r.DBS || d.AgileDFS != r.AgileDFS || d.SBS != r.SBS {
		return false
	}
	if r.MAC0Band != BandDontCare && d.MAC0Band != r.MAC0Band {
		return false
	}
	return true
}

// scan walks the table in order, returning the ID of the first entry that
// satisfies the request, or -1.
func (t *Table) scan(r Request) int {
	for _, d := range t.modes {
		if d.satisfies(r) {
			return d.ID
		}
	}
	return -1
}

// FindHwModeIndex returns the ID of the first hardware mode in table order
// which satisfies the request.
func (t *Table) FindHwModeIndex(r Request) (int, error) {
	v, err := t.cache.Get(r)
	if err != nil {
		return -1, err
	}

	if id := v.(int); id >= 0 {
		return id, nil
	}
	return -1, ErrNotFound
}

// GetHwModeByID returns the descriptor with the given ID, along with its DBS
// action classification.
func (t *Table) GetHwModeByID(id int) (Info, error) {
	for _, d := range t.modes {
		if d.ID == id {
			return Info{Descriptor: d, Action: Classify(d)}, nil
		}
	}
	return Info{}, ErrNotFound
}

// DBSCapable returns true if any mode supports dual-band simultaneous
// operation.
func (t *Table) DBSCapable() bool {
	for _, d := range t.modes {
		if d.DBS {
			return true
		}
	}
	return false
}

// SBSCapable returns true if any mode supports single-band simultaneous
// operation.
func (t *Table) SBSCapable() bool {
	for _, d := range t.modes {
		if d.SBS {
			return true
		}
	}
	return false
}

// FirstWith returns the first mode for which match returns true.
func (t *Table) FirstWith(match func(Descriptor) bool) (Descriptor, bool) {
	for _, d := range t.modes {
		if match(d) {
			return d, true
		}
	}
	return Descriptor{}, false
}

func (t *Table) String() string {
	var b strings.Builder

	for _, d := range t.modes {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

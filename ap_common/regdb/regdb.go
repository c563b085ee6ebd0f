/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// Package regdb tracks which channels are currently legal to use, and in what
// state, for the configured regulatory domain.
package regdb

import (
	"fmt"
	"io"
	"io/ioutil"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"bgwlan/common/wifi"
)

// ChannelState is the regulatory state of a single channel.
type ChannelState int

// Possible channel states
const (
	StateInvalid ChannelState = iota
	StateDisabled
	StateEnabled
	StateDFS
)

func (s ChannelState) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateEnabled:
		return "enabled"
	case StateDFS:
		return "dfs"
	}
	return "invalid"
}

// Usable returns true if a connection may operate on a channel in this state.
func (s ChannelState) Usable() bool {
	return s == StateEnabled || s == StateDFS
}

// DB is a regulatory channel database.  It is safe for concurrent use.
type DB struct {
	domain string
	states map[uint32]ChannelState

	sync.Mutex
}

// In the US, the UNII-2A and UNII-2C ranges require radar detection.
func usDFS(freq uint32) bool {
	return freq >= 5260 && freq <= 5720
}

// NewDefault returns a database populated from the built-in channel tables.
func NewDefault(domain string) *DB {
	db := &DB{
		domain: domain,
		states: make(map[uint32]ChannelState),
	}

	for _, band := range []string{wifi.LoBand, wifi.HiBand, wifi.SixBand} {
		for _, c := range wifi.Channels[band] {
			freq, err := wifi.ChannelToFreq(band, c)
			if err != nil {
				continue
			}
			if usDFS(freq) {
				db.states[freq] = StateDFS
			} else {
				db.states[freq] = StateEnabled
			}
		}
	}
	return db
}

// Match channel/frequency lines:
//   * 2462 MHz [11] (20.0 dBm)
//   * 5260 MHz [52] (20.0 dBm) (no IR, radar detection)
//   * 5845 MHz [169] (disabled)
var chanRE = regexp.MustCompile(`\* (\d+)(?:\.\d+)? MHz \[(\d+)\] \((.*)\)`)

// Parse builds a database from the output of 'iw phy <phy> info'.
func Parse(domain string, r io.Reader) (*DB, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading phy info: %v", err)
	}

	db := &DB{
		domain: domain,
		states: make(map[uint32]ChannelState),
	}

	for _, line := range chanRE.FindAllStringSubmatch(string(data), -1) {
		freq, err := strconv.ParseUint(line[1], 10, 32)
		if err != nil {
			continue
		}

		attrs := line[3]
		state := StateEnabled
		switch {
		case strings.Contains(attrs, "disabled"):
			state = StateDisabled
		case strings.Contains(attrs, "radar detection"):
			state = StateDFS
		case strings.Contains(attrs, "no IR"):
			// We can't initiate radiation here, so we can't
			// beacon, but we can still follow an AP onto it.
			state = StateEnabled
		}
		db.states[uint32(freq)] = state
	}

	if len(db.states) == 0 {
		return nil, fmt.Errorf("no channels found in phy info")
	}
	return db, nil
}

// FromPhy runs 'iw' against the named phy and parses its channel list.
func FromPhy(iwCmd, phy, domain string) (*DB, error) {
	out, err := exec.Command(iwCmd, "phy", phy, "info").Output()
	if err != nil {
		return nil, fmt.Errorf("iw info failed: %v", err)
	}
	return Parse(domain, strings.NewReader(string(out)))
}

// Domain returns the regulatory domain this database represents.
func (db *DB) Domain() string {
	return db.domain
}

// ValidChannels returns every channel which isn't invalid, in ascending
// frequency order.  Disabled channels are included, so callers can report them
// with zero weight.
func (db *DB) ValidChannels() []uint32 {
	db.Lock()
	list := make([]uint32, 0, len(db.states))
	for freq, state := range db.states {
		if state != StateInvalid {
			list = append(list, freq)
		}
	}
	db.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// ChannelState returns the current state of a channel.  Unknown channels are
// invalid.
func (db *DB) ChannelState(freq uint32) ChannelState {
	db.Lock()
	defer db.Unlock()

	return db.states[freq]
}

// IsDFS returns true if the channel requires radar detection.
func (db *DB) IsDFS(freq uint32) bool {
	return db.ChannelState(freq) == StateDFS
}

// SetChannelState updates the state of one channel, e.g. when radar has been
// detected and the channel placed on the non-occupancy list.
func (db *DB) SetChannelState(freq uint32, state ChannelState) {
	db.Lock()
	db.states[freq] = state
	db.Unlock()
}

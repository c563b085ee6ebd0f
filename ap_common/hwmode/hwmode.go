/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// Package hwmode describes the hardware modes a multi-MAC WiFi device can
// operate in, as advertised by its firmware, and answers questions about which
// of those modes can satisfy a set of requirements.
package hwmode

import (
	"fmt"

	"bgwlan/common/wifi"
)

// MacBand is the band capability of MAC0 in a hardware mode.
type MacBand int

// MAC0 band capabilities
const (
	BandDontCare MacBand = iota
	Band2G
	Band5G
)

func (b MacBand) String() string {
	switch b {
	case Band2G:
		return "2G"
	case Band5G:
		return "5G"
	}
	return "any"
}

// Descriptor is a single entry in the firmware's table of supported hardware
// modes.  It is immutable once the table has been loaded.
type Descriptor struct {
	ID int `yaml:"id"`

	MAC0TxSS int            `yaml:"mac0_tx_ss"`
	MAC0RxSS int            `yaml:"mac0_rx_ss"`
	MAC0BW   wifi.Bandwidth `yaml:"mac0_bw"`
	MAC1TxSS int            `yaml:"mac1_tx_ss"`
	MAC1RxSS int            `yaml:"mac1_rx_ss"`
	MAC1BW   wifi.Bandwidth `yaml:"mac1_bw"`

	MAC0Band MacBand `yaml:"mac0_band"`
	DBS      bool    `yaml:"dbs"`
	AgileDFS bool    `yaml:"agile_dfs"`
	SBS      bool    `yaml:"sbs"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("id=%d mac0=%dx%d/%v mac1=%dx%d/%v band=%v dbs=%v "+
		"adfs=%v sbs=%v", d.ID, d.MAC0TxSS, d.MAC0RxSS, d.MAC0BW,
		d.MAC1TxSS, d.MAC1RxSS, d.MAC1BW, d.MAC0Band, d.DBS,
		d.AgileDFS, d.SBS)
}

// SingleMAC returns true if only MAC0 is in use in this mode.
func (d Descriptor) SingleMAC() bool {
	return !d.DBS && !d.SBS
}

// The firmware advertises each hardware mode as a packed 32-bit word.  These
// are the field positions and widths within that word.
const (
	mac0TxPos   = 28
	mac0RxPos   = 24
	mac1TxPos   = 20
	mac1RxPos   = 16
	mac0BWPos   = 12
	mac1BWPos   = 8
	dbsPos      = 7
	agileDFSPos = 6
	sbsPos      = 5
	mac0BandPos = 3

	nibble  = 0xf
	bandLen = 0x3
)

func field(word uint32, pos uint, mask uint32) int {
	return int((word >> pos) & mask)
}

func flag(word uint32, pos uint) bool {
	return (word>>pos)&1 != 0
}

// Decode unpacks a single firmware hardware-mode word.
func Decode(id int, word uint32) (Descriptor, error) {
	d := Descriptor{
		ID:       id,
		MAC0TxSS: field(word, mac0TxPos, nibble),
		MAC0RxSS: field(word, mac0RxPos, nibble),
		MAC0BW:   wifi.Bandwidth(field(word, mac0BWPos, nibble)),
		MAC1TxSS: field(word, mac1TxPos, nibble),
		MAC1RxSS: field(word, mac1RxPos, nibble),
		MAC1BW:   wifi.Bandwidth(field(word, mac1BWPos, nibble)),
		MAC0Band: MacBand(field(word, mac0BandPos, bandLen)),
		DBS:      flag(word, dbsPos),
		AgileDFS: flag(word, agileDFSPos),
		SBS:      flag(word, sbsPos),
	}

	if d.MAC0BW > wifi.BW320 || d.MAC1BW > wifi.BW320 {
		return d, fmt.Errorf("hw mode %d: bad bandwidth in 0x%08x",
			id, word)
	}
	if d.MAC0Band > Band5G {
		return d, fmt.Errorf("hw mode %d: bad mac0 band in 0x%08x",
			id, word)
	}
	if d.MAC0TxSS == 0 || d.MAC0RxSS == 0 {
		return d, fmt.Errorf("hw mode %d: mac0 has no streams", id)
	}

	return d, nil
}

// Encode packs a Descriptor back into the firmware's word format.  It is the
// inverse of Decode, and is used to build set-hw-mode requests and test data.
func Encode(d Descriptor) uint32 {
	var w uint32

	w |= uint32(d.MAC0TxSS&nibble) << mac0TxPos
	w |= uint32(d.MAC0RxSS&nibble) << mac0RxPos
	w |= uint32(d.MAC1TxSS&nibble) << mac1TxPos
	w |= uint32(d.MAC1RxSS&nibble) << mac1RxPos
	w |= uint32(int(d.MAC0BW)&nibble) << mac0BWPos
	w |= uint32(int(d.MAC1BW)&nibble) << mac1BWPos
	w |= uint32(int(d.MAC0Band)&bandLen) << mac0BandPos
	if d.DBS {
		w |= 1 << dbsPos
	}
	if d.AgileDFS {
		w |= 1 << agileDFSPos
	}
	if d.SBS {
		w |= 1 << sbsPos
	}
	return w
}

// ActionType classifies a DBS hardware mode by which MAC keeps the larger
// number of spatial streams.
type ActionType int

// DBS action types
const (
	ActionNone ActionType = iota
	ActionDBS
	ActionDBS1 // MAC0 keeps more streams; MAC1 is downgraded
	ActionDBS2 // MAC1 keeps more streams; MAC0 is downgraded
)

func (a ActionType) String() string {
	switch a {
	case ActionDBS:
		return "DBS"
	case ActionDBS1:
		return "DBS1"
	case ActionDBS2:
		return "DBS2"
	}
	return "none"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Classify returns the DBS action type for a hardware mode.
func Classify(d Descriptor) ActionType {
	if !d.DBS {
		return ActionNone
	}

	mac0 := min(d.MAC0TxSS, d.MAC0RxSS)
	mac1 := min(d.MAC1TxSS, d.MAC1RxSS)
	switch {
	case mac0 > mac1:
		return ActionDBS1
	case mac0 < mac1:
		return ActionDBS2
	}
	return ActionDBS
}

// Info is the result of a reverse lookup by hardware mode ID.
type Info struct {
	Descriptor
	Action ActionType
}

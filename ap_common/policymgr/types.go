/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"fmt"
	"strings"

	"bgwlan/common/wifi"
)

// MaxConcConnections is the number of concurrent connections the device can
// support, and the capacity of the connection table.
const MaxConcConnections = 6

// BroadcastVdev addresses a PCL to every vdev rather than a single one.
const BroadcastVdev = uint32(0xff)

// Mode is the role a vdev is playing.
type Mode int

// Connection modes
const (
	ModeSTA Mode = iota
	ModeSAP
	ModeP2PClient
	ModeP2PGO
	ModeNANDisc
	ModeNDI

	numModes
)

var modeNames = [numModes]string{
	ModeSTA:       "STA",
	ModeSAP:       "SAP",
	ModeP2PClient: "P2P-CLIENT",
	ModeP2PGO:     "P2P-GO",
	ModeNANDisc:   "NAN-DISC",
	ModeNDI:       "NDI",
}

func (m Mode) String() string {
	if m >= 0 && m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid returns true for the defined modes.
func (m Mode) Valid() bool {
	return m >= 0 && m < numModes
}

// Beaconing returns true for modes which transmit beacons, and so must avoid
// channels requiring radar detection unless explicitly allowed.
func (m Mode) Beaconing() bool {
	return m == ModeSAP || m == ModeP2PGO
}

// AllModes returns the list of defined modes, in order.
func AllModes() []Mode {
	modes := make([]Mode, numModes)
	for i := range modes {
		modes[i] = Mode(i)
	}
	return modes
}

// ParseMode accepts the printable mode names, case-insensitively.  Underscores
// may be used in place of dashes.
func ParseMode(s string) (Mode, error) {
	n := strings.Replace(strings.ToUpper(strings.TrimSpace(s)), "_", "-", -1)
	for m, name := range modeNames {
		if name == n {
			return Mode(m), nil
		}
	}
	return ModeSTA, fmt.Errorf("unknown connection mode: %s", s)
}

// UnmarshalYAML allows modes to be spelled by name in scenario files.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalText renders the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Channel flags
const (
	ChFlagDFS    uint32 = 1 << 0
	ChFlagCFreq2 uint32 = 1 << 1
)

// ConnInfo describes a single active connection.
type ConnInfo struct {
	Mode        Mode           `yaml:"mode" json:"mode"`
	Freq        uint32         `yaml:"freq" json:"freq"`
	Bandwidth   wifi.Bandwidth `yaml:"bw" json:"bw"`
	MacID       int            `yaml:"mac" json:"mac"`
	ChainMask   uint32         `yaml:"chain_mask" json:"chain_mask"`
	OriginalNSS int            `yaml:"nss" json:"nss"`
	VdevID      uint32         `yaml:"vdev" json:"vdev"`
	InUse       bool           `yaml:"-" json:"-"`
	ChFlags     uint32         `yaml:"ch_flags" json:"ch_flags"`
}

// IsDFS returns true if the connection was set up on a radar channel.
func (c ConnInfo) IsDFS() bool {
	return c.ChFlags&ChFlagDFS != 0
}

func (c ConnInfo) String() string {
	return fmt.Sprintf("vdev %d %v freq %d %v mac %d nss %d", c.VdevID,
		c.Mode, c.Freq, c.Bandwidth, c.MacID, c.OriginalNSS)
}

func (c ConnInfo) validate() error {
	if !c.Mode.Valid() {
		return newError(InvalidArgument, "invalid connection mode",
			"vdev", c.VdevID, "mode", int(c.Mode))
	}
	if c.Freq == 0 || wifi.BandOf(c.Freq) == 0 {
		return newError(InvalidArgument, "invalid connection frequency",
			"vdev", c.VdevID, "freq", c.Freq)
	}
	if c.MacID != 0 && c.MacID != 1 {
		return newError(InvalidArgument, "invalid mac id",
			"vdev", c.VdevID, "mac", c.MacID)
	}
	if c.VdevID == BroadcastVdev {
		return newError(InvalidArgument, "broadcast vdev in connection",
			"vdev", c.VdevID)
	}
	return nil
}

// PCLResult is a preferred channel list: parallel frequency and weight
// slices, in preference order.
type PCLResult struct {
	Type    PCLType
	Freqs   []uint32
	Weights []uint8
}

// Len returns the number of channels in the list.
func (r *PCLResult) Len() int {
	return len(r.Freqs)
}

// Best returns the first channel with a non-zero weight.
func (r *PCLResult) Best() (uint32, bool) {
	for i, w := range r.Weights {
		if w != WeightDisallowed {
			return r.Freqs[i], true
		}
	}
	return 0, false
}

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
	"time"
)

// SystemPref steers PCL type selection.
type SystemPref int

// System preferences
const (
	PrefThroughput SystemPref = iota
	PrefPower
	PrefLatency
)

var prefNames = map[SystemPref]string{
	PrefThroughput: "throughput",
	PrefPower:      "power",
	PrefLatency:    "latency",
}

func (p SystemPref) String() string {
	return prefNames[p]
}

// ParseSystemPref converts a preference name into a SystemPref.
func ParseSystemPref(s string) (SystemPref, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range prefNames {
		if name == s {
			return p, nil
		}
	}
	return PrefThroughput, fmt.Errorf("unknown system preference: %s", s)
}

// SwitchPolicy controls whether, and how, a SAP is forced onto the channel of
// an existing connection to avoid MCC.
type SwitchPolicy int

// MCC to SCC switch policies
const (
	SwitchDisable SwitchPolicy = iota
	SwitchForceWithoutDisconnection
	SwitchWithFavoriteChannel
	SwitchForcePreferredWithoutDisconnection
)

var switchNames = map[SwitchPolicy]string{
	SwitchDisable:                            "disable",
	SwitchForceWithoutDisconnection:          "force_without_disconnection",
	SwitchWithFavoriteChannel:                "with_favorite_channel",
	SwitchForcePreferredWithoutDisconnection: "force_preferred_without_disconnection",
}

func (p SwitchPolicy) String() string {
	return switchNames[p]
}

// ParseSwitchPolicy converts a policy name into a SwitchPolicy.
func ParseSwitchPolicy(s string) (SwitchPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range switchNames {
		if name == s {
			return p, nil
		}
	}
	return SwitchDisable, fmt.Errorf("unknown mcc to scc switch policy: %s", s)
}

// Config holds the tunables of the policy engine.
type Config struct {
	SystemPref   SystemPref
	SwitchPolicy SwitchPolicy

	// Single-MAC hardware may still time-share channels in different
	// bands.
	InterbandMCC bool

	// Allow a SAP to join an existing STA+SAP pair on the same band.
	AllowSTAMultiAP3rdSameBand bool

	// Order 6GHz channels ahead of 5GHz channels.
	Prefer6G bool

	// Modes permitted to operate on 6GHz channels.
	SixGHzModes map[Mode]bool

	// Allow a SAP to be forced onto a radar channel.
	SAPAllowDFS bool

	DualSTARoaming bool
	PCLPerVdev     bool

	UpgradeDelay time.Duration
}

// DefaultUpgradeDelay is how long after a connection teardown the engine
// waits before reconsidering the hardware mode.
const DefaultUpgradeDelay = 3 * time.Second

// DefaultConfig returns the engine's stock configuration.
func DefaultConfig() Config {
	return Config{
		SystemPref:   PrefThroughput,
		SwitchPolicy: SwitchForceWithoutDisconnection,
		SixGHzModes: map[Mode]bool{
			ModeSTA: true,
			ModeSAP: true,
		},
		UpgradeDelay: DefaultUpgradeDelay,
	}
}

func (c *Config) allow6G(mode Mode) bool {
	return c.SixGHzModes[mode]
}

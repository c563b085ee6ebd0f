/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package wifi

import (
	"fmt"
	"strings"
)

// Names of the frequency bands.
const (
	LoBand  = "2.4GHz"
	HiBand  = "5GHz"
	SixBand = "6GHz"
)

// Band is a bitmask of frequency bands, as used in roaming band masks.
type Band uint8

// Band bits
const (
	Band24G Band = 1 << iota
	Band5G
	Band6G

	BandAll = Band24G | Band5G | Band6G
)

func (b Band) String() string {
	names := make([]string, 0)
	if b&Band24G != 0 {
		names = append(names, LoBand)
	}
	if b&Band5G != 0 {
		names = append(names, HiBand)
	}
	if b&Band6G != 0 {
		names = append(names, SixBand)
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Channels is a map of per-band arrays of valid 20MHz channel lists, which are
// legal for the US.  The 6GHz list holds the PSC channels only.
var Channels = map[string][]int{
	LoBand: {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	HiBand: {36, 40, 44, 48, 52, 56, 60, 64, 100, 104, 108,
		112, 116, 120, 124, 128, 132, 136, 140, 144, 149, 153,
		157, 161, 165},
	SixBand: {5, 21, 37, 53, 69, 85, 101, 117, 133, 149, 165, 181,
		197, 213, 229},
}

// Edges of each band, in MHz
const (
	lo24GFreq  = 2412
	hi24GFreq  = 2484
	lo5GFreq   = 4900
	hi5GFreq   = 5885
	lo6GFreq   = 5945
	hi6GFreq   = 7115
	base24GMHz = 2407
	base5GMHz  = 5000
	base6GMHz  = 5950
)

// Is24GHz returns true if the frequency is in the 2.4GHz band.
func Is24GHz(freq uint32) bool {
	return freq >= lo24GFreq && freq <= hi24GFreq
}

// Is5GHz returns true if the frequency is in the 5GHz band.
func Is5GHz(freq uint32) bool {
	return freq >= lo5GFreq && freq <= hi5GFreq
}

// Is6GHz returns true if the frequency is in the 6GHz band.
func Is6GHz(freq uint32) bool {
	return freq >= lo6GFreq && freq <= hi6GFreq
}

// Is5Or6GHz returns true for frequencies above the 2.4GHz band.
func Is5Or6GHz(freq uint32) bool {
	return Is5GHz(freq) || Is6GHz(freq)
}

// BandOf returns the band bit for a frequency, or 0 if the frequency isn't in
// any band we know about.
func BandOf(freq uint32) Band {
	switch {
	case Is24GHz(freq):
		return Band24G
	case Is5GHz(freq):
		return Band5G
	case Is6GHz(freq):
		return Band6G
	}
	return 0
}

// SameBand returns true if both frequencies are in the same band.
func SameBand(a, b uint32) bool {
	ba := BandOf(a)
	return ba != 0 && ba == BandOf(b)
}

// BandName returns the printable name of the band containing freq.
func BandName(freq uint32) string {
	switch BandOf(freq) {
	case Band24G:
		return LoBand
	case Band5G:
		return HiBand
	case Band6G:
		return SixBand
	}
	return "unknown"
}

// ChannelToFreq converts a channel number in the given band to its center
// frequency.
func ChannelToFreq(band string, channel int) (uint32, error) {
	switch band {
	case LoBand:
		if channel == 14 {
			return hi24GFreq, nil
		}
		if channel >= 1 && channel <= 13 {
			return uint32(base24GMHz + 5*channel), nil
		}
	case HiBand:
		if channel >= 1 && channel <= 177 {
			return uint32(base5GMHz + 5*channel), nil
		}
	case SixBand:
		if channel == 2 {
			return 5935, nil
		}
		if channel >= 1 && channel <= 233 {
			return uint32(base6GMHz + 5*channel), nil
		}
	}
	return 0, fmt.Errorf("channel %d not valid on %s", channel, band)
}

// FreqToChannel converts a center frequency into a channel number.  It returns
// 0 for frequencies outside the known bands.
func FreqToChannel(freq uint32) int {
	switch {
	case freq == hi24GFreq:
		return 14
	case Is24GHz(freq):
		return int(freq-base24GMHz) / 5
	case freq == 5935:
		return 2
	case Is6GHz(freq):
		return int(freq-base6GMHz) / 5
	case Is5GHz(freq):
		return int(freq-base5GMHz) / 5
	}
	return 0
}

// Bandwidth is the width of an operating channel.  The values are ordered, so
// a wider channel compares greater than a narrower one.
type Bandwidth int

// Supported channel widths
const (
	BW20 Bandwidth = iota
	BW40
	BW80
	BW160
	BW80P80
	BW320
)

var bwNames = map[Bandwidth]string{
	BW20:    "20MHz",
	BW40:    "40MHz",
	BW80:    "80MHz",
	BW160:   "160MHz",
	BW80P80: "80+80MHz",
	BW320:   "320MHz",
}

func (bw Bandwidth) String() string {
	if n, ok := bwNames[bw]; ok {
		return n
	}
	return fmt.Sprintf("bw(%d)", int(bw))
}

// ParseBandwidth accepts either the printable name or the bare MHz value.
func ParseBandwidth(s string) (Bandwidth, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "MHz")
	switch s {
	case "20":
		return BW20, nil
	case "40":
		return BW40, nil
	case "80":
		return BW80, nil
	case "160":
		return BW160, nil
	case "80+80", "80p80":
		return BW80P80, nil
	case "320":
		return BW320, nil
	}
	return BW20, fmt.Errorf("unknown bandwidth: %s", s)
}

// UnmarshalYAML lets configuration and scenario files spell widths as "80" or
// "80MHz".
func (bw *Bandwidth) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	b, err := ParseBandwidth(s)
	if err != nil {
		return err
	}
	*bw = b
	return nil
}

// MarshalText renders the width as e.g. "80MHz".
func (bw Bandwidth) MarshalText() ([]byte, error) {
	return []byte(bw.String()), nil
}

// UnmarshalText accepts anything ParseBandwidth does.
func (bw *Bandwidth) UnmarshalText(text []byte) error {
	b, err := ParseBandwidth(string(text))
	if err != nil {
		return err
	}
	*bw = b
	return nil
}

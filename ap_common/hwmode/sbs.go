/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package hwmode

import (
	"bgwlan/common/wifi"
)

// DefaultSBSSplitFreq is the last frequency handled by the low-band MAC on
// SBS hardware which splits the 5GHz band after channel 64.
const DefaultSBSSplitFreq = 5320

// SBSPredicate decides whether two frequencies can be served concurrently by
// the two MACs of an SBS-capable device.
type SBSPredicate interface {
	AreSBSChannels(f1, f2 uint32) bool
}

// SplitSBS is an SBSPredicate for hardware whose MACs divide the 5/6GHz
// spectrum at a fixed frequency.  The low MAC covers frequencies at or below
// the split, and the high MAC covers everything above it.
type SplitSBS struct {
	SplitFreq uint32
}

// NewSplitSBS returns a predicate for the given split.  A zero split selects
// DefaultSBSSplitFreq.
func NewSplitSBS(split uint32) SplitSBS {
	if split == 0 {
		split = DefaultSBSSplitFreq
	}
	return SplitSBS{SplitFreq: split}
}

// AreSBSChannels implements SBSPredicate.
func (s SplitSBS) AreSBSChannels(f1, f2 uint32) bool {
	if !wifi.Is5Or6GHz(f1) || !wifi.Is5Or6GHz(f2) {
		return false
	}
	return (f1 <= s.SplitFreq) != (f2 <= s.SplitFreq)
}

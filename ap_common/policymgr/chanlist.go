/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"bgwlan/ap_common/hwmode"
	"bgwlan/common/wifi"
)

// ClassifyByBand splits a channel list into its 2.4GHz, 5GHz and 6GHz members,
// preserving order.  Frequencies outside those bands are dropped.
func ClassifyByBand(list []uint32) (l24, l5, l6 []uint32) {
	for _, f := range list {
		switch {
		case wifi.Is24GHz(f):
			l24 = append(l24, f)
		case wifi.Is5GHz(f):
			l5 = append(l5, f)
		case wifi.Is6GHz(f):
			l6 = append(l6, f)
		}
	}
	return
}

func contains(list []uint32, f uint32) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

// PartitionSubChannels divides the 5GHz and 6GHz channel lists by their
// relationship to the connections already in place.  scc holds the distinct
// 5/6GHz channels in use, sbs the listed channels which could run
// simultaneously with the first of those on the other MAC (falling back to
// the second if none can), and rest everything else.
func PartitionSubChannels(conns []ConnInfo, list5, list6 []uint32,
	prefer6G bool, pred hwmode.SBSPredicate) (scc, sbs, rest []uint32) {

	first, second := list5, list6
	if prefer6G {
		first, second = list6, list5
	}
	ordered := make([]uint32, 0, len(first)+len(second))
	ordered = append(ordered, first...)
	ordered = append(ordered, second...)

	for _, set := range [][]uint32{first, second} {
		for _, c := range conns {
			if contains(set, c.Freq) && !contains(scc, c.Freq) {
				scc = append(scc, c.Freq)
			}
		}
	}

	pairsWith := func(ref uint32) []uint32 {
		var list []uint32
		for _, f := range ordered {
			if !contains(scc, f) && pred.AreSBSChannels(f, ref) {
				list = append(list, f)
			}
		}
		return list
	}
	if len(scc) > 0 && pred != nil {
		sbs = pairsWith(scc[0])
		if len(sbs) == 0 && len(scc) > 1 {
			sbs = pairsWith(scc[1])
		}
	}

	for _, f := range ordered {
		if !contains(scc, f) && !contains(sbs, f) {
			rest = append(rest, f)
		}
	}
	return
}

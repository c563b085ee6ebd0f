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

func describeConcurrency(conns []ConnInfo) string {
	if len(conns) == 0 {
		return "no connections"
	}
	if len(conns) == 1 {
		c := conns[0]
		return fmt.Sprintf("%v(%d) standalone", c.Mode, c.Freq)
	}

	modes := make([]string, len(conns))
	freqs := make(map[uint32]int)
	macFreqs := make(map[int]map[uint32]bool)
	for i, c := range conns {
		modes[i] = fmt.Sprintf("%v(%d)", c.Mode, c.Freq)
		freqs[c.Freq]++
		if macFreqs[c.MacID] == nil {
			macFreqs[c.MacID] = make(map[uint32]bool)
		}
		macFreqs[c.MacID][c.Freq] = true
	}

	if len(freqs) == 1 {
		names := make([]string, len(conns))
		for i, c := range conns {
			names[i] = c.Mode.String()
		}
		return fmt.Sprintf("%s SCC on %d", strings.Join(names, "+"),
			conns[0].Freq)
	}

	var tags []string
	if len(macFreqs) > 1 {
		var has24, has5 bool
		for _, c := range conns {
			if wifi.Is24GHz(c.Freq) {
				has24 = true
			} else {
				has5 = true
			}
		}
		if has24 && has5 {
			tags = append(tags, "DBS")
		} else {
			tags = append(tags, "SBS")
		}
	}
	for _, set := range macFreqs {
		if len(set) > 1 {
			tags = append(tags, "MCC")
			break
		}
	}
	for _, c := range conns {
		if freqs[c.Freq] > 1 {
			tags = append(tags, fmt.Sprintf("SCC on %d", c.Freq))
			break
		}
	}

	return strings.Join(modes, "+") + " " + strings.Join(tags, ", ")
}

// DumpCurrentConcurrency returns a one-line description of the active
// connections, e.g. "STA+SAP SCC on 5180" or "STA(2412)+SAP(5180) DBS".
func (m *Manager) DumpCurrentConcurrency() string {
	return describeConcurrency(m.table.Conns())
}

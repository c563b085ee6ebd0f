/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckForceSCC(t *testing.T) {
	disabled := withConfig(func(c *Config) { c.SwitchPolicy = SwitchDisable })
	allowDFS := withConfig(func(c *Config) { c.SAPAllowDFS = true })

	testCases := []struct {
		name  string
		hw    hwKind
		opts  []testOpt
		conns []ConnInfo
		sap   uint32
		freq  uint32 // zero when the SAP keeps its own channel
	}{
		{"noConnections", hwDBS, nil, nil, 2412, 0},
		{"dbsJoinSameBand", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 2412, 0), conn(ModeSTA, 5180, 1)},
			2462, 2412},
		{"disabled", hwDBS, []testOpt{disabled},
			[]ConnInfo{conn(ModeSTA, 2412, 0), conn(ModeSTA, 5180, 1)},
			2462, 0},
		{"alreadySCC", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 2412, 0)}, 2412, 0},
		{"one24G", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 2412, 0)}, 2437, 2412},
		{"one5GSBSPair", hwSBS, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0)}, 5745, 0},
		{"one5GSameHalf", hwSBS, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0)}, 5200, 5180},
		{"one5GNoSBS", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0)}, 5745, 5180},
		{"oneOtherBandDBS", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0)}, 2412, 0},
		{"oneOtherBandSMM", hwSMM, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0)}, 2412, 5180},
		{"dfsTarget", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 5260, 0)}, 5280, 0},
		{"dfsTargetAllowed", hwDBS, []testOpt{allowDFS},
			[]ConnInfo{conn(ModeSTA, 5260, 0)}, 5280, 5260},
		{"avoidedTarget", hwDBS, []testOpt{withAvoid(2412)},
			[]ConnInfo{conn(ModeSTA, 2412, 0)}, 2437, 0},
		{"coMACOtherBandDBS", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0),
				conn(ModeP2PClient, 5180, 0)},
			2412, 0},
		{"coMACOtherBandSMM", hwSMM, nil,
			[]ConnInfo{conn(ModeP2PClient, 5180, 0),
				conn(ModeSTA, 5180, 0)},
			2412, 5180},
		{"preferSTA", hwSMM, nil,
			[]ConnInfo{conn(ModeP2PGO, 5180, 0),
				conn(ModeSTA, 5200, 0)},
			5220, 5200},
		{"preferP2PClient", hwSMM, nil,
			[]ConnInfo{conn(ModeP2PGO, 5180, 0),
				conn(ModeP2PClient, 5200, 0)},
			5220, 5200},
		{"coMACSBSPair", hwSBS, nil,
			[]ConnInfo{conn(ModeSTA, 5180, 0), conn(ModeSAP, 5180, 0)},
			5745, 0},
		{"splitMACsSameHalf", hwSBS, nil,
			[]ConnInfo{conn(ModeSTA, 5745, 1), conn(ModeSTA, 5180, 0)},
			5200, 5180},
		{"splitMACsOtherBand", hwSBS, nil,
			[]ConnInfo{conn(ModeSAP, 5745, 1), conn(ModeSTA, 5180, 0)},
			2412, 5180},
		{"three", hwDBS, nil,
			[]ConnInfo{conn(ModeSTA, 2412, 1), conn(ModeSAP, 5180, 0),
				conn(ModeSAP, 5180, 0)},
			2437, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)

			env := newTestEnv(t, tc.hw, tc.opts...)
			env.load(t, tc.conns...)

			freq, ok := env.m.CheckForceSCC(tc.sap)
			assert.Equal(tc.freq != 0, ok)
			assert.Equal(tc.freq, freq)
		})
	}
}

// Every row of the decision table is reachable, and no state is left
// without a decision.
func TestSCCRules(t *testing.T) {
	assert := require.New(t)

	used := make(map[int]bool)
	for conns := 1; conns <= 2; conns++ {
		for bits := 0; bits < 32; bits++ {
			s := sccState{
				conns:    conns,
				coMAC:    bits&1 != 0,
				sameBand: bits&2 != 0,
				band5G:   bits&4 != 0,
				dbs:      bits&8 != 0,
				sbsPair:  bits&16 != 0,
			}
			var hit bool
			for i := range sccRules {
				if sccRules[i].matches(&s) {
					used[i] = true
					hit = true
					break
				}
			}
			assert.True(hit, "%+v", s)
		}
	}
	assert.Len(used, len(sccRules))
}

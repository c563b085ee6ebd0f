/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"bgwlan/common/wifi"
)

type sccAction int

const (
	keepChannel sccAction = iota
	forceSCC
	splitMACs
)

func (a sccAction) String() string {
	switch a {
	case forceSCC:
		return "force-scc"
	case splitMACs:
		return "split"
	}
	return "keep"
}

// tri-state match for a decision table column
type tri int

const (
	dc tri = iota // don't care
	yes
	no
)

func (t tri) matches(b bool) bool {
	return t == dc || (t == yes) == b
}

type sccState struct {
	conns    int
	coMAC    bool // existing connections share a MAC
	sameBand bool // an existing connection is in the SAP's band
	band5G   bool // the SAP's band is 5/6GHz
	dbs      bool
	sbsPair  bool // SBS hardware, and the SAP could pair with the same-band connection
}

type sccRule struct {
	conns    int
	coMAC    tri
	sameBand tri
	band5G   tri
	dbs      tri
	sbsPair  tri
	action   sccAction
}

// The first matching row decides what happens to a SAP starting alongside one
// or two existing connections.  A SAP already sharing a channel with an
// existing connection never reaches the table.
var sccRules = []sccRule{
	//conns coMAC sameBand band5G dbs sbsPair action
	{1, dc, yes, no, dc, dc, forceSCC},
	{1, dc, yes, yes, dc, yes, splitMACs},
	{1, dc, yes, yes, dc, no, forceSCC},
	{1, dc, no, dc, yes, dc, splitMACs},
	{1, dc, no, dc, no, dc, forceSCC},

	// Existing connections already split across the MACs; the SAP
	// joins whichever is in its band.
	{2, no, yes, dc, dc, dc, forceSCC},
	{2, no, no, dc, dc, dc, forceSCC},

	// Existing connections share one MAC; the SAP may take the other.
	{2, yes, yes, dc, dc, yes, splitMACs},
	{2, yes, yes, dc, dc, no, forceSCC},
	{2, yes, no, dc, yes, dc, splitMACs},
	{2, yes, no, dc, no, dc, forceSCC},
}

func (r *sccRule) matches(s *sccState) bool {
	return r.conns == s.conns &&
		r.coMAC.matches(s.coMAC) &&
		r.sameBand.matches(s.sameBand) &&
		r.band5G.matches(s.band5G) &&
		r.dbs.matches(s.dbs) &&
		r.sbsPair.matches(s.sbsPair)
}

func lookupSCCAction(s *sccState) sccAction {
	for i := range sccRules {
		if sccRules[i].matches(s) {
			return sccRules[i].action
		}
	}
	return keepChannel
}

// Rank connections as SCC targets: stations first, since they can't follow a
// channel change themselves.
func sccPreference(mode Mode) int {
	switch mode {
	case ModeSTA:
		return 0
	case ModeP2PClient:
		return 1
	}
	return 2
}

func preferredTarget(cands []ConnInfo) ConnInfo {
	best := cands[0]
	for _, c := range cands[1:] {
		if sccPreference(c.Mode) < sccPreference(best.Mode) {
			best = c
		}
	}
	return best
}

// The channel we force a SAP onto must itself be acceptable for a SAP.
func (m *Manager) sccTargetUsable(c ConnInfo, cs *chanStates) bool {
	if !cs.state(c.Freq).Usable() {
		return false
	}
	if contains(cs.unsafe, c.Freq) {
		return false
	}
	if cs.isDFS(c) && !m.cfg.SAPAllowDFS {
		return false
	}
	if wifi.Is6GHz(c.Freq) && !m.cfg.allow6G(ModeSAP) {
		return false
	}
	return true
}

// sccDecision is the outcome of the force-SCC rules.  target is the channel
// the rules picked; override is false if the SAP keeps its own channel,
// including when the picked channel turned out to be unusable.
type sccDecision struct {
	action   sccAction
	target   uint32
	override bool
}

// checkForceSCC applies the rules to a snapshot of the connections.  It may be
// called with the table locked.
func (m *Manager) checkForceSCC(conns []ConnInfo, cs *chanStates,
	sapFreq uint32) sccDecision {

	var d sccDecision

	if m.cfg.SwitchPolicy == SwitchDisable {
		return d
	}
	if len(conns) == 0 || len(conns) > 2 {
		return d
	}

	var sameBand []ConnInfo
	for _, c := range conns {
		if c.Freq == sapFreq {
			return d
		}
		if wifi.SameBand(c.Freq, sapFreq) {
			sameBand = append(sameBand, c)
		}
	}

	state := sccState{
		conns:    len(conns),
		sameBand: len(sameBand) > 0,
		band5G:   wifi.Is5Or6GHz(sapFreq),
		dbs:      m.hw.DBSCapable(),
	}
	if len(conns) == 2 {
		state.coMAC = conns[0].MacID == conns[1].MacID
	}
	if state.sameBand && m.hw.SBSCapable() {
		state.sbsPair = m.sbs.AreSBSChannels(sapFreq, sameBand[0].Freq)
	}

	d.action = lookupSCCAction(&state)
	if d.action != forceSCC {
		return d
	}

	cands := conns
	if state.sameBand {
		cands = sameBand

		// With the connections on separate MACs, a 5GHz SAP lands on
		// the MAC serving its half of the band.
		if state.conns == 2 && !state.coMAC && state.band5G {
			var half []ConnInfo
			for _, c := range sameBand {
				if !m.sbs.AreSBSChannels(sapFreq, c.Freq) {
					half = append(half, c)
				}
			}
			if len(half) > 0 {
				cands = half
			}
		}
	}

	target := preferredTarget(cands)
	d.target = target.Freq
	d.override = m.sccTargetUsable(target, cs)
	return d
}

func (m *Manager) logSCCDecision(sapFreq uint32, d sccDecision) {
	m.slog.Debugw("force scc decision", "sap", sapFreq,
		"action", d.action)
	switch {
	case d.override:
		forcedSCC.Inc()
		m.slog.Infow("forcing sap onto existing channel", "requested",
			sapFreq, "channel", d.target)
	case d.action == forceSCC:
		m.slog.Debugw("scc target unusable", "sap", sapFreq,
			"target", d.target)
	}
}

// CheckForceSCC decides whether a SAP about to start on sapFreq should be
// moved onto the channel of an existing connection to avoid MCC.  If so, the
// channel to use is returned.
func (m *Manager) CheckForceSCC(sapFreq uint32) (uint32, bool) {
	if m.checkReady() != nil {
		return 0, false
	}

	var d sccDecision
	cs := m.channelStates()
	m.table.View(func(v *TableView) {
		d = m.checkForceSCC(v.Conns(), cs, sapFreq)
	})
	m.logSCCDecision(sapFreq, d)

	if !d.override {
		return 0, false
	}
	return d.target, true
}

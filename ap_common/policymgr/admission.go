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

func isNANPair(a, b ConnInfo) bool {
	return (a.Mode == ModeNANDisc && b.Mode == ModeNDI) ||
		(a.Mode == ModeNDI && b.Mode == ModeNANDisc)
}

func isSTASAPPair(a, b ConnInfo) bool {
	return (a.Mode == ModeSTA && b.Mode == ModeSAP) ||
		(a.Mode == ModeSAP && b.Mode == ModeSTA)
}

// The two existing connections share a MAC and a channel.
func (m *Manager) allowSameMacSameFreq(c0, c1 ConnInfo, mode Mode,
	freq uint32) (bool, string) {

	if freq == c0.Freq {
		return true, ""
	}

	if wifi.SameBand(freq, c0.Freq) {
		switch {
		case isNANPair(c0, c1):
			return true, ""
		case m.cfg.AllowSTAMultiAP3rdSameBand && mode == ModeSAP &&
			isSTASAPPair(c0, c1):
			return true, ""
		case m.hw.SBSCapable() && m.sbs.AreSBSChannels(freq, c0.Freq):
			return true, ""
		}
		return false, "second channel in band already in use"
	}

	if m.hw.DBSCapable() || m.cfg.InterbandMCC {
		return true, ""
	}
	return false, "no dbs or inter-band mcc"
}

// The two existing connections are on different channels, or different MACs.
func (m *Manager) allowSameMacDiffFreq(c0, c1 ConnInfo, mode Mode,
	freq uint32) (bool, string) {

	if freq == c0.Freq || freq == c1.Freq {
		return true, ""
	}
	if !m.hw.DBSCapable() {
		return false, "third channel on a single mac"
	}
	if c0.MacID == c1.MacID && wifi.SameBand(freq, c0.Freq) &&
		wifi.SameBand(freq, c1.Freq) {
		return false, "third channel on one mac"
	}
	return true, ""
}

// allowNewHomeChannel returns the decision and, for a refusal, the reason.
// It may be called with the table locked.
func (m *Manager) allowNewHomeChannel(conns []ConnInfo, cs *chanStates,
	mode Mode, freq uint32, isDFS bool) (bool, string) {

	switch len(conns) {
	case 0:
		return true, ""

	case 1:
		c0 := conns[0]
		if !m.hw.DBSCapable() && !m.cfg.InterbandMCC &&
			!wifi.SameBand(freq, c0.Freq) &&
			mode != ModeNANDisc && c0.Mode != ModeNANDisc {
			return false, "different band on single mac"
		}
		if m.cfg.SwitchPolicy == SwitchForcePreferredWithoutDisconnection &&
			isDFS && cs.isDFS(c0) {
			return false, "second dfs connection"
		}
		return true, ""

	case 2:
		c0, c1 := conns[0], conns[1]
		if c0.MacID == c1.MacID && c0.Freq == c1.Freq {
			return m.allowSameMacSameFreq(c0, c1, mode, freq)
		}
		return m.allowSameMacDiffFreq(c0, c1, mode, freq)
	}

	for _, c := range conns {
		if c.Freq == freq {
			return true, ""
		}
	}
	return false, "no new home channels with three connections"
}

// AllowNewHomeChannel decides whether a connection of the given mode may come
// up on freq alongside the first numConns existing connections.
func (m *Manager) AllowNewHomeChannel(mode Mode, freq uint32, numConns int,
	isDFS bool) bool {

	if m.checkReady() != nil {
		return false
	}

	var allow bool
	var reason string
	cs := m.channelStates()
	m.table.View(func(v *TableView) {
		conns := v.Conns()
		if numConns >= 0 && numConns < len(conns) {
			conns = conns[:numConns]
		}
		allow, reason = m.allowNewHomeChannel(conns, cs, mode, freq,
			isDFS)
	})
	m.logAdmission(mode, freq, isDFS, allow, reason)
	return allow
}

func (m *Manager) logAdmission(mode Mode, freq uint32, isDFS, allow bool,
	reason string) {

	if allow {
		admissions.WithLabelValues("allowed").Inc()
	} else {
		admissions.WithLabelValues("rejected").Inc()
		m.slog.Infow("new home channel rejected", "mode", mode,
			"freq", freq, "dfs", isDFS, "reason", reason)
	}
}

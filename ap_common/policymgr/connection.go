/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"context"

	"bgwlan/ap_common/regdb"
	"bgwlan/common/wifi"
)

// ConnRequest describes a connection about to come up.  A zero Freq lets the
// engine pick the best channel from the PCL.
type ConnRequest struct {
	Mode        Mode           `yaml:"mode" json:"mode"`
	VdevID      uint32         `yaml:"vdev" json:"vdev"`
	Freq        uint32         `yaml:"freq" json:"freq"`
	Bandwidth   wifi.Bandwidth `yaml:"bw" json:"bw"`
	MacID       int            `yaml:"mac" json:"mac"`
	ChainMask   uint32         `yaml:"chain_mask" json:"chain_mask"`
	OriginalNSS int            `yaml:"nss" json:"nss"`
}

// StartConnection runs a new connection through the policy: channel
// selection, the SCC check for SAPs, admission, and finally the table update.
// Those steps see the table as a whole, with no other update getting in
// between.  Hardware mode and PCL updates which follow are best effort; their
// failure is logged but does not undo the connection.
func (m *Manager) StartConnection(ctx context.Context, req ConnRequest) (ConnInfo, error) {
	if err := m.checkReady(); err != nil {
		return ConnInfo{}, err
	}
	if !req.Mode.Valid() {
		return ConnInfo{}, newError(InvalidArgument, "invalid mode",
			"mode", int(req.Mode))
	}

	var rec ConnInfo
	var scc sccDecision
	var reqFreq uint32
	var admitted, checked bool
	var reason string

	cs := m.channelStates(req.Freq)
	err := m.table.Update(func(tx *TableTx) error {
		conns := tx.Conns()

		freq := req.Freq
		if freq == 0 {
			best, err := m.bestChannel(conns, cs, req.Mode)
			if err != nil {
				return err
			}
			freq = best
		}
		reqFreq = freq

		if req.Mode.Beaconing() {
			if scc = m.checkForceSCC(conns, cs, freq); scc.override {
				freq = scc.target
			}
		}

		state := cs.state(freq)
		if !state.Usable() {
			return newError(NotPermitted, "channel not usable",
				"freq", freq, "state", state.String())
		}
		isDFS := state == regdb.StateDFS

		checked = true
		admitted, reason = m.allowNewHomeChannel(conns, cs, req.Mode,
			freq, isDFS)
		rec = ConnInfo{
			Mode:        req.Mode,
			Freq:        freq,
			Bandwidth:   req.Bandwidth,
			MacID:       req.MacID,
			ChainMask:   req.ChainMask,
			OriginalNSS: req.OriginalNSS,
			VdevID:      req.VdevID,
		}
		if isDFS {
			rec.ChFlags |= ChFlagDFS
		}
		if !admitted {
			return newError(NotPermitted, "concurrency not allowed",
				"mode", req.Mode.String(), "freq", freq)
		}
		return tx.UpdateConcList(rec)
	})

	if req.Mode.Beaconing() && reqFreq != 0 {
		m.logSCCDecision(reqFreq, scc)
	}
	if checked {
		m.logAdmission(req.Mode, rec.Freq, rec.IsDFS(), admitted, reason)
	}
	if err != nil {
		return ConnInfo{}, err
	}

	next := m.NextPreferredHwMode(ReasonConnectionUpdate)
	if err := m.RequestHwMode(ctx, next); err != nil {
		m.slog.Warnw("hw mode change failed", "vdev", rec.VdevID,
			"err", err)
	}

	if rec.Mode == ModeSTA {
		if pcl, err := m.GetPCLForVdev(rec.VdevID); err == nil &&
			pcl.Len() > 0 {
			err = m.SetPCL(ctx, rec.Mode, rec.VdevID, pcl.Freqs,
				pcl.Weights)
			if err != nil {
				m.slog.Warnw("pcl update failed",
					"vdev", rec.VdevID, "err", err)
			}
		}
	}
	return rec, nil
}

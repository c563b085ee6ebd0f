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

	"bgwlan/ap_common/hwmode"
	"bgwlan/common/wifi"

	"github.com/pkg/errors"
)

// NextActionType is the hardware mode transition the engine wants.
type NextActionType int

// Hardware mode transitions
const (
	NoChange NextActionType = iota
	RequestSingleMac
	RequestDBS
	RequestSBS
	RequestDowngradeDBS1
	RequestDowngradeDBS2
)

func (a NextActionType) String() string {
	switch a {
	case NoChange:
		return "no-change"
	case RequestSingleMac:
		return "single-mac"
	case RequestDBS:
		return "dbs"
	case RequestSBS:
		return "sbs"
	case RequestDowngradeDBS1:
		return "downgrade-dbs1"
	case RequestDowngradeDBS2:
		return "downgrade-dbs2"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Reason records why a hardware mode change was requested.
type Reason int

// Hardware mode change reasons
const (
	ReasonUnknown Reason = iota
	ReasonConnectionUpdate
	ReasonOpportunistic
	ReasonNSSDowngrade
)

func (r Reason) String() string {
	switch r {
	case ReasonConnectionUpdate:
		return "connection-update"
	case ReasonOpportunistic:
		return "opportunistic"
	case ReasonNSSDowngrade:
		return "nss-downgrade"
	}
	return "unknown"
}

// NextAction is the outcome of a hardware mode evaluation.  For downgrades,
// NSS is the stream count the listed vdevs must drop to before the switch.
type NextAction struct {
	Action   NextActionType
	HwModeID int
	NSS      int
	Vdevs    []uint32
	Reason   Reason
}

func (a NextAction) String() string {
	if a.Action == NoChange {
		return a.Action.String()
	}
	s := fmt.Sprintf("%v hw_mode %d (%v)", a.Action, a.HwModeID, a.Reason)
	if len(a.Vdevs) > 0 {
		s += fmt.Sprintf(" nss %d vdevs %v", a.NSS, a.Vdevs)
	}
	return s
}

// Work out which layout the connections want: everything on one MAC, one
// band per MAC, or two halves of the 5GHz band.
func (m *Manager) preferredLayout(conns []ConnInfo) NextActionType {
	var has24, has5 bool

	for _, c := range conns {
		if wifi.Is24GHz(c.Freq) {
			has24 = true
		} else {
			has5 = true
		}
	}

	switch {
	case has24 && has5:
		if m.hw.DBSCapable() {
			return RequestDBS
		}
	case has5 && m.hw.SBSCapable():
		for i := range conns {
			for j := i + 1; j < len(conns); j++ {
				if m.sbs.AreSBSChannels(conns[i].Freq,
					conns[j].Freq) {
					return RequestSBS
				}
			}
		}
	}
	return RequestSingleMac
}

func isPlainDBS(d hwmode.Descriptor) bool {
	return d.DBS && !d.SBS
}

func isSymmetricDBS(d hwmode.Descriptor) bool {
	return isPlainDBS(d) && hwmode.Classify(d) == hwmode.ActionDBS
}

func streams(tx, rx int) int {
	if tx < rx {
		return tx
	}
	return rx
}

// The most streams any MAC of any mode offers.
func maxStreams(t *hwmode.Table) int {
	var n int
	for _, d := range t.Modes() {
		if s := streams(d.MAC0TxSS, d.MAC0RxSS); s > n {
			n = s
		}
		if s := streams(d.MAC1TxSS, d.MAC1RxSS); s > n {
			n = s
		}
	}
	return n
}

// macNeeds is what the connections on one MAC require of it.
type macNeeds struct {
	nss int
	bw  wifi.Bandwidth
}

func (n *macNeeds) add(nss int, bw wifi.Bandwidth) {
	if nss > n.nss {
		n.nss = nss
	}
	if bw > n.bw {
		n.bw = bw
	}
}

func withMACs(r hwmode.Request, mac0, mac1 macNeeds) hwmode.Request {
	r.MAC0TxSS, r.MAC0RxSS, r.MAC0BW = mac0.nss, mac0.nss, mac0.bw
	r.MAC1TxSS, r.MAC1RxSS, r.MAC1BW = mac1.nss, mac1.nss, mac1.bw
	return r
}

// hwQuery is one lookup in the hardware mode table.  Unless the request names
// MAC0's band, the needs were laid out with MAC0 serving 5GHz, so a mode
// whose MAC0 is 2.4GHz can't be used for an asymmetric request.
type hwQuery struct {
	req       hwmode.Request
	symmetric bool
}

// hwQueries lists the lookups for a layout, best first: every MAC with all the
// streams the device has, then just what the connections on each MAC need.
// A connection with no stream count wants everything.
func (m *Manager) hwQueries(conns []ConnInfo, layout NextActionType) []hwQuery {
	var all, lo, hi macNeeds

	for _, c := range conns {
		nss := c.OriginalNSS
		if nss <= 0 {
			nss = m.maxNSS
		}
		all.add(nss, c.Bandwidth)
		if wifi.Is24GHz(c.Freq) {
			lo.add(nss, c.Bandwidth)
		} else {
			hi.add(nss, c.Bandwidth)
		}
	}
	full := macNeeds{nss: m.maxNSS, bw: all.bw}

	switch layout {
	case RequestSingleMac:
		var r hwmode.Request
		return []hwQuery{
			{withMACs(r, full, macNeeds{}), true},
			{withMACs(r, all, macNeeds{}), true},
		}

	case RequestSBS:
		r := hwmode.Request{SBS: true}
		return []hwQuery{
			{withMACs(r, full, full), true},
			{withMACs(r, all, all), true},
		}

	case RequestDBS:
		r := hwmode.Request{DBS: true}
		r5G, r2G := r, r
		r5G.MAC0Band = hwmode.Band5G
		r2G.MAC0Band = hwmode.Band2G
		return []hwQuery{
			{withMACs(r, full, full), true},
			{withMACs(r5G, hi, lo), true},
			{withMACs(r2G, lo, hi), true},
			{withMACs(r, hi, lo), false},
		}
	}
	return nil
}

// Flag combinations worth trying for a request: agile DFS is optional, and SBS
// modes may or may not also advertise DBS.
func requestVariants(r hwmode.Request) []hwmode.Request {
	var out []hwmode.Request

	dbs := []bool{r.DBS}
	if r.SBS {
		dbs = []bool{false, true}
	}
	for _, d := range dbs {
		for _, adfs := range []bool{false, true} {
			v := r
			v.DBS = d
			v.AgileDFS = adfs
			out = append(out, v)
		}
	}
	return out
}

// resolveHwMode finds the first mode, in table order, that can carry the
// connections in the given layout.
func (m *Manager) resolveHwMode(conns []ConnInfo, layout NextActionType) (hwmode.Descriptor, error) {
	for _, q := range m.hwQueries(conns, layout) {
		for _, r := range requestVariants(q.req) {
			id, err := m.hw.FindHwModeIndex(r)
			if err == hwmode.ErrNotFound {
				continue
			} else if err != nil {
				return hwmode.Descriptor{}, errors.Wrap(err,
					"hw mode lookup")
			}

			info, err := m.hw.GetHwModeByID(id)
			if err != nil {
				continue
			}
			if !q.symmetric && info.MAC0Band == hwmode.Band2G {
				continue
			}
			return info.Descriptor, nil
		}
	}
	return hwmode.Descriptor{}, newError(NotFound,
		"no hw mode can carry the connections", "layout", layout.String(),
		"conns", len(conns))
}

// In an asymmetric DBS mode, any connection which would land on the weaker
// MAC with more streams than it supports has to be downgraded first.
func (m *Manager) dbsDowngrade(conns []ConnInfo, d hwmode.Descriptor) (NextActionType, int, []uint32) {
	var weakMAC0 bool
	var weak int

	switch hwmode.Classify(d) {
	case hwmode.ActionDBS1:
		weak = streams(d.MAC1TxSS, d.MAC1RxSS)
	case hwmode.ActionDBS2:
		weakMAC0 = true
		weak = streams(d.MAC0TxSS, d.MAC0RxSS)
	default:
		return NoChange, 0, nil
	}

	var vdevs []uint32
	for _, c := range conns {
		onMAC0 := wifi.Is24GHz(c.Freq) == (d.MAC0Band == hwmode.Band2G)
		if onMAC0 == weakMAC0 && c.OriginalNSS > weak {
			vdevs = append(vdevs, c.VdevID)
		}
	}
	if len(vdevs) == 0 {
		return NoChange, 0, nil
	}
	if weakMAC0 {
		return RequestDowngradeDBS2, weak, vdevs
	}
	return RequestDowngradeDBS1, weak, vdevs
}

// nextPreferredHwMode works out the transition for a snapshot of the
// connections.  An error means the layout they want can't be had; the
// returned action is then NoChange.
func (m *Manager) nextPreferredHwMode(conns []ConnInfo, reason Reason) (NextAction, error) {
	cur := m.CurrentHwMode()
	next := NextAction{Action: NoChange, HwModeID: cur.ID, Reason: reason}

	want := m.preferredLayout(conns)
	switch want {
	case RequestSingleMac:
		if cur.SingleMAC() {
			return next, nil
		}
	case RequestDBS:
		if isPlainDBS(cur.Descriptor) {
			return next, nil
		}
	case RequestSBS:
		if cur.SBS {
			return next, nil
		}
	}

	d, err := m.resolveHwMode(conns, want)
	downgrade := false
	if err != nil {
		if want != RequestDBS || !IsKind(err, NotFound) {
			return next, err
		}

		// No DBS mode carries every connection as it is; take one
		// that will once some of them drop streams.
		var ok bool
		if d, ok = m.hw.FirstWith(isSymmetricDBS); !ok {
			if d, ok = m.hw.FirstWith(isPlainDBS); !ok {
				return next, err
			}
		}
		downgrade = true
	}

	next.HwModeID = d.ID
	next.Action = want
	if downgrade {
		if action, nss, vdevs := m.dbsDowngrade(conns, d); action != NoChange {
			next.Action = action
			next.NSS = nss
			next.Vdevs = vdevs
			next.Reason = ReasonNSSDowngrade
		}
	}
	return next, nil
}

// NextPreferredHwMode evaluates the live connections and returns the hardware
// mode transition they call for, if any.
func (m *Manager) NextPreferredHwMode(reason Reason) NextAction {
	if m.checkReady() != nil {
		return NextAction{Action: NoChange, Reason: reason}
	}

	next, err := m.nextPreferredHwMode(m.table.Conns(), reason)
	if err != nil {
		m.slog.Debugw("keeping hw mode", "reason", reason, "err", err)
	}
	return next
}

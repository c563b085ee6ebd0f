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

// PCL weights.  Each tier of a list gets the next lower weight group; a
// channel which is listed but can't currently be used gets WeightDisallowed.
const (
	WeightGroup1     uint8 = 255
	WeightGroup2     uint8 = 240
	WeightGroup3     uint8 = 225
	WeightGroup4     uint8 = 210
	WeightDisallowed uint8 = 0
)

var weightGroups = []uint8{WeightGroup1, WeightGroup2, WeightGroup3,
	WeightGroup4}

type pclBuilder struct {
	freqs    []uint32
	weights  []uint8
	capacity int
	group    int
	seen     map[uint32]bool
}

func newPCLBuilder(capacity int) *pclBuilder {
	return &pclBuilder{
		freqs:    make([]uint32, 0, capacity),
		weights:  make([]uint8, 0, capacity),
		capacity: capacity,
		seen:     make(map[uint32]bool),
	}
}

func (b *pclBuilder) weight() uint8 {
	g := b.group
	if g >= len(weightGroups) {
		g = len(weightGroups) - 1
	}
	return weightGroups[g]
}

// Append the channels not already in the list, all at the current weight.
// Anything beyond the list's capacity is dropped.  The weight group advances
// only if something was added.
func (b *pclBuilder) addTier(freqs []uint32) {
	var added int

	w := b.weight()
	for _, f := range freqs {
		if len(b.freqs) >= b.capacity {
			break
		}
		if b.seen[f] {
			continue
		}
		b.seen[f] = true
		b.freqs = append(b.freqs, f)
		b.weights = append(b.weights, w)
		added++
	}
	if added > 0 {
		b.group++
	}
}

// pclInput is everything the channel sources draw on.
type pclInput struct {
	mode     Mode
	l24      []uint32
	l5       []uint32
	l6       []uint32
	conns    []ConnInfo
	prefer6G bool
	allowDFS bool
	sbsPred  hwmode.SBSPredicate
	isDFS    func(ConnInfo) bool

	partitioned bool
	scc         []uint32
	sbs         []uint32
	rest        []uint32
}

func (in *pclInput) partition() {
	if !in.partitioned {
		in.scc, in.sbs, in.rest = PartitionSubChannels(in.conns,
			in.l5, in.l6, in.prefer6G, in.sbsPred)
		in.partitioned = true
	}
}

// The channels of existing connections, filtered by band.  Beaconing
// requesters only get a radar channel from here if SAPs may use them, and
// 6GHz is only offered if the requester may use it.
func (in *pclInput) connChannels(match func(uint32) bool) []uint32 {
	var list []uint32
	for _, c := range in.conns {
		if !match(c.Freq) || contains(list, c.Freq) {
			continue
		}
		if wifi.Is6GHz(c.Freq) && !contains(in.l6, c.Freq) {
			continue
		}
		if in.mode.Beaconing() && !in.allowDFS && in.isDFS(c) {
			continue
		}
		list = append(list, c.Freq)
	}
	return list
}

func anyBand(uint32) bool { return true }

func (in *pclInput) tiers(src pclSource) [][]uint32 {
	switch src {
	case src24G:
		return [][]uint32{in.l24}
	case src5G:
		if in.prefer6G {
			return [][]uint32{in.l6, in.l5}
		}
		return [][]uint32{in.l5, in.l6}
	case srcConn:
		return [][]uint32{in.connChannels(anyBand)}
	case srcConn24GFirst:
		return [][]uint32{in.connChannels(wifi.Is24GHz),
			in.connChannels(wifi.Is5Or6GHz)}
	case srcConn5GFirst:
		return [][]uint32{in.connChannels(wifi.Is5Or6GHz),
			in.connChannels(wifi.Is24GHz)}
	case srcSCC:
		in.partition()
		return [][]uint32{in.scc}
	case srcSBS:
		in.partition()
		return [][]uint32{in.sbs}
	case srcRest:
		in.partition()
		return [][]uint32{in.rest}
	}
	return nil
}

// buildPCL runs the recipe for pclType against a snapshot of the connection
// table.  It may be called with the table locked.
func (m *Manager) buildPCL(conns []ConnInfo, cs *chanStates, pclType PCLType,
	mode Mode, list []uint32, capacity int) (PCLResult, error) {

	if capacity <= 0 {
		return PCLResult{}, newError(InvalidArgument,
			"pcl capacity must be positive", "capacity", capacity)
	}
	if pclType < 0 || pclType >= numPCLTypes {
		return PCLResult{}, newError(InvalidArgument, "invalid pcl type",
			"type", int(pclType))
	}
	if !mode.Valid() {
		return PCLResult{}, newError(InvalidArgument, "invalid mode",
			"mode", int(mode))
	}

	res := PCLResult{Type: pclType}
	if pclType == PCLNone {
		return res, nil
	}
	if len(list) == 0 {
		return res, newError(NotFound, "no channel list available",
			"type", pclType.String(), "mode", mode.String())
	}

	in := &pclInput{
		mode:     mode,
		conns:    conns,
		prefer6G: m.cfg.Prefer6G,
		allowDFS: m.cfg.SAPAllowDFS,
		sbsPred:  m.sbs,
		isDFS:    cs.isDFS,
	}
	in.l24, in.l5, in.l6 = ClassifyByBand(list)
	if !m.cfg.allow6G(mode) {
		in.l6 = nil
	}

	b := newPCLBuilder(capacity)
	for _, src := range pclRecipes[pclType] {
		for _, tier := range in.tiers(src) {
			b.addTier(tier)
		}
	}
	res.Freqs, res.Weights = b.freqs, b.weights

	m.postProcessPCL(&res, mode, cs)
	pclBuilds.WithLabelValues(pclType.String()).Inc()
	return res, nil
}

// Beaconing interfaces lose the channels on the avoid list altogether.
// Channels which the regulatory database won't currently let us use keep
// their place, but with a zero weight.
func (m *Manager) postProcessPCL(res *PCLResult, mode Mode, cs *chanStates) {
	if mode.Beaconing() {
		unsafe := cs.unsafe
		if len(unsafe) > 0 {
			freqs := res.Freqs[:0]
			weights := res.Weights[:0]
			for i, f := range res.Freqs {
				if !contains(unsafe, f) {
					freqs = append(freqs, f)
					weights = append(weights, res.Weights[i])
				}
			}
			res.Freqs, res.Weights = freqs, weights
		}
	}

	for i, f := range res.Freqs {
		if !cs.state(f).Usable() {
			res.Weights[i] = WeightDisallowed
		}
	}
}

// BuildPCL builds the list described by pclType for a connection of the given
// mode, drawing candidates from list.  At most capacity entries are returned.
func (m *Manager) BuildPCL(pclType PCLType, mode Mode, list []uint32,
	capacity int) (PCLResult, error) {

	var res PCLResult
	var err error

	if err = m.checkReady(); err != nil {
		return res, err
	}
	cs := m.channelStates(list...)
	m.table.View(func(v *TableView) {
		res, err = m.buildPCL(v.Conns(), cs, pclType, mode, list,
			capacity)
	})
	return res, err
}

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

// Regulatory reports which channels may be used.  *regdb.DB implements it.
type Regulatory interface {
	ValidChannels() []uint32
	ChannelState(freq uint32) regdb.ChannelState
}

// PCLRequest is a preferred channel list addressed to one vdev, or to every
// vdev when VdevID is BroadcastVdev.
type PCLRequest struct {
	VdevID    uint32
	Mode      Mode
	Freqs     []uint32
	Weights   []uint8
	RoamBands wifi.Band
}

// HwModeRequest asks the firmware to move to a new hardware mode, or to
// reduce the spatial streams of some vdevs before doing so.
type HwModeRequest struct {
	HwModeID int
	Action   NextActionType
	Reason   Reason
	NSS      int
	Vdevs    []uint32
}

// Dispatcher delivers requests to the firmware.  Implementations must not
// call back into the engine.
type Dispatcher interface {
	SetPCL(ctx context.Context, req *PCLRequest) error
	SetHwMode(ctx context.Context, req *HwModeRequest) error
}

// RoamState reports whether the roaming subsystem is ready on a vdev.
type RoamState interface {
	RoamInitialized(vdev uint32) bool
}

// CACState reports whether a SAP is performing its channel availability check.
type CACState interface {
	SAPCACInProgress() bool
}

// AvoidList reports channels which beaconing interfaces should stay away from,
// e.g. because of coexistence with an LTE radio.
type AvoidList interface {
	UnsafeChannels() []uint32
}

// StaticAvoidList is an AvoidList with a fixed set of channels.
type StaticAvoidList []uint32

// UnsafeChannels returns the fixed list.
func (s StaticAvoidList) UnsafeChannels() []uint32 {
	return s
}

// chanStates is a copy of what the collaborators say about the channels,
// taken before the connection table is locked so that nothing outside the
// engine is consulted while the lock is held.
type chanStates struct {
	list   []uint32
	states map[uint32]regdb.ChannelState
	unsafe []uint32
}

// channelStates snapshots the regulatory database and the avoid list.  The
// states of any extra frequencies are fetched as well, in case the database
// doesn't list them.
func (m *Manager) channelStates(extra ...uint32) *chanStates {
	cs := &chanStates{
		list:   m.reg.ValidChannels(),
		states: make(map[uint32]regdb.ChannelState),
	}
	for _, f := range cs.list {
		cs.states[f] = m.reg.ChannelState(f)
	}
	for _, f := range extra {
		if _, ok := cs.states[f]; !ok && f != 0 {
			cs.states[f] = m.reg.ChannelState(f)
		}
	}
	if m.avoid != nil {
		cs.unsafe = m.avoid.UnsafeChannels()
	}
	return cs
}

// Channels missing from the snapshot are invalid.
func (cs *chanStates) state(freq uint32) regdb.ChannelState {
	return cs.states[freq]
}

func (cs *chanStates) isDFS(c ConnInfo) bool {
	return c.IsDFS() || cs.state(c.Freq) == regdb.StateDFS
}

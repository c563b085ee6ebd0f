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

// Choose the PCL recipe for a new connection, given the ones already up.
//
// With no existing connections, only beaconing modes get a preference:
//	throughput, latency	5G
//	power			2.4G
//
// With one existing connection:
//	single MAC		its channel, then its band
//	DBS, existing 2.4G	throughput/latency: 5G then its channel
//				power: its channel then 5G
//	DBS, existing 5G	throughput: SBS channels, 2.4G, its channel
//				(2.4G first without SBS support)
//				latency: 2.4G then its channel
//				power: its channel then 2.4G
//
// With two existing connections:
//	single MAC		their channels only
//	DBS, bands differ	their channels, by preferred band
//	DBS, both 2.4G		their channels then 5G
//	DBS, both 5G		SBS pair: their channels
//				otherwise: SBS channels, theirs, then 2.4G on
//				SBS hardware; theirs then 2.4G without
//
// With three or more, only the channels already in use.
func (m *Manager) selectPCLType(conns []ConnInfo, mode Mode) PCLType {
	dbs := m.hw.DBSCapable()
	sbs := m.hw.SBSCapable()
	pref := m.cfg.SystemPref

	switch len(conns) {
	case 0:
		if !mode.Beaconing() {
			return PCLNone
		}
		if pref == PrefPower {
			return PCL24G
		}
		return PCL5G

	case 1:
		c0 := conns[0]
		if !dbs {
			if wifi.Is24GHz(c0.Freq) {
				return PCLSCCCh24G
			}
			return PCLSCCCh5G
		}
		if wifi.Is24GHz(c0.Freq) {
			if pref == PrefPower {
				return PCLSCCCh5G
			}
			return PCL5GSCCCh
		}
		switch pref {
		case PrefPower:
			return PCLSCCCh24G
		case PrefLatency:
			return PCL24GSCCCh
		}
		if sbs {
			return PCLSBSCh24GSCCCh
		}
		return PCL24GSCCCh

	case 2:
		c0, c1 := conns[0], conns[1]
		if !dbs {
			return PCLSCCCh
		}
		lo0, lo1 := wifi.Is24GHz(c0.Freq), wifi.Is24GHz(c1.Freq)
		switch {
		case lo0 != lo1:
			if pref == PrefPower {
				return PCLSCCOn24SCCOn5
			}
			return PCLSCCOn5SCCOn24
		case lo0:
			return PCLSCCOn24SCCOn5_5G
		}
		if sbs {
			if m.sbs.AreSBSChannels(c0.Freq, c1.Freq) {
				return PCLSCCCh
			}
			return PCLSBSChSCCCh24G
		}
		return PCLSCCOn5SCCOn24_24G
	}

	return PCLSCCCh
}

// pclCapacity bounds a generated list by the number of channels available.
func pclCapacity(list []uint32) int {
	if len(list) == 0 {
		return 1
	}
	return len(list)
}

// GetPCL returns the preferred channel list for a new connection of the given
// mode, based on the connections already in place.
func (m *Manager) GetPCL(mode Mode) (PCLResult, error) {
	var res PCLResult
	var err error

	if err = m.checkReady(); err != nil {
		return res, err
	}

	cs := m.channelStates()
	m.table.View(func(v *TableView) {
		conns := v.Conns()
		pclType := m.selectPCLType(conns, mode)
		res, err = m.buildPCL(conns, cs, pclType, mode, cs.list,
			pclCapacity(cs.list))
	})
	if err == nil {
		m.slog.Debugw("generated pcl", "mode", mode, "type", res.Type,
			"len", res.Len())
	}
	return res, err
}

// GetPCLForVdev returns the preferred channel list for an existing vdev, as
// though it were connecting anew alongside the other connections.  The vdev's
// own entry is set aside for the computation and restored before the table
// lock is released.
func (m *Manager) GetPCLForVdev(vdev uint32) (PCLResult, error) {
	var res PCLResult

	if err := m.checkReady(); err != nil {
		return res, err
	}

	cs := m.channelStates()
	err := m.table.Update(func(tx *TableTx) error {
		saved := tx.StoreAndDeleteByVdev(vdev)
		if len(saved) == 0 {
			return newError(NotFound, "no connection for vdev",
				"vdev", vdev)
		}

		var err error
		mode := saved[0].Info.Mode
		conns := tx.Conns()
		pclType := m.selectPCLType(conns, mode)
		res, err = m.buildPCL(conns, cs, pclType, mode, cs.list,
			pclCapacity(cs.list))

		if rerr := tx.Restore(saved); rerr != nil {
			tx.afterUnlock(func() {
				m.slog.DPanicw("failed to restore connection",
					"vdev", vdev, "err", rerr)
			})
			return rerr
		}
		return err
	})
	return res, err
}

// bestChannel picks the channel a new connection should use when the caller
// has no preference: the head of its PCL or, for a mode with no preference,
// the first usable 5GHz or 2.4GHz channel.  It may be called with the table
// locked.
func (m *Manager) bestChannel(conns []ConnInfo, cs *chanStates,
	mode Mode) (uint32, error) {

	capacity := pclCapacity(cs.list)
	pcl, err := m.buildPCL(conns, cs, m.selectPCLType(conns, mode), mode,
		cs.list, capacity)
	if err != nil {
		return 0, err
	}

	best, ok := pcl.Best()
	if !ok && pcl.Type == PCLNone {
		for _, t := range []PCLType{PCL5G, PCL24G} {
			pcl, err = m.buildPCL(conns, cs, t, mode, cs.list,
				capacity)
			if err != nil {
				return 0, err
			}
			if best, ok = pcl.Best(); ok {
				break
			}
		}
	}
	if !ok {
		return 0, newError(NotFound, "no usable channel",
			"mode", mode.String())
	}
	return best, nil
}

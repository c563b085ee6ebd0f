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

	"bgwlan/common/wifi"

	"github.com/pkg/errors"
)

// The bands a roaming scan may cover.  Only when each STA has its own PCL
// during dual-STA roaming is the scan limited to the bands in that PCL.
func (m *Manager) roamBands(vdev uint32, weights []uint8, freqs []uint32) wifi.Band {
	if vdev == BroadcastVdev || !m.cfg.DualSTARoaming || !m.cfg.PCLPerVdev {
		return wifi.BandAll
	}

	var bands wifi.Band
	for i, f := range freqs {
		if weights[i] != WeightDisallowed {
			bands |= wifi.BandOf(f)
		}
	}
	if bands == 0 {
		return wifi.BandAll
	}
	return bands
}

// SetPCL sends a preferred channel list to the firmware for one vdev, or for
// all of them if vdev is BroadcastVdev.
func (m *Manager) SetPCL(ctx context.Context, mode Mode, vdev uint32,
	freqs []uint32, weights []uint8) error {

	if err := m.checkReady(); err != nil {
		return err
	}
	if m.disp == nil {
		return newError(InvalidContext, "no firmware dispatcher")
	}
	if len(freqs) != len(weights) {
		return newError(InvalidArgument, "pcl length mismatch",
			"freqs", len(freqs), "weights", len(weights))
	}
	if vdev != BroadcastVdev && m.roam != nil && !m.roam.RoamInitialized(vdev) {
		return newError(InvalidContext, "roaming not initialized",
			"vdev", vdev)
	}

	req := &PCLRequest{
		VdevID:    vdev,
		Mode:      mode,
		Freqs:     freqs,
		Weights:   weights,
		RoamBands: m.roamBands(vdev, weights, freqs),
	}
	if err := m.disp.SetPCL(ctx, req); err != nil {
		dispatchFailures.WithLabelValues("set_pcl").Inc()
		m.slog.Warnw("failed to send pcl", "vdev", vdev, "err", err)
		return errors.Wrapf(err, "sending pcl to vdev %d", vdev)
	}

	m.slog.Debugw("sent pcl", "vdev", vdev, "mode", mode,
		"len", len(freqs), "bands", req.RoamBands)
	return nil
}

// RequestHwMode asks the firmware to carry out a hardware mode transition.
// When the request is accepted for a mode switch, the engine adopts the new
// mode as current.
func (m *Manager) RequestHwMode(ctx context.Context, next NextAction) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	if next.Action == NoChange {
		return nil
	}
	if m.disp == nil {
		return newError(InvalidContext, "no firmware dispatcher")
	}

	req := &HwModeRequest{
		HwModeID: next.HwModeID,
		Action:   next.Action,
		Reason:   next.Reason,
		NSS:      next.NSS,
		Vdevs:    next.Vdevs,
	}
	hwModeRequests.WithLabelValues(next.Action.String()).Inc()
	if err := m.disp.SetHwMode(ctx, req); err != nil {
		dispatchFailures.WithLabelValues("set_hw_mode").Inc()
		m.slog.Warnw("failed to request hw mode", "next", next.String(),
			"err", err)
		return errors.Wrap(err, "requesting hw mode")
	}

	m.slog.Infow("requested hw mode", "next", next.String())
	switch next.Action {
	case RequestSingleMac, RequestDBS, RequestSBS:
		return m.SetCurrentHwMode(next.HwModeID)
	}
	return nil
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// Package policymgr decides how concurrent WLAN connections share the radio:
// which channels each new connection should prefer, whether it may come up at
// all, whether a SAP should be moved onto an existing channel, and which
// hardware mode the firmware should be in.
package policymgr

import (
	"sync"

	"bgwlan/ap_common/hwmode"

	"github.com/tevino/abool"
	"go.uber.org/zap"
)

// Deps are the collaborators the engine consults.  HwModes and Regulatory are
// required; the rest may be left nil.
type Deps struct {
	HwModes    *hwmode.Table
	Regulatory Regulatory
	SBS        hwmode.SBSPredicate
	Dispatcher Dispatcher
	Roam       RoamState
	CAC        CACState
	Avoid      AvoidList
	Log        *zap.SugaredLogger
}

// Manager is the concurrency policy engine.
type Manager struct {
	cfg    Config
	table  *ConnTable
	hw     *hwmode.Table
	maxNSS int
	reg    Regulatory
	sbs    hwmode.SBSPredicate
	disp   Dispatcher
	roam   RoamState
	cac    CACState
	avoid  AvoidList

	hwMu      sync.Mutex
	curHwMode hwmode.Info

	ready   *abool.AtomicBool
	upgrade *upgradeTask
	slog    *zap.SugaredLogger
}

// New creates an engine with an empty connection table.  The firmware is
// assumed to start in its first single-MAC hardware mode.
func New(cfg Config, deps Deps) (*Manager, error) {
	if deps.HwModes == nil || deps.HwModes.Len() == 0 {
		return nil, newError(InvalidArgument, "no hardware mode table")
	}
	if deps.Regulatory == nil {
		return nil, newError(InvalidArgument, "no regulatory database")
	}

	slog := deps.Log
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	sbs := deps.SBS
	if sbs == nil {
		sbs = hwmode.NewSplitSBS(0)
	}
	if cfg.UpgradeDelay <= 0 {
		cfg.UpgradeDelay = DefaultUpgradeDelay
	}

	m := &Manager{
		cfg:   cfg,
		table: NewConnTable(slog),
		hw:    deps.HwModes,
		reg:   deps.Regulatory,
		sbs:   sbs,
		disp:  deps.Dispatcher,
		roam:  deps.Roam,
		cac:   deps.CAC,
		avoid: deps.Avoid,
		ready: abool.New(),
		slog:  slog,
	}

	initial, ok := m.hw.FirstWith(hwmode.Descriptor.SingleMAC)
	if !ok {
		initial = m.hw.Modes()[0]
	}
	m.curHwMode = hwmode.Info{
		Descriptor: initial,
		Action:     hwmode.Classify(initial),
	}
	m.maxNSS = maxStreams(m.hw)

	m.table.AddListener(m.trackConnections)
	m.upgrade = newUpgradeTask(m, cfg.UpgradeDelay)
	m.ready.Set()
	return m, nil
}

// Start launches the opportunistic upgrade task.
func (m *Manager) Start() {
	m.upgrade.start()
}

// Close stops the upgrade task.  Afterwards every operation fails with
// InvalidContext.
func (m *Manager) Close() {
	m.ready.UnSet()
	m.upgrade.stop()
}

func (m *Manager) checkReady() error {
	if m == nil || !m.ready.IsSet() {
		return newError(InvalidContext, "policy manager not initialized")
	}
	return nil
}

// Config returns the engine's configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Table returns the connection table.
func (m *Manager) Table() *ConnTable {
	return m.table
}

// AddListener registers a callback for connection table events.
func (m *Manager) AddListener(l Listener) {
	m.table.AddListener(l)
}

// CurrentHwMode returns the hardware mode the firmware last reported.
func (m *Manager) CurrentHwMode() hwmode.Info {
	m.hwMu.Lock()
	defer m.hwMu.Unlock()

	return m.curHwMode
}

// SetCurrentHwMode records a hardware mode change reported by the firmware.
func (m *Manager) SetCurrentHwMode(id int) error {
	info, err := m.hw.GetHwModeByID(id)
	if err != nil {
		return newError(NotFound, "unknown hardware mode", "id", id)
	}

	m.hwMu.Lock()
	old := m.curHwMode
	m.curHwMode = info
	m.hwMu.Unlock()

	if old.ID != info.ID {
		m.slog.Infow("hardware mode changed", "old", old.ID, "new", info.ID,
			"action", info.Action)
	}
	return nil
}

// UpdateConcList adds a connection to the table, or updates an existing
// vdev's connection.
func (m *Manager) UpdateConcList(rec ConnInfo) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	return m.table.UpdateConcList(rec)
}

// DeleteConnection removes a vdev's connection and arms the opportunistic
// upgrade task, since the remaining connections may be able to use a better
// hardware mode.
func (m *Manager) DeleteConnection(vdev uint32) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	if err := m.table.DeleteConnection(vdev); err != nil {
		return err
	}
	m.upgrade.arm()
	return nil
}

// GetConnectionCount returns the number of active connections.
func (m *Manager) GetConnectionCount() int {
	return m.table.Count()
}

func (m *Manager) trackConnections(ev Event) {
	if ev.Kind != EventModeChange {
		return
	}

	counts := make(map[Mode]int)
	for _, c := range ev.Conns {
		counts[c.Mode]++
	}
	for _, mode := range AllModes() {
		connections.WithLabelValues(mode.String()).Set(
			float64(counts[mode]))
	}
}

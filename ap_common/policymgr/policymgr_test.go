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
	"testing"

	"bgwlan/ap_common/hwmode"
	"bgwlan/ap_common/regdb"
	"bgwlan/common/wifi"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tevino/abool"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var (
	single2x2 = hwmode.Descriptor{ID: 0, MAC0TxSS: 2, MAC0RxSS: 2,
		MAC0BW: wifi.BW160}
	dbs1 = hwmode.Descriptor{ID: 1, MAC0TxSS: 2, MAC0RxSS: 2,
		MAC0BW: wifi.BW80, MAC1TxSS: 1, MAC1RxSS: 1, MAC1BW: wifi.BW40,
		MAC0Band: hwmode.Band5G, DBS: true}
	dbsSym = hwmode.Descriptor{ID: 2, MAC0TxSS: 2, MAC0RxSS: 2,
		MAC0BW: wifi.BW80, MAC1TxSS: 2, MAC1RxSS: 2, MAC1BW: wifi.BW80,
		DBS: true}
	sbs1x1 = hwmode.Descriptor{ID: 3, MAC0TxSS: 1, MAC0RxSS: 1,
		MAC0BW: wifi.BW80, MAC1TxSS: 1, MAC1RxSS: 1, MAC1BW: wifi.BW80,
		SBS: true}
)

type hwKind int

const (
	hwSMM hwKind = iota
	hwDBS
	hwSBS
	hwAsymDBS
)

func testHwModes(t *testing.T, kind hwKind) *hwmode.Table {
	var modes []hwmode.Descriptor

	switch kind {
	case hwSMM:
		modes = []hwmode.Descriptor{single2x2}
	case hwDBS:
		modes = []hwmode.Descriptor{single2x2, dbs1, dbsSym}
	case hwSBS:
		modes = []hwmode.Descriptor{single2x2, dbs1, dbsSym, sbs1x1}
	case hwAsymDBS:
		modes = []hwmode.Descriptor{single2x2, dbs1}
	}

	table, err := hwmode.NewTable(modes)
	require.NoError(t, err)
	return table
}

type mockDispatcher struct {
	mock.Mock
}

func (d *mockDispatcher) SetPCL(ctx context.Context, req *PCLRequest) error {
	return d.Called(ctx, req).Error(0)
}

func (d *mockDispatcher) SetHwMode(ctx context.Context, req *HwModeRequest) error {
	return d.Called(ctx, req).Error(0)
}

type roamSet map[uint32]bool

func (r roamSet) RoamInitialized(vdev uint32) bool {
	return r[vdev]
}

type cacFlag struct {
	*abool.AtomicBool
}

func (c cacFlag) SAPCACInProgress() bool {
	return c.IsSet()
}

type testEnv struct {
	m    *Manager
	reg  *regdb.DB
	disp *mockDispatcher
	cac  cacFlag
}

type testOpt func(*Config, *Deps)

func withConfig(fn func(*Config)) testOpt {
	return func(c *Config, d *Deps) { fn(c) }
}

func withAvoid(freqs ...uint32) testOpt {
	return func(c *Config, d *Deps) { d.Avoid = StaticAvoidList(freqs) }
}

func withLog(log *zap.SugaredLogger) testOpt {
	return func(c *Config, d *Deps) { d.Log = log }
}

func withRoam(vdevs ...uint32) testOpt {
	return func(c *Config, d *Deps) {
		r := make(roamSet)
		for _, v := range vdevs {
			r[v] = true
		}
		d.Roam = r
	}
}

func newTestEnv(t *testing.T, kind hwKind, opts ...testOpt) *testEnv {
	env := &testEnv{
		reg:  regdb.NewDefault("US"),
		disp: &mockDispatcher{},
		cac:  cacFlag{abool.New()},
	}

	cfg := DefaultConfig()
	deps := Deps{
		HwModes:    testHwModes(t, kind),
		Regulatory: env.reg,
		SBS:        hwmode.NewSplitSBS(0),
		Dispatcher: env.disp,
		CAC:        env.cac,
		Log:        zaptest.NewLogger(t).Sugar(),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	m, err := New(cfg, deps)
	require.NoError(t, err)
	env.m = m
	return env
}

// load replaces the contents of the connection table.
func (env *testEnv) load(t *testing.T, conns ...ConnInfo) {
	for i := range conns {
		if conns[i].VdevID == 0 {
			conns[i].VdevID = uint32(i + 1)
		}
		require.NoError(t, env.m.UpdateConcList(conns[i]))
	}
}

func conn(mode Mode, freq uint32, mac int) ConnInfo {
	return ConnInfo{
		Mode:        mode,
		Freq:        freq,
		Bandwidth:   wifi.BW20,
		MacID:       mac,
		OriginalNSS: 1,
	}
}

func checkCounts(t *testing.T, table *ConnTable) {
	table.View(func(v *TableView) {
		counts := make(map[Mode]int)
		for _, c := range v.Conns() {
			counts[c.Mode]++
		}
		for _, mode := range AllModes() {
			require.Equal(t, counts[mode], v.CountForMode(mode),
				"count for %v", mode)
		}
	})
}

func TestNew(t *testing.T) {
	assert := require.New(t)

	_, err := New(DefaultConfig(), Deps{Regulatory: regdb.NewDefault("US")})
	assert.Equal(InvalidArgument, KindOf(err))

	_, err = New(DefaultConfig(), Deps{HwModes: testHwModes(t, hwDBS)})
	assert.Equal(InvalidArgument, KindOf(err))

	env := newTestEnv(t, hwDBS)
	assert.Equal(0, env.m.CurrentHwMode().ID)
	assert.Equal(DefaultUpgradeDelay, env.m.Config().UpgradeDelay)

	assert.Equal(NotFound, KindOf(env.m.SetCurrentHwMode(42)))
	assert.NoError(env.m.SetCurrentHwMode(2))
	assert.Equal(hwmode.ActionDBS, env.m.CurrentHwMode().Action)
}

func TestClosed(t *testing.T) {
	assert := require.New(t)

	env := newTestEnv(t, hwDBS)
	env.m.Start()
	env.m.Close()

	_, err := env.m.GetPCL(ModeSTA)
	assert.Equal(InvalidContext, KindOf(err))
	_, err = env.m.BuildPCL(PCL24G, ModeSTA, []uint32{2412}, 1)
	assert.Equal(InvalidContext, KindOf(err))
	assert.Equal(InvalidContext, KindOf(env.m.UpdateConcList(
		conn(ModeSTA, 2412, 0))))
	assert.False(env.m.AllowNewHomeChannel(ModeSTA, 2412, 0, false))
	_, ok := env.m.CheckForceSCC(2412)
	assert.False(ok)
	err = env.m.SetPCL(context.Background(), ModeSTA, BroadcastVdev,
		nil, nil)
	assert.Equal(InvalidContext, KindOf(err))
	env.disp.AssertExpectations(t)
}

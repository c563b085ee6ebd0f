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
	"time"

	"bgwlan/ap_common/regdb"
	"bgwlan/common/wifi"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tevino/abool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

func TestStartConnection(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, hwDBS)
	env.disp.On("SetHwMode", mock.Anything, mock.Anything).Return(nil)
	env.disp.On("SetPCL", mock.Anything, mock.Anything).Return(nil)

	req := ConnRequest{Mode: ModeSTA, VdevID: 1, Freq: 2412, MacID: 1,
		Bandwidth: wifi.BW20, OriginalNSS: 1}
	rec, err := env.m.StartConnection(ctx, req)
	assert.NoError(err)
	assert.Equal(uint32(2412), rec.Freq)

	// A lone station has no preference, so no PCL is sent.
	env.disp.AssertNotCalled(t, "SetPCL", mock.Anything, mock.Anything)

	// The SAP is pulled onto the station's channel.
	req = ConnRequest{Mode: ModeSAP, VdevID: 2, Freq: 2462, MacID: 1,
		Bandwidth: wifi.BW20, OriginalNSS: 1}
	rec, err = env.m.StartConnection(ctx, req)
	assert.NoError(err)
	assert.Equal(uint32(2412), rec.Freq)
	assert.Equal("STA+SAP SCC on 2412", env.m.DumpCurrentConcurrency())
	env.disp.AssertNotCalled(t, "SetHwMode", mock.Anything, mock.Anything)

	// A GO in the other band takes the second MAC.
	req = ConnRequest{Mode: ModeP2PGO, VdevID: 3, Freq: 5180, MacID: 0,
		Bandwidth: wifi.BW20, OriginalNSS: 1}
	rec, err = env.m.StartConnection(ctx, req)
	assert.NoError(err)
	assert.Equal(uint32(5180), rec.Freq)
	env.disp.AssertCalled(t, "SetHwMode", mock.Anything, mock.MatchedBy(
		func(r *HwModeRequest) bool {
			return r.Action == RequestDBS && r.HwModeID == 2
		}))
	assert.Equal(2, env.m.CurrentHwMode().ID)

	// No new channel for a fourth connection.
	req = ConnRequest{Mode: ModeSTA, VdevID: 4, Freq: 5200, MacID: 0,
		Bandwidth: wifi.BW20, OriginalNSS: 1}
	_, err = env.m.StartConnection(ctx, req)
	assert.Equal(NotPermitted, KindOf(err))
	assert.Equal(3, env.m.GetConnectionCount())

	// Letting the engine choose lands it on a channel already in use.
	req.Freq = 0
	rec, err = env.m.StartConnection(ctx, req)
	assert.NoError(err)
	assert.Contains([]uint32{2412, 5180}, rec.Freq)
	assert.Equal(4, env.m.GetConnectionCount())
	env.disp.AssertCalled(t, "SetPCL", mock.Anything, mock.MatchedBy(
		func(r *PCLRequest) bool {
			return r.VdevID == 4 && len(r.Freqs) > 0
		}))
	env.disp.AssertNumberOfCalls(t, "SetHwMode", 1)
	checkCounts(t, env.m.Table())
}

func TestStartConnectionErrors(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, hwSMM)

	_, err := env.m.StartConnection(ctx, ConnRequest{Mode: Mode(42)})
	assert.Equal(InvalidArgument, KindOf(err))

	env.reg.SetChannelState(5180, regdb.StateDisabled)
	_, err = env.m.StartConnection(ctx, ConnRequest{Mode: ModeSAP,
		VdevID: 1, Freq: 5180})
	assert.Equal(NotPermitted, KindOf(err))

	// Without a preference, a station gets the first usable channel.
	rec, err := env.m.StartConnection(ctx, ConnRequest{Mode: ModeSTA,
		VdevID: 1, OriginalNSS: 1})
	assert.NoError(err)
	assert.True(wifi.Is5GHz(rec.Freq))
	assert.NotEqual(uint32(5180), rec.Freq)

	// Single-MAC hardware won't take a second band.
	_, err = env.m.StartConnection(ctx, ConnRequest{Mode: ModeP2PClient,
		VdevID: 2, Freq: 2412, OriginalNSS: 1})
	assert.Equal(NotPermitted, KindOf(err))
	assert.Equal(1, env.m.GetConnectionCount())
}

func mixedBands(conns []ConnInfo) bool {
	var band wifi.Band
	for _, c := range conns {
		b := wifi.BandOf(c.Freq)
		if band != 0 && b != band {
			return true
		}
		band = b
	}
	return false
}

// Connections started and torn down from many goroutines at once never leave
// single-MAC hardware holding two bands.
func TestConcurrentStartConnection(t *testing.T) {
	const workers = 8
	const rounds = 100

	assert := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, hwSMM, withConfig(func(c *Config) {
		c.UpgradeDelay = time.Millisecond
	}))
	env.disp.On("SetHwMode", mock.Anything, mock.Anything).Return(nil)
	env.disp.On("SetPCL", mock.Anything, mock.Anything).Return(nil)

	mixed := abool.New()
	env.m.Table().AddListener(func(ev Event) {
		if mixedBands(ev.Conns) {
			mixed.Set()
		}
	})
	env.m.Start()
	defer env.m.Close()

	modes := []Mode{ModeSTA, ModeSAP, ModeP2PClient}
	freqs := []uint32{2412, 5180}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			vdev := uint32(w + 1)
			for i := 0; i < rounds; i++ {
				req := ConnRequest{
					Mode:        modes[(w+i)%len(modes)],
					VdevID:      vdev,
					Freq:        freqs[(w+i)%len(freqs)],
					Bandwidth:   wifi.BW20,
					OriginalNSS: 1,
				}
				_, err := env.m.StartConnection(ctx, req)
				switch KindOf(err) {
				case Unknown:
					if err != nil {
						return err
					}
				case NotPermitted, CapacityExceeded:
				default:
					return errors.Wrapf(err, "start vdev %d", vdev)
				}

				if i%5 == 0 {
					if _, err = env.m.OpportunisticUpgrade(ctx); err != nil {
						return errors.Wrap(err, "upgrade")
					}
				}

				err = env.m.DeleteConnection(vdev)
				if err != nil && !IsKind(err, NotFound) {
					return errors.Wrapf(err, "delete vdev %d", vdev)
				}
			}
			return nil
		})
	}
	assert.NoError(g.Wait())

	assert.False(mixed.IsSet(), "single mac held two bands")
	assert.Equal(0, env.m.GetConnectionCount())
	checkCounts(t, env.m.Table())
}

// Nothing is logged while the connection table is locked: every log entry
// reads the table, which would block behind a held lock.
func TestLoggingOutsideTableLock(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	var table *ConnTable
	blocked := abool.New()
	readTable := func(zapcore.Entry) error {
		if table == nil {
			return nil
		}
		done := make(chan struct{})
		go func() {
			table.Count()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			blocked.Set()
		}
		return nil
	}

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core, zap.Hooks(readTable)).Sugar()
	env := newTestEnv(t, hwSMM, withLog(log), withAvoid(2437))
	table = env.m.Table()
	env.disp.On("SetPCL", mock.Anything, mock.Anything).Return(nil)

	_, err := env.m.StartConnection(ctx, ConnRequest{Mode: ModeSTA,
		VdevID: 1, Freq: 2412, OriginalNSS: 1})
	assert.NoError(err)

	rec, err := env.m.StartConnection(ctx, ConnRequest{Mode: ModeSAP,
		VdevID: 2, Freq: 2462, OriginalNSS: 1})
	assert.NoError(err)
	assert.Equal(uint32(2412), rec.Freq)

	_, err = env.m.StartConnection(ctx, ConnRequest{Mode: ModeP2PClient,
		VdevID: 3, Freq: 5180, OriginalNSS: 1})
	assert.Equal(NotPermitted, KindOf(err))

	_, err = env.m.GetPCL(ModeP2PGO)
	assert.NoError(err)
	assert.NoError(env.m.DeleteConnection(2))

	for _, msg := range []string{
		"connection updated",
		"force scc decision",
		"forcing sap onto existing channel",
		"new home channel rejected",
		"connection deleted",
	} {
		assert.NotZero(logs.FilterMessage(msg).Len(), msg)
	}
	assert.False(blocked.IsSet(), "logged with the table locked")
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package comms

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bgwlan/ap_common/policymgr"
	"bgwlan/base_msg"
	"bgwlan/common/wifi"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeProxy answers requests in-process, without a socket.
type fakeProxy struct {
	handler HandlerFunc
	err     error
	badID   bool

	sync.Mutex
	reqs []*base_msg.PolicyRequest
}

func (f *fakeProxy) ReqRepl(msg []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}

	reply := Responder(func(req *base_msg.PolicyRequest) (base_msg.PolicyStatus, string) {
		f.Lock()
		f.reqs = append(f.reqs, req)
		f.Unlock()
		if f.handler == nil {
			return base_msg.PolicyStatus_OK, ""
		}
		return f.handler(req)
	})(msg)

	if f.badID {
		resp := &base_msg.PolicyResponse{}
		if err := proto.Unmarshal(reply, resp); err != nil {
			return nil, err
		}
		resp.Id = proto.String("bogus")
		return proto.Marshal(resp)
	}
	return reply, nil
}

func (f *fakeProxy) requests() []*base_msg.PolicyRequest {
	f.Lock()
	defer f.Unlock()

	return append([]*base_msg.PolicyRequest(nil), f.reqs...)
}

func newTestDispatcher(t *testing.T, comm Requester, depth int) *Dispatcher {
	d := NewDispatcher(comm, "test", depth, zaptest.NewLogger(t).Sugar())
	d.Start()
	return d
}

func TestDispatchPCL(t *testing.T) {
	assert := require.New(t)

	proxy := &fakeProxy{}
	d := newTestDispatcher(t, proxy, 0)
	defer d.Close()

	err := d.SetPCL(context.Background(), &policymgr.PCLRequest{
		VdevID:    2,
		Mode:      policymgr.ModeSAP,
		Freqs:     []uint32{2412, 5180},
		Weights:   []uint8{255, 0},
		RoamBands: wifi.Band24G,
	})
	assert.NoError(err)

	reqs := proxy.requests()
	assert.Len(reqs, 1)
	assert.NotEmpty(reqs[0].GetId())
	assert.Equal("test", reqs[0].GetSender())
	assert.Nil(reqs[0].GetHwMode())

	pcl := reqs[0].GetPcl()
	assert.Equal(uint32(2), pcl.GetVdevId())
	assert.Equal("SAP", pcl.GetMode())
	assert.Equal([]uint32{2412, 5180}, pcl.GetFreqs())
	assert.Equal([]uint32{255, 0}, pcl.GetWeights())
	assert.Equal(uint32(wifi.Band24G), pcl.GetRoamBands())

	stats := d.Stats()
	assert.Equal(int32(1), stats.Queued)
	assert.Equal(int32(1), stats.Sent)
	assert.Equal(int32(0), stats.QueueLenCur)
}

func TestDispatchHwMode(t *testing.T) {
	assert := require.New(t)

	proxy := &fakeProxy{}
	d := newTestDispatcher(t, proxy, 0)
	defer d.Close()

	err := d.SetHwMode(context.Background(), &policymgr.HwModeRequest{
		HwModeID: 1,
		Action:   policymgr.RequestDowngradeDBS1,
		Reason:   policymgr.ReasonNSSDowngrade,
		NSS:      1,
		Vdevs:    []uint32{1, 3},
	})
	assert.NoError(err)

	hw := proxy.requests()[0].GetHwMode()
	assert.Equal(int32(1), hw.GetHwModeId())
	assert.Equal(base_msg.HwModeAction_DOWNGRADE_DBS1, hw.GetAction())
	assert.Equal("nss-downgrade", hw.GetReason())
	assert.Equal(uint32(1), hw.GetNss())
	assert.Equal([]uint32{1, 3}, hw.GetVdevs())

	err = d.SetHwMode(context.Background(), &policymgr.HwModeRequest{
		Action: policymgr.NextActionType(42),
	})
	assert.Equal(policymgr.InvalidArgument, policymgr.KindOf(err))
	assert.Len(proxy.requests(), 1)
}

func TestDispatchFailures(t *testing.T) {
	status := func(s base_msg.PolicyStatus) HandlerFunc {
		return func(*base_msg.PolicyRequest) (base_msg.PolicyStatus, string) {
			return s, "nope"
		}
	}

	testCases := []struct {
		name  string
		proxy *fakeProxy
		kind  policymgr.Kind
	}{
		{"busy", &fakeProxy{handler: status(base_msg.PolicyStatus_BUSY)},
			policymgr.OutOfMemory},
		{"invalid", &fakeProxy{handler: status(base_msg.PolicyStatus_INVALID)},
			policymgr.InvalidArgument},
		{"failed", &fakeProxy{handler: status(base_msg.PolicyStatus_FAILED)},
			policymgr.Unknown},
		{"mismatch", &fakeProxy{badID: true}, policymgr.Unknown},
		{"transport", &fakeProxy{err: fmt.Errorf("timed out")},
			policymgr.Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)

			d := newTestDispatcher(t, tc.proxy, 0)
			defer d.Close()

			err := d.SetPCL(context.Background(), &policymgr.PCLRequest{
				VdevID: policymgr.BroadcastVdev,
			})
			assert.Error(err)
			assert.Equal(tc.kind, policymgr.KindOf(err))
			assert.Equal(int32(1), d.Stats().Failed)
		})
	}
}

// blockingProxy holds each request until released.
type blockingProxy struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingProxy) ReqRepl(msg []byte) ([]byte, error) {
	b.entered <- struct{}{}
	<-b.release
	return Responder(func(*base_msg.PolicyRequest) (base_msg.PolicyStatus, string) {
		return base_msg.PolicyStatus_OK, ""
	})(msg), nil
}

func TestDispatchQueueFull(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	proxy := &blockingProxy{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	d := newTestDispatcher(t, proxy, 1)
	defer d.Close()

	results := make(chan error, 2)
	submit := func() {
		results <- d.SetPCL(ctx, &policymgr.PCLRequest{VdevID: 1})
	}

	// One request with the firmware, one waiting on the queue.
	go submit()
	<-proxy.entered
	go submit()
	assert.Eventually(func() bool {
		return d.Stats().QueueLenCur == 1
	}, time.Second, time.Millisecond)

	err := d.SetPCL(ctx, &policymgr.PCLRequest{VdevID: 1})
	assert.Equal(policymgr.OutOfMemory, policymgr.KindOf(err))

	close(proxy.release)
	assert.NoError(<-results)
	assert.NoError(<-results)
	assert.Equal(int32(1), d.Stats().QueueLenMax)
	assert.Equal(int32(1), d.Stats().Failed)
}

func TestDispatchContext(t *testing.T) {
	assert := require.New(t)

	proxy := &fakeProxy{}
	d := newTestDispatcher(t, proxy, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.SetPCL(ctx, &policymgr.PCLRequest{VdevID: 1})
	assert.Equal(context.Canceled, errors.Cause(err))

	d.Close()
	err = d.SetPCL(context.Background(), &policymgr.PCLRequest{VdevID: 1})
	assert.Equal(policymgr.InvalidContext, policymgr.KindOf(err))
}

// The dispatcher and a responder talking over a real socket.
func TestDispatchEndToEnd(t *testing.T) {
	assert := require.New(t)

	var mu sync.Mutex
	var got []*base_msg.PolicyRequest
	server := startServer(t, "inproc://comms-dispatch", Responder(
		func(req *base_msg.PolicyRequest) (base_msg.PolicyStatus, string) {
			mu.Lock()
			got = append(got, req)
			mu.Unlock()
			if req.GetHwMode().GetAction() == base_msg.HwModeAction_SBS {
				return base_msg.PolicyStatus_INVALID, "no sbs"
			}
			return base_msg.PolicyStatus_OK, ""
		}))
	defer server.Close()

	client, err := NewAPClient(server.URL(), zaptest.NewLogger(t).Sugar())
	assert.NoError(err)
	defer client.Close()

	d := newTestDispatcher(t, client, 4)
	defer d.Close()

	ctx := context.Background()
	assert.NoError(d.SetHwMode(ctx, &policymgr.HwModeRequest{
		HwModeID: 2,
		Action:   policymgr.RequestDBS,
	}))
	err = d.SetHwMode(ctx, &policymgr.HwModeRequest{
		HwModeID: 3,
		Action:   policymgr.RequestSBS,
	})
	assert.Equal(policymgr.InvalidArgument, policymgr.KindOf(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(got, 2)
	assert.NotEqual(got[0].GetId(), got[1].GetId())
}

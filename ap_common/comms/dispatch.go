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
	"sync"
	"time"

	"bgwlan/ap_common/policymgr"
	"bgwlan/base_msg"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/satori/uuid"
	"github.com/tevino/abool"
	"go.uber.org/zap"
)

// DefaultQueueDepth bounds the number of requests waiting for the firmware.
const DefaultQueueDepth = 32

// Requester sends one message and waits for the reply.  *APComm implements
// it.
type Requester interface {
	ReqRepl(msg []byte) ([]byte, error)
}

var actionToWire = map[policymgr.NextActionType]base_msg.HwModeAction{
	policymgr.NoChange:             base_msg.HwModeAction_NO_CHANGE,
	policymgr.RequestSingleMac:     base_msg.HwModeAction_SINGLE_MAC,
	policymgr.RequestDBS:           base_msg.HwModeAction_DBS,
	policymgr.RequestSBS:           base_msg.HwModeAction_SBS,
	policymgr.RequestDowngradeDBS1: base_msg.HwModeAction_DOWNGRADE_DBS1,
	policymgr.RequestDowngradeDBS2: base_msg.HwModeAction_DOWNGRADE_DBS2,
}

type pending struct {
	ctx    context.Context
	req    *base_msg.PolicyRequest
	queued time.Time
	result chan error
}

// Dispatcher is a policymgr.Dispatcher which serializes requests to the
// firmware proxy.  Callers block until their request has been acknowledged,
// but never wait for queue space: if the queue is full the request fails
// immediately.
type Dispatcher struct {
	comm   Requester
	sender string
	queue  chan *pending
	done   chan struct{}
	wg     sync.WaitGroup

	running *abool.AtomicBool
	stats   DispatchStats
	statsMu sync.Mutex

	slog *zap.SugaredLogger
	sync.Mutex
}

// NewDispatcher creates a dispatcher sending through comm.  The sender name is
// included in every request.
func NewDispatcher(comm Requester, sender string, depth int,
	slog *zap.SugaredLogger) *Dispatcher {

	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		comm:    comm,
		sender:  sender,
		queue:   make(chan *pending, depth),
		done:    make(chan struct{}),
		running: abool.New(),
		slog:    slog,
	}
}

// Start launches the worker.
func (d *Dispatcher) Start() {
	d.Lock()
	defer d.Unlock()

	if d.running.IsSet() {
		return
	}
	d.running.Set()
	d.wg.Add(1)
	go d.worker()
}

// Close stops the worker.  Requests still in the queue fail.
func (d *Dispatcher) Close() {
	d.Lock()
	if !d.running.IsSet() {
		d.Unlock()
		return
	}
	d.running.UnSet()
	close(d.done)
	d.Unlock()

	d.wg.Wait()
}

// SetPCL implements policymgr.Dispatcher.
func (d *Dispatcher) SetPCL(ctx context.Context, r *policymgr.PCLRequest) error {
	weights := make([]uint32, len(r.Weights))
	for i, w := range r.Weights {
		weights[i] = uint32(w)
	}

	return d.submit(ctx, &base_msg.PolicyRequest{
		Pcl: &base_msg.SetPCLRequest{
			VdevId:    proto.Uint32(r.VdevID),
			Mode:      proto.String(r.Mode.String()),
			Freqs:     r.Freqs,
			Weights:   weights,
			RoamBands: proto.Uint32(uint32(r.RoamBands)),
		},
	})
}

// SetHwMode implements policymgr.Dispatcher.
func (d *Dispatcher) SetHwMode(ctx context.Context, r *policymgr.HwModeRequest) error {
	action, ok := actionToWire[r.Action]
	if !ok {
		return policymgr.NewError(policymgr.InvalidArgument,
			"unknown hw mode action", "action", r.Action.String())
	}

	return d.submit(ctx, &base_msg.PolicyRequest{
		HwMode: &base_msg.SetHwModeRequest{
			HwModeId: proto.Int32(int32(r.HwModeID)),
			Action:   action.Enum(),
			Reason:   proto.String(r.Reason.String()),
			Nss:      proto.Uint32(uint32(r.NSS)),
			Vdevs:    r.Vdevs,
		},
	})
}

func (d *Dispatcher) submit(ctx context.Context, req *base_msg.PolicyRequest) error {
	req.Id = proto.String(uuid.NewV4().String())
	req.Sender = proto.String(d.sender)

	p := &pending{
		ctx:    ctx,
		req:    req,
		queued: time.Now(),
		result: make(chan error, 1),
	}

	d.Lock()
	if !d.running.IsSet() {
		d.Unlock()
		return policymgr.NewError(policymgr.InvalidContext,
			"dispatcher not running")
	}
	select {
	case d.queue <- p:
		d.observeQueued()
	default:
		d.Unlock()
		d.observeFailed()
		return policymgr.NewError(policymgr.OutOfMemory,
			"dispatch queue full", "depth", cap(d.queue))
	}
	d.Unlock()

	select {
	case err := <-p.result:
		return err
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for reply to %s",
			req.GetId())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			d.drain()
			return
		case p := <-d.queue:
			d.observeDequeued(p)
			if err := p.ctx.Err(); err != nil {
				p.result <- err
				continue
			}
			err := d.send(p.req)
			if err != nil {
				d.observeFailed()
			} else {
				d.observeSent(p)
			}
			p.result <- err
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case p := <-d.queue:
			d.observeDequeued(p)
			p.result <- policymgr.NewError(policymgr.InvalidContext,
				"dispatcher closed")
		default:
			return
		}
	}
}

func (d *Dispatcher) send(req *base_msg.PolicyRequest) error {
	data, err := proto.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}

	reply, err := d.comm.ReqRepl(data)
	if err != nil {
		d.slog.Warnw("firmware request failed", "id", req.GetId(),
			"err", err)
		return errors.Wrap(err, "firmware request")
	}

	resp := &base_msg.PolicyResponse{}
	if err = proto.Unmarshal(reply, resp); err != nil {
		return errors.Wrap(err, "unmarshaling response")
	}
	if resp.GetId() != req.GetId() {
		return policymgr.NewError(policymgr.Unknown, "mismatched reply",
			"want", req.GetId(), "got", resp.GetId())
	}

	switch resp.GetStatus() {
	case base_msg.PolicyStatus_OK:
		d.slog.Debugw("firmware accepted request", "id", req.GetId())
		return nil
	case base_msg.PolicyStatus_BUSY:
		return policymgr.NewError(policymgr.OutOfMemory, "firmware busy",
			"id", req.GetId())
	case base_msg.PolicyStatus_INVALID:
		return policymgr.NewError(policymgr.InvalidArgument,
			"firmware rejected request", "id", req.GetId(),
			"errmsg", resp.GetErrmsg())
	}
	return policymgr.NewError(policymgr.Unknown, "firmware request failed",
		"id", req.GetId(), "errmsg", resp.GetErrmsg())
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// Package comms carries policy requests between ap.policyd and the firmware
// proxy over a mangos req/rep socket pair.
package comms

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"nanomsg.org/go/mangos/v2"
	"nanomsg.org/go/mangos/v2/protocol/rep"
	"nanomsg.org/go/mangos/v2/protocol/req"

	// Transports
	_ "nanomsg.org/go/mangos/v2/transport/inproc"
	_ "nanomsg.org/go/mangos/v2/transport/ipc"
	_ "nanomsg.org/go/mangos/v2/transport/tcp"
)

// ErrClosed is returned when using an endpoint after Close.
var ErrClosed = errors.New("endpoint closed")

// APComm is an opaque handle representing either a client or server
// communications endpoint
type APComm struct {
	url    string
	client bool
	isOpen bool
	active bool
	socket mangos.Socket

	sendTimeout time.Duration
	recvTimeout time.Duration
	openTimeout time.Duration

	slog *zap.SugaredLogger
	sync.Mutex
}

func newAPComm(url string, client bool, slog *zap.SugaredLogger) (*APComm, error) {
	var err error
	var sock mangos.Socket

	if slog == nil {
		slog = zap.NewNop().Sugar()
	}

	c := &APComm{
		url:         url,
		client:      client,
		active:      true,
		sendTimeout: 2 * time.Second,
		recvTimeout: 5 * time.Second,
		openTimeout: time.Second,
		slog:        slog,
	}

	if client {
		sock, err = req.NewSocket()
	} else {
		sock, err = rep.NewSocket()
	}
	if err != nil {
		return nil, errors.Wrap(err, "creating socket")
	}

	_ = sock.SetOption(mangos.OptionWriteQLen, 0)
	c.socket = sock
	if err := c.open(); err != nil {
		sock.Close()
		return nil, err
	}

	return c, nil
}

// NewAPClient will connect to a server, and will return a handle used for
// subsequent interactions with that server.
func NewAPClient(url string, slog *zap.SugaredLogger) (*APComm, error) {
	return newAPComm(url, true, slog)
}

// NewAPServer will open a server port, and will return a handle used for
// subsequent interactions with that server.
func NewAPServer(url string, slog *zap.SugaredLogger) (*APComm, error) {
	return newAPComm(url, false, slog)
}

// SetRecvTimeout limits the amount of time we will block waiting for a reply
func (c *APComm) SetRecvTimeout(d time.Duration) {
	c.Lock()
	c.recvTimeout = d
	c.Unlock()
}

// SetSendTimeout limits the amount of time we will block waiting for a send
// to complete
func (c *APComm) SetSendTimeout(d time.Duration) {
	c.Lock()
	c.sendTimeout = d
	c.Unlock()
}

// URL returns the address the endpoint dials or listens on.
func (c *APComm) URL() string {
	return c.url
}

// Make a single attempt at either opening the server port or connecting to
// the server.
func (c *APComm) tryOpen() error {
	var err error

	if c.isOpen {
		return nil
	}

	if c.client {
		if err = c.socket.Dial(c.url); err != nil {
			err = errors.Wrapf(err, "dialing socket %s", c.url)
		}
	} else {
		if err = c.socket.Listen(c.url); err != nil {
			err = errors.Wrapf(err, "listening on socket %s", c.url)
		}
	}
	c.isOpen = (err == nil)
	return err
}

// Try to open either the client or server port.  Continue trying until it
// succeeds or the openTimeout deadline expires.
func (c *APComm) open() error {
	var err error

	deadline := time.Now().Add(c.openTimeout)
	backoff := time.Millisecond

	for c.active {
		if err = c.tryOpen(); err == nil {
			break
		}

		if c.openTimeout != 0 && time.Now().After(deadline) {
			err = errors.Wrap(err, "open timed out")
			break
		}

		time.Sleep(backoff)
		if backoff *= 2; backoff > 100*time.Millisecond {
			backoff = 100 * time.Millisecond
		}
	}

	if err != nil {
		c.slog.Debugw("open failed", "url", c.url, "err", err)
	}
	return err
}

// ReqRepl is used by a client to send a message to a server.  After sending
// the message, the call will block until the server sends a reply, which is
// returned as the result of this call.
func (c *APComm) ReqRepl(msg []byte) ([]byte, error) {
	c.Lock()
	defer c.Unlock()

	if !c.client {
		return nil, errors.New("servers can't send requests")
	}
	if !c.active {
		return nil, ErrClosed
	}

	err := c.socket.SetOption(mangos.OptionSendDeadline, c.sendTimeout)
	if err != nil {
		c.slog.Warnw("setting send deadline", "err", err)
	}
	if err = c.socket.Send(msg); err != nil {
		return nil, errors.Wrap(err, "sending")
	}

	err = c.socket.SetOption(mangos.OptionRecvDeadline, c.recvTimeout)
	if err != nil {
		c.slog.Warnw("setting recv deadline", "err", err)
	}
	reply, err := c.socket.Recv()
	if err != nil {
		return nil, errors.Wrap(err, "receiving reply")
	}

	c.slog.Debugw("request complete", "sent", len(msg), "rcvd", len(reply))
	return reply, nil
}

// Serve is used by a server to handle incoming messages from clients.  The
// caller provides a callback which will be invoked for each message received.
// Serve returns after the endpoint is closed.
func (c *APComm) Serve(cb func([]byte) []byte) error {
	if c.client {
		return errors.New("called Serve() on a client endpoint")
	}

	for {
		msg, err := c.socket.Recv()

		c.Lock()
		active := c.active
		c.Unlock()
		if !active || err == mangos.ErrClosed {
			return nil
		}
		if err != nil {
			c.slog.Warnw("receive failed", "url", c.url, "err", err)
			continue
		}
		if len(msg) == 0 {
			continue
		}

		if err = c.socket.Send(cb(msg)); err != nil {
			c.slog.Warnw("reply failed", "url", c.url, "err", err)
		}
	}
}

// Close closes the endpoint
func (c *APComm) Close() {
	c.Lock()
	defer c.Unlock()

	c.active = false
	if c.socket != nil {
		c.socket.Close()
	}
	c.isOpen = false
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package main

import (
	"sort"
	"sync"

	"github.com/tevino/abool"
)

// roamTracker records which station vdevs have finished roaming setup, as
// reported by the connection manager.
type roamTracker struct {
	vdevs map[uint32]bool
	sync.Mutex
}

func newRoamTracker() *roamTracker {
	return &roamTracker{vdevs: make(map[uint32]bool)}
}

func (r *roamTracker) RoamInitialized(vdev uint32) bool {
	r.Lock()
	defer r.Unlock()

	return r.vdevs[vdev]
}

func (r *roamTracker) set(vdev uint32, ready bool) {
	r.Lock()
	defer r.Unlock()

	if ready {
		r.vdevs[vdev] = true
	} else {
		delete(r.vdevs, vdev)
	}
}

func (r *roamTracker) list() []uint32 {
	r.Lock()
	defer r.Unlock()

	l := make([]uint32, 0, len(r.vdevs))
	for v := range r.vdevs {
		l = append(l, v)
	}
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	return l
}

// cacState tracks whether a SAP is in its channel availability check.
type cacState struct {
	active *abool.AtomicBool
}

func newCACState() *cacState {
	return &cacState{active: abool.New()}
}

func (c *cacState) SAPCACInProgress() bool {
	return c.active.IsSet()
}

func (c *cacState) set(active bool) {
	if active {
		c.active.Set()
	} else {
		c.active.UnSet()
	}
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package comms

import (
	"fmt"
	"time"
)

// DispatchStats summarizes the traffic handled by a Dispatcher.
type DispatchStats struct {
	Queued int32 // requests accepted onto the queue
	Sent   int32 // requests acknowledged by the firmware
	Failed int32 // requests rejected, refused or lost

	QueueLenCur int32 // current length of the pending request queue
	QueueLenMax int32 // maximum length of the queue

	QueueTime TimeStat // Time spent on the queue
	ReplyTime TimeStat // Time from dequeue to acknowledgement
}

// TimeStat is used to track a single timing statistic
type TimeStat struct {
	Cnt   int32
	Total time.Duration
	Max   time.Duration
	Avg   time.Duration
}

func (s *TimeStat) addObservation(obs time.Duration) {
	s.Cnt++
	s.Total += obs
	if obs > s.Max {
		s.Max = obs
	}
	s.Avg = s.Total / time.Duration(s.Cnt)
}

// Return a string with the average and maximum durations for this stat
func (s *TimeStat) String() string {
	return fmt.Sprintf("(avg: %s  max: %s)", s.Avg, s.Max)
}

// Stats fetches a current copy of the dispatcher's statistics
func (d *Dispatcher) Stats() DispatchStats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	return d.stats
}

// String returns a summary of the dispatcher's accumulated statistics
func (d *Dispatcher) String() string {
	s := d.Stats()
	return fmt.Sprintf("queued: %d  sent: %d  failed: %d  queueTime: %s  replyTime: %s",
		s.Queued, s.Sent, s.Failed, s.QueueTime.String(),
		s.ReplyTime.String())
}

func (d *Dispatcher) observeQueued() {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	s := &d.stats
	s.Queued++
	s.QueueLenCur++
	if s.QueueLenCur > s.QueueLenMax {
		s.QueueLenMax = s.QueueLenCur
	}
}

func (d *Dispatcher) observeDequeued(p *pending) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	d.stats.QueueLenCur--
	d.stats.QueueTime.addObservation(time.Since(p.queued))
	p.queued = time.Now()
}

func (d *Dispatcher) observeSent(p *pending) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	d.stats.Sent++
	d.stats.ReplyTime.addObservation(time.Since(p.queued))
}

func (d *Dispatcher) observeFailed() {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	d.stats.Failed++
}

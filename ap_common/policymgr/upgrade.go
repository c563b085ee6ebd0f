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
	"sync"
	"time"

	"github.com/tevino/abool"
)

// upgradeTask periodically reconsiders the hardware mode after a connection
// goes away.  It is armed by DeleteConnection and runs at most once per
// arming, unless it has to wait for a SAP to finish its CAC.
type upgradeTask struct {
	m       *Manager
	delay   time.Duration
	running *abool.AtomicBool
	kick    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	sync.Mutex
}

func newUpgradeTask(m *Manager, delay time.Duration) *upgradeTask {
	return &upgradeTask{
		m:       m,
		delay:   delay,
		running: abool.New(),
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (u *upgradeTask) start() {
	u.Lock()
	defer u.Unlock()

	if u.running.IsSet() {
		return
	}
	u.running.Set()
	u.wg.Add(1)
	go u.loop()
}

func (u *upgradeTask) stop() {
	u.Lock()
	defer u.Unlock()

	if !u.running.IsSet() {
		return
	}
	u.running.UnSet()
	close(u.done)
	u.wg.Wait()
}

// arm (re)schedules a tick.  It never blocks; a pending kick is enough.
func (u *upgradeTask) arm() {
	if !u.running.IsSet() {
		return
	}
	select {
	case u.kick <- struct{}{}:
	default:
	}
}

func (u *upgradeTask) loop() {
	defer u.wg.Done()

	timer := time.NewTimer(u.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-u.done:
			return

		case <-u.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(u.delay)

		case <-timer.C:
			if !u.running.IsSet() {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(),
				u.delay)
			again, err := u.m.OpportunisticUpgrade(ctx)
			cancel()
			if err != nil {
				u.m.slog.Warnw("opportunistic upgrade failed",
					"err", err)
			}
			if again {
				timer.Reset(u.delay)
			}
		}
	}
}

// OpportunisticUpgrade runs one evaluation of the upgrade task: unless a SAP
// is in the middle of its CAC, it works out the preferred hardware mode and
// requests it.  The returned flag is true if the evaluation was deferred and
// should be retried later.
func (m *Manager) OpportunisticUpgrade(ctx context.Context) (bool, error) {
	if err := m.checkReady(); err != nil {
		return false, err
	}

	if m.cac != nil && m.cac.SAPCACInProgress() {
		upgradeDeferrals.Inc()
		m.slog.Debugw("sap cac in progress; deferring hw mode upgrade")
		return true, nil
	}

	next := m.NextPreferredHwMode(ReasonOpportunistic)
	if next.Action == NoChange {
		return false, nil
	}
	return false, m.RequestHwMode(ctx, next)
}

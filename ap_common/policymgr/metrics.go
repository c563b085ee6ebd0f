/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	pclBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policymgr_pcl_builds",
			Help: "Number of preferred channel lists built, by type.",
		},
		[]string{"type"})
	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policymgr_admissions",
			Help: "Home channel admission decisions, by result.",
		},
		[]string{"result"})
	forcedSCC = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "policymgr_forced_scc",
			Help: "Number of SAPs moved onto an existing channel.",
		})
	hwModeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policymgr_hw_mode_requests",
			Help: "Hardware mode transitions requested, by action.",
		},
		[]string{"action"})
	dispatchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policymgr_dispatch_failures",
			Help: "Firmware requests which failed, by request.",
		},
		[]string{"request"})
	upgradeDeferrals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "policymgr_upgrade_deferrals",
			Help: "Hardware mode upgrades deferred for SAP CAC.",
		})
	connections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "policymgr_connections",
			Help: "Active connections, by mode.",
		},
		[]string{"mode"})
)

// RegisterMetrics adds the engine's metrics to a prometheus registry.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{pclBuilds, admissions,
		forcedSCC, hwModeRequests, dispatchFailures, upgradeDeferrals,
		connections} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

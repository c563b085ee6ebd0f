/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package main

import (
	"bytes"
	"testing"

	"bgwlan/ap_common/pmcfg"
	"bgwlan/ap_common/policymgr"
	"bgwlan/ap_common/regdb"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const dbsScenario = `
policy:
  system_pref: throughput
hw_modes:
  - id: 0
    mac0_tx_ss: 2
    mac0_rx_ss: 2
    mac0_bw: 160
  - id: 1
    mac0_tx_ss: 2
    mac0_rx_ss: 2
    mac0_bw: 80
    mac1_tx_ss: 1
    mac1_rx_ss: 1
    mac1_bw: 40
    mac0_band: 5G
    dbs: true
disabled_channels: [5200]
connections:
  - mode: STA
    freq: 2412
    bw: 20
    mac: 1
    nss: 2
`

const emptyScenario = `
hw_modes:
  - id: 0
    mac0_tx_ss: 2
    mac0_rx_ss: 2
    mac0_bw: 80
`

func setupFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/dbs.yaml":   dbsScenario,
		"/empty.yaml": emptyScenario,
		"/typo.yaml":  "hw_mode: []\n",
		"/nohw.yaml":  "connections: []\n",
	}
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0644))
	}
	appFs = fs
}

func runCmd(t *testing.T, args ...string) (string, error) {
	var buf bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOutput(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseScenario(t *testing.T) {
	assert := require.New(t)

	s, err := parseScenario([]byte(dbsScenario))
	assert.NoError(err)
	assert.Equal(pmcfg.DefaultCountry, s.Policy.Country)
	assert.Equal("throughput", s.Policy.SystemPref)
	assert.Len(s.HwModes, 2)
	assert.Equal([]uint32{5200}, s.Disabled)
	assert.Len(s.Conns, 1)
	assert.Equal(policymgr.ModeSTA, s.Conns[0].Mode)

	e, err := s.build(zaptest.NewLogger(t).Sugar())
	assert.NoError(err)
	assert.Equal(1, e.mgr.GetConnectionCount())
	assert.Equal(regdb.StateDisabled, e.reg.ChannelState(5200))

	conns := e.mgr.Table().Conns()
	assert.Equal(uint32(1), conns[0].VdevID)

	_, err = parseScenario([]byte("hw_mode: []\n"))
	assert.Error(err)

	s, err = parseScenario([]byte("firmware_words: [1]\nhw_modes: [{id: 0}]\n"))
	assert.NoError(err)
	_, err = s.build(nil)
	assert.Error(err)
}

func TestCommands(t *testing.T) {
	setupFs(t)

	testCases := []struct {
		name   string
		args   []string
		expect []string
	}{
		{"dump", []string{"dump", "-s", "/dbs.yaml"},
			[]string{"STA(2412)", "Vdev", "2.4GHz"}},
		{"pcl", []string{"pcl", "-s", "/dbs.yaml", "sap"},
			[]string{"PCL type:", "Weight"}},
		{"vdev pcl", []string{"pcl", "vdev", "-s", "/dbs.yaml", "1"},
			[]string{"PCL type:"}},
		{"admit", []string{"admit", "-s", "/dbs.yaml", "sap", "2462"},
			[]string{"SAP on 2462", "forced to SCC on 2412"}},
		{"hwmode", []string{"hwmode", "-s", "/dbs.yaml"},
			[]string{"0*", "DBS", "SMM", "next:"}},
		{"start", []string{"start", "-s", "/empty.yaml", "sta", "5180",
			"--bw", "80"},
			[]string{"started", "STA(5180)"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)

			out, err := runCmd(t, tc.args...)
			assert.NoError(err, out)
			for _, e := range tc.expect {
				assert.Contains(out, e)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	setupFs(t)

	testCases := []struct {
		name string
		args []string
	}{
		{"no scenario", []string{"dump"}},
		{"missing file", []string{"dump", "-s", "/missing.yaml"}},
		{"bad key", []string{"dump", "-s", "/typo.yaml"}},
		{"no modes", []string{"dump", "-s", "/nohw.yaml"}},
		{"bad mode", []string{"pcl", "-s", "/dbs.yaml", "wds"}},
		{"unknown vdev", []string{"pcl", "vdev", "-s", "/dbs.yaml", "9"}},
		{"bad freq", []string{"admit", "-s", "/dbs.yaml", "sap", "x"}},
		{"bad width", []string{"start", "-s", "/empty.yaml", "sta",
			"--bw", "7"}},
		{"arg count", []string{"admit", "-s", "/dbs.yaml", "sap"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCmd(t, tc.args...)
			require.Error(t, err)
		})
	}
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bgwlan/ap_common/comms"
	"bgwlan/ap_common/pmcfg"
	"bgwlan/ap_common/policymgr"
	"bgwlan/ap_common/regdb"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testModes = `
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
`

func newTestDaemon(t *testing.T, url string) (*daemon, http.Handler) {
	assert := require.New(t)

	slog = zaptest.NewLogger(t).Sugar()
	fs := afero.NewMemMapFs()
	assert.NoError(afero.WriteFile(fs, "/etc/modes.yaml", []byte(testModes),
		0644))

	cfg := pmcfg.Default()
	cfg.HwModeFile = "/etc/modes.yaml"
	cfg.FirmwareURL = url

	saved := *fakeFW
	*fakeFW = true
	defer func() { *fakeFW = saved }()

	d, err := newDaemon(fs, cfg)
	assert.NoError(err)
	d.start()
	go d.fwSrv.Serve(comms.Responder(fakeFirmware))

	return d, newRouter(d)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestConnections(t *testing.T) {
	assert := require.New(t)
	d, h := newTestDaemon(t, "inproc://policyd-conns")
	defer d.close()

	rr := do(t, h, "GET", "/connections", "")
	assert.Equal(http.StatusOK, rr.Code)
	assert.JSONEq("[]", rr.Body.String())

	rr = do(t, h, "POST", "/connections",
		`{"mode": "STA", "vdev": 1, "freq": 2412, "bw": "20MHz", "mac": 0, "chain_mask": 3, "nss": 2}`)
	assert.Equal(http.StatusOK, rr.Code, rr.Body.String())

	var info policymgr.ConnInfo
	assert.NoError(json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(policymgr.ModeSTA, info.Mode)
	assert.Equal(uint32(2412), info.Freq)
	assert.Equal(1, d.mgr.GetConnectionCount())

	rr = do(t, h, "GET", "/concurrency", "")
	assert.Equal(http.StatusOK, rr.Code)
	assert.Contains(rr.Body.String(), "STA(2412)")

	rr = do(t, h, "POST", "/connections", `{"mode": "STA", "vdev": 2,`)
	assert.Equal(http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/connections", `{"mode": "WDS", "vdev": 2}`)
	assert.Equal(http.StatusBadRequest, rr.Code)

	rr = do(t, h, "DELETE", "/connections/1", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	assert.Equal(0, d.mgr.GetConnectionCount())

	rr = do(t, h, "DELETE", "/connections/1", "")
	assert.Equal(http.StatusNotFound, rr.Code)
}

func TestPCLRoutes(t *testing.T) {
	assert := require.New(t)
	d, h := newTestDaemon(t, "inproc://policyd-pcl")
	defer d.close()

	assert.NoError(d.mgr.UpdateConcList(policymgr.ConnInfo{
		Mode:        policymgr.ModeSTA,
		Freq:        5180,
		VdevID:      3,
		OriginalNSS: 2,
	}))

	rr := do(t, h, "GET", "/pcl/sap", "")
	assert.Equal(http.StatusOK, rr.Code)

	var pcl pclResponse
	assert.NoError(json.Unmarshal(rr.Body.Bytes(), &pcl))
	assert.NotEmpty(pcl.Type)
	assert.Equal(len(pcl.Freqs), len(pcl.Weights))

	rr = do(t, h, "GET", "/pcl/bogus", "")
	assert.Equal(http.StatusBadRequest, rr.Code)

	rr = do(t, h, "GET", "/vdevs/3/pcl", "")
	assert.Equal(http.StatusOK, rr.Code)
	rr = do(t, h, "GET", "/vdevs/9/pcl", "")
	assert.Equal(http.StatusNotFound, rr.Code)

	// Until roaming is set up, the vdev can't take a list.
	rr = do(t, h, "POST", "/vdevs/3/pcl", "")
	assert.Equal(http.StatusServiceUnavailable, rr.Code)

	rr = do(t, h, "PUT", "/vdevs/3/roam", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	assert.Equal([]uint32{3}, d.roam.list())

	rr = do(t, h, "POST", "/vdevs/3/pcl", "")
	assert.Equal(http.StatusOK, rr.Code, rr.Body.String())

	stats := d.disp.Stats()
	assert.True(stats.Sent >= 1)
	rr = do(t, h, "GET", "/dispatch", "")
	assert.Equal(http.StatusOK, rr.Code)
	assert.Contains(rr.Body.String(), "QueueLenMax")

	rr = do(t, h, "DELETE", "/vdevs/3/roam", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	assert.Empty(d.roam.list())
}

func TestAdmissionRoute(t *testing.T) {
	assert := require.New(t)
	d, h := newTestDaemon(t, "inproc://policyd-admit")
	defer d.close()

	assert.NoError(d.mgr.UpdateConcList(policymgr.ConnInfo{
		Mode:        policymgr.ModeSTA,
		Freq:        2412,
		VdevID:      1,
		OriginalNSS: 2,
	}))

	var resp admissionResponse
	rr := do(t, h, "GET", "/admission?mode=sap&freq=2462", "")
	assert.Equal(http.StatusOK, rr.Code)
	assert.NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(uint32(2412), resp.SCCFreq)

	rr = do(t, h, "GET", "/admission?mode=sap", "")
	assert.Equal(http.StatusBadRequest, rr.Code)
	rr = do(t, h, "GET", "/admission?freq=2412", "")
	assert.Equal(http.StatusBadRequest, rr.Code)
}

func TestStateRoutes(t *testing.T) {
	assert := require.New(t)
	d, h := newTestDaemon(t, "inproc://policyd-state")
	defer d.close()

	rr := do(t, h, "PUT", "/hwmode/7", "")
	assert.Equal(http.StatusNotFound, rr.Code)
	rr = do(t, h, "PUT", "/hwmode/1", "")
	assert.Equal(http.StatusNoContent, rr.Code)

	var hw hwModeResponse
	rr = do(t, h, "GET", "/hwmode", "")
	assert.Equal(http.StatusOK, rr.Code)
	assert.NoError(json.Unmarshal(rr.Body.Bytes(), &hw))
	assert.Equal(1, hw.Current)
	assert.NotEmpty(hw.Next)

	rr = do(t, h, "PUT", "/cac/on", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	assert.True(d.cac.SAPCACInProgress())
	rr = do(t, h, "PUT", "/cac/off", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	assert.False(d.cac.SAPCACInProgress())
	rr = do(t, h, "PUT", "/cac/maybe", "")
	assert.Equal(http.StatusNotFound, rr.Code)

	rr = do(t, h, "PUT", "/channels/5180/disabled", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	assert.Equal(regdb.StateDisabled, d.reg.ChannelState(5180))
	rr = do(t, h, "PUT", "/channels/5180/bogus", "")
	assert.Equal(http.StatusBadRequest, rr.Code)

	rr = do(t, h, "PUT", "/loglevel/debug", "")
	assert.Equal(http.StatusNoContent, rr.Code)
	rr = do(t, h, "PUT", "/loglevel/loud", "")
	assert.Equal(http.StatusBadRequest, rr.Code)
	do(t, h, "PUT", "/loglevel/info", "")

	rr = do(t, h, "GET", "/metrics", "")
	assert.Equal(http.StatusOK, rr.Code)
}

func TestAPIError(t *testing.T) {
	testCases := []struct {
		kind policymgr.Kind
		code int
	}{
		{policymgr.InvalidArgument, http.StatusBadRequest},
		{policymgr.NotFound, http.StatusNotFound},
		{policymgr.NotPermitted, http.StatusForbidden},
		{policymgr.CapacityExceeded, http.StatusConflict},
		{policymgr.InvalidContext, http.StatusServiceUnavailable},
		{policymgr.OutOfMemory, http.StatusServiceUnavailable},
		{policymgr.Unknown, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			apiError(rr, policymgr.NewError(tc.kind, "oops"))
			require.Equal(t, tc.code, rr.Code)
		})
	}
}

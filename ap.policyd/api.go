/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bgwlan/ap_common/aputil"
	"bgwlan/ap_common/policymgr"
	"bgwlan/ap_common/regdb"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiTimeout = 5 * time.Second

type pclResponse struct {
	Type    string   `json:"type"`
	Freqs   []uint32 `json:"freqs"`
	Weights []int    `json:"weights"`
}

type hwModeResponse struct {
	Current int    `json:"current"`
	Action  string `json:"action"`
	Next    string `json:"next"`
}

type admissionResponse struct {
	Allowed bool   `json:"allowed"`
	SCCFreq uint32 `json:"scc_freq,omitempty"`
}

func newPCLResponse(res policymgr.PCLResult) pclResponse {
	r := pclResponse{
		Type:    res.Type.String(),
		Freqs:   res.Freqs,
		Weights: make([]int, len(res.Weights)),
	}
	for i, w := range res.Weights {
		r.Weights[i] = int(w)
	}
	if r.Freqs == nil {
		r.Freqs = []uint32{}
	}
	return r
}

var kindToStatus = map[policymgr.Kind]int{
	policymgr.InvalidArgument:  http.StatusBadRequest,
	policymgr.NotFound:         http.StatusNotFound,
	policymgr.NotPermitted:     http.StatusForbidden,
	policymgr.CapacityExceeded: http.StatusConflict,
	policymgr.InvalidContext:   http.StatusServiceUnavailable,
	policymgr.OutOfMemory:      http.StatusServiceUnavailable,
}

func apiError(w http.ResponseWriter, err error) {
	code, ok := kindToStatus[policymgr.KindOf(err)]
	if !ok {
		code = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warnw("encoding response", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

func vdevVar(r *http.Request) (uint32, error) {
	v, err := strconv.ParseUint(mux.Vars(r)["vdev"], 10, 32)
	if err != nil {
		return 0, policymgr.NewError(policymgr.InvalidArgument,
			"bad vdev", "vdev", mux.Vars(r)["vdev"])
	}
	return uint32(v), nil
}

func (d *daemon) getConcurrency(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, d.mgr.DumpCurrentConcurrency())
}

func (d *daemon) getConnections(w http.ResponseWriter, r *http.Request) {
	conns := d.mgr.Table().Conns()
	if conns == nil {
		conns = []policymgr.ConnInfo{}
	}
	writeJSON(w, conns)
}

func (d *daemon) postConnection(w http.ResponseWriter, r *http.Request) {
	var req policymgr.ConnRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad connection request: "+err.Error(),
			http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), apiTimeout)
	defer cancel()

	info, err := d.mgr.StartConnection(ctx, req)
	if err != nil {
		slog.Infow("connection refused", "vdev", req.VdevID,
			"mode", req.Mode, "freq", req.Freq, "err", err)
		apiError(w, err)
		return
	}
	writeJSON(w, info)
}

func (d *daemon) deleteConnection(w http.ResponseWriter, r *http.Request) {
	vdev, err := vdevVar(r)
	if err == nil {
		err = d.mgr.DeleteConnection(vdev)
	}
	if err != nil {
		apiError(w, err)
		return
	}
	d.roam.set(vdev, false)
	w.WriteHeader(http.StatusNoContent)
}

func (d *daemon) getPCL(w http.ResponseWriter, r *http.Request) {
	mode, err := policymgr.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := d.mgr.GetPCL(mode)
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, newPCLResponse(res))
}

func (d *daemon) getVdevPCL(w http.ResponseWriter, r *http.Request) {
	vdev, err := vdevVar(r)
	if err != nil {
		apiError(w, err)
		return
	}

	res, err := d.mgr.GetPCLForVdev(vdev)
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, newPCLResponse(res))
}

// Compute the list for a vdev and push it to the firmware.
func (d *daemon) sendVdevPCL(w http.ResponseWriter, r *http.Request) {
	vdev, err := vdevVar(r)
	if err != nil {
		apiError(w, err)
		return
	}

	res, err := d.mgr.GetPCLForVdev(vdev)
	if err != nil {
		apiError(w, err)
		return
	}

	var conn policymgr.ConnInfo
	d.mgr.Table().View(func(v *policymgr.TableView) {
		conn, _ = v.FindByVdev(vdev)
	})

	ctx, cancel := context.WithTimeout(r.Context(), apiTimeout)
	defer cancel()

	err = d.mgr.SetPCL(ctx, conn.Mode, vdev, res.Freqs, res.Weights)
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, newPCLResponse(res))
}

func (d *daemon) putRoam(w http.ResponseWriter, r *http.Request) {
	vdev, err := vdevVar(r)
	if err != nil {
		apiError(w, err)
		return
	}
	d.roam.set(vdev, r.Method == "PUT")
	w.WriteHeader(http.StatusNoContent)
}

// GET /admission?mode=SAP&freq=5180[&dfs=true]
func (d *daemon) getAdmission(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := policymgr.ParseMode(q.Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	freq, err := strconv.ParseUint(q.Get("freq"), 10, 32)
	if err != nil {
		http.Error(w, "bad freq", http.StatusBadRequest)
		return
	}
	dfs, _ := strconv.ParseBool(q.Get("dfs"))

	resp := admissionResponse{
		Allowed: d.mgr.AllowNewHomeChannel(mode, uint32(freq), -1, dfs),
	}
	if mode == policymgr.ModeSAP {
		if scc, ok := d.mgr.CheckForceSCC(uint32(freq)); ok {
			resp.SCCFreq = scc
		}
	}
	writeJSON(w, resp)
}

func (d *daemon) getHwMode(w http.ResponseWriter, r *http.Request) {
	cur := d.mgr.CurrentHwMode()
	next := d.mgr.NextPreferredHwMode(policymgr.ReasonOpportunistic)

	writeJSON(w, hwModeResponse{
		Current: cur.ID,
		Action:  cur.Action.String(),
		Next:    next.String(),
	})
}

// The firmware reports a completed hardware mode change.
func (d *daemon) putHwMode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err == nil {
		err = d.mgr.SetCurrentHwMode(id)
	}
	if err != nil {
		apiError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d *daemon) putCAC(w http.ResponseWriter, r *http.Request) {
	d.cac.set(mux.Vars(r)["state"] == "on")
	w.WriteHeader(http.StatusNoContent)
}

func (d *daemon) putChannelState(w http.ResponseWriter, r *http.Request) {
	freq, err := strconv.ParseUint(mux.Vars(r)["freq"], 10, 32)
	if err != nil {
		http.Error(w, "bad freq", http.StatusBadRequest)
		return
	}

	name := mux.Vars(r)["state"]
	for _, s := range []regdb.ChannelState{regdb.StateDisabled,
		regdb.StateEnabled, regdb.StateDFS} {
		if s.String() == name {
			d.reg.SetChannelState(uint32(freq), s)
			slog.Infow("channel state changed", "freq", freq,
				"state", name)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "bad channel state: "+name, http.StatusBadRequest)
}

func (d *daemon) getDispatchStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.disp.Stats())
}

func (d *daemon) putLogLevel(w http.ResponseWriter, r *http.Request) {
	level := mux.Vars(r)["level"]
	if err := aputil.LogSetLevel("", level); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Infof("log level set to %s", level)
	w.WriteHeader(http.StatusNoContent)
}

func newRouter(d *daemon) *mux.Router {
	router := mux.NewRouter()

	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/concurrency", d.getConcurrency).Methods("GET")
	router.HandleFunc("/connections", d.getConnections).Methods("GET")
	router.HandleFunc("/connections", d.postConnection).Methods("POST")
	router.HandleFunc("/connections/{vdev:[0-9]+}",
		d.deleteConnection).Methods("DELETE")
	router.HandleFunc("/pcl/{mode}", d.getPCL).Methods("GET")
	router.HandleFunc("/vdevs/{vdev:[0-9]+}/pcl", d.getVdevPCL).Methods("GET")
	router.HandleFunc("/vdevs/{vdev:[0-9]+}/pcl", d.sendVdevPCL).Methods("POST")
	router.HandleFunc("/vdevs/{vdev:[0-9]+}/roam",
		d.putRoam).Methods("PUT", "DELETE")
	router.HandleFunc("/admission", d.getAdmission).Methods("GET")
	router.HandleFunc("/hwmode", d.getHwMode).Methods("GET")
	router.HandleFunc("/hwmode/{id:[0-9]+}", d.putHwMode).Methods("PUT")
	router.HandleFunc("/cac/{state:on|off}", d.putCAC).Methods("PUT")
	router.HandleFunc("/channels/{freq:[0-9]+}/{state}",
		d.putChannelState).Methods("PUT")
	router.HandleFunc("/dispatch", d.getDispatchStats).Methods("GET")
	router.HandleFunc("/loglevel/{level}", d.putLogLevel).Methods("PUT")

	return router
}

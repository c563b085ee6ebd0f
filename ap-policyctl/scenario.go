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
	"sync"

	"bgwlan/ap_common/hwmode"
	"bgwlan/ap_common/pmcfg"
	"bgwlan/ap_common/policymgr"
	"bgwlan/ap_common/regdb"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// A scenario describes a radio and the connections already up on it.  The
// policy section takes the same keys as the ap.policyd configuration file.
type scenario struct {
	Policy        pmcfg.Config         `yaml:"policy"`
	HwModes       []hwmode.Descriptor  `yaml:"hw_modes"`
	FirmwareWords []uint32             `yaml:"firmware_words"`
	Disabled      []uint32             `yaml:"disabled_channels"`
	DFS           []uint32             `yaml:"dfs_channels"`
	Conns         []policymgr.ConnInfo `yaml:"connections"`
	CAC           bool                 `yaml:"cac_in_progress"`
	Roaming       []uint32             `yaml:"roam_ready"`
}

func parseScenario(data []byte) (*scenario, error) {
	s := &scenario{Policy: *pmcfg.Default()}

	if err := yaml.UnmarshalStrict(data, s); err != nil {
		return nil, errors.Wrap(err, "parsing scenario")
	}
	return s, nil
}

func loadScenario(fs afero.Fs, path string) (*scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return parseScenario(data)
}

func (s *scenario) hwTable() (*hwmode.Table, error) {
	switch {
	case len(s.HwModes) > 0 && len(s.FirmwareWords) > 0:
		return nil, errors.New("hw_modes and firmware_words are exclusive")
	case len(s.FirmwareWords) > 0:
		return hwmode.FromFirmware(s.FirmwareWords)
	case len(s.HwModes) > 0:
		return hwmode.NewTable(s.HwModes)
	}
	return nil, errors.New("scenario has no hardware modes")
}

// recorder stands in for the firmware, accepting and remembering everything
// sent to it.
type recorder struct {
	pcls    []policymgr.PCLRequest
	hwModes []policymgr.HwModeRequest
	sync.Mutex
}

func (r *recorder) SetPCL(ctx context.Context, req *policymgr.PCLRequest) error {
	r.Lock()
	r.pcls = append(r.pcls, *req)
	r.Unlock()
	return nil
}

func (r *recorder) SetHwMode(ctx context.Context, req *policymgr.HwModeRequest) error {
	r.Lock()
	r.hwModes = append(r.hwModes, *req)
	r.Unlock()
	return nil
}

type roamSet map[uint32]bool

func (r roamSet) RoamInitialized(vdev uint32) bool {
	return r[vdev]
}

type cacFlag bool

func (c cacFlag) SAPCACInProgress() bool {
	return bool(c)
}

// engine is a policy manager built from a scenario.
type engine struct {
	mgr *policymgr.Manager
	hw  *hwmode.Table
	reg *regdb.DB
	rec *recorder
}

func (s *scenario) build(slog *zap.SugaredLogger) (*engine, error) {
	hw, err := s.hwTable()
	if err != nil {
		return nil, err
	}

	pc, err := s.Policy.Policy()
	if err != nil {
		return nil, err
	}

	reg := regdb.NewDefault(s.Policy.Country)
	for _, f := range s.Disabled {
		reg.SetChannelState(f, regdb.StateDisabled)
	}
	for _, f := range s.DFS {
		reg.SetChannelState(f, regdb.StateDFS)
	}

	roam := make(roamSet)
	for _, v := range s.Roaming {
		roam[v] = true
	}

	e := &engine{hw: hw, reg: reg, rec: &recorder{}}
	e.mgr, err = policymgr.New(pc, policymgr.Deps{
		HwModes:    hw,
		Regulatory: reg,
		Dispatcher: e.rec,
		Roam:       roam,
		CAC:        cacFlag(s.CAC),
		Avoid:      s.Policy.Avoid(),
		Log:        slog,
	})
	if err != nil {
		return nil, err
	}

	for i, c := range s.Conns {
		if c.VdevID == 0 {
			c.VdevID = uint32(i + 1)
		}
		if err = e.mgr.UpdateConcList(c); err != nil {
			return nil, errors.Wrapf(err, "loading connection %d", i)
		}
	}
	return e, nil
}

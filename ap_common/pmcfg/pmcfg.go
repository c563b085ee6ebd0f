/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// Package pmcfg loads the configuration of the concurrency policy daemon: a
// YAML file, with selected settings overridden from the environment.
package pmcfg

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bgwlan/ap_common/policymgr"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tomazk/envcfg"
	"gopkg.in/yaml.v2"
)

// Defaults for settings absent from the file and environment.
const (
	DefaultPath        = "/etc/bgwlan/policyd.yaml"
	DefaultHwModeFile  = "/etc/bgwlan/hw_modes.yaml"
	DefaultCountry     = "US"
	DefaultFirmwareURL = "ipc:///var/run/bgwlan/fwproxy.ipc"
	DefaultDiagAddr    = "127.0.0.1:4710"
	DefaultQueueDepth  = 32
	DefaultSendTimeout = 2 * time.Second
)

// Config is the on-disk representation of the daemon's configuration.
type Config struct {
	SystemPref     string   `yaml:"system_pref"`
	SwitchPolicy   string   `yaml:"mcc_to_scc_switch"`
	InterbandMCC   bool     `yaml:"interband_mcc"`
	MultiAP        bool     `yaml:"sta_multi_ap_3rd_same_band"`
	Prefer6G       bool     `yaml:"prefer_6g"`
	SixGHzModes    []string `yaml:"six_ghz_modes"`
	SAPAllowDFS    bool     `yaml:"sap_allow_dfs"`
	DualSTARoaming bool     `yaml:"dual_sta_roaming"`
	PCLPerVdev     bool     `yaml:"pcl_per_vdev"`
	UpgradeDelay   string   `yaml:"upgrade_delay"`

	Country       string   `yaml:"country"`
	Phy           string   `yaml:"phy"`
	HwModeFile    string   `yaml:"hw_mode_file"`
	AvoidChannels []uint32 `yaml:"avoid_channels"`

	FirmwareURL string `yaml:"firmware_url"`
	SendTimeout string `yaml:"send_timeout"`
	QueueDepth  int    `yaml:"queue_depth"`
	DiagAddr    string `yaml:"diag_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Environment overrides.  envcfg leaves unset variables empty, so every field
// is a string and only non-empty values replace what the file says.
type environ struct {
	SystemPref   string `envcfg:"B10E_POLICYD_SYSTEM_PREF"`
	SwitchPolicy string `envcfg:"B10E_POLICYD_SWITCH_POLICY"`
	SAPAllowDFS  string `envcfg:"B10E_POLICYD_SAP_ALLOW_DFS"`
	Country      string `envcfg:"B10E_POLICYD_COUNTRY"`
	Phy          string `envcfg:"B10E_POLICYD_PHY"`
	HwModeFile   string `envcfg:"B10E_POLICYD_HW_MODE_FILE"`
	FirmwareURL  string `envcfg:"B10E_POLICYD_FIRMWARE_URL"`
	DiagAddr     string `envcfg:"B10E_POLICYD_DIAG_ADDR"`
	LogLevel     string `envcfg:"B10E_POLICYD_LOG_LEVEL"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		SystemPref:   policymgr.PrefThroughput.String(),
		SwitchPolicy: policymgr.SwitchForceWithoutDisconnection.String(),
		SixGHzModes: []string{
			policymgr.ModeSTA.String(),
			policymgr.ModeSAP.String(),
		},
		UpgradeDelay: policymgr.DefaultUpgradeDelay.String(),
		Country:      DefaultCountry,
		HwModeFile:   DefaultHwModeFile,
		FirmwareURL:  DefaultFirmwareURL,
		SendTimeout:  DefaultSendTimeout.String(),
		QueueDepth:   DefaultQueueDepth,
		DiagAddr:     DefaultDiagAddr,
		LogLevel:     "info",
	}
}

// Parse decodes a YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing policy config")
	}
	return cfg, nil
}

// Load reads the configuration file at path, if there is one, and applies the
// environment overrides.  The result is validated before it is returned.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		switch {
		case err == nil:
			if cfg, err = Parse(data); err != nil {
				return nil, errors.Wrapf(err, "loading %s", path)
			}
		case os.IsNotExist(err) && path == DefaultPath:
			// Running with defaults is fine unless a file was
			// asked for by name.
		default:
			return nil, errors.Wrapf(err, "reading %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, err := cfg.Policy(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env environ

	if err := envcfg.Unmarshal(&env); err != nil {
		return errors.Wrap(err, "reading environment")
	}

	set := func(dst *string, val string) {
		if val != "" {
			*dst = val
		}
	}
	set(&c.SystemPref, env.SystemPref)
	set(&c.SwitchPolicy, env.SwitchPolicy)
	set(&c.Country, env.Country)
	set(&c.Phy, env.Phy)
	set(&c.HwModeFile, env.HwModeFile)
	set(&c.FirmwareURL, env.FirmwareURL)
	set(&c.DiagAddr, env.DiagAddr)
	set(&c.LogLevel, env.LogLevel)

	if env.SAPAllowDFS != "" {
		b, err := strconv.ParseBool(env.SAPAllowDFS)
		if err != nil {
			return errors.Wrap(err, "B10E_POLICYD_SAP_ALLOW_DFS")
		}
		c.SAPAllowDFS = b
	}
	return nil
}

// Policy converts the file representation into the engine's configuration.
func (c *Config) Policy() (policymgr.Config, error) {
	var err error

	pc := policymgr.DefaultConfig()
	if pc.SystemPref, err = policymgr.ParseSystemPref(c.SystemPref); err != nil {
		return pc, err
	}
	if pc.SwitchPolicy, err = policymgr.ParseSwitchPolicy(c.SwitchPolicy); err != nil {
		return pc, err
	}

	pc.SixGHzModes = make(map[policymgr.Mode]bool)
	for _, name := range c.SixGHzModes {
		mode, err := policymgr.ParseMode(name)
		if err != nil {
			return pc, errors.Wrap(err, "six_ghz_modes")
		}
		pc.SixGHzModes[mode] = true
	}

	if c.UpgradeDelay != "" {
		if pc.UpgradeDelay, err = time.ParseDuration(c.UpgradeDelay); err != nil {
			return pc, errors.Wrap(err, "upgrade_delay")
		}
	}

	pc.InterbandMCC = c.InterbandMCC
	pc.AllowSTAMultiAP3rdSameBand = c.MultiAP
	pc.Prefer6G = c.Prefer6G
	pc.SAPAllowDFS = c.SAPAllowDFS
	pc.DualSTARoaming = c.DualSTARoaming
	pc.PCLPerVdev = c.PCLPerVdev
	return pc, nil
}

// Avoid returns the statically configured unsafe channels.
func (c *Config) Avoid() policymgr.StaticAvoidList {
	return policymgr.StaticAvoidList(c.AvoidChannels)
}

// Timeout returns how long the firmware proxy has to acknowledge a request.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.SendTimeout))
	if err != nil || d <= 0 {
		return DefaultSendTimeout
	}
	return d
}

/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package hwmode

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// File is the on-disk representation of a hardware mode table.  Either the
// decoded list or the raw firmware words may be provided, but not both.
type File struct {
	Modes         []Descriptor `yaml:"hw_modes"`
	FirmwareWords []uint32     `yaml:"firmware_words"`
}

// UnmarshalYAML accepts "2G", "5G", "any" or the numeric value.
func (b *MacBand) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ANY", "0":
		*b = BandDontCare
	case "2G", "1":
		*b = Band2G
	case "5G", "2":
		*b = Band5G
	default:
		return fmt.Errorf("unknown mac0 band: %s", s)
	}
	return nil
}

// Parse builds a Table from YAML data.
func Parse(data []byte) (*Table, error) {
	var f File

	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing hw mode table")
	}

	switch {
	case len(f.Modes) > 0 && len(f.FirmwareWords) > 0:
		return nil, errors.New("hw_modes and firmware_words are exclusive")
	case len(f.FirmwareWords) > 0:
		return FromFirmware(f.FirmwareWords)
	case len(f.Modes) > 0:
		return NewTable(f.Modes)
	}
	return nil, errors.New("empty hw mode table")
}

// Load reads and parses a hardware mode table file.
func Load(fs afero.Fs, path string) (*Table, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return t, nil
}

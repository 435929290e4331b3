// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080test

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// op is one bus transaction as written in a fixture file:
//
//	- {addr: 0x40, w: [0xfe], r: [0x54, 0x49]}
type op struct {
	Addr uint16 `yaml:"addr"`
	W    []int  `yaml:"w"`
	R    []int  `yaml:"r"`
}

// LoadPlayback decodes a YAML document mapping scenario names to lists of
// bus transactions, ready to be used as i2ctest.Playback operations.
func LoadPlayback(r io.Reader) (map[string][]i2ctest.IO, error) {
	var doc map[string][]op
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("hdc1080test: %w", err)
	}
	out := make(map[string][]i2ctest.IO, len(doc))
	for name, ops := range doc {
		ios := make([]i2ctest.IO, 0, len(ops))
		for i, o := range ops {
			w, err := toBytes(o.W)
			if err != nil {
				return nil, fmt.Errorf("hdc1080test: %s[%d].w: %w", name, i, err)
			}
			r, err := toBytes(o.R)
			if err != nil {
				return nil, fmt.Errorf("hdc1080test: %s[%d].r: %w", name, i, err)
			}
			ios = append(ios, i2ctest.IO{Addr: o.Addr, W: w, R: r})
		}
		out[name] = ios
	}
	return out, nil
}

// LoadPlaybackFile is LoadPlayback on the content of a file.
func LoadPlaybackFile(path string) (map[string][]i2ctest.IO, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPlayback(f)
}

func toBytes(v []int) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b := make([]byte, len(v))
	for i, x := range v {
		if x < 0 || x > 0xff {
			return nil, fmt.Errorf("value %d out of byte range", x)
		}
		b[i] = byte(x)
	}
	return b, nil
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func readReg(t *testing.T, d *Device, reg byte) uint16 {
	t.Helper()
	r := make([]byte, 2)
	require.NoError(t, d.Tx(d.Addr, []byte{reg}, r))
	return uint16(r[0])<<8 | uint16(r[1])
}

func TestIdentification(t *testing.T) {
	d := NewDevice()
	assert.Equal(t, uint16(0x5449), readReg(t, d, regManufacturerID))
	assert.Equal(t, uint16(0x1050), readReg(t, d, regDeviceID))
	assert.Equal(t, uint16(0x0215), readReg(t, d, regSerialID0))
	assert.Equal(t, uint16(0x8a80), readReg(t, d, regSerialID2))
	assert.Equal(t, resetValue, readReg(t, d, regConfiguration))
	assert.ErrorIs(t, d.Tx(0x41, []byte{regDeviceID}, make([]byte, 2)), ErrNACK)
}

func TestConfiguration(t *testing.T) {
	d := NewDevice()
	// Reserved bits are dropped.
	require.NoError(t, d.Tx(d.Addr, []byte{regConfiguration, 0x77, 0xff}, nil))
	assert.Equal(t, uint16(0x3700), d.Config())
	d.LowBattery = true
	assert.Equal(t, uint16(0x3f00), readReg(t, d, regConfiguration))
	// Only the configuration register is writable.
	assert.ErrorIs(t, d.Tx(d.Addr, []byte{regDeviceID, 0, 0}, nil), ErrNACK)
}

func TestReset(t *testing.T) {
	d := NewDevice()
	d.SetConfig(0x2400)
	d.ResetReads = 2
	require.NoError(t, d.Tx(d.Addr, []byte{regConfiguration, 0x80, 0x00}, nil))
	assert.Equal(t, resetValue|bitReset, readReg(t, d, regConfiguration))
	assert.Equal(t, resetValue|bitReset, readReg(t, d, regConfiguration))
	assert.Equal(t, resetValue, readReg(t, d, regConfiguration))

	d.ResetReads = -1
	require.NoError(t, d.Tx(d.Addr, []byte{regConfiguration, 0x80, 0x00}, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, resetValue|bitReset, readReg(t, d, regConfiguration))
	}
}

func TestConversion(t *testing.T) {
	d := NewDevice()
	d.Temperature = 0x6620
	d.Humidity = 0x7300
	r := make([]byte, 2)

	// No conversion started yet.
	assert.ErrorIs(t, d.Tx(d.Addr, nil, r), ErrNACK)

	// Sequential mode, the power-on default, returns both words.
	require.NoError(t, d.Tx(d.Addr, []byte{regTemperature}, nil))
	r4 := make([]byte, 4)
	require.NoError(t, d.Tx(d.Addr, nil, r4))
	assert.Equal(t, []byte{0x66, 0x20, 0x73, 0x00}, r4)

	d.SetConfig(0)
	d.BusyReads = 1
	require.NoError(t, d.Tx(d.Addr, []byte{regHumidity}, nil))
	assert.ErrorIs(t, d.Tx(d.Addr, nil, r), ErrNACK)
	require.NoError(t, d.Tx(d.Addr, nil, r))
	assert.Equal(t, []byte{0x73, 0x00}, r)
	// The result is consumed.
	assert.ErrorIs(t, d.Tx(d.Addr, nil, r), ErrNACK)
	// Reading a measurement register directly is refused.
	assert.ErrorIs(t, d.Tx(d.Addr, []byte{regTemperature}, r), ErrNACK)
	assert.Equal(t, 2, d.Triggers)
}

func TestClose(t *testing.T) {
	d := NewDevice()
	require.NoError(t, d.Close())
	assert.Error(t, d.Close())
	assert.Error(t, d.Tx(d.Addr, []byte{regDeviceID}, make([]byte, 2)))
}

func TestLoadPlayback(t *testing.T) {
	const doc = `
probe:
  - {addr: 0x40, w: [0xfe], r: [0x54, 0x49]}
  - {addr: 0x40, w: [0x00]}
  - {addr: 0x40, r: [1, 2, 3, 4]}
`
	got, err := LoadPlayback(strings.NewReader(doc))
	require.NoError(t, err)
	want := []i2ctest.IO{
		{Addr: 0x40, W: []byte{0xfe}, R: []byte{0x54, 0x49}},
		{Addr: 0x40, W: []byte{0x00}},
		{Addr: 0x40, R: []byte{1, 2, 3, 4}},
	}
	assert.Equal(t, want, got["probe"])
}

func TestLoadPlaybackErrors(t *testing.T) {
	_, err := LoadPlayback(strings.NewReader("probe:\n  - {addr: 0x40, w: [256]}\n"))
	assert.ErrorContains(t, err, "probe[0].w")
	_, err = LoadPlayback(strings.NewReader("probe: [\n"))
	assert.Error(t, err)
	_, err = LoadPlaybackFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

// The simulator replays the same traffic as the recorded fixtures.
func TestPlaybackMatchesDevice(t *testing.T) {
	fixtures, err := LoadPlaybackFile("../testdata/playback.yaml")
	require.NoError(t, err)
	d := NewDevice()
	for _, io := range fixtures["serial"] {
		r := make([]byte, len(io.R))
		require.NoError(t, d.Tx(io.Addr, io.W, r))
		assert.Equal(t, io.R, r)
	}
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestI2CTransport(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x40, W: []byte{0x02, 0x10, 0x00}},
			{Addr: 0x40, W: []byte{0x02}, R: []byte{0x10, 0x00}},
			{Addr: 0x40, W: []byte{0x01}},
			{Addr: 0x40, R: []byte{0x73, 0x00}},
		},
		DontPanic: true,
	}
	tr := &I2C{Bus: pb}
	require.NoError(t, tr.Open())
	require.NoError(t, tr.Write(0x40, 0x02, []byte{0x10, 0x00}))
	r := make([]byte, 2)
	require.NoError(t, tr.Read(0x40, 0x02, r))
	assert.Equal(t, []byte{0x10, 0x00}, r)
	require.NoError(t, tr.Write(0x40, 0x01, nil))
	require.NoError(t, tr.ReadCurrent(0x40, r))
	assert.Equal(t, []byte{0x73, 0x00}, r)
	// A bus handed in by the caller is left open.
	require.NoError(t, tr.Close())
	assert.NotNil(t, tr.Bus)
	assert.Equal(t, "playback", tr.String())
	assert.NoError(t, pb.Close())
}

func TestI2CTransportNotOpen(t *testing.T) {
	tr := &I2C{Name: "foo"}
	assert.ErrorIs(t, tr.Write(0x40, 0x02, nil), errBusNotOpen)
	assert.ErrorIs(t, tr.Read(0x40, 0x02, make([]byte, 2)), errBusNotOpen)
	assert.ErrorIs(t, tr.ReadCurrent(0x40, make([]byte, 2)), errBusNotOpen)
	assert.NoError(t, tr.Close())
	assert.Equal(t, `I2C("foo")`, tr.String())
}

func TestCapabilitiesCheck(t *testing.T) {
	caps := Capabilities{Transport: &I2C{}, Delay: Sleep, Logger: discard}
	assert.NoError(t, caps.check())
	caps.Delay = nil
	err := caps.check()
	assert.True(t, errors.Is(err, ErrMissingCapability))
	assert.Contains(t, err.Error(), "delay")
}

func TestDelayFunc(t *testing.T) {
	var got time.Duration
	DelayFunc(func(d time.Duration) { got = d }).Delay(3 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, got)
}

func TestTransportErrorString(t *testing.T) {
	err := &TransportError{Op: "read", Reg: RegConfiguration, Err: errors.New("nack")}
	assert.Equal(t, "hdc1080: read register 0x02: nack", err.Error())
	err = &TransportError{Op: "open", Err: errors.New("no bus")}
	assert.Equal(t, "hdc1080: open: no bus", err.Error())
	assert.Equal(t, "hdc1080: invalid value 3 for humidity resolution", (&InvalidFieldError{Field: FieldHumidityResolution, Value: 3}).Error())
}

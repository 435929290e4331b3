// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hdc1080test provides test tooling for the hdc1080 driver: a
// register level model of the sensor that plugs in as an i2c.Bus, and a
// loader for YAML playback fixtures.
package hdc1080test

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	regTemperature    = 0x00
	regHumidity       = 0x01
	regConfiguration  = 0x02
	regSerialID0      = 0xfb
	regSerialID1      = 0xfc
	regSerialID2      = 0xfd
	regManufacturerID = 0xfe
	regDeviceID       = 0xff

	bitReset   uint16 = 1 << 15
	bitMode    uint16 = 1 << 12
	bitBattery uint16 = 1 << 11
	// Bits the host can change. Reserved bits always read back as 0.
	writableBits uint16 = 0x3700

	// Configuration register content after power-on or a software reset.
	resetValue uint16 = bitMode
)

// ErrNACK is returned when the simulated device doesn't acknowledge a
// transaction.
var ErrNACK = errors.New("hdc1080test: NACK")

// Device simulates an HDC1080. The exported fields can be changed between
// transactions.
type Device struct {
	// Addr is the address the device answers at.
	Addr uint16

	// Raw words returned by the next conversions.
	Temperature uint16
	Humidity    uint16

	ManufacturerID uint16
	DeviceID       uint16
	Serial         [3]uint16

	// LowBattery sets the battery status bit.
	LowBattery bool
	// ResetReads is the number of configuration reads still reporting the
	// reset bit after a software reset. A negative value never clears it.
	ResetReads int
	// BusyReads is the number of result reads rejected after each trigger,
	// as the device does while converting.
	BusyReads int

	// Triggers counts the conversions started.
	Triggers int

	mu        sync.Mutex
	config    uint16
	pointer   byte
	result    []byte
	busyLeft  int
	resetLeft int
	closed    bool
}

// NewDevice returns a simulated device in its power-on state at the default
// address.
func NewDevice() *Device {
	return &Device{
		Addr:           0x40,
		ManufacturerID: 0x5449,
		DeviceID:       0x1050,
		Serial:         [3]uint16{0x0215, 0x5b30, 0x8a80},
		config:         resetValue,
	}
}

// Config returns the configuration register as the device holds it.
func (d *Device) Config() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config
}

// SetConfig overwrites the configuration register, for example to simulate
// settings left over from a previous session.
func (d *Device) SetConfig(v uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config = v & (writableBits | bitReset)
}

func (d *Device) String() string {
	return "hdc1080test"
}

// Close implements i2c.BusCloser.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("hdc1080test: already closed")
	}
	d.closed = true
	return nil
}

// SetSpeed implements i2c.Bus.
func (d *Device) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("hdc1080test: bus closed")
	}
	if addr != d.Addr {
		return ErrNACK
	}
	switch len(w) {
	case 0:
	case 1:
		d.pointer = w[0]
		if r == nil {
			d.trigger()
			return nil
		}
	case 3:
		d.pointer = w[0]
		if err := d.write(uint16(w[1])<<8 | uint16(w[2])); err != nil {
			return err
		}
	default:
		return fmt.Errorf("hdc1080test: unexpected write of %d bytes", len(w))
	}
	if len(r) == 0 {
		return nil
	}
	if len(w) == 0 && (d.pointer == regTemperature || d.pointer == regHumidity) {
		return d.fetch(r)
	}
	v, err := d.read()
	if err != nil {
		return err
	}
	if len(r) != 2 {
		return fmt.Errorf("hdc1080test: register read of %d bytes", len(r))
	}
	r[0] = byte(v >> 8)
	r[1] = byte(v)
	return nil
}

// trigger starts a conversion for the pointed measurement register.
func (d *Device) trigger() {
	t := []byte{byte(d.Temperature >> 8), byte(d.Temperature)}
	h := []byte{byte(d.Humidity >> 8), byte(d.Humidity)}
	switch {
	case d.pointer == regTemperature && d.config&bitMode != 0:
		d.result = append(t, h...)
	case d.pointer == regTemperature:
		d.result = t
	case d.pointer == regHumidity:
		d.result = h
	default:
		return
	}
	d.Triggers++
	d.busyLeft = d.BusyReads
}

// fetch returns the result of the last conversion.
func (d *Device) fetch(r []byte) error {
	if d.result == nil {
		return ErrNACK
	}
	if d.busyLeft > 0 {
		d.busyLeft--
		return ErrNACK
	}
	if len(r) > len(d.result) {
		return fmt.Errorf("hdc1080test: read %d bytes, only %d available", len(r), len(d.result))
	}
	copy(r, d.result)
	d.result = nil
	return nil
}

func (d *Device) write(v uint16) error {
	if d.pointer != regConfiguration {
		return ErrNACK
	}
	if v&bitReset != 0 {
		d.config = resetValue
		d.resetLeft = d.ResetReads
		d.result = nil
		return nil
	}
	d.config = v & writableBits
	return nil
}

func (d *Device) read() (uint16, error) {
	switch d.pointer {
	case regConfiguration:
		v := d.config
		if d.resetLeft != 0 {
			v |= bitReset
			if d.resetLeft > 0 {
				d.resetLeft--
			}
		}
		if d.LowBattery {
			v |= bitBattery
		}
		return v, nil
	case regSerialID0, regSerialID1, regSerialID2:
		return d.Serial[d.pointer-regSerialID0], nil
	case regManufacturerID:
		return d.ManufacturerID, nil
	case regDeviceID:
		return d.DeviceID, nil
	default:
		// Reading a measurement register right after setting the pointer
		// is refused while the conversion runs.
		return 0, ErrNACK
	}
}

var _ i2c.BusCloser = &Device{}

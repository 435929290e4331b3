// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// Transport is the bus capability the driver talks through. Implementations
// don't need to be safe for concurrent use.
type Transport interface {
	Open() error
	Close() error
	// Write sends the register pointer followed by w. An empty w only sets
	// the pointer, which on the measurement registers starts a conversion.
	Write(addr uint16, reg byte, w []byte) error
	// Read sets the register pointer and reads len(r) bytes.
	Read(addr uint16, reg byte, r []byte) error
	// ReadCurrent reads len(r) bytes at the current register pointer.
	ReadCurrent(addr uint16, r []byte) error
}

// Delayer blocks the caller for the given duration.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a function to the Delayer interface.
type DelayFunc func(d time.Duration)

// Delay calls f(d).
func (f DelayFunc) Delay(d time.Duration) {
	f(d)
}

// Sleep is the Delayer backed by time.Sleep.
var Sleep Delayer = DelayFunc(time.Sleep)

// Capabilities is the set of collaborators a Dev is built with. None of them
// may be nil when Init is called.
type Capabilities struct {
	Transport Transport
	Delay     Delayer
	// Logger receives debug messages about failed bus operations.
	Logger *slog.Logger
}

func (c *Capabilities) check() error {
	switch {
	case c.Transport == nil:
		return fmt.Errorf("%w: transport", ErrMissingCapability)
	case c.Delay == nil:
		return fmt.Errorf("%w: delay", ErrMissingCapability)
	case c.Logger == nil:
		return fmt.Errorf("%w: logger", ErrMissingCapability)
	}
	return nil
}

var errBusNotOpen = errors.New("i2c bus not open")

// I2C is a Transport over a periph.io I²C bus.
type I2C struct {
	// Bus is used as is when set and is never closed by the transport.
	// Otherwise Open opens the bus called Name from i2creg, "" being the
	// first available one, and Close releases it.
	Bus  i2c.Bus
	Name string

	closer i2c.BusCloser
}

// Open implements Transport.
func (t *I2C) Open() error {
	if t.Bus != nil {
		return nil
	}
	b, err := i2creg.Open(t.Name)
	if err != nil {
		return err
	}
	t.Bus = b
	t.closer = b
	return nil
}

// Close implements Transport.
func (t *I2C) Close() error {
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.Bus = nil
	t.closer = nil
	return err
}

// Write implements Transport.
func (t *I2C) Write(addr uint16, reg byte, w []byte) error {
	if t.Bus == nil {
		return errBusNotOpen
	}
	buf := make([]byte, 1+len(w))
	buf[0] = reg
	copy(buf[1:], w)
	return t.Bus.Tx(addr, buf, nil)
}

// Read implements Transport.
func (t *I2C) Read(addr uint16, reg byte, r []byte) error {
	if t.Bus == nil {
		return errBusNotOpen
	}
	return t.Bus.Tx(addr, []byte{reg}, r)
}

// ReadCurrent implements Transport.
func (t *I2C) ReadCurrent(addr uint16, r []byte) error {
	if t.Bus == nil {
		return errBusNotOpen
	}
	return t.Bus.Tx(addr, nil, r)
}

func (t *I2C) String() string {
	if t.Bus == nil {
		return fmt.Sprintf("I2C(%q)", t.Name)
	}
	return t.Bus.String()
}

var _ Transport = &I2C{}

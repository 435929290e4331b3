// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized     = errors.New("hdc1080: not initialized")
	ErrAlreadyInitialized = errors.New("hdc1080: already initialized")
	// ErrMissingCapability is returned by Init when the capability bundle is
	// incomplete.
	ErrMissingCapability = errors.New("hdc1080: missing capability")
	// ErrWrongDevice is wrapped in the TransportError returned by Init when
	// the identification registers don't match an HDC1080.
	ErrWrongDevice = errors.New("hdc1080: unexpected device id")
	// ErrInvalidField matches every *InvalidFieldError.
	ErrInvalidField = errors.New("hdc1080: invalid configuration value")
	// ErrModeMismatch is returned by ReadTemperatureHumidity when the device
	// is in independent mode.
	ErrModeMismatch = errors.New("hdc1080: combined read requires sequential mode")
	ErrResetTimeout = errors.New("hdc1080: software reset did not complete")
	// ErrTimeout is returned when the conversion result was still not
	// available after Opts.PollAttempts retries.
	ErrTimeout = errors.New("hdc1080: conversion result not ready")
)

// TransportError wraps a failure of the bus transport.
type TransportError struct {
	// Op is one of "open", "close", "read", "write" or "verify".
	Op  string
	Reg Register
	Err error
}

func (e *TransportError) Error() string {
	switch e.Op {
	case "open", "close":
		return fmt.Sprintf("hdc1080: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("hdc1080: %s register %s: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// InvalidFieldError is returned when a configuration value is out of the
// field's range, or when the field can't be written.
type InvalidFieldError struct {
	Field Field
	Value uint16
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("hdc1080: invalid value %d for %s", e.Value, e.Field)
}

func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidField
}

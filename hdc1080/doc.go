// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hdc1080 controls a Texas Instruments HDC1080 temperature and
// humidity sensor over I²C.
//
// The driver doesn't talk to a bus directly. A Dev is built from a
// Capabilities bundle: a Transport doing register reads and writes, a
// Delayer used to wait for conversions, and a logger for debug output. The
// I2C type adapts any periph.io i2c.Bus, and NewI2C wires everything up for
// the common case.
//
// Every configuration change is a read-modify-write of the configuration
// register so settings made elsewhere are kept. Measurements are triggered
// on demand: the driver sets the register pointer, waits the conversion time
// of the configured resolution and reads the result.
//
// Range: -40°C - 125°C, 0 - 100%RH
//
// Accuracy: ±0.2°C, ±2%RH
//
// Resolution: 14, 11 or 8 bits
//
// For detailed information, refer to the [datasheet].
//
// [datasheet]: https://www.ti.com/lit/ds/symlink/hdc1080.pdf
package hdc1080

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Register is the address of one of the device's 16 bit registers.
type Register byte

const (
	RegTemperature    Register = 0x00
	RegHumidity       Register = 0x01
	RegConfiguration  Register = 0x02
	RegSerialID0      Register = 0xfb
	RegSerialID1      Register = 0xfc
	RegSerialID2      Register = 0xfd
	RegManufacturerID Register = 0xfe
	RegDeviceID       Register = 0xff
)

func (r Register) String() string {
	return fmt.Sprintf("0x%02x", byte(r))
}

const (
	// DefaultAddress is the fixed 7 bit bus address of the HDC1080.
	DefaultAddress uint16 = 0x40

	// ManufacturerID is the content of RegManufacturerID ("TI").
	ManufacturerID uint16 = 0x5449
	// DeviceID is the content of RegDeviceID.
	DeviceID uint16 = 0x1050
)

// Mode selects how conversions are acquired.
type Mode uint8

const (
	// ModeIndependent triggers and reads temperature and humidity separately.
	ModeIndependent Mode = 0
	// ModeSequential acquires temperature then humidity on a single trigger.
	ModeSequential Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeIndependent:
		return "Independent"
	case ModeSequential:
		return "Sequential"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// TemperatureResolution is the ADC resolution of the temperature channel.
type TemperatureResolution uint8

const (
	Temperature14Bit TemperatureResolution = 0
	Temperature11Bit TemperatureResolution = 1
)

func (r TemperatureResolution) String() string {
	switch r {
	case Temperature14Bit:
		return "14bit"
	case Temperature11Bit:
		return "11bit"
	default:
		return fmt.Sprintf("TemperatureResolution(%d)", uint8(r))
	}
}

// HumidityResolution is the ADC resolution of the humidity channel.
type HumidityResolution uint8

const (
	Humidity14Bit HumidityResolution = 0
	Humidity11Bit HumidityResolution = 1
	Humidity8Bit  HumidityResolution = 2
)

func (r HumidityResolution) String() string {
	switch r {
	case Humidity14Bit:
		return "14bit"
	case Humidity11Bit:
		return "11bit"
	case Humidity8Bit:
		return "8bit"
	default:
		return fmt.Sprintf("HumidityResolution(%d)", uint8(r))
	}
}

// BatteryStatus reports the supply voltage relative to the 2.8V threshold.
type BatteryStatus uint8

const (
	BatteryOver2V8  BatteryStatus = 0
	BatteryUnder2V8 BatteryStatus = 1
)

func (b BatteryStatus) String() string {
	if b == BatteryUnder2V8 {
		return "<2.8V"
	}
	return ">2.8V"
}

// Field names a bit-field of the configuration register.
type Field uint8

const (
	FieldMode Field = iota
	FieldHeater
	FieldTemperatureResolution
	FieldHumidityResolution
	FieldReset
	// FieldBattery is read-only. EncodeConfig rejects it.
	FieldBattery
)

func (f Field) String() string {
	switch f {
	case FieldMode:
		return "mode"
	case FieldHeater:
		return "heater"
	case FieldTemperatureResolution:
		return "temperature resolution"
	case FieldHumidityResolution:
		return "humidity resolution"
	case FieldReset:
		return "reset"
	case FieldBattery:
		return "battery status"
	default:
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
}

// Configuration register layout. Bits 7..0 and bit 14 are reserved and are
// carried through unchanged by every read-modify-write.
const (
	_RESET_POS    = 15
	_HEATER_POS   = 13
	_MODE_POS     = 12
	_BATTERY_POS  = 11
	_TEMP_RES_POS = 10
	_HUM_RES_POS  = 8

	_RESET_MASK    uint16 = 1 << _RESET_POS
	_HEATER_MASK   uint16 = 1 << _HEATER_POS
	_MODE_MASK     uint16 = 1 << _MODE_POS
	_BATTERY_MASK  uint16 = 1 << _BATTERY_POS
	_TEMP_RES_MASK uint16 = 1 << _TEMP_RES_POS
	_HUM_RES_MASK  uint16 = 3 << _HUM_RES_POS

	// Image the device reports after power-on or a software reset.
	resetImage uint16 = _MODE_MASK
)

type bitField struct {
	pos  uint
	mask uint16
	// largest value accepted by EncodeConfig.
	max      uint16
	readOnly bool
}

var bitFields = map[Field]bitField{
	FieldMode:                  {pos: _MODE_POS, mask: _MODE_MASK, max: uint16(ModeSequential)},
	FieldHeater:                {pos: _HEATER_POS, mask: _HEATER_MASK, max: 1},
	FieldTemperatureResolution: {pos: _TEMP_RES_POS, mask: _TEMP_RES_MASK, max: uint16(Temperature11Bit)},
	FieldHumidityResolution:    {pos: _HUM_RES_POS, mask: _HUM_RES_MASK, max: uint16(Humidity8Bit)},
	FieldReset:                 {pos: _RESET_POS, mask: _RESET_MASK, max: 1},
	FieldBattery:               {pos: _BATTERY_POS, mask: _BATTERY_MASK, max: 1, readOnly: true},
}

// Config is the decoded content of the configuration register.
type Config struct {
	Mode                  Mode
	Heater                bool
	TemperatureResolution TemperatureResolution
	HumidityResolution    HumidityResolution
	Battery               BatteryStatus
	// ResetPending is set while the device has not completed a software reset.
	ResetPending bool
}

func (c Config) String() string {
	return fmt.Sprintf("{Mode: %s, Heater: %t, Temperature: %s, Humidity: %s, Battery: %s, ResetPending: %t}",
		c.Mode, c.Heater, c.TemperatureResolution, c.HumidityResolution, c.Battery, c.ResetPending)
}

// checkField reports whether value can be written into f.
func checkField(f Field, value uint16) error {
	bf, ok := bitFields[f]
	if !ok || bf.readOnly || value > bf.max {
		return &InvalidFieldError{Field: f, Value: value}
	}
	return nil
}

// EncodeConfig returns image with field f set to value. All other bits,
// reserved ones included, are left as they are.
func EncodeConfig(image uint16, f Field, value uint16) (uint16, error) {
	if err := checkField(f, value); err != nil {
		return image, err
	}
	bf := bitFields[f]
	return (image &^ bf.mask) | (value<<bf.pos)&bf.mask, nil
}

// DecodeConfig extracts every field of a configuration register image.
func DecodeConfig(image uint16) Config {
	return Config{
		Mode:                  Mode((image & _MODE_MASK) >> _MODE_POS),
		Heater:                image&_HEATER_MASK != 0,
		TemperatureResolution: TemperatureResolution((image & _TEMP_RES_MASK) >> _TEMP_RES_POS),
		HumidityResolution:    HumidityResolution((image & _HUM_RES_MASK) >> _HUM_RES_POS),
		Battery:               BatteryStatus((image & _BATTERY_MASK) >> _BATTERY_POS),
		ResetPending:          image&_RESET_MASK != 0,
	}
}

const (
	// Magic numbers for count to value conversions.
	temperatureOffset float64 = -40.0
	temperatureScalar float64 = 165.0
	humidityScalar    float64 = 100.0
	scaleDivisor      float64 = 65536.0

	MinimumTemperature physic.Temperature = physic.ZeroCelsius - 40*physic.Kelvin
	MaximumTemperature physic.Temperature = physic.ZeroCelsius + 125*physic.Kelvin

	minRH = 0 * physic.PercentRH
	maxRH = 100 * physic.PercentRH
)

// TemperatureCelsius converts a raw temperature word to degrees Celsius.
func TemperatureCelsius(raw uint16) float64 {
	return float64(raw)/scaleDivisor*temperatureScalar + temperatureOffset
}

// HumidityPercent converts a raw humidity word to percent relative humidity.
// The result is clamped to [0, 100].
func HumidityPercent(raw uint16) float64 {
	rh := float64(raw) / scaleDivisor * humidityScalar
	if rh < 0 {
		return 0
	} else if rh > humidityScalar {
		return humidityScalar
	}
	return rh
}

// Convert the raw count to a temperature.
func countToTemperature(raw uint16) physic.Temperature {
	t := physic.ZeroCelsius + physic.Temperature(TemperatureCelsius(raw)*float64(physic.Celsius))
	if t < MinimumTemperature {
		t = MinimumTemperature
	} else if t > MaximumTemperature {
		t = MaximumTemperature
	}
	return t
}

// convert the raw count to a humidity value.
func countToHumidity(raw uint16) physic.RelativeHumidity {
	rh := physic.RelativeHumidity(HumidityPercent(raw) * float64(physic.PercentRH))
	if rh < minRH {
		rh = minRH
	} else if rh > maxRH {
		rh = maxRH
	}
	return rh
}

// SerialID is the 41 bit factory programmed identifier of a device.
type SerialID uint64

func (s SerialID) String() string {
	return fmt.Sprintf("%011x", uint64(s))
}

// DecodeSerialID assembles the identifier from the big-endian content of
// RegSerialID0, RegSerialID1 and RegSerialID2, in that order. RegSerialID0
// and RegSerialID1 hold bits 40..9, the upper 9 bits of RegSerialID2 hold
// bits 8..0.
func DecodeSerialID(b [6]byte) SerialID {
	w0 := uint64(b[0])<<8 | uint64(b[1])
	w1 := uint64(b[2])<<8 | uint64(b[3])
	w2 := uint64(b[4])<<8 | uint64(b[5])
	return SerialID(w0<<25 | w1<<9 | w2>>7)
}

// Conversion times from the datasheet electrical characteristics.
var temperatureConversion = map[TemperatureResolution]time.Duration{
	Temperature14Bit: 6350 * time.Microsecond,
	Temperature11Bit: 3650 * time.Microsecond,
}

var humidityConversion = map[HumidityResolution]time.Duration{
	Humidity14Bit: 6500 * time.Microsecond,
	Humidity11Bit: 3850 * time.Microsecond,
	Humidity8Bit:  2500 * time.Microsecond,
}

// conversionTime returns how long to wait after a trigger before the result
// can be read. In sequential mode the device converts temperature and then
// humidity back to back, so the wait covers both.
func (c Config) conversionTime(reg Register) time.Duration {
	t := temperatureConversion[c.TemperatureResolution]
	h := humidityConversion[c.HumidityResolution]
	if c.Mode == ModeSequential {
		return t + h
	}
	if reg == RegHumidity {
		return h
	}
	return t
}

// resolutionBits returns the effective number of bits of each channel.
func (c Config) resolutionBits() (temperature, humidity uint) {
	temperature = 14
	if c.TemperatureResolution == Temperature11Bit {
		temperature = 11
	}
	switch c.HumidityResolution {
	case Humidity11Bit:
		humidity = 11
	case Humidity8Bit:
		humidity = 8
	default:
		humidity = 14
	}
	return
}

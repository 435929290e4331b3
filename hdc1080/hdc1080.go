// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Opts holds the configuration applied by Init.
type Opts struct {
	Mode                  Mode
	TemperatureResolution TemperatureResolution
	HumidityResolution    HumidityResolution
	Heater                bool
	// SkipReset disables the software reset Init performs after identifying
	// the device.
	SkipReset bool
	// PollAttempts is the number of extra reads attempted when a conversion
	// result is not ready after the nominal conversion time. 0 disables
	// polling, and the first failed read is returned as a TransportError.
	PollAttempts int
	// PollInterval is the delay between two polling reads. Default is 1ms.
	PollInterval time.Duration
}

// DefaultOpts holds the default configuration options for the device: the
// power-on settings with polling disabled.
var DefaultOpts = Opts{
	PollInterval: time.Millisecond,
}

type fieldValue struct {
	f Field
	v uint16
}

// fields returns the configuration register content requested by o.
func (o *Opts) fields() []fieldValue {
	heater := uint16(0)
	if o.Heater {
		heater = 1
	}
	return []fieldValue{
		{FieldMode, uint16(o.Mode)},
		{FieldTemperatureResolution, uint16(o.TemperatureResolution)},
		{FieldHumidityResolution, uint16(o.HumidityResolution)},
		{FieldHeater, heater},
	}
}

// apply encodes the options into image.
func (o *Opts) apply(image uint16) (uint16, error) {
	var err error
	for _, fv := range o.fields() {
		if image, err = EncodeConfig(image, fv.f, fv.v); err != nil {
			return image, err
		}
	}
	return image, nil
}

const resetDelay = 15 * time.Millisecond

// Dev is a session with one HDC1080.
//
// A Dev is created uninitialized by New. Init identifies the device and
// makes it usable. Deinit releases the transport, after which Init may be
// called again.
type Dev struct {
	caps Capabilities
	opts Opts
	addr uint16

	mu          sync.Mutex
	initialized bool
	// cfg mirrors the configuration register as last read or written.
	cfg Config
}

// Sample is one temperature/humidity measurement.
type Sample struct {
	TemperatureRaw uint16
	HumidityRaw    uint16
	Temperature    physic.Temperature
	Humidity       physic.RelativeHumidity
}

func (s Sample) String() string {
	return fmt.Sprintf("%s %s", s.Temperature, s.Humidity)
}

// New returns an uninitialized Dev using caps. The Opts can be nil.
func New(caps Capabilities, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{caps: caps, opts: *opts, addr: DefaultAddress}
	if d.opts.PollInterval <= 0 {
		d.opts.PollInterval = time.Millisecond
	}
	return d
}

// NewI2C returns an initialized Dev on the periph.io bus b. It sleeps with
// time.Sleep and logs to slog.Default(). The Opts can be nil.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	d := New(Capabilities{Transport: &I2C{Bus: b}, Delay: Sleep, Logger: slog.Default()}, opts)
	if err := d.Init(addr); err != nil {
		return nil, err
	}
	return d, nil
}

// Init opens the transport, checks that an HDC1080 answers at addr, resets
// it unless Opts.SkipReset is set, and applies the configured Opts. The
// transport is closed again if any step fails.
func (d *Dev) Init(addr uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return ErrAlreadyInitialized
	}
	if err := d.caps.check(); err != nil {
		return err
	}
	if _, err := d.opts.apply(0); err != nil {
		return err
	}
	d.addr = addr
	if err := d.caps.Transport.Open(); err != nil {
		d.debug("open failed", "err", err)
		return &TransportError{Op: "open", Err: err}
	}
	if err := d.start(); err != nil {
		_ = d.caps.Transport.Close()
		return err
	}
	d.initialized = true
	return nil
}

func (d *Dev) start() error {
	if err := d.verify(RegManufacturerID, ManufacturerID); err != nil {
		return err
	}
	if err := d.verify(RegDeviceID, DeviceID); err != nil {
		return err
	}
	if !d.opts.SkipReset {
		if err := d.reset(); err != nil {
			return err
		}
	}
	current, err := d.readConfig()
	if err != nil {
		return err
	}
	want, err := d.opts.apply(current)
	if err != nil {
		return err
	}
	if want == current {
		return nil
	}
	return d.writeConfig(want)
}

func (d *Dev) verify(reg Register, want uint16) error {
	got, err := d.readReg(reg)
	if err != nil {
		return err
	}
	if got != want {
		d.debug("unexpected id", "reg", reg, "got", got, "want", want)
		return &TransportError{Op: "verify", Reg: reg, Err: fmt.Errorf("%w: got 0x%04x, want 0x%04x", ErrWrongDevice, got, want)}
	}
	return nil
}

// Deinit closes the transport. The Dev can be initialized again afterward.
func (d *Dev) Deinit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := d.caps.Transport.Close(); err != nil {
		d.debug("close failed", "err", err)
		return &TransportError{Op: "close", Err: err}
	}
	d.initialized = false
	return nil
}

// Configuration reads and decodes the configuration register.
func (d *Dev) Configuration() (Config, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return Config{}, ErrNotInitialized
	}
	image, err := d.readConfig()
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(image), nil
}

// SetMode selects independent or sequential acquisition.
func (d *Dev) SetMode(m Mode) error {
	return d.updateField(FieldMode, uint16(m))
}

// Mode returns the acquisition mode read from the device.
func (d *Dev) Mode() (Mode, error) {
	cfg, err := d.Configuration()
	return cfg.Mode, err
}

// SetTemperatureResolution sets the temperature ADC resolution. It doesn't
// start a conversion.
func (d *Dev) SetTemperatureResolution(r TemperatureResolution) error {
	return d.updateField(FieldTemperatureResolution, uint16(r))
}

// TemperatureResolution returns the temperature ADC resolution.
func (d *Dev) TemperatureResolution() (TemperatureResolution, error) {
	cfg, err := d.Configuration()
	return cfg.TemperatureResolution, err
}

// SetHumidityResolution sets the humidity ADC resolution. It doesn't start a
// conversion.
func (d *Dev) SetHumidityResolution(r HumidityResolution) error {
	return d.updateField(FieldHumidityResolution, uint16(r))
}

// HumidityResolution returns the humidity ADC resolution.
func (d *Dev) HumidityResolution() (HumidityResolution, error) {
	cfg, err := d.Configuration()
	return cfg.HumidityResolution, err
}

// SetHeater turns the on-chip heater on or off. The heater is only active
// while conversions run and is used to drive off condensation. Refer to the
// datasheet for the heating procedure.
func (d *Dev) SetHeater(enabled bool) error {
	v := uint16(0)
	if enabled {
		v = 1
	}
	return d.updateField(FieldHeater, v)
}

// Heater reports whether the heater is enabled.
func (d *Dev) Heater() (bool, error) {
	cfg, err := d.Configuration()
	return cfg.Heater, err
}

// BatteryStatus returns the supply voltage status. It is read from the
// device on every call.
func (d *Dev) BatteryStatus() (BatteryStatus, error) {
	cfg, err := d.Configuration()
	return cfg.Battery, err
}

// SoftwareReset reboots the device's internal logic and waits for it to come
// back. Afterward the device is in independent mode with 14 bit resolution
// on both channels and the heater off.
func (d *Dev) SoftwareReset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	return d.reset()
}

// reset is the only place a configuration image is written without reading
// it first.
func (d *Dev) reset() error {
	image, _ := EncodeConfig(0, FieldReset, 1)
	if err := d.writeConfig(image); err != nil {
		return err
	}
	d.caps.Delay.Delay(resetDelay)
	image, err := d.readConfig()
	if err != nil {
		return err
	}
	if image&_RESET_MASK != 0 {
		d.caps.Delay.Delay(resetDelay)
		if image, err = d.readConfig(); err != nil {
			return err
		}
		if image&_RESET_MASK != 0 {
			d.debug("reset bit still set", "config", image)
			return ErrResetTimeout
		}
	}
	// The device comes out of reset in sequential mode.
	if image&_MODE_MASK != 0 {
		image, _ = EncodeConfig(image, FieldMode, uint16(ModeIndependent))
		return d.writeConfig(image)
	}
	return nil
}

// ReadTemperature triggers a temperature conversion and returns the result.
func (d *Dev) ReadTemperature() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return MinimumTemperature, ErrNotInitialized
	}
	raw, err := d.readChannel(RegTemperature)
	if err != nil {
		return MinimumTemperature, err
	}
	return countToTemperature(raw), nil
}

// ReadHumidity triggers a humidity conversion and returns the result.
func (d *Dev) ReadHumidity() (physic.RelativeHumidity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	raw, err := d.readChannel(RegHumidity)
	if err != nil {
		return 0, err
	}
	return countToHumidity(raw), nil
}

// ReadTemperatureHumidity acquires both channels with a single trigger. The
// device must be in sequential mode, otherwise ErrModeMismatch is returned
// without touching the bus; use ReadTemperature and ReadHumidity instead.
func (d *Dev) ReadTemperatureHumidity() (physic.Temperature, physic.RelativeHumidity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return MinimumTemperature, 0, ErrNotInitialized
	}
	if d.cfg.Mode != ModeSequential {
		return MinimumTemperature, 0, ErrModeMismatch
	}
	s, err := d.readSequential()
	if err != nil {
		return MinimumTemperature, 0, err
	}
	return s.Temperature, s.Humidity, nil
}

// Measure reads both channels using the current acquisition mode: one
// combined conversion in sequential mode, two separate ones otherwise.
func (d *Dev) Measure() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return Sample{}, ErrNotInitialized
	}
	if d.cfg.Mode == ModeSequential {
		return d.readSequential()
	}
	var s Sample
	var err error
	if s.TemperatureRaw, err = d.readChannel(RegTemperature); err != nil {
		return Sample{}, err
	}
	if s.HumidityRaw, err = d.readChannel(RegHumidity); err != nil {
		return Sample{}, err
	}
	s.Temperature = countToTemperature(s.TemperatureRaw)
	s.Humidity = countToHumidity(s.HumidityRaw)
	return s, nil
}

func (d *Dev) readSequential() (Sample, error) {
	b, err := d.measure(RegTemperature, 4)
	if err != nil {
		return Sample{}, err
	}
	s := Sample{
		TemperatureRaw: uint16(b[0])<<8 | uint16(b[1]),
		HumidityRaw:    uint16(b[2])<<8 | uint16(b[3]),
	}
	s.Temperature = countToTemperature(s.TemperatureRaw)
	s.Humidity = countToHumidity(s.HumidityRaw)
	return s, nil
}

// readChannel returns the raw word of one channel. In sequential mode the
// device only accepts a trigger on the temperature register and always
// returns both words.
func (d *Dev) readChannel(reg Register) (uint16, error) {
	trigger, n, off := reg, 2, 0
	if d.cfg.Mode == ModeSequential {
		trigger, n = RegTemperature, 4
		if reg == RegHumidity {
			off = 2
		}
	}
	b, err := d.measure(trigger, n)
	if err != nil {
		return 0, err
	}
	return uint16(b[off])<<8 | uint16(b[off+1]), nil
}

// measure triggers a conversion by pointing at reg, waits for it to complete
// and reads n bytes of result.
func (d *Dev) measure(reg Register, n int) ([]byte, error) {
	if err := d.caps.Transport.Write(d.addr, byte(reg), nil); err != nil {
		d.debug("trigger failed", "reg", reg, "err", err)
		return nil, &TransportError{Op: "write", Reg: reg, Err: err}
	}
	d.caps.Delay.Delay(d.cfg.conversionTime(reg))
	r := make([]byte, n)
	err := d.caps.Transport.ReadCurrent(d.addr, r)
	for attempt := 0; err != nil && attempt < d.opts.PollAttempts; attempt++ {
		d.caps.Delay.Delay(d.opts.PollInterval)
		err = d.caps.Transport.ReadCurrent(d.addr, r)
	}
	if err != nil {
		d.debug("reading conversion failed", "reg", reg, "err", err)
		if d.opts.PollAttempts > 0 {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrTimeout, d.opts.PollAttempts, err)
		}
		return nil, &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return r, nil
}

// SerialID returns the device's unique 41 bit identifier.
func (d *Dev) SerialID() (SerialID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	var b [6]byte
	for i, reg := range []Register{RegSerialID0, RegSerialID1, RegSerialID2} {
		w, err := d.readReg(reg)
		if err != nil {
			return 0, err
		}
		b[2*i] = byte(w >> 8)
		b[2*i+1] = byte(w)
	}
	return DecodeSerialID(b), nil
}

// Reg reads a register without interpreting it.
func (d *Dev) Reg(reg Register) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	if reg == RegConfiguration {
		return d.readConfig()
	}
	return d.readReg(reg)
}

// SetReg writes a register as is. No validation is done; the caller is
// responsible for respecting the datasheet.
func (d *Dev) SetReg(reg Register, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if reg == RegConfiguration {
		return d.writeConfig(value)
	}
	return d.writeReg(reg, value)
}

// updateField does a read-modify-write of one configuration field.
func (d *Dev) updateField(f Field, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := checkField(f, value); err != nil {
		return err
	}
	image, err := d.readConfig()
	if err != nil {
		return err
	}
	image, _ = EncodeConfig(image, f, value)
	return d.writeConfig(image)
}

func (d *Dev) readConfig() (uint16, error) {
	image, err := d.readReg(RegConfiguration)
	if err != nil {
		return 0, err
	}
	d.cfg = DecodeConfig(image)
	return image, nil
}

func (d *Dev) writeConfig(image uint16) error {
	if err := d.writeReg(RegConfiguration, image); err != nil {
		return err
	}
	d.cfg = DecodeConfig(image)
	return nil
}

func (d *Dev) readReg(reg Register) (uint16, error) {
	r := make([]byte, 2)
	if err := d.caps.Transport.Read(d.addr, byte(reg), r); err != nil {
		d.debug("read failed", "reg", reg, "err", err)
		return 0, &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

func (d *Dev) writeReg(reg Register, value uint16) error {
	if err := d.caps.Transport.Write(d.addr, byte(reg), []byte{byte(value >> 8), byte(value)}); err != nil {
		d.debug("write failed", "reg", reg, "err", err)
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (d *Dev) debug(msg string, args ...any) {
	if d.caps.Logger != nil {
		d.caps.Logger.Debug("hdc1080: "+msg, args...)
	}
}

// Sense implements physic.SenseEnv. Pressure is always 0.
func (d *Dev) Sense(env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	s, err := d.Measure()
	if err != nil {
		return err
	}
	env.Temperature = s.Temperature
	env.Humidity = s.Humidity
	return nil
}

// SenseContinuous implements physic.SenseEnv. The driver doesn't schedule
// sampling, so it always returns an error; call Sense from your own loop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	return nil, errors.New("hdc1080: SenseContinuous is not supported")
}

// Precision implements physic.SenseEnv. It returns the step size of the
// currently configured resolutions.
func (d *Dev) Precision(env *physic.Env) {
	d.mu.Lock()
	tBits, hBits := d.cfg.resolutionBits()
	d.mu.Unlock()
	env.Temperature = physic.Temperature(math.Round(temperatureScalar / float64(uint(1)<<tBits) * float64(physic.Celsius)))
	env.Humidity = physic.RelativeHumidity(math.Round(humidityScalar / float64(uint(1)<<hBits) * float64(physic.PercentRH)))
	env.Pressure = 0
}

// Halt implements conn.Resource. Conversions only run on demand, so there is
// nothing to stop.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("hdc1080: %v", d.caps.Transport)
}

// ChipInfo is the static description of the device.
type ChipInfo struct {
	ChipName         string
	Manufacturer     string
	Interface        string
	SupplyVoltageMin physic.ElectricPotential
	SupplyVoltageMax physic.ElectricPotential
	MaxCurrent       physic.ElectricCurrent
	TemperatureMin   physic.Temperature
	TemperatureMax   physic.Temperature
	DriverVersion    int
}

// Info returns the device's static characteristics.
func Info() ChipInfo {
	return ChipInfo{
		ChipName:         "Texas Instruments HDC1080",
		Manufacturer:     "Texas Instruments",
		Interface:        "I2C",
		SupplyVoltageMin: 2700 * physic.MilliVolt,
		SupplyVoltageMax: 5500 * physic.MilliVolt,
		MaxCurrent:       7200 * physic.MicroAmpere,
		TemperatureMin:   MinimumTemperature,
		TemperatureMax:   MaximumTemperature,
		DriverVersion:    1000,
	}
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hdc1080_test

import (
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/GermanBionicSystems/sensors/hdc1080"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	// Open default I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	sensor, err := hdc1080.NewI2C(bus, hdc1080.DefaultAddress, nil)
	if err != nil {
		log.Fatal(err)
	}
	env := physic.Env{}
	if err := sensor.Sense(&env); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Sensor Output: %s\n", env)
}

func ExampleDev_ReadTemperatureHumidity() {
	// The transport opens the first registered bus by itself.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	caps := hdc1080.Capabilities{
		Transport: &hdc1080.I2C{},
		Delay:     hdc1080.Sleep,
		Logger:    slog.Default(),
	}
	opts := hdc1080.DefaultOpts
	opts.Mode = hdc1080.ModeSequential
	opts.HumidityResolution = hdc1080.Humidity11Bit
	opts.PollAttempts = 3

	sensor := hdc1080.New(caps, &opts)
	if err := sensor.Init(hdc1080.DefaultAddress); err != nil {
		log.Fatal(err)
	}
	defer sensor.Deinit()

	for i := 0; i < 3; i++ {
		temp, humidity, err := sensor.ReadTemperatureHumidity()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %s\n", temp, humidity)
		time.Sleep(time.Second)
	}
}

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/charlcd/mcp23xxx"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	dev, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23017, mcp23xxx.DefaultAddress)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	// Light pins 0 and 9 with one write per port.
	if err := dev.WriteMasked(0x0201, 0x0201); err != nil {
		log.Fatal(err)
	}

	for _, pin := range dev.Pins[1] {
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s\t%s\n", pin.Name(), pin.Read())
	}
}

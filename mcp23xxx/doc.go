// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23xxx provides a driver for the MCP23008 and MCP23017 I²C GPIO
// expanders, in 8 and 16 bit variants.
//
// Pins are exposed as gpio.PinIO. Dev.WriteMasked and Dev.ReadMasked change
// or sample several pins in one bus transaction, which is what character LCD
// backpacks need to stay responsive.
//
// Output latch, direction and pull-up registers are cached. Writes that
// wouldn't change a register are skipped.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/20001952C.pdf
package mcp23xxx

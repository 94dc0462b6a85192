// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/gpio"
)

// Backlight is a monochrome backlight switched on or off.
//
// With a pin, Set drives it immediately. Without one, the level is only
// recorded and a register transport packs it into the next byte it sends.
type Backlight struct {
	pin      gpio.PinOut
	inverted bool
	on       bool
}

// NewBacklight returns a backlight driven by pin, which may be nil. When
// inverted is true the backlight is lit by a low level.
func NewBacklight(pin gpio.PinOut, inverted bool) *Backlight {
	return &Backlight{pin: pin, inverted: inverted}
}

// Set turns the backlight on or off.
func (bl *Backlight) Set(on bool) error {
	bl.on = on
	if bl.pin == nil {
		return nil
	}
	return bl.pin.Out(bl.Level())
}

// On returns the last state set.
func (bl *Backlight) On() bool {
	return bl.on
}

// Level returns the electrical level that lights the backlight for the current
// state.
func (bl *Backlight) Level() gpio.Level {
	return gpio.Level(bl.on != bl.inverted)
}

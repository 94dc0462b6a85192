// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/gpio"
)

// Mono is a display with a single color backlight.
type Mono struct {
	*Dev
	backlight *Backlight
}

// SetBacklight turns the backlight on or off.
//
// On backpacks where the backlight shares the LCD register and has no pin of
// its own, the change is applied with the next byte sent to the display.
func (m *Mono) SetBacklight(on bool) error {
	if m.backlight == nil {
		return ErrNoBacklight
	}
	return m.backlight.Set(on)
}

// Backlight returns the last backlight state set.
func (m *Mono) Backlight() bool {
	return m.backlight != nil && m.backlight.On()
}

// Halt clears the display, turns it off and switches the backlight off.
func (m *Mono) Halt() error {
	if err := m.Dev.Halt(); err != nil {
		return err
	}
	if m.backlight == nil {
		return nil
	}
	return m.backlight.Set(false)
}

// NewGPIO returns a display wired to host GPIO pins in 4 bit mode. bl is the
// backlight pin and may be nil; the backlight is turned on before the
// display is initialized.
func NewGPIO(rs, e, d4, d5, d6, d7, bl gpio.PinOut, cols, rows int, opts *Opts) (*Mono, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	var backlight *Backlight
	if bl != nil {
		backlight = NewBacklight(bl, opts.BacklightInverted)
		if err := backlight.Set(true); err != nil {
			return nil, err
		}
	}
	d, err := New(NewPinTransport(rs, e, d4, d5, d6, d7), cols, rows, opts)
	if err != nil {
		return nil, err
	}
	return &Mono{Dev: d, backlight: backlight}, nil
}

// RGB is a display with a red, green and blue backlight.
type RGB struct {
	*Dev
	rgb *RGBBacklight
}

// SetColor sets the backlight color, each channel from 0 to 100.
func (r *RGB) SetColor(red, green, blue float64) error {
	return r.rgb.Set(red, green, blue)
}

// SetColorHex sets the backlight color from a 0xRRGGBB value.
func (r *RGB) SetColorHex(c uint32) error {
	return r.rgb.SetHex(c)
}

// Color returns the last backlight color set, in percent.
func (r *RGB) Color() [3]float64 {
	return r.rgb.Color()
}

// Halt clears the display, turns it off and switches the backlight off.
func (r *RGB) Halt() error {
	if err := r.Dev.Halt(); err != nil {
		return err
	}
	return r.rgb.Set(0, 0, 0)
}

// NewGPIORGB returns a display wired to host GPIO pins with an RGB backlight.
// rw is the read/write pin, held low; pass nil when it's tied to ground.
//
// The backlight starts off.
func NewGPIORGB(rs, e, d4, d5, d6, d7, rw gpio.PinOut, red, green, blue Anode, cols, rows int, opts *Opts) (*RGB, error) {
	rgb, err := NewRGBBacklight(red, green, blue)
	if err != nil {
		return nil, err
	}
	if rw != nil {
		if err := rw.Out(gpio.Low); err != nil {
			return nil, err
		}
	}
	d, err := New(NewPinTransport(rs, e, d4, d5, d6, d7), cols, rows, opts)
	if err != nil {
		return nil, err
	}
	if err := rgb.Set(0, 0, 0); err != nil {
		return nil, err
	}
	return &RGB{Dev: d, rgb: rgb}, nil
}

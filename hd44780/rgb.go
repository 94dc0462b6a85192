// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"math"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

var (
	// ErrAnodeType is returned when an RGB anode has neither a digital nor a
	// PWM output.
	ErrAnodeType = errors.New("hd44780: RGB anode must be a digital or PWM output")
	// ErrColorRange is returned for packed colors wider than 24 bits.
	ErrColorRange = errors.New("hd44780: packed color must be positive and 24 bits max")
)

// DefaultPWMFrequency is used by PWMAnode when 0 is passed.
const DefaultPWMFrequency = 500 * physic.Hertz

const maxDuty16 = 0xffff

type anodeKind int

const (
	anodeNone anodeKind = iota
	anodeDigital
	anodePWM
)

// Anode is one color channel of an RGB backlight. It is either a PWM output
// (PWMAnode) or a plain digital output (DigitalAnode). The zero value is
// invalid.
type Anode struct {
	kind anodeKind
	pin  gpio.PinOut
	freq physic.Frequency
}

// PWMAnode returns an anode dimmed with a duty cycle at frequency f.
func PWMAnode(pin gpio.PinOut, f physic.Frequency) Anode {
	if f == 0 {
		f = DefaultPWMFrequency
	}
	return Anode{kind: anodePWM, pin: pin, freq: f}
}

// DigitalAnode returns an anode that can only be switched fully on or off.
func DigitalAnode(pin gpio.PinOut) Anode {
	return Anode{kind: anodeDigital, pin: pin}
}

func (a *Anode) valid() bool {
	return a.kind != anodeNone && a.pin != nil
}

// RGBBacklight drives a common anode RGB backlight. The LED cathodes are
// switched by the driver outputs, so a low output lights the LED.
type RGBBacklight struct {
	anodes [3]Anode
	color  [3]float64
	duty   [3]uint16
}

// NewRGBBacklight checks the anodes and returns the backlight. It does not
// touch the outputs.
func NewRGBBacklight(red, green, blue Anode) (*RGBBacklight, error) {
	bl := &RGBBacklight{anodes: [3]Anode{red, green, blue}}
	for i := range bl.anodes {
		if !bl.anodes[i].valid() {
			return nil, ErrAnodeType
		}
	}
	return bl, nil
}

// Set sets the color, each channel from 0 (off) to 100 (full). Digital anodes
// are on for any value above 1.
func (bl *RGBBacklight) Set(red, green, blue float64) error {
	bl.color = [3]float64{red, green, blue}
	for i, v := range bl.color {
		a := &bl.anodes[i]
		if a.kind == anodePWM {
			d := duty16(v)
			bl.duty[i] = d
			if err := a.pin.PWM(toDuty(d), a.freq); err != nil {
				return err
			}
			continue
		}
		if err := a.pin.Out(gpio.Level(!(v > 1))); err != nil {
			return err
		}
	}
	return nil
}

// SetHex sets the color from a 0xRRGGBB value.
func (bl *RGBBacklight) SetHex(c uint32) error {
	if c>>24 != 0 {
		return ErrColorRange
	}
	return bl.Set(float64(c>>16)/2.55, float64((c>>8)&0xff)/2.55, float64(c&0xff)/2.55)
}

// Color returns the last color set, in percent.
func (bl *RGBBacklight) Color() [3]float64 {
	return bl.color
}

// Duty returns the last 16 bit duty cycles written to PWM anodes.
func (bl *RGBBacklight) Duty() [3]uint16 {
	return bl.duty
}

// duty16 maps 0-100 to 65535-0.
func duty16(v float64) uint16 {
	return uint16(math.Round(remap(v, 0, 100, maxDuty16, 0)))
}

// remap is an affine transfer from [inMin, inMax] to [outMin, outMax] with the
// output clamped to the target range.
func remap(x, inMin, inMax, outMin, outMax float64) float64 {
	r := (x-inMin)*((outMax-outMin)/(inMax-inMin)) + outMin
	lo, hi := outMin, outMax
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(math.Min(r, hi), lo)
}

func toDuty(d uint16) gpio.Duty {
	return gpio.Duty(uint64(d) * uint64(gpio.DutyMax) / maxDuty16)
}

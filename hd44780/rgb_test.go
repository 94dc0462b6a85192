// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

func TestDuty16(t *testing.T) {
	data := []struct {
		in   float64
		want uint16
	}{
		{0, 65535},
		{100, 0},
		{50, 32768},
		{1, 64880},
		{-10, 65535},
		{150, 0},
	}
	for _, line := range data {
		if got := duty16(line.in); got != line.want {
			t.Errorf("duty16(%g) = %d, want %d", line.in, got, line.want)
		}
	}
	if toDuty(0xffff) != gpio.DutyMax || toDuty(0) != 0 {
		t.Error("toDuty must map the full range")
	}
}

func newPWMPins() (r, g, b *gpiotest.Pin) {
	return &gpiotest.Pin{N: "red"}, &gpiotest.Pin{N: "green"}, &gpiotest.Pin{N: "blue"}
}

func TestRGBBacklight_pwm(t *testing.T) {
	r, g, b := newPWMPins()
	bl, err := NewRGBBacklight(PWMAnode(r, 0), PWMAnode(g, physic.KiloHertz), PWMAnode(b, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := bl.Set(100, 50, 0); err != nil {
		t.Fatal(err)
	}
	if got := bl.Duty(); got != [3]uint16{0, 32768, 65535} {
		t.Errorf("got duties %v", got)
	}
	if r.D != 0 || g.D != toDuty(32768) || b.D != gpio.DutyMax {
		t.Errorf("got pin duties %s %s %s", r.D, g.D, b.D)
	}
	if r.F != DefaultPWMFrequency || g.F != physic.KiloHertz {
		t.Errorf("got frequencies %s %s", r.F, g.F)
	}
	if got := bl.Color(); got != [3]float64{100, 50, 0} {
		t.Errorf("got color %v", got)
	}
}

func TestRGBBacklight_digital(t *testing.T) {
	r, g, b := newPWMPins()
	bl, err := NewRGBBacklight(DigitalAnode(r), DigitalAnode(g), DigitalAnode(b))
	if err != nil {
		t.Fatal(err)
	}
	if err := bl.Set(50, 1, 1.5); err != nil {
		t.Fatal(err)
	}
	// Cathodes are pulled low to light the LED.
	if r.L != gpio.Low || g.L != gpio.High || b.L != gpio.Low {
		t.Errorf("got levels %s %s %s", r.L, g.L, b.L)
	}
}

func TestRGBBacklight_hex(t *testing.T) {
	r, g, b := newPWMPins()
	bl, err := NewRGBBacklight(PWMAnode(r, 0), PWMAnode(g, 0), PWMAnode(b, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := bl.SetHex(0xff0000); err != nil {
		t.Fatal(err)
	}
	if got := bl.Duty(); got != [3]uint16{0, 65535, 65535} {
		t.Errorf("got duties %v", got)
	}
	if err := bl.SetHex(0x1000000); !errors.Is(err, ErrColorRange) {
		t.Errorf("got %v", err)
	}
}

func TestRGBBacklight_anodeType(t *testing.T) {
	r, g, _ := newPWMPins()
	if _, err := NewRGBBacklight(PWMAnode(r, 0), DigitalAnode(g), Anode{}); !errors.Is(err, ErrAnodeType) {
		t.Errorf("got %v", err)
	}
	if _, err := NewRGBBacklight(PWMAnode(nil, 0), DigitalAnode(g), DigitalAnode(r)); !errors.Is(err, ErrAnodeType) {
		t.Errorf("got %v", err)
	}
}

func TestNewGPIORGB(t *testing.T) {
	lines := hd44780test.NewLines()
	rs, e, d4, d5, d6, d7 := lines.Pins()
	r, g, b := newPWMPins()
	lcd, err := NewGPIORGB(rs, e, d4, d5, d6, d7, lines.RWPin(), PWMAnode(r, 0), PWMAnode(g, 0), DigitalAnode(b), 16, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Starts off.
	if r.D != gpio.DutyMax || g.D != gpio.DutyMax || b.L != gpio.High {
		t.Fatalf("backlight should start off: %s %s %s", r.D, g.D, b.L)
	}
	if err := lcd.SetColorHex(0x00ff00); err != nil {
		t.Fatal(err)
	}
	if g.D != 0 || lcd.Color()[1] < 99.9 {
		t.Errorf("green should be full, got %s", g.D)
	}
	if err := lcd.SetColor(0, 0, 100); err != nil {
		t.Fatal(err)
	}
	if b.L != gpio.Low {
		t.Error("blue should be on")
	}
	if err := lcd.Halt(); err != nil {
		t.Fatal(err)
	}
	if b.L != gpio.High || lcd.DisplayOn() {
		t.Error("Halt should turn everything off")
	}
}

func TestNewGPIORGB_badAnode(t *testing.T) {
	lines := hd44780test.NewLines()
	rs, e, d4, d5, d6, d7 := lines.Pins()
	if _, err := NewGPIORGB(rs, e, d4, d5, d6, d7, nil, Anode{}, Anode{}, Anode{}, 16, 2, nil); !errors.Is(err, ErrAnodeType) {
		t.Fatalf("got %v", err)
	}
	if lines.Writes() != 0 {
		t.Error("nothing should be written")
	}
}

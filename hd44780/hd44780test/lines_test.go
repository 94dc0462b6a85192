// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780test

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
)

func TestLines_pins(t *testing.T) {
	l := NewLines()
	rs, e, d4, _, _, d7 := l.Pins()
	steps := []func() error{
		func() error { return rs.Out(gpio.High) },
		func() error { return d4.Out(gpio.High) },
		func() error { return d7.Out(gpio.High) },
		func() error { return e.Out(gpio.High) },
		func() error { return e.Out(gpio.Low) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	n := l.Nibbles()
	if len(n) != 1 || n[0] != (Nibble{RS: true, Value: 0x9}) {
		t.Errorf("got %v", n)
	}
	if l.Writes() != 5 || len(l.Edges()) != 2 {
		t.Errorf("writes=%d edges=%d", l.Writes(), len(l.Edges()))
	}
}

func TestLines_register(t *testing.T) {
	l := NewLines()
	r := l.Register(Map{RS: 1, RW: -1, E: 2, D4: 3, D5: 4, D6: 5, D7: 6, Backlight: 7})
	for _, v := range []uint16{0x82 | 0x08, 0x86 | 0x08, 0x82 | 0x08, 0x82 | 0x40, 0x86 | 0x40, 0x82 | 0x40} {
		if err := r.WriteMasked(v, 0xfe); err != nil {
			t.Fatal(err)
		}
	}
	got := l.Transfers()
	if len(got) != 1 || got[0] != (Transfer{RS: true, Value: 0x18}) {
		t.Errorf("got %v", got)
	}
	if !l.State().Backlight {
		t.Error("backlight should be on")
	}
	r.SetInput(0xffe5)
	if v, _ := r.ReadMasked(0x1f); v != 0x05 {
		t.Errorf("got 0x%x", v)
	}
}

func TestLines_failAfter(t *testing.T) {
	l := NewLines()
	rs, _, _, _, _, _ := l.Pins()
	l.FailAfter(1)
	if err := rs.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := rs.Out(gpio.Low); !errors.Is(err, ErrInjected) {
		t.Fatalf("got %v", err)
	}
	if rs.(*Pin).Read() != gpio.High {
		t.Error("failed write must not change the level")
	}
}

func TestLines_attach(t *testing.T) {
	l := NewLines()
	s := NewSim(8, 1)
	l.Attach(s)
	r := l.Register(Map{RS: 0, RW: 1, E: 2, D4: 4, D5: 5, D6: 6, D7: 7, Backlight: 3})
	// Nibble 3 in 8 bit mode.
	_ = r.WriteMasked(0x30, 0xff)
	_ = r.WriteMasked(0x34, 0xff)
	_ = r.WriteMasked(0x30, 0xff)
	if got := s.Transfers(); len(got) != 1 || got[0].Value != 0x30 {
		t.Errorf("got %v", got)
	}
}

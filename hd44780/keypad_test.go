// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"testing"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
)

func TestKeypad(t *testing.T) {
	reg := hd44780test.NewLines().Register(hd44780test.Map(RGBShieldWiring))
	k := NewKeypad(reg)

	s, err := k.State()
	if err != nil {
		t.Fatal(err)
	}
	if s != 0 {
		t.Errorf("nothing pressed, got %s", s)
	}

	// Active low.
	reg.SetInput(^uint16(1<<Up | 1<<Select))
	s, err = k.State()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Has(Up) || !s.Has(Select) || s.Has(Left) {
		t.Errorf("got %s", s)
	}
	if s.String() != "[Select Up]" {
		t.Errorf("got %q", s.String())
	}
	if ok, err := k.Pressed(Down); err != nil || ok {
		t.Errorf("Down: got %t, %v", ok, err)
	}
	if ok, err := k.Pressed(Up); err != nil || !ok {
		t.Errorf("Up: got %t, %v", ok, err)
	}
}

func TestButton_String(t *testing.T) {
	for b, want := range map[Button]string{Select: "Select", Left: "Left", Button(9): "Button(9)"} {
		if got := b.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

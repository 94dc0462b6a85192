// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"strconv"
	"strings"
)

// Button is a keypad button, numbered by its expander pin.
type Button uint8

const (
	Select Button = 0
	Right  Button = 1
	Down   Button = 2
	Up     Button = 3
	Left   Button = 4
)

var buttonNames = [...]string{"Select", "Right", "Down", "Up", "Left"}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return "Button(" + strconv.Itoa(int(b)) + ")"
}

// Buttons is a set of pressed buttons.
type Buttons uint16

// Has returns true if b is pressed.
func (s Buttons) Has(b Button) bool {
	return s&(1<<b) != 0
}

func (s Buttons) String() string {
	var names []string
	for b := Select; b <= Left; b++ {
		if s.Has(b) {
			names = append(names, b.String())
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

// InputRegister is an expander input port read in one bus transaction.
type InputRegister interface {
	ReadMasked(mask uint16) (uint16, error)
}

// Keypad reads the five active low buttons of the RGB LCD shields.
type Keypad struct {
	reg  InputRegister
	mask uint16
}

// NewKeypad returns a Keypad reading the buttons from reg. The pins must
// already be configured as inputs with pull-ups.
func NewKeypad(reg InputRegister) *Keypad {
	var mask uint16
	for b := Select; b <= Left; b++ {
		mask |= 1 << b
	}
	return &Keypad{reg: reg, mask: mask}
}

// State returns the set of buttons currently pressed.
func (k *Keypad) State() (Buttons, error) {
	v, err := k.reg.ReadMasked(k.mask)
	if err != nil {
		return 0, err
	}
	return Buttons(^v & k.mask), nil
}

// Pressed returns true if b is pressed.
func (k *Keypad) Pressed(b Button) (bool, error) {
	s, err := k.State()
	return s.Has(b), err
}

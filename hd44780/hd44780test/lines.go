// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780test is meant to be used to test drivers using the HD44780
// protocol, and to run a display without hardware.
//
// Lines records the level of every line of a display and decodes the nibbles
// latched on each falling edge of E. Attach a Sim to see what the display
// would show.
package hd44780test

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ErrInjected is returned by writes after the limit set with FailAfter.
var ErrInjected = errors.New("hd44780test: injected failure")

// State is a snapshot of the display lines.
type State struct {
	RS        bool
	RW        bool
	E         bool
	Data      byte // D4 in bit 0 to D7 in bit 3.
	Backlight bool
}

// Nibble is a value latched by the display.
type Nibble struct {
	RS    bool
	Value byte
}

// Transfer is a byte made of two consecutive nibbles, high nibble first.
type Transfer struct {
	RS    bool
	Value byte
}

func (t Transfer) String() string {
	if t.RS {
		return fmt.Sprintf("data(0x%02x)", t.Value)
	}
	return fmt.Sprintf("cmd(0x%02x)", t.Value)
}

// Lines is a fake display connector.
type Lines struct {
	mu        sync.Mutex
	state     State
	edges     []State
	nibbles   []Nibble
	writes    int
	failAfter int
	sim       *Sim
}

// NewLines returns lines all low.
func NewLines() *Lines {
	return &Lines{failAfter: -1}
}

// Attach feeds every nibble latched from now on to s.
func (l *Lines) Attach(s *Sim) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sim = s
}

// FailAfter makes every write after the first n fail with ErrInjected. A
// negative n disables failures.
func (l *Lines) FailAfter(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failAfter = n
}

// Reset forgets the recorded edges, nibbles and writes. Line levels are kept.
func (l *Lines) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.edges = nil
	l.nibbles = nil
	l.writes = 0
}

// State returns the current levels.
func (l *Lines) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Edges returns the line levels right after every change of E.
func (l *Lines) Edges() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.edges...)
}

// Nibbles returns the latched nibbles.
func (l *Lines) Nibbles() []Nibble {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Nibble(nil), l.nibbles...)
}

// Transfers pairs the latched nibbles into bytes. A trailing odd nibble is
// ignored.
func (l *Lines) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transfer, 0, len(l.nibbles)/2)
	for i := 0; i+1 < len(l.nibbles); i += 2 {
		out = append(out, Transfer{RS: l.nibbles[i].RS, Value: l.nibbles[i].Value<<4 | l.nibbles[i+1].Value})
	}
	return out
}

// Pulses returns the number of enable pulses.
func (l *Lines) Pulses() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.nibbles)
}

// Writes returns the number of line or register writes.
func (l *Lines) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

// apply runs f on a copy of the state and records the result.
func (l *Lines) apply(f func(s *State)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAfter >= 0 && l.writes >= l.failAfter {
		return ErrInjected
	}
	l.writes++
	prev := l.state
	f(&l.state)
	if prev.E != l.state.E {
		l.edges = append(l.edges, l.state)
	}
	if prev.E && !l.state.E {
		n := Nibble{RS: l.state.RS, Value: l.state.Data}
		l.nibbles = append(l.nibbles, n)
		if l.sim != nil {
			l.sim.Latch(n.RS, n.Value)
		}
	}
	return nil
}

// Pins returns one output per line.
func (l *Lines) Pins() (rs, e, d4, d5, d6, d7 gpio.PinOut) {
	mk := func(name string, set func(s *State, v bool)) gpio.PinOut {
		return &Pin{name: name, lines: l, set: set}
	}
	rs = mk("RS", func(s *State, v bool) { s.RS = v })
	e = mk("E", func(s *State, v bool) { s.E = v })
	d4 = mk("D4", dataSetter(0))
	d5 = mk("D5", dataSetter(1))
	d6 = mk("D6", dataSetter(2))
	d7 = mk("D7", dataSetter(3))
	return
}

// BacklightPin returns an output driving the backlight line.
func (l *Lines) BacklightPin() gpio.PinOut {
	return &Pin{name: "BL", lines: l, set: func(s *State, v bool) { s.Backlight = v }}
}

// RWPin returns an output driving the read/write line.
func (l *Lines) RWPin() gpio.PinOut {
	return &Pin{name: "RW", lines: l, set: func(s *State, v bool) { s.RW = v }}
}

func dataSetter(bit uint) func(s *State, v bool) {
	return func(s *State, v bool) {
		if v {
			s.Data |= 1 << bit
		} else {
			s.Data &^= 1 << bit
		}
	}
}

// Pin is a display line.
type Pin struct {
	name  string
	lines *Lines
	set   func(s *State, v bool)
	level gpio.Level
}

func (p *Pin) String() string   { return p.name }
func (p *Pin) Name() string     { return p.name }
func (p *Pin) Number() int      { return -1 }
func (p *Pin) Function() string { return "Out" }
func (p *Pin) Halt() error      { return nil }

// Out sets the line.
func (p *Pin) Out(l gpio.Level) error {
	if err := p.lines.apply(func(s *State) { p.set(s, bool(l)) }); err != nil {
		return err
	}
	p.level = l
	return nil
}

// Read returns the last level set.
func (p *Pin) Read() gpio.Level {
	return p.level
}

// PWM is not supported.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("hd44780test: PWM is not supported")
}

var _ gpio.PinOut = &Pin{}

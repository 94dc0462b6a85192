// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780test

import (
	"fmt"
	"sync"
)

// Map gives the register bit of every line, -1 when not connected. It
// converts to and from hd44780.Wiring.
type Map struct {
	RS        int
	RW        int
	E         int
	D4        int
	D5        int
	D6        int
	D7        int
	Backlight int
}

func (m *Map) level(v uint16, pin int) bool {
	return pin >= 0 && v&(1<<pin) != 0
}

// Register is a fake expander register wired to Lines.
type Register struct {
	lines *Lines
	m     Map

	mu    sync.Mutex
	value uint16
	input uint16
}

// Register returns an expander register whose bits drive the lines as
// described by m.
func (l *Lines) Register(m Map) *Register {
	return &Register{lines: l, m: m, input: 0xffff}
}

// WriteMasked implements hd44780.Register. Each call counts as one write.
func (r *Register) WriteMasked(value, mask uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.value&^mask | value&mask
	err := r.lines.apply(func(s *State) {
		s.RS = r.m.level(next, r.m.RS)
		s.RW = r.m.level(next, r.m.RW)
		s.E = r.m.level(next, r.m.E)
		s.Backlight = r.m.level(next, r.m.Backlight)
		s.Data = 0
		for i, pin := range [4]int{r.m.D4, r.m.D5, r.m.D6, r.m.D7} {
			if r.m.level(next, pin) {
				s.Data |= 1 << i
			}
		}
	})
	if err != nil {
		return err
	}
	r.value = next
	return nil
}

// Value returns the register content.
func (r *Register) Value() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// SetInput sets the levels returned by ReadMasked. Pins float high until
// set.
func (r *Register) SetInput(v uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.input = v
}

// ReadMasked implements hd44780.InputRegister.
func (r *Register) ReadMasked(mask uint16) (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.input & mask, nil
}

func (r *Register) String() string {
	return fmt.Sprintf("hd44780test.Register(0x%04x)", r.Value())
}

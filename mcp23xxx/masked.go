// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import "fmt"

// WriteMasked sets the output latch of the pins selected by mask to the
// matching bits of value, and makes them outputs. Bits 0-7 are port A, 8-15
// port B. Other pins are left as they are.
//
// Ports whose latch wouldn't change aren't written. On an MCP23017 both
// latches go out in one sequential write when both change.
func (dev *Dev) WriteMasked(value, mask uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	var next [2]uint8
	var dirty [2]bool
	for i, p := range dev.ports {
		m := uint8(mask >> (8 * i))
		if m == 0 {
			continue
		}
		dir, err := p.iodir.readValue(true)
		if err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
		if err := p.iodir.writeValue(dir&^m, true); err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
		cur, err := p.olat.readValue(true)
		if err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
		next[i] = cur&^m | uint8(value>>(8*i))&m
		dirty[i] = next[i] != cur
	}
	if len(dev.ports) == 2 && dirty[0] && dirty[1] {
		if err := dev.regs.WriteUint16(mcp23017OLATA, uint16(next[0])|uint16(next[1])<<8); err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
		dev.ports[0].olat.set(next[0])
		dev.ports[1].olat.set(next[1])
		return nil
	}
	for i, p := range dev.ports {
		if !dirty[i] {
			continue
		}
		if err := p.olat.writeValue(next[i], true); err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
	}
	return nil
}

// ReadMasked returns the level of the pins selected by mask. Pins not in
// mask read as 0. The pins are read as they are; configure them as inputs
// first.
func (dev *Dev) ReadMasked(mask uint16) (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if len(dev.ports) == 2 && mask&0xff != 0 && mask>>8 != 0 {
		v, err := dev.regs.ReadUint16(mcp23017GPIOA)
		if err != nil {
			return 0, fmt.Errorf("mcp23xxx: %w", err)
		}
		dev.ports[0].gpio.set(uint8(v))
		dev.ports[1].gpio.set(uint8(v >> 8))
		return v & mask, nil
	}
	var v uint16
	for i, p := range dev.ports {
		if uint8(mask>>(8*i)) == 0 {
			continue
		}
		b, err := p.gpio.readValue(false)
		if err != nil {
			return 0, fmt.Errorf("mcp23xxx: %w", err)
		}
		v |= uint16(b) << (8 * i)
	}
	return v & mask, nil
}

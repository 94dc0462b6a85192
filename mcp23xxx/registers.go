// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import "periph.io/x/conn/v3/mmr"

// Register addresses. The MCP23017 is used with IOCON.BANK=0, where the A and
// B registers of a kind are adjacent.
const (
	mcp23008IODIR = 0x00
	mcp23008GPPU  = 0x06
	mcp23008GPIO  = 0x09
	mcp23008OLAT  = 0x0a

	mcp23017IODIRA = 0x00
	mcp23017IODIRB = 0x01
	mcp23017GPPUA  = 0x0c
	mcp23017GPPUB  = 0x0d
	mcp23017GPIOA  = 0x12
	mcp23017GPIOB  = 0x13
	mcp23017OLATA  = 0x14
	mcp23017OLATB  = 0x15
)

type registerCache struct {
	regs    *mmr.Dev8
	address uint8
	got     bool
	cache   uint8
}

func newRegister(regs *mmr.Dev8, address uint8) registerCache {
	return registerCache{regs: regs, address: address}
}

func (r *registerCache) readValue(cached bool) (uint8, error) {
	if cached && r.got {
		return r.cache, nil
	}
	v, err := r.regs.ReadUint8(r.address)
	if err == nil {
		r.got = true
		r.cache = v
	}
	return v, err
}

func (r *registerCache) writeValue(value uint8, cached bool) error {
	if cached && r.got && value == r.cache {
		return nil
	}
	if err := r.regs.WriteUint8(r.address, value); err != nil {
		return err
	}
	r.got = true
	r.cache = value
	return nil
}

// set records a value written by a wider transaction.
func (r *registerCache) set(value uint8) {
	r.got = true
	r.cache = value
}

func (r *registerCache) getBit(bit uint8, cached bool) (bool, error) {
	v, err := r.readValue(cached)
	return v&(1<<bit) != 0, err
}

func (r *registerCache) setBit(bit uint8, value, cached bool) error {
	v, err := r.readValue(cached)
	if err != nil {
		return err
	}
	if value {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	return r.writeValue(v, cached)
}

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Transport drives the register select, enable and D4-D7 lines of the display.
//
// Dev sequences the protocol; a Transport only sets line levels.
type Transport interface {
	fmt.Stringer
	// Setup switches every line to output and drives it low.
	Setup() error
	// Present sets register select and puts nibble (bits 0-3) on D4-D7
	// without touching enable.
	Present(rs bool, nibble byte) error
	// Enable sets the enable line.
	Enable(high bool) error
}

// Register is a GPIO expander output latch that changes several pins in one
// bus transaction. Only the pins set in mask are modified.
type Register interface {
	WriteMasked(value, mask uint16) error
}

// Wiring maps the display lines to expander pin numbers. Pins that are not
// connected are -1.
type Wiring struct {
	RS        int
	RW        int
	E         int
	D4        int
	D5        int
	D6        int
	D7        int
	Backlight int
}

var (
	// MCP23008Wiring is the I²C side of the Adafruit I2C/SPI backpack.
	MCP23008Wiring = Wiring{RS: 1, RW: -1, E: 2, D4: 3, D5: 4, D6: 5, D7: 6, Backlight: 7}
	// HC595Wiring is the SPI side of the Adafruit I2C/SPI backpack. Data
	// lines are in reverse order from the I²C side.
	HC595Wiring = Wiring{RS: 1, RW: -1, E: 2, D4: 6, D5: 5, D6: 4, D7: 3, Backlight: 7}
	// PCF8574Wiring is the common LCD1602/LCD2004 I²C backpack.
	PCF8574Wiring = Wiring{RS: 0, RW: 1, E: 2, D4: 4, D5: 5, D6: 6, D7: 7, Backlight: 3}
	// RGBShieldWiring is the MCP23017 RGB LCD + keypad shield. The backlight
	// anodes aren't part of the LCD register.
	RGBShieldWiring = Wiring{RS: 15, RW: 14, E: 13, D4: 12, D5: 11, D6: 10, D7: 9, Backlight: -1}
)

func bit(pin int) uint16 {
	if pin < 0 {
		return 0
	}
	return 1 << pin
}

func (w *Wiring) mask() uint16 {
	return bit(w.RS) | bit(w.RW) | bit(w.E) | bit(w.Backlight) | w.data(0x0f)
}

// data spreads nibble over D4-D7.
func (w *Wiring) data(nibble byte) uint16 {
	var v uint16
	for i, pin := range [4]int{w.D4, w.D5, w.D6, w.D7} {
		if nibble&(1<<i) != 0 {
			v |= bit(pin)
		}
	}
	return v
}

// pinTransport drives each line through its own pin.
type pinTransport struct {
	rs   gpio.PinOut
	e    gpio.PinOut
	data [4]gpio.PinOut
}

// NewPinTransport returns a Transport writing each line individually.
func NewPinTransport(rs, e, d4, d5, d6, d7 gpio.PinOut) Transport {
	return &pinTransport{rs: rs, e: e, data: [4]gpio.PinOut{d4, d5, d6, d7}}
}

func (p *pinTransport) Setup() error {
	for _, pin := range []gpio.PinOut{p.rs, p.e, p.data[0], p.data[1], p.data[2], p.data[3]} {
		if err := pin.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

func (p *pinTransport) Present(rs bool, nibble byte) error {
	if err := p.rs.Out(gpio.Level(rs)); err != nil {
		return err
	}
	for i, pin := range p.data {
		if err := pin.Out(gpio.Level(nibble&(1<<i) != 0)); err != nil {
			return err
		}
	}
	return nil
}

func (p *pinTransport) Enable(high bool) error {
	return p.e.Out(gpio.Level(high))
}

func (p *pinTransport) String() string {
	return fmt.Sprintf("pins{rs=%s e=%s d4-7=%s,%s,%s,%s}", p.rs, p.e, p.data[0], p.data[1], p.data[2], p.data[3])
}

// registerTransport packs every line into one expander register write.
type registerTransport struct {
	reg   Register
	w     Wiring
	bl    *Backlight
	state uint16
}

// NewRegisterTransport returns a Transport that sets register select, the
// backlight bit and the data nibble with a single register write, and each
// enable edge with one more. That is 3 bus transactions per nibble instead of
// the 8 needed when the expander pins are written one by one.
//
// bl may be nil when the wiring has no backlight bit.
func NewRegisterTransport(reg Register, w Wiring, bl *Backlight) Transport {
	return &registerTransport{reg: reg, w: w, bl: bl}
}

func (r *registerTransport) backlightBit() uint16 {
	if r.bl == nil || !bool(r.bl.Level()) {
		return 0
	}
	return bit(r.w.Backlight)
}

func (r *registerTransport) Setup() error {
	r.state = r.backlightBit()
	return r.reg.WriteMasked(r.state, r.w.mask())
}

func (r *registerTransport) Present(rs bool, nibble byte) error {
	v := r.state & bit(r.w.E)
	if rs {
		v |= bit(r.w.RS)
	}
	v |= r.backlightBit() | r.w.data(nibble)
	r.state = v
	return r.reg.WriteMasked(v, r.w.mask())
}

// Enable skips the write when E is already at the requested level, so a
// pulse costs two writes.
func (r *registerTransport) Enable(high bool) error {
	next := r.state &^ bit(r.w.E)
	if high {
		next |= bit(r.w.E)
	}
	if next == r.state {
		return nil
	}
	r.state = next
	return r.reg.WriteMasked(r.state, r.w.mask())
}

func (r *registerTransport) String() string {
	return fmt.Sprint(r.reg)
}

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var (
	errNoColor  = errors.New("backend has no RGB backlight")
	errNoKeypad = errors.New("backend has no keypad")
)

// display is an opened backend.
type display struct {
	*hd44780.Dev
	// variant is the Mono, RGB or Shield wrapping Dev.
	variant conn.Resource
	keypad  *hd44780.Keypad
	sim     *simView
	closers []io.Closer
}

func (d *display) SetBacklight(on bool) error {
	if b, ok := d.variant.(interface{ SetBacklight(bool) error }); ok {
		return b.SetBacklight(on)
	}
	return hd44780.ErrNoBacklight
}

func (d *display) SetColor(red, green, blue float64) error {
	if c, ok := d.variant.(interface {
		SetColor(red, green, blue float64) error
	}); ok {
		return c.SetColor(red, green, blue)
	}
	return errNoColor
}

func (d *display) SetColorHex(c uint32) error {
	if r, ok := d.variant.(interface{ SetColorHex(uint32) error }); ok {
		return r.SetColorHex(c)
	}
	return errNoColor
}

// Off clears the display and turns it and its backlight off.
func (d *display) Off() error {
	return d.variant.Halt()
}

// Close releases the buses. The display keeps showing its content.
func (d *display) Close() error {
	var err error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if e := d.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// refresh shows the simulated display. It is a no-op on hardware.
func (d *display) refresh() error {
	if d.sim == nil {
		return nil
	}
	return d.sim.show()
}

func (c *Config) opts() *hd44780.Opts {
	return &hd44780.Opts{
		BacklightInverted: c.BacklightInverted,
		ColumnAlign:       c.ColumnAlign,
		Logger:            log.WithField("backend", c.Backend),
	}
}

// openDisplay initializes the display described by c. out receives the
// simulated display.
func openDisplay(c *Config, out io.Writer) (*display, error) {
	if c.Backend == backendSim {
		return openSim(c, out)
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	d := &display{}
	var err error
	switch c.Backend {
	case backendGPIO:
		err = d.openGPIO(c)
	case backendGPIORGB:
		err = d.openGPIORGB(c)
	case backendSPI:
		err = d.openSPI(c)
	default:
		err = d.openI2C(c)
	}
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	log.WithField("display", d.Dev).Debug("opened")
	return d, nil
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	return p, nil
}

// pins looks up the data pins in order rs, e, d4, d5, d6, d7.
func (c *Config) pins() ([6]gpio.PinOut, error) {
	var out [6]gpio.PinOut
	for i, name := range []string{c.GPIO.RS, c.GPIO.Enable, c.GPIO.D4, c.GPIO.D5, c.GPIO.D6, c.GPIO.D7} {
		p, err := pinByName(name)
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

func (d *display) openGPIO(c *Config) error {
	p, err := c.pins()
	if err != nil {
		return err
	}
	var bl gpio.PinOut
	if c.GPIO.Backlight != "" {
		if bl, err = pinByName(c.GPIO.Backlight); err != nil {
			return err
		}
	}
	m, err := hd44780.NewGPIO(p[0], p[1], p[2], p[3], p[4], p[5], bl, c.Cols, c.Rows, c.opts())
	if err != nil {
		return err
	}
	d.Dev, d.variant = m.Dev, m
	return nil
}

func (c *Config) anode(name string) (hd44780.Anode, error) {
	p, err := pinByName(name)
	if err != nil {
		return hd44780.Anode{}, err
	}
	if c.GPIO.PWM {
		return hd44780.PWMAnode(p, physic.Frequency(c.GPIO.PWMHz)*physic.Hertz), nil
	}
	return hd44780.DigitalAnode(p), nil
}

func (d *display) openGPIORGB(c *Config) error {
	p, err := c.pins()
	if err != nil {
		return err
	}
	var rw gpio.PinOut
	if c.GPIO.RW != "" {
		if rw, err = pinByName(c.GPIO.RW); err != nil {
			return err
		}
	}
	var anodes [3]hd44780.Anode
	for i, name := range []string{c.GPIO.Red, c.GPIO.Green, c.GPIO.Blue} {
		if anodes[i], err = c.anode(name); err != nil {
			return err
		}
	}
	r, err := hd44780.NewGPIORGB(p[0], p[1], p[2], p[3], p[4], p[5], rw, anodes[0], anodes[1], anodes[2], c.Cols, c.Rows, c.opts())
	if err != nil {
		return err
	}
	d.Dev, d.variant = r.Dev, r
	return nil
}

func (d *display) openSPI(c *Config) error {
	port, err := spireg.Open(c.SPI.Port)
	if err != nil {
		return err
	}
	d.closers = append(d.closers, port)
	conn, err := port.Connect(physic.Frequency(c.SPI.Hz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		return err
	}
	m, err := hd44780.NewSPIBackpack(conn, c.Cols, c.Rows, c.opts())
	if err != nil {
		return err
	}
	d.Dev, d.variant = m.Dev, m
	return nil
}

func (d *display) openI2C(c *Config) error {
	bus, err := i2creg.Open(c.I2C.Bus)
	if err != nil {
		return err
	}
	d.closers = append(d.closers, bus)
	switch c.Backend {
	case backendMCP23008, backendPCF8574:
		open := hd44780.NewMCP23008Backpack
		if c.Backend == backendPCF8574 {
			open = hd44780.NewPCF8574Backpack
		}
		m, err := open(bus, c.i2cAddress(), c.Cols, c.Rows, c.opts())
		if err != nil {
			return err
		}
		d.Dev, d.variant = m.Dev, m
	default:
		open := hd44780.NewRGBShield
		if c.Backend == backendSainsmart {
			open = hd44780.NewSainsmartShield
		}
		s, err := open(bus, c.i2cAddress(), c.Cols, c.Rows, c.opts())
		if err != nil {
			return err
		}
		d.Dev, d.variant, d.keypad = s.Dev, s, s.Keypad
	}
	return nil
}

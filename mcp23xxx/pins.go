// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

type portpin struct {
	dev    *Dev
	number int
	name   string
}

func (p *portpin) port() *port {
	return p.dev.ports[p.number/8]
}

func (p *portpin) bit() uint8 {
	return uint8(p.number % 8)
}

func (p *portpin) String() string {
	return p.name
}

// Halt switches the pin to a floating input.
func (p *portpin) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *portpin) Name() string {
	return p.name
}

func (p *portpin) Number() int {
	return p.number
}

func (p *portpin) Function() string {
	return string(p.Func())
}

func (p *portpin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return errors.New("mcp23xxx: edge detection not supported")
	}
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	switch pull {
	case gpio.PullDown:
		return errors.New("mcp23xxx: PullDown is not supported")
	case gpio.PullUp:
		if err := p.port().gppu.setBit(p.bit(), true, true); err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
	case gpio.Float:
		if err := p.port().gppu.setBit(p.bit(), false, true); err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
	}
	if err := p.port().iodir.setBit(p.bit(), true, true); err != nil {
		return fmt.Errorf("mcp23xxx: %w", err)
	}
	return nil
}

// Read samples the pin. gpio.PinIn has no way to report a bus error, so it
// is logged and Low returned.
func (p *portpin) Read() gpio.Level {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	v, err := p.port().gpio.getBit(p.bit(), false)
	if err != nil {
		logrus.WithError(err).WithField("pin", p.name).Warn("mcp23xxx: read failed")
		return gpio.Low
	}
	return gpio.Level(v)
}

func (p *portpin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *portpin) Pull() gpio.Pull {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	v, err := p.port().gppu.getBit(p.bit(), true)
	if err != nil {
		return gpio.PullNoChange
	}
	if v {
		return gpio.PullUp
	}
	return gpio.Float
}

func (p *portpin) DefaultPull() gpio.Pull {
	return gpio.Float
}

func (p *portpin) Out(l gpio.Level) error {
	var v uint16
	if l {
		v = 1 << p.number
	}
	return p.dev.WriteMasked(v, 1<<p.number)
}

func (p *portpin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("mcp23xxx: PWM is not supported")
}

func (p *portpin) Func() pin.Func {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	v, err := p.port().iodir.getBit(p.bit(), true)
	if err != nil {
		return pin.FuncNone
	}
	if v {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *portpin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *portpin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT:
		p.dev.mu.Lock()
		defer p.dev.mu.Unlock()
		if err := p.port().iodir.setBit(p.bit(), false, true); err != nil {
			return fmt.Errorf("mcp23xxx: %w", err)
		}
		return nil
	default:
		return errors.New("mcp23xxx: Function not supported: " + string(f))
	}
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

var _ gpio.PinIO = &portpin{}
var _ pin.PinFunc = &portpin{}

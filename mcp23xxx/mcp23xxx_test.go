// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const address uint16 = 0x20

var mcp23008Init = []i2ctest.IO{
	{Addr: address, W: []byte{0x00, 0xff}},
	{Addr: address, W: []byte{0x06, 0x00}},
	{Addr: address, W: []byte{0x0a, 0x00}},
}

var mcp23017Init = []i2ctest.IO{
	{Addr: address, W: []byte{0x00, 0xff}},
	{Addr: address, W: []byte{0x0c, 0x00}},
	{Addr: address, W: []byte{0x14, 0x00}},
	{Addr: address, W: []byte{0x01, 0xff}},
	{Addr: address, W: []byte{0x0d, 0x00}},
	{Addr: address, W: []byte{0x15, 0x00}},
}

func ops(init []i2ctest.IO, more ...i2ctest.IO) []i2ctest.IO {
	return append(append([]i2ctest.IO{}, init...), more...)
}

func TestNewI2C_variants(t *testing.T) {
	for _, v := range []struct {
		variant Variant
		init    []i2ctest.IO
		ports   int
	}{
		{MCP23008, mcp23008Init, 1},
		{MCP23017, mcp23017Init, 2},
	} {
		bus := &i2ctest.Playback{Ops: ops(v.init)}
		dev, err := NewI2C(bus, v.variant, address)
		if err != nil {
			t.Fatal(err)
		}
		if len(dev.Pins) != v.ports {
			t.Errorf("%s: got %d ports, want %d", v.variant, len(dev.Pins), v.ports)
		}
		if s := dev.String(); s != string(v.variant)+"_20" {
			t.Errorf("unexpected name %q", s)
		}
		if err := dev.Halt(); err != nil {
			t.Fatal(err)
		}
		if err := bus.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewI2C_unknown(t *testing.T) {
	if _, err := NewI2C(&i2ctest.Playback{}, Variant("MCP23S17"), address); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewI2C_busError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	if _, err := NewI2C(bus, MCP23008, address); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteMasked_both_ports(t *testing.T) {
	bus := &i2ctest.Playback{Ops: ops(mcp23017Init,
		i2ctest.IO{Addr: address, W: []byte{0x00, 0xfd}},
		i2ctest.IO{Addr: address, W: []byte{0x01, 0x00}},
		// One sequential write for OLATA and OLATB.
		i2ctest.IO{Addr: address, W: []byte{0x14, 0x02, 0x81}},
		// Unchanged value is skipped, then only port A changes.
		i2ctest.IO{Addr: address, W: []byte{0x14, 0x00}},
	)}
	dev, err := NewI2C(bus, MCP23017, address)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Halt()
	if err := dev.WriteMasked(0x8102, 0xff02); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteMasked(0x8102, 0xff02); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteMasked(0x0000, 0x0002); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadMasked(t *testing.T) {
	bus := &i2ctest.Playback{Ops: ops(mcp23017Init,
		i2ctest.IO{Addr: address, W: []byte{0x12}, R: []byte{0x3e}},
		i2ctest.IO{Addr: address, W: []byte{0x12}, R: []byte{0x34, 0x12}},
	)}
	dev, err := NewI2C(bus, MCP23017, address)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Halt()
	v, err := dev.ReadMasked(0x001f)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x001e {
		t.Errorf("got 0x%04x, want 0x001e", v)
	}
	if v, err = dev.ReadMasked(0xffff); err != nil {
		t.Fatal(err)
	}
	if v != 0x1234 {
		t.Errorf("got 0x%04x, want 0x1234", v)
	}
}

func TestPin_out(t *testing.T) {
	bus := &i2ctest.Playback{Ops: ops(mcp23008Init,
		i2ctest.IO{Addr: address, W: []byte{0x00, 0x7f}},
		i2ctest.IO{Addr: address, W: []byte{0x0a, 0x80}},
		i2ctest.IO{Addr: address, W: []byte{0x0a, 0x00}},
	)}
	dev, err := NewI2C(bus, MCP23008, address)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Halt()
	p := gpioreg.ByName("MCP23008_20_PA7")
	if p == nil {
		t.Fatal("pin not registered")
	}
	if p.Number() != 7 {
		t.Errorf("got number %d", p.Number())
	}
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if f := dev.Pin(7).(*portpin).Func(); f != gpio.OUT {
		t.Errorf("got func %s", f)
	}
	// Already high.
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := p.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPin_in_pullup(t *testing.T) {
	bus := &i2ctest.Playback{Ops: ops(mcp23017Init,
		i2ctest.IO{Addr: address, W: []byte{0x0c, 0x01}},
		i2ctest.IO{Addr: address, W: []byte{0x12}, R: []byte{0x00}},
		i2ctest.IO{Addr: address, W: []byte{0x12}, R: []byte{0x01}},
	)}
	dev, err := NewI2C(bus, MCP23017, address)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Halt()
	p := dev.Pin(0)
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if p.Pull() != gpio.PullUp {
		t.Errorf("got pull %s", p.Pull())
	}
	if l := p.Read(); l != gpio.Low {
		t.Errorf("got %s", l)
	}
	if l := p.Read(); l != gpio.High {
		t.Errorf("got %s", l)
	}
	if err := p.In(gpio.PullDown, gpio.NoEdge); err == nil {
		t.Error("PullDown should fail")
	}
	if err := p.In(gpio.PullUp, gpio.BothEdges); err == nil {
		t.Error("edge detection should fail")
	}
	if err := p.PWM(gpio.DutyHalf, 0); err == nil {
		t.Error("PWM should fail")
	}
}

func TestNewI2C_duplicatePins(t *testing.T) {
	hook := logtest.NewGlobal()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetLevel(level)
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})

	bus := &i2ctest.Playback{Ops: ops(mcp23008Init, mcp23008Init...)}
	first, err := NewI2C(bus, MCP23008, address)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Halt()
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("unexpected log entries: %d", len(hook.AllEntries()))
	}
	second, err := NewI2C(bus, MCP23008, address)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Halt()
	entries := hook.AllEntries()
	if len(entries) != 8 {
		t.Fatalf("got %d log entries, want 8", len(entries))
	}
	for _, e := range entries {
		if e.Level != logrus.DebugLevel || e.Message != "mcp23xxx: pin not registered" {
			t.Errorf("unexpected entry %s %q", e.Level, e.Message)
		}
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

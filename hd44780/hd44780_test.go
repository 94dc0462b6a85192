// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
)

type fixture struct {
	dev    *Dev
	lines  *hd44780test.Lines
	sim    *hd44780test.Sim
	sleeps []time.Duration
}

func newFixture(t *testing.T, cols, rows int, opts *Opts) *fixture {
	t.Helper()
	f := &fixture{lines: hd44780test.NewLines(), sim: hd44780test.NewSim(cols, rows)}
	f.lines.Attach(f.sim)
	rs, e, d4, d5, d6, d7 := f.lines.Pins()
	d, err := newDev(NewPinTransport(rs, e, d4, d5, d6, d7), cols, rows, opts, func(d time.Duration) {
		f.sleeps = append(f.sleeps, d)
	})
	if err != nil {
		t.Fatal(err)
	}
	f.dev = d
	f.reset()
	return f
}

func (f *fixture) reset() {
	f.lines.Reset()
	f.sleeps = nil
}

func (f *fixture) transfers() []hd44780test.Transfer {
	return f.lines.Transfers()
}

func cmds(b ...byte) []hd44780test.Transfer {
	out := make([]hd44780test.Transfer, len(b))
	for i, v := range b {
		out[i] = hd44780test.Transfer{Value: v}
	}
	return out
}

func checkTransfers(t *testing.T, got, want []hd44780test.Transfer) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("#%d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInit(t *testing.T) {
	lines := hd44780test.NewLines()
	rs, e, d4, d5, d6, d7 := lines.Pins()
	d, err := newDev(NewPinTransport(rs, e, d4, d5, d6, d7), 16, 2, nil, func(time.Duration) {})
	if err != nil {
		t.Fatal(err)
	}
	checkTransfers(t, lines.Transfers(), cmds(0x33, 0x32, 0x0c, 0x28, 0x06, 0x01))
	if lines.Pulses() != 12 {
		t.Errorf("got %d pulses, want 12", lines.Pulses())
	}
	if !d.DisplayOn() || d.CursorVisible() || d.Blinking() {
		t.Error("unexpected control flags")
	}
	if d.TextDirection() != LeftToRight {
		t.Error("expected LeftToRight")
	}
	if s := d.String(); !strings.HasPrefix(s, "HD44780::") {
		t.Errorf("unexpected String() %q", s)
	}
}

func TestInit_geometry(t *testing.T) {
	for _, g := range [][2]int{{16, 0}, {16, 5}, {0, 2}, {-1, 1}} {
		lines := hd44780test.NewLines()
		rs, e, d4, d5, d6, d7 := lines.Pins()
		if _, err := New(NewPinTransport(rs, e, d4, d5, d6, d7), g[0], g[1], nil); !errors.Is(err, ErrGeometry) {
			t.Errorf("%v: got %v", g, err)
		}
		if lines.Writes() != 0 {
			t.Errorf("%v: nothing should be written", g)
		}
	}
}

func TestInit_setupFailure(t *testing.T) {
	lines := hd44780test.NewLines()
	lines.FailAfter(3)
	rs, e, d4, d5, d6, d7 := lines.Pins()
	if _, err := newDev(NewPinTransport(rs, e, d4, d5, d6, d7), 16, 2, nil, func(time.Duration) {}); !errors.Is(err, hd44780test.ErrInjected) {
		t.Fatalf("got %v", err)
	}
	if lines.Pulses() != 0 {
		t.Error("no command may be sent when setup fails")
	}
}

func TestSetCursor(t *testing.T) {
	f := newFixture(t, 20, 4, nil)
	data := []struct {
		col, row       int
		cmd            byte
		wantCol, wantR int
	}{
		{0, 0, 0x80, 0, 0},
		{5, 1, 0xc5, 5, 1},
		{3, 2, 0x97, 3, 2},
		{19, 3, 0xe7, 19, 3},
		{99, 9, 0xe7, 19, 3},
		{-4, -1, 0x80, 0, 0},
	}
	for _, line := range data {
		f.reset()
		if err := f.dev.SetCursor(line.col, line.row); err != nil {
			t.Fatal(err)
		}
		checkTransfers(t, f.transfers(), cmds(line.cmd))
		if c, r := f.dev.Cursor(); c != line.wantCol || r != line.wantR {
			t.Errorf("SetCursor(%d, %d): cursor at %d,%d", line.col, line.row, c, r)
		}
	}
}

func TestControl(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	steps := []struct {
		fn   func() error
		want byte
	}{
		{func() error { return f.dev.ShowCursor(true) }, 0x0e},
		{func() error { return f.dev.Blink(true) }, 0x0f},
		{func() error { return f.dev.Display(false) }, 0x0b},
		{func() error { return f.dev.Display(true) }, 0x0f},
		{func() error { return f.dev.ShowCursor(false) }, 0x0d},
		// Setting the same value again still sends the command.
		{func() error { return f.dev.Blink(true) }, 0x0d},
		{func() error { return f.dev.SetTextDirection(RightToLeft) }, 0x04},
		{func() error { return f.dev.SetTextDirection(LeftToRight) }, 0x06},
		{func() error { return f.dev.Scroll(ScrollLeft) }, 0x18},
		{func() error { return f.dev.Scroll(ScrollRight) }, 0x1c},
		{f.dev.Home, 0x02},
		{f.dev.Clear, 0x01},
	}
	for i, step := range steps {
		f.reset()
		if err := step.fn(); err != nil {
			t.Fatal(err)
		}
		got := f.transfers()
		if len(got) != 1 || got[0] != (hd44780test.Transfer{Value: step.want}) {
			t.Errorf("step %d: got %v, want 0x%02x", i, got, step.want)
		}
	}
	if f.dev.CursorVisible() || !f.dev.Blinking() || !f.dev.DisplayOn() {
		t.Error("unexpected control getters")
	}
}

func TestScroll_keepsCursor(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	if err := f.dev.SetCursor(4, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.dev.Scroll(ScrollRight); err != nil {
		t.Fatal(err)
	}
	if c, r := f.dev.Cursor(); c != 4 || r != 1 {
		t.Errorf("cursor moved to %d,%d", c, r)
	}
}

func TestTiming(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	pulse := []time.Duration{delayPulse, delayPulse, delayPulse, delayPulse, delayPulse, delayPulse}
	if err := f.dev.Clear(); err != nil {
		t.Fatal(err)
	}
	want := append(append([]time.Duration{time.Millisecond}, pulse...), 3*time.Millisecond)
	checkSleeps(t, f.sleeps, want)

	f.reset()
	if err := f.dev.ShowCursor(true); err != nil {
		t.Fatal(err)
	}
	checkSleeps(t, f.sleeps, append([]time.Duration{time.Millisecond}, pulse...))

	f.reset()
	if err := f.dev.Home(); err != nil {
		t.Fatal(err)
	}
	checkSleeps(t, f.sleeps, want)
}

func checkSleeps(t *testing.T, got, want []time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] < want[i] {
			t.Errorf("#%d: slept %s, need at least %s", i, got[i], want[i])
		}
	}
}

func TestCreateChar(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	pattern := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	// Slots are masked to 0-7.
	if err := f.dev.CreateChar(9, pattern); err != nil {
		t.Fatal(err)
	}
	want := cmds(0x48)
	for _, b := range pattern {
		want = append(want, hd44780test.Transfer{RS: true, Value: b})
	}
	checkTransfers(t, f.transfers(), want)
	if g := f.sim.Frame().Glyphs[1]; g != pattern {
		t.Errorf("got glyph %v", g)
	}
}

func TestWrite(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	n, err := f.dev.Write([]byte{'o', 'k', 0x01})
	if err != nil || n != 3 {
		t.Fatalf("got %d, %v", n, err)
	}
	checkTransfers(t, f.transfers(), []hd44780test.Transfer{{RS: true, Value: 'o'}, {RS: true, Value: 'k'}, {RS: true, Value: 0x01}})
}

func TestWrite_error(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	// One byte is 2 * (5 + 3) line writes.
	f.lines.FailAfter(f.lines.Writes() + 16 + 3)
	n, err := f.dev.Write([]byte("abc"))
	if !errors.Is(err, hd44780test.ErrInjected) || n != 1 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestHalt(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	if err := f.dev.Halt(); err != nil {
		t.Fatal(err)
	}
	checkTransfers(t, f.transfers(), cmds(0x01, 0x08))
	if f.sim.Frame().DisplayOn {
		t.Error("display should be off")
	}
}

func TestClear_twice(t *testing.T) {
	f := newFixture(t, 16, 2, nil)
	if err := f.dev.Message("abc\ndef"); err != nil {
		t.Fatal(err)
	}
	f.reset()
	for range 2 {
		if err := f.dev.Clear(); err != nil {
			t.Fatal(err)
		}
	}
	fr := f.sim.Frame()
	if got, want := fr.Text(), strings.Repeat(" ", 16)+"\n"+strings.Repeat(" ", 16); got != want {
		t.Errorf("got %q", got)
	}
	if fr.CursorCol != 0 || fr.CursorRow != 0 {
		t.Errorf("cursor at %d,%d", fr.CursorCol, fr.CursorRow)
	}
	n := 0
	for _, d := range f.sleeps {
		if d == delayExecute {
			n++
		}
	}
	if n != 2 {
		t.Errorf("got %d clear waits, want 2", n)
	}
}

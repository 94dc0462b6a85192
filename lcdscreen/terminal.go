// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdscreen

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// TerminalOpts represents the options available for Terminal.
type TerminalOpts struct {
	// W defaults to a colorable stdout.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Terminal draws frames on a terminal, framed by a border in the backlight
// color. Each frame overwrites the previous one.
type Terminal struct {
	w       io.Writer
	palette ansi256.Palette
	drawn   int
	buf     bytes.Buffer
}

// NewTerminal returns a Terminal.
func NewTerminal(opts *TerminalOpts) *Terminal {
	if opts == nil {
		opts = &TerminalOpts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Terminal{w: w, palette: *p}
}

func (t *Terminal) String() string {
	return "Terminal"
}

// Halt implements conn.Resource.
//
// It resets the colors so the terminal is not corrupted.
func (t *Terminal) Halt() error {
	_, err := io.WriteString(t.w, "\033[0m\n")
	return err
}

// Draw writes f. Custom characters are shown as '#' and the cursor cell is
// underlined.
func (t *Terminal) Draw(f hd44780test.Frame, backlight color.NRGBA) error {
	// This code is designed to minimize the amount of memory allocated per call.
	t.buf.Reset()
	if t.drawn > 0 {
		fmt.Fprintf(&t.buf, "\033[%dA", t.drawn)
	}
	block := t.palette.Block(backlight)
	border := strings.Repeat(block, f.Cols+2)
	_, _ = t.buf.WriteString("\r\033[0m" + border + "\033[0m\n")
	text := strings.Split(f.Text(), "\n")
	for r, line := range text {
		_, _ = t.buf.WriteString("\r" + block + "\033[0m")
		for c := range len(line) {
			ch := line[c]
			if !f.DisplayOn {
				ch = ' '
			}
			if f.DisplayOn && r == f.CursorRow && c == f.CursorCol && (f.CursorOn || f.BlinkOn) {
				fmt.Fprintf(&t.buf, "\033[4m%c\033[24m", ch)
				continue
			}
			_ = t.buf.WriteByte(ch)
		}
		_, _ = t.buf.WriteString(block + "\033[0m\n")
	}
	_, _ = t.buf.WriteString("\r" + border + "\033[0m\n")
	t.drawn = len(text) + 2
	_, err := t.buf.WriteTo(t.w)
	return err
}

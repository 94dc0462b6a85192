// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/GermanBionicSystems/charlcd/lcdscreen"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// simView is a display without hardware: the lines feed a simulated
// controller, the RGB backlight is made of fake PWM pins.
type simView struct {
	lines   *hd44780test.Lines
	sim     *hd44780test.Sim
	rgb     *hd44780.RGB
	scale   int
	out     io.Writer
	term    *lcdscreen.Terminal
	streams []*lcdscreen.Stream
}

func openSim(c *Config, out io.Writer) (*display, error) {
	hex, err := parseHexColor(c.Sim.Color)
	if err != nil {
		return nil, err
	}
	v := &simView{
		lines: hd44780test.NewLines(),
		sim:   hd44780test.NewSim(c.Cols, c.Rows),
		scale: c.Sim.Scale,
		out:   out,
	}
	v.lines.Attach(v.sim)
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		v.term = lcdscreen.NewTerminal(nil)
	}
	rs, e, d4, d5, d6, d7 := v.lines.Pins()
	red := hd44780.PWMAnode(&gpiotest.Pin{N: "SIM_RED"}, 0)
	green := hd44780.PWMAnode(&gpiotest.Pin{N: "SIM_GREEN"}, 0)
	blue := hd44780.PWMAnode(&gpiotest.Pin{N: "SIM_BLUE"}, 0)
	rgb, err := hd44780.NewGPIORGB(rs, e, d4, d5, d6, d7, v.lines.RWPin(), red, green, blue, c.Cols, c.Rows, c.opts())
	if err != nil {
		return nil, err
	}
	if err := rgb.SetColorHex(hex); err != nil {
		return nil, err
	}
	v.rgb = rgb
	return &display{Dev: rgb.Dev, variant: rgb, sim: v}, nil
}

// backlight returns the color of the lit backlight.
func (v *simView) backlight() color.NRGBA {
	c := v.rgb.Color()
	return color.NRGBA{channel(c[0]), channel(c[1]), channel(c[2]), 0xff}
}

func channel(percent float64) uint8 {
	switch {
	case percent <= 0:
		return 0
	case percent >= 100:
		return 0xff
	}
	return uint8(math.Round(percent * 255 / 100))
}

func (v *simView) image() image.Image {
	return lcdscreen.Render(v.sim.Frame(), &lcdscreen.ImageOpts{Scale: v.scale, Backlight: v.backlight()})
}

func (v *simView) show() error {
	f := v.sim.Frame()
	if len(v.streams) != 0 {
		img := v.image()
		for _, s := range v.streams {
			s.Update(img)
		}
	}
	if v.term != nil {
		return v.term.Draw(f, v.backlight())
	}
	if !f.DisplayOn {
		_, err := fmt.Fprintln(v.out, "(display off)")
		return err
	}
	_, err := fmt.Fprintln(v.out, f.Text())
	return err
}

func (v *simView) stream(format lcdscreen.ImageFormat) *lcdscreen.Stream {
	size := v.image().Bounds().Size()
	s := lcdscreen.NewStream(&lcdscreen.StreamOpts{Width: size.X, Height: size.Y, Format: format})
	v.streams = append(v.streams, s)
	return s
}

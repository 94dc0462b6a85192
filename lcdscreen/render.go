// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdscreen

import (
	"image"
	"image/color"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Cell geometry in dots. Text uses the 7x13 font; custom characters are 5x8
// and placed at glyphX, glyphY inside the cell.
const (
	cellW  = 7
	cellH  = 13
	pitchX = cellW + 1
	pitchY = cellH + 2
	margin = 4
	glyphX = 1
	glyphY = 2
)

var (
	// DefaultBacklight is the classic yellow-green STN panel.
	DefaultBacklight = color.NRGBA{0x9c, 0xc8, 0x3c, 0xff}
	// DefaultInk is the color of lit dots.
	DefaultInk = color.NRGBA{0x1e, 0x28, 0x14, 0xff}
)

// ImageOpts controls Render.
type ImageOpts struct {
	// Scale is the size of a dot in pixels. Defaults to 4.
	Scale int
	// Backlight is the background color. Defaults to DefaultBacklight.
	Backlight color.Color
	// Ink is the color of lit dots. Defaults to DefaultInk.
	Ink color.Color
}

func (o *ImageOpts) withDefaults() ImageOpts {
	var out ImageOpts
	if o != nil {
		out = *o
	}
	if out.Scale <= 0 {
		out.Scale = 4
	}
	if out.Backlight == nil {
		out.Backlight = DefaultBacklight
	}
	if out.Ink == nil {
		out.Ink = DefaultInk
	}
	return out
}

// Size returns the size of the image Render produces for a cols x rows
// display.
func Size(cols, rows int, opts *ImageOpts) image.Point {
	o := opts.withDefaults()
	return image.Pt((2*margin+cols*pitchX)*o.Scale, (2*margin+rows*pitchY)*o.Scale)
}

// Render draws f as a dot matrix display. A display that is off shows only
// its backlight. The cursor cell is filled when blinking is on, since a
// still image can't blink.
func Render(f hd44780test.Frame, opts *ImageOpts) image.Image {
	o := opts.withDefaults()
	size := Size(f.Cols, f.Rows, &o)
	dc := gg.NewContext(size.X, size.Y)
	dc.SetColor(o.Backlight)
	dc.Clear()
	if !f.DisplayOn {
		return dc.Image()
	}
	s := float64(o.Scale)
	for r, row := range f.Cells {
		for c, code := range row {
			m := cellMask(&f, code)
			if r == f.CursorRow && c == f.CursorCol {
				switch {
				case f.BlinkOn:
					fillRows(m, 0, cellH)
				case f.CursorOn:
					fillRows(m, cellH-1, cellH)
				}
			}
			x0, y0 := margin+c*pitchX, margin+r*pitchY
			for y := range cellH {
				for x := range cellW {
					if m.AlphaAt(x, y).A >= 0x80 {
						dc.DrawRectangle(float64(x0+x)*s, float64(y0+y)*s, s, s)
					}
				}
			}
		}
	}
	dc.SetColor(o.Ink)
	dc.Fill()
	return dc.Image()
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}

// cellMask returns the dots lit for code. Codes 0-15 are the 8 custom
// characters, twice.
func cellMask(f *hd44780test.Frame, code byte) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, cellW, cellH))
	if code < 16 {
		for y, bits := range f.Glyphs[code&7] {
			for x := range 5 {
				if bits&(0x10>>x) != 0 {
					m.SetAlpha(glyphX+x, glyphY+y, color.Alpha{0xff})
				}
			}
		}
		return m
	}
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  m,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(string(rune(code)))
	return m
}

func fillRows(m *image.Alpha, from, to int) {
	for y := from; y < to; y++ {
		for x := range cellW {
			m.SetAlpha(x, y, color.Alpha{0xff})
		}
	}
}

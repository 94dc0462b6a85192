// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdscreen"
	log "github.com/sirupsen/logrus"
)

var errSimOnly = errors.New("only available with the sim backend")

type messageArgs struct {
	text     string
	col, row int
	rtl      bool
	align    bool
	fold     bool
}

// unescape turns the two characters `\n` typed on a command line into a
// newline.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func runMessage(d *display, a messageArgs) error {
	text := unescape(a.text)
	if a.fold {
		text = hd44780.FoldASCII(text)
	}
	if a.rtl {
		if err := d.SetTextDirection(hd44780.RightToLeft); err != nil {
			return err
		}
	}
	if a.align {
		d.SetColumnAlign(true)
	}
	if a.col > 0 || a.row > 0 {
		if err := d.SetCursor(a.col, a.row); err != nil {
			return err
		}
	}
	if err := d.Message(text); err != nil {
		return err
	}
	return d.refresh()
}

func runClear(d *display) error {
	if err := d.Clear(); err != nil {
		return err
	}
	return d.refresh()
}

func runColor(d *display, rgb []float64, hex string) error {
	if hex != "" {
		c, err := parseHexColor(hex)
		if err != nil {
			return err
		}
		if err := d.SetColorHex(c); err != nil {
			return err
		}
		return d.refresh()
	}
	if len(rgb) != 3 {
		return fmt.Errorf("want red, green and blue, got %d values", len(rgb))
	}
	if err := d.SetColor(rgb[0], rgb[1], rgb[2]); err != nil {
		return err
	}
	return d.refresh()
}

// parseGlyph parses 8 rows of 5 pixels. Each row is a number in any base
// strconv understands: "0b10001", "0x11", "17".
func parseGlyph(rows []string) ([8]byte, error) {
	var g [8]byte
	if len(rows) != len(g) {
		return g, fmt.Errorf("want 8 rows, got %d", len(rows))
	}
	for i, r := range rows {
		v, err := strconv.ParseUint(r, 0, 8)
		if err != nil {
			return g, fmt.Errorf("row %d: %w", i, err)
		}
		if v > 0x1f {
			return g, fmt.Errorf("row %d: 0x%x is wider than 5 pixels", i, v)
		}
		g[i] = byte(v)
	}
	return g, nil
}

// runGlyph stores the glyph and shows it at the origin.
func runGlyph(d *display, slot int, rows []string) error {
	g, err := parseGlyph(rows)
	if err != nil {
		return err
	}
	if err := d.CreateChar(slot, g); err != nil {
		return err
	}
	if err := d.SetCursor(0, 0); err != nil {
		return err
	}
	if _, err := d.Write([]byte{byte(slot & 7)}); err != nil {
		return err
	}
	return d.refresh()
}

func runScroll(ctx context.Context, d *display, dir hd44780.ScrollDirection, steps int, delay time.Duration) error {
	for range steps {
		if err := d.Scroll(dir); err != nil {
			return err
		}
		if err := d.refresh(); err != nil {
			return err
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func runBacklight(d *display, on bool) error {
	if err := d.SetBacklight(on); err != nil {
		return err
	}
	return d.refresh()
}

func runOff(d *display) error {
	if err := d.Off(); err != nil {
		return err
	}
	return d.refresh()
}

// runButtons logs every change of the keypad until ctx is done.
func runButtons(ctx context.Context, d *display, interval time.Duration) error {
	if d.keypad == nil {
		return errNoKeypad
	}
	var last hd44780.Buttons
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		s, err := d.keypad.State()
		if err != nil {
			return err
		}
		if s != last {
			log.WithField("buttons", s).Info("keypad")
			last = s
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func runSnapshot(d *display, path, text string) error {
	if d.sim == nil {
		return errSimOnly
	}
	if text != "" {
		if err := d.Message(unescape(text)); err != nil {
			return err
		}
	}
	if err := lcdscreen.SavePNG(path, d.sim.image()); err != nil {
		return err
	}
	log.WithField("path", path).Info("snapshot saved")
	return nil
}

// runServe streams the simulated display over HTTP while the demo loops.
func runServe(ctx context.Context, d *display, listen string, format lcdscreen.ImageFormat, pause time.Duration) error {
	if d.sim == nil {
		return errSimOnly
	}
	s := d.sim.stream(format)
	mux := http.NewServeMux()
	mux.Handle("/", s)
	srv := &http.Server{Addr: listen, Handler: mux}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.WithField("listen", listen).Info("serving")
	for ctx.Err() == nil {
		select {
		case err := <-errc:
			return err
		default:
		}
		if err := runDemo(ctx, d, pause); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("demo")
			break
		}
	}
	_ = s.Halt()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

var demoGlyphs = [][8]byte{
	{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}, // heart
	{0x00, 0x00, 0x0a, 0x00, 0x11, 0x0e, 0x00, 0x00}, // smile
}

var demoColors = []uint32{0xff0000, 0x00ff00, 0x0000ff, 0xffff00, 0x00ffff, 0xff00ff, 0xffffff}

// runDemo shows what the display can do.
func runDemo(ctx context.Context, d *display, pause time.Duration) error {
	steps := []func() error{
		func() error { return d.Clear() },
		func() error { return d.Message("Hello\nworld!") },
		func() error {
			if err := d.ShowCursor(true); err != nil {
				return err
			}
			return d.Blink(true)
		},
		func() error {
			if err := d.Blink(false); err != nil {
				return err
			}
			return d.ShowCursor(false)
		},
		func() error {
			if err := d.Clear(); err != nil {
				return err
			}
			for i, g := range demoGlyphs {
				if err := d.CreateChar(i, g); err != nil {
					return err
				}
			}
			return d.Message("I \x00 Go \x01\nCustom glyphs")
		},
		func() error {
			if err := d.Clear(); err != nil {
				return err
			}
			if err := d.SetTextDirection(hd44780.RightToLeft); err != nil {
				return err
			}
			return d.Message("Right to left")
		},
		func() error {
			if err := d.SetTextDirection(hd44780.LeftToRight); err != nil {
				return err
			}
			if err := d.Clear(); err != nil {
				return err
			}
			return d.Message("Scrolling text that is too long")
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
		if err := d.refresh(); err != nil {
			return err
		}
		if err := sleep(ctx, pause); err != nil {
			return err
		}
	}
	if err := runScroll(ctx, d, hd44780.ScrollLeft, 31-d.Cols(), pause/4); err != nil {
		return err
	}
	if err := d.Home(); err != nil {
		return err
	}
	for _, c := range demoColors {
		if err := d.SetColorHex(c); err != nil {
			if errors.Is(err, errNoColor) {
				break
			}
			return err
		}
		if err := d.Clear(); err != nil {
			return err
		}
		if err := d.Message(fmt.Sprintf("Color\n#%06x", c)); err != nil {
			return err
		}
		if err := d.refresh(); err != nil {
			return err
		}
		if err := sleep(ctx, pause/2); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

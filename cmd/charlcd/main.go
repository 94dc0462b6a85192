// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// charlcd drives an HD44780 character LCD from the command line.
//
// The display is described by a YAML file (see Config); without one, a
// simulated 16x2 display is shown in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdscreen"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app        = kingpin.New("charlcd", "HD44780 character LCD tool")
	debug      = app.Flag("debug", "Turn on debug logging.").Bool()
	configPath = app.Flag("config", "YAML configuration file.").Short('c').Envar("CHARLCD_CONFIG").String()
	backend    = app.Flag("backend", "Override the configured backend.").Enum(backends...)
	cols       = app.Flag("cols", "Override the configured number of columns.").Int()
	rows       = app.Flag("rows", "Override the configured number of rows.").Int()

	message      = app.Command("message", "Write a message. `\\n` starts a new line.")
	messageText  = message.Arg("text", "Text to write.").Required().String()
	messageCol   = message.Flag("col", "Start column.").Int()
	messageRow   = message.Flag("row", "Start row.").Int()
	messageRTL   = message.Flag("rtl", "Write right to left.").Bool()
	messageAlign = message.Flag("align", "Align lines under the first character.").Bool()
	messageFold  = message.Flag("fold", "Fold accented characters to ASCII.").Bool()

	clearCmd = app.Command("clear", "Clear the display.")

	colorCmd = app.Command("color", "Set the RGB backlight color, each channel 0-100.")
	colorRGB = colorCmd.Arg("rgb", "Red, green and blue.").Float64List()
	colorHex = colorCmd.Flag("hex", "Color as #rrggbb.").String()

	glyph     = app.Command("glyph", "Store a custom character and show it.")
	glyphSlot = glyph.Arg("slot", "Slot 0-7.").Required().Int()
	glyphRows = glyph.Arg("rows", "8 rows of 5 pixels, e.g. 0b01010.").Required().Strings()

	scroll      = app.Command("scroll", "Scroll the display.")
	scrollDir   = scroll.Arg("direction", "left or right.").Required().Enum("left", "right")
	scrollSteps = scroll.Flag("steps", "Number of columns.").Default("1").Int()
	scrollDelay = scroll.Flag("delay", "Delay between steps.").Default("300ms").Duration()

	backlight   = app.Command("backlight", "Turn the backlight on or off.")
	backlightOn = backlight.Arg("state", "on or off.").Required().Enum("on", "off")

	off = app.Command("off", "Clear the display and turn it off.")

	buttons         = app.Command("buttons", "Log keypad presses until interrupted.")
	buttonsInterval = buttons.Flag("interval", "Polling interval.").Default("50ms").Duration()

	demo      = app.Command("demo", "Show what the display can do.")
	demoPause = demo.Flag("pause", "Pause between steps.").Default("2s").Duration()

	snapshot     = app.Command("snapshot", "Save the simulated display as PNG.")
	snapshotPath = snapshot.Arg("file", "PNG file.").Required().String()
	snapshotText = snapshot.Flag("text", "Message to write first.").String()

	serve       = app.Command("serve", "Stream the simulated display over HTTP while the demo runs.")
	serveListen = serve.Flag("listen", "Address to listen on.").String()
	serveFormat = serve.Flag("format", "Image format, png or jpeg.").Default("png").Enum("png", "jpeg", "jpg")
	servePause  = serve.Flag("pause", "Pause between demo steps.").Default("2s").Duration()

	version = app.Command("version", "Show current version.")
)

var buildTime, buildVersion string

func showVersion() {
	if buildTime != "" && buildVersion != "" {
		fmt.Printf("%s (built: %s)\n", buildVersion, buildTime)
	} else {
		fmt.Println("charlcd: dev")
	}
}

func main() {
	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	if cmd == version.FullCommand() {
		showVersion()
		return
	}
	if err := run(cmd); err != nil {
		log.Fatal(err)
	}
}

func run(cmd string) error {
	c, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := c.override(*backend, *cols, *rows); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := openDisplay(c, os.Stdout)
	if err != nil {
		return err
	}
	defer d.Close()

	switch cmd {
	case message.FullCommand():
		return runMessage(d, messageArgs{
			text:  *messageText,
			col:   *messageCol,
			row:   *messageRow,
			rtl:   *messageRTL,
			align: *messageAlign,
			fold:  *messageFold,
		})
	case clearCmd.FullCommand():
		return runClear(d)
	case colorCmd.FullCommand():
		return runColor(d, *colorRGB, *colorHex)
	case glyph.FullCommand():
		return runGlyph(d, *glyphSlot, *glyphRows)
	case scroll.FullCommand():
		dir := hd44780.ScrollLeft
		if *scrollDir == "right" {
			dir = hd44780.ScrollRight
		}
		return runScroll(ctx, d, dir, *scrollSteps, *scrollDelay)
	case backlight.FullCommand():
		return runBacklight(d, *backlightOn == "on")
	case off.FullCommand():
		return runOff(d)
	case buttons.FullCommand():
		return runButtons(ctx, d, *buttonsInterval)
	case demo.FullCommand():
		return ignoreCanceled(runDemo(ctx, d, *demoPause))
	case snapshot.FullCommand():
		return runSnapshot(d, *snapshotPath, *snapshotText)
	case serve.FullCommand():
		format, err := lcdscreen.ImageFormatFromString(*serveFormat)
		if err != nil {
			return err
		}
		listen := c.Sim.Listen
		if *serveListen != "" {
			listen = *serveListen
		}
		return runServe(ctx, d, listen, format, *servePause)
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// override applies the command line flags over the file. Zero values are
// ignored.
func (c *Config) override(backend string, cols, rows int) error {
	if backend != "" {
		c.Backend = backend
	}
	if cols != 0 {
		c.Cols = cols
	}
	if rows != 0 {
		c.Rows = rows
	}
	return c.validate()
}

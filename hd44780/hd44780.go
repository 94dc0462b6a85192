// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls character LCD modules built around the Hitachi
// HD44780 chipset (and the many compatible clones) in 4 bit mode.
//
// The display can be wired directly to host GPIO pins, or through one of the
// common backpacks built with an MCP23008, MCP23017, PCF8574 or 74HC595 GPIO
// expander. On backpacks, register select, backlight and the data nibble are
// packed into a single register write.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
)

type writeMode bool

const (
	modeCommand writeMode = false
	modeData    writeMode = true
)

// Instructions.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdCursorShift    byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// Entry mode flags.
const (
	entryLeft           byte = 0x02
	entryShiftIncrement byte = 0x01
)

// Display control flags.
const (
	displayOn byte = 0x04
	cursorOn  byte = 0x02
	blinkOn   byte = 0x01
)

// Cursor/display shift flags.
const (
	displayMove byte = 0x08
	moveRight   byte = 0x04
	moveLeft    byte = 0x00
)

// Function set flags. Only 4 bit, 2 line, 5x8 is used.
const (
	fourBitMode byte = 0x00
	twoLine     byte = 0x08
	fiveBy8Dots byte = 0x00
)

const (
	// delayPacing precedes every byte. It is more than the chip needs, but
	// slow buses lose commands without it.
	delayPacing time.Duration = time.Millisecond
	// delayExecute is the execution time of clear and return home.
	delayExecute time.Duration = 3 * time.Millisecond
	// delayPulse is the enable setup/hold time.
	delayPulse time.Duration = 100 * time.Nanosecond
)

// DDRAM address of the first cell of each row.
var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

var (
	// ErrGeometry is returned when the requested rows or columns can't be
	// addressed by the controller.
	ErrGeometry = errors.New("hd44780: display must have 1-4 rows and at least 1 column")
	// ErrNoBacklight is returned by variants constructed without a backlight.
	ErrNoBacklight = errors.New("hd44780: display has no backlight control")
)

// Direction is the direction text flows in.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "RightToLeft"
	}
	return "LeftToRight"
}

// ScrollDirection is the direction the displayed content moves when scrolled.
type ScrollDirection int

const (
	ScrollLeft ScrollDirection = iota
	ScrollRight
)

// Opts holds the settings shared by every variant. A nil *Opts uses the
// defaults.
type Opts struct {
	// BacklightInverted is true when the backlight is lit by driving its pin
	// low.
	BacklightInverted bool
	// ColumnAlign starts every line of a message under the first character
	// of the message instead of at the display edge.
	ColumnAlign bool
	// Logger receives a Debug entry for every byte sent. Defaults to a
	// discarding logger.
	Logger logrus.FieldLogger
}

// DefaultOpts is used when nil is passed as *Opts.
var DefaultOpts = Opts{}

// Dev is an HD44780 controller driven through a Transport.
//
// All calls block until the display had time to execute them. A Dev owns its
// transport and must not be used concurrently.
type Dev struct {
	t     Transport
	log   logrus.FieldLogger
	sleep func(time.Duration)

	cols int
	rows int

	control  byte
	function byte
	mode     byte

	direction   Direction
	row         int
	col         int
	columnAlign bool
	message     string
}

// New initializes the display connected through t and returns it ready to
// use.
//
// The power-on sequence mandated by the datasheet is always sent in full. An
// error is returned if any line can't be switched to output.
func New(t Transport, cols, rows int, opts *Opts) (*Dev, error) {
	return newDev(t, cols, rows, opts, time.Sleep)
}

func newDev(t Transport, cols, rows int, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if rows < 1 || rows > len(rowOffsets) || cols < 1 {
		return nil, ErrGeometry
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	d := &Dev{
		t:           t,
		log:         log,
		sleep:       sleep,
		cols:        cols,
		rows:        rows,
		columnAlign: opts.ColumnAlign,
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (d *Dev) init() error {
	if err := d.t.Setup(); err != nil {
		return err
	}
	// Reset into 4 bit mode: nibbles 3, 3, 3, 2.
	if err := d.sendByte(0x33, modeCommand); err != nil {
		return err
	}
	if err := d.sendByte(0x32, modeCommand); err != nil {
		return err
	}
	d.control = displayOn
	d.function = fourBitMode | twoLine | fiveBy8Dots
	d.mode = entryLeft
	d.direction = LeftToRight
	if err := d.sendByte(cmdDisplayControl|d.control, modeCommand); err != nil {
		return err
	}
	if err := d.sendByte(cmdFunctionSet|d.function, modeCommand); err != nil {
		return err
	}
	if err := d.sendByte(cmdEntryModeSet|d.mode, modeCommand); err != nil {
		return err
	}
	return d.Clear()
}

// Cols returns the number of columns.
func (d *Dev) Cols() int {
	return d.cols
}

// Rows returns the number of rows.
func (d *Dev) Rows() int {
	return d.rows
}

func (d *Dev) String() string {
	return fmt.Sprintf("HD44780::%s - Rows: %d, Cols: %d", d.t, d.rows, d.cols)
}

// Clear blanks the display and moves the hardware cursor to the origin.
func (d *Dev) Clear() error {
	if err := d.sendByte(cmdClearDisplay, modeCommand); err != nil {
		return err
	}
	d.sleep(delayExecute)
	return nil
}

// Home moves the hardware cursor to the origin and undoes any scrolling.
func (d *Dev) Home() error {
	if err := d.sendByte(cmdReturnHome, modeCommand); err != nil {
		return err
	}
	d.sleep(delayExecute)
	return nil
}

// SetCursor moves the cursor to col, row (zero based). Out of range values
// are clamped to the display edges.
//
// The next Message starts at this position.
func (d *Dev) SetCursor(col, row int) error {
	row = clamp(row, d.rows-1)
	col = clamp(col, d.cols-1)
	if err := d.sendByte(cmdSetDDRAMAddr|(byte(col)+rowOffsets[row]), modeCommand); err != nil {
		return err
	}
	d.row = row
	d.col = col
	return nil
}

func clamp(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < 0 {
		return 0
	}
	return v
}

// Cursor returns the position tracked for the next Message.
func (d *Dev) Cursor() (col, row int) {
	return d.col, d.row
}

// ShowCursor shows or hides the underline cursor.
func (d *Dev) ShowCursor(show bool) error {
	return d.setControl(cursorOn, show)
}

// CursorVisible returns true if the underline cursor is shown.
func (d *Dev) CursorVisible() bool {
	return d.control&cursorOn == cursorOn
}

// Blink turns blinking of the cursor cell on or off.
func (d *Dev) Blink(blink bool) error {
	return d.setControl(blinkOn, blink)
}

// Blinking returns true if the cursor cell blinks.
func (d *Dev) Blinking() bool {
	return d.control&blinkOn == blinkOn
}

// Display turns the display on or off. DDRAM content is kept while off.
func (d *Dev) Display(on bool) error {
	return d.setControl(displayOn, on)
}

// DisplayOn returns true if the display is on.
func (d *Dev) DisplayOn() bool {
	return d.control&displayOn == displayOn
}

// setControl always sends the complete control byte.
func (d *Dev) setControl(flag byte, set bool) error {
	if set {
		d.control |= flag
	} else {
		d.control &^= flag
	}
	return d.sendByte(cmdDisplayControl|d.control, modeCommand)
}

// SetTextDirection sets the direction the address counter moves after each
// character, and from which edge Message measures its start column.
func (d *Dev) SetTextDirection(dir Direction) error {
	d.direction = dir
	if dir == RightToLeft {
		d.mode &^= entryLeft
	} else {
		d.mode |= entryLeft
	}
	return d.sendByte(cmdEntryModeSet|d.mode, modeCommand)
}

// TextDirection returns the current text direction.
func (d *Dev) TextDirection() Direction {
	return d.direction
}

func (d *Dev) leftToRight() bool {
	return d.mode&entryLeft == entryLeft
}

// Scroll moves the displayed content one column. DDRAM and the tracked cursor
// are unchanged.
func (d *Dev) Scroll(dir ScrollDirection) error {
	move := moveLeft
	if dir == ScrollRight {
		move = moveRight
	}
	return d.sendByte(cmdCursorShift|displayMove|move, modeCommand)
}

// CreateChar stores pattern as custom character slot (0-7). Each byte is a
// row of 5 pixels, bit 4 being the leftmost. Write the character code slot to
// show it.
//
// The address counter points into CGRAM afterwards, so call SetCursor before
// writing more text.
func (d *Dev) CreateChar(slot int, pattern [8]byte) error {
	slot &= 0x07
	if err := d.sendByte(cmdSetCGRAMAddr|byte(slot<<3), modeCommand); err != nil {
		return err
	}
	for _, b := range pattern {
		if err := d.sendByte(b, modeData); err != nil {
			return err
		}
	}
	return nil
}

// SetColumnAlign sets whether lines after a '\n' start under the first
// character of the message (true) or at the display edge (false).
func (d *Dev) SetColumnAlign(align bool) {
	d.columnAlign = align
}

// ColumnAlign returns the current column alignment setting.
func (d *Dev) ColumnAlign() bool {
	return d.columnAlign
}

// Halt clears the display and turns it off.
func (d *Dev) Halt() error {
	if err := d.Clear(); err != nil {
		return err
	}
	return d.Display(false)
}

// sendByte sends value as two nibbles, high nibble first. Both nibbles are
// always sent unless the transport fails.
func (d *Dev) sendByte(value byte, mode writeMode) error {
	d.log.WithFields(logrus.Fields{"cmd": fmt.Sprintf("0x%02x", value), "rs": bool(mode)}).Debug("hd44780: send")
	d.sleep(delayPacing)
	if err := d.t.Present(bool(mode), value>>4); err != nil {
		return err
	}
	if err := d.pulseEnable(); err != nil {
		return err
	}
	if err := d.t.Present(bool(mode), value&0x0f); err != nil {
		return err
	}
	return d.pulseEnable()
}

// pulseEnable latches the presented nibble: low, high, low.
func (d *Dev) pulseEnable() error {
	if err := d.t.Enable(false); err != nil {
		return err
	}
	d.sleep(delayPulse)
	if err := d.t.Enable(true); err != nil {
		return err
	}
	d.sleep(delayPulse)
	if err := d.t.Enable(false); err != nil {
		return err
	}
	d.sleep(delayPulse)
	return nil
}

var _ conn.Resource = &Dev{}
var _ io.Writer = &Dev{}

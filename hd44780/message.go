// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// Message writes text starting at the position set by the last SetCursor, or
// at the origin. Each '\n' moves to the start of the next row; rows past the
// last one are clamped to it.
//
// With RightToLeft the start column is measured from the right edge. With
// column alignment, following rows start in the same column as the first one,
// otherwise at the edge the text flows from.
//
// Every rune is sent as a single byte of the character ROM. Runes above 0xff
// are truncated; see FoldASCII.
//
// The tracked cursor is reset to the origin afterwards, even on error.
func (d *Dev) Message(text string) error {
	d.message = text
	defer func() {
		d.col, d.row = 0, 0
	}()
	line := d.row
	first := true
	for _, r := range text {
		if first {
			col := d.col
			if !d.leftToRight() {
				col = d.cols - 1 - d.col
			}
			if err := d.SetCursor(col, line); err != nil {
				return err
			}
			first = false
		}
		if r == '\n' {
			line++
			col := 0
			switch {
			case d.columnAlign:
				col = d.col
			case !d.leftToRight():
				col = d.cols - 1
			}
			if err := d.SetCursor(col, line); err != nil {
				return err
			}
			continue
		}
		if err := d.sendByte(byte(r), modeData); err != nil {
			return err
		}
	}
	return nil
}

// LastMessage returns the text passed to the last Message call.
func (d *Dev) LastMessage() string {
	return d.message
}

// Write sends p as character data at the current address without any layout
// processing. It returns the number of bytes sent.
func (d *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = d.sendByte(b, modeData); err != nil {
			return
		}
		n++
	}
	return
}

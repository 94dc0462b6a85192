// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780test

import (
	"strings"
	"sync"
)

const (
	lineLen   = 40
	line2Addr = 0x40
	blank     = ' '
)

var rowOffsets = [4]int{0x00, 0x40, 0x14, 0x54}

// Sim is a behavioural model of an HD44780 in 2 line mode. It executes the
// instructions it is fed and keeps DDRAM, CGRAM, the address counter and the
// display shift.
//
// It powers up in 8 bit mode, where every nibble is an instruction with its
// low bits zero, until a function set selects 4 bit mode.
type Sim struct {
	cols, rows int

	mu        sync.Mutex
	fourBit   bool
	pending   bool
	high      byte
	ddram     [0x80]byte
	cgram     [64]byte
	ac        int
	toCGRAM   bool
	increment bool
	shiftOn   bool
	shift     int
	displayOn bool
	cursorOn  bool
	blinkOn   bool
	log       []Transfer
}

// NewSim returns a powered up controller showing cols x rows cells.
func NewSim(cols, rows int) *Sim {
	s := &Sim{cols: cols, rows: rows, increment: true}
	for i := range s.ddram {
		s.ddram[i] = blank
	}
	return s
}

// Latch feeds one nibble to the controller, as latched on a falling edge of
// E.
func (s *Sim) Latch(rs bool, nibble byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nibble &= 0x0f
	if !s.fourBit {
		s.exec(rs, nibble<<4)
		return
	}
	if !s.pending {
		s.high = nibble
		s.pending = true
		return
	}
	s.pending = false
	s.exec(rs, s.high<<4|nibble)
}

// Transfers returns every byte executed, including the 8 bit mode
// instructions of the power-on sequence.
func (s *Sim) Transfers() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transfer(nil), s.log...)
}

func (s *Sim) exec(rs bool, v byte) {
	s.log = append(s.log, Transfer{RS: rs, Value: v})
	if rs {
		s.write(v)
		return
	}
	switch {
	case v&0x80 != 0:
		s.ac = int(v & 0x7f)
		s.toCGRAM = false
	case v&0x40 != 0:
		s.ac = int(v & 0x3f)
		s.toCGRAM = true
	case v&0x20 != 0:
		s.fourBit = v&0x10 == 0
		s.pending = false
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 != 0 {
			if right {
				s.shift--
			} else {
				s.shift++
			}
		} else {
			s.move(right)
		}
	case v&0x08 != 0:
		s.displayOn = v&0x04 != 0
		s.cursorOn = v&0x02 != 0
		s.blinkOn = v&0x01 != 0
	case v&0x04 != 0:
		s.increment = v&0x02 != 0
		s.shiftOn = v&0x01 != 0
	case v&0x02 != 0:
		s.ac = 0
		s.toCGRAM = false
		s.shift = 0
	case v&0x01 != 0:
		for i := range s.ddram {
			s.ddram[i] = blank
		}
		s.ac = 0
		s.toCGRAM = false
		s.increment = true
		s.shift = 0
	}
}

func (s *Sim) write(v byte) {
	if s.toCGRAM {
		s.cgram[s.ac] = v & 0x1f
		if s.increment {
			s.ac = (s.ac + 1) & 0x3f
		} else {
			s.ac = (s.ac - 1) & 0x3f
		}
		return
	}
	s.ddram[s.ac] = v
	s.move(s.increment)
	if s.shiftOn {
		if s.increment {
			s.shift++
		} else {
			s.shift--
		}
	}
}

// move steps the DDRAM address counter, wrapping between the two 40 cell
// lines.
func (s *Sim) move(forward bool) {
	line := s.ac & line2Addr
	pos := s.ac &^ line2Addr
	if forward {
		pos++
		if pos == lineLen {
			pos = 0
			line ^= line2Addr
		}
	} else {
		pos--
		if pos < 0 {
			pos = lineLen - 1
			line ^= line2Addr
		}
	}
	s.ac = line | pos
}

// addr returns the DDRAM address shown at col, row.
func (s *Sim) addr(col, row int) int {
	base := rowOffsets[row]
	line := base & line2Addr
	pos := ((base&^line2Addr+col+s.shift)%lineLen + lineLen) % lineLen
	return line | pos
}

// Frame is what the display shows.
type Frame struct {
	Cols, Rows int
	// Cells holds the character code of every visible cell, by row.
	Cells [][]byte
	// Glyphs is the CGRAM content, 8 rows of 5 pixels per character.
	Glyphs [8][8]byte
	// DisplayOn is false when the display is blanked.
	DisplayOn bool
	CursorOn  bool
	BlinkOn   bool
	// CursorCol and CursorRow locate the cell the address counter points to,
	// -1 when it isn't visible.
	CursorCol int
	CursorRow int
}

// Frame returns the visible content.
func (s *Sim) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := Frame{
		Cols:      s.cols,
		Rows:      s.rows,
		Cells:     make([][]byte, s.rows),
		DisplayOn: s.displayOn,
		CursorOn:  s.cursorOn,
		BlinkOn:   s.blinkOn,
		CursorCol: -1,
		CursorRow: -1,
	}
	for i := range f.Glyphs {
		copy(f.Glyphs[i][:], s.cgram[i*8:])
	}
	for r := range s.rows {
		f.Cells[r] = make([]byte, s.cols)
		for c := range s.cols {
			a := s.addr(c, r)
			f.Cells[r][c] = s.ddram[a]
			if !s.toCGRAM && a == s.ac && f.CursorRow < 0 {
				f.CursorCol, f.CursorRow = c, r
			}
		}
	}
	return f
}

// Text returns the visible rows joined by '\n'. Codes below 0x20 are shown
// as '#'.
func (f Frame) Text() string {
	lines := make([]string, len(f.Cells))
	for i, row := range f.Cells {
		b := make([]byte, len(row))
		for j, c := range row {
			if c < 0x20 {
				c = '#'
			}
			b[j] = c
		}
		lines[i] = string(b)
	}
	return strings.Join(lines, "\n")
}

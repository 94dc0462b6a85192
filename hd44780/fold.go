// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters without a canonical decomposition.
var foldTable = map[rune]rune{
	'ł': 'l', 'Ł': 'L',
	'đ': 'd', 'Đ': 'D',
	'ø': 'o', 'Ø': 'O',
	'ı': 'i',
}

// FoldASCII maps s onto the printable ASCII range of the character ROM.
// Accents are dropped ("żółw" becomes "zolw"), '\n' is kept and anything else
// outside 0x20-0x7e becomes '?'.
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), runes.Map(foldRune))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func foldRune(r rune) rune {
	if f, ok := foldTable[r]; ok {
		return f
	}
	if r == '\n' || (r >= 0x20 && r <= 0x7e) {
		return r
	}
	return '?'
}

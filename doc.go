// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd drives HD44780 character LCDs with periph.io.
//
// The controller lives in package hd44780. It talks to the display through
// host GPIO pins or through the GPIO expanders in packages mcp23xxx, pcf857x
// and nxp74hc595. Package lcdscreen shows a simulated display on the host.
package charlcd

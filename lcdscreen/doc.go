// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdscreen shows the content of a simulated character LCD on the
// host: in a terminal using ANSI colors, as a dot matrix image, or as a live
// MJPEG stream served over HTTP.
//
// Useful while you are waiting for your display to come by mail.
package lcdscreen

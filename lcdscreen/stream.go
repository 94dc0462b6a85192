// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdscreen

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"mime"
	"net/http"
	"net/textproto"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
)

// bufferPool stores reusable []byte instances.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return []byte(nil)
	},
}

var jpegOptions = jpeg.Options{Quality: 90}

// StreamOpts for Stream.
type StreamOpts struct {
	// Width and height of the initial, black image.
	Width, Height int

	// Format specifies the image format to send to clients.
	Format ImageFormat

	// CompressionLevel of PNG images.
	CompressionLevel png.CompressionLevel
}

// Stream is an http.Handler sending the latest image as an MJPEG stream
// ("multipart/x-mixed-replace"). Clients get the current image when they
// connect and a new one after every Update.
type Stream struct {
	defaultFormat ImageFormat
	compression   png.CompressionLevel

	mu       sync.Mutex
	buffer   *image.RGBA
	clients  map[*client]struct{}
	snapshot map[imageConfig][]byte
}

var _ http.Handler = (*Stream)(nil)

// NewStream returns a Stream showing a black image.
func NewStream(opt *StreamOpts) *Stream {
	buffer := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))

	// By default the alpha channel is set to full transparency. The following
	// draw operation makes it opaque.
	draw.Draw(buffer, buffer.Bounds(), image.Black, image.Point{}, draw.Src)

	return &Stream{
		buffer:        buffer,
		clients:       map[*client]struct{}{},
		snapshot:      map[imageConfig][]byte{},
		defaultFormat: opt.Format,
		compression:   opt.CompressionLevel,
	}
}

// String returns the name of the device.
func (s *Stream) String() string {
	return "Stream"
}

// Halt implements conn.Resource and terminates all running client requests
// asynchronously.
func (s *Stream) Halt() error {
	s.mu.Lock()
	s.terminateClientsLocked()
	s.mu.Unlock()
	return nil
}

// Bounds returns the size of the current image.
func (s *Stream) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Bounds()
}

// Update replaces the image sent to clients. The stream takes the size of
// img.
func (s *Stream) Update(img image.Image) {
	b := img.Bounds()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer.Bounds().Size() != b.Size() {
		s.buffer = image.NewRGBA(image.Rectangle{Max: b.Size()})
	}
	draw.Draw(s.buffer, s.buffer.Bounds(), img, b.Min, draw.Src)
	s.bufferChangedLocked()
}

type imageConfig struct {
	format ImageFormat
}

func (s *Stream) configFromQuery(values url.Values) (imageConfig, error) {
	cfg := imageConfig{
		format: s.defaultFormat,
	}
	if value := values.Get("format"); value != "" {
		format, err := ImageFormatFromString(value)
		if err != nil {
			return imageConfig{}, err
		}
		cfg.format = format
	}
	return cfg, nil
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

func (s *Stream) bufferChangedLocked() {
	for cfg, buffer := range s.snapshot {
		if buffer != nil {
			//lint:ignore SA6002 buffer is []byte and thus pointer-like
			bufferPool.Put(buffer)
		}
		delete(s.snapshot, cfg)
	}

	for c := range s.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (s *Stream) terminateClientsLocked() {
	for c := range s.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

func (s *Stream) encodeBufferLocked(format ImageFormat) ([]byte, error) {
	buf := bytes.NewBuffer(bufferPool.Get().([]byte)[:0])

	switch format {
	case PNG:
		if err := pngEncoder.get(s.compression).Encode(buf, s.buffer); err != nil {
			return nil, err
		}
	case JPEG:
		if err := jpeg.Encode(buf, s.buffer, &jpegOptions); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("lcdscreen: unhandled image format %s", format)
	}

	return buf.Bytes(), nil
}

func (s *Stream) grabSnapshot(cfg imageConfig) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, ok := s.snapshot[cfg]
	if !ok {
		var err error
		if encoded, err = s.encodeBufferLocked(cfg.format); err != nil {
			return nil, err
		}
		s.snapshot[cfg] = encoded
	}

	return append(bufferPool.Get().([]byte)[:0], encoded...), nil
}

// ServeHTTP handles HTTP GET requests and sends a stream of images in
// response. StreamOpts.Format is the default format; clients can explicitly
// request PNG or JPEG images using the "format" parameter ("?format=png",
// "?format=jpeg").
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.Body.Close(); err != nil {
		logrus.WithError(err).Warn("lcdscreen: closing request body failed")
	}

	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := s.configFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pw := makePartWriter(w)

	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": pw.boundary,
		}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	log := logrus.WithField("remote", r.RemoteAddr)
	log.Debug("lcdscreen: client connected")
	defer log.Debug("lcdscreen: client gone")

	partHeaders := make(textproto.MIMEHeader)
	partHeaders.Set("Content-Type", mime.FormatMediaType(cfg.format.mimeType(), nil))
	partHeaders.Set("Content-Transfer-Encoding", "binary")

	for {
		payload, err := s.grabSnapshot(cfg)
		if err != nil {
			log.WithError(err).Error("lcdscreen: encoding image failed")
			return
		}
		err = pw.writeFrame(partHeaders, payload)

		//lint:ignore SA6002 buffer is []byte and thus pointer-like
		bufferPool.Put(payload)

		if err != nil {
			// Errors cause the request to be silently terminated. There's no
			// good way to deliver an error message to the client within an
			// image stream.
			return
		}

		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

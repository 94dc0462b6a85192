// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backends.
const (
	backendGPIO      = "gpio"
	backendGPIORGB   = "gpio-rgb"
	backendMCP23008  = "mcp23008"
	backendSPI       = "spi"
	backendPCF8574   = "pcf8574"
	backendRGBShield = "rgbshield"
	backendSainsmart = "sainsmart"
	backendSim       = "sim"
)

var backends = []string{
	backendGPIO, backendGPIORGB, backendMCP23008, backendSPI,
	backendPCF8574, backendRGBShield, backendSainsmart, backendSim,
}

// Config is the content of the configuration file.
type Config struct {
	Backend           string `yaml:"backend"`
	Cols              int    `yaml:"cols"`
	Rows              int    `yaml:"rows"`
	ColumnAlign       bool   `yaml:"columnAlign"`
	BacklightInverted bool   `yaml:"backlightInverted"`
	I2C               struct {
		Bus     string `yaml:"bus"`
		// Address defaults to 0x27 for pcf8574 and 0x20 otherwise.
		Address uint16 `yaml:"address"`
	} `yaml:"i2c"`
	SPI struct {
		Port string `yaml:"port"`
		Hz   int64  `yaml:"hz"`
	} `yaml:"spi"`
	GPIO struct {
		RS        string `yaml:"rs"`
		Enable    string `yaml:"enable"`
		D4        string `yaml:"d4"`
		D5        string `yaml:"d5"`
		D6        string `yaml:"d6"`
		D7        string `yaml:"d7"`
		Backlight string `yaml:"backlight"`
		RW        string `yaml:"rw"`
		Red       string `yaml:"red"`
		Green     string `yaml:"green"`
		Blue      string `yaml:"blue"`
		PWM       bool   `yaml:"pwm"`
		PWMHz     int64  `yaml:"pwmHz"`
	} `yaml:"gpio"`
	Sim struct {
		Color  string `yaml:"color"`
		Scale  int    `yaml:"scale"`
		Listen string `yaml:"listen"`
	} `yaml:"sim"`
}

// loadConfig reads and checks the configuration file. An empty path returns
// the defaults.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		return parseConfig(nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(b)
}

func parseConfig(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Backend == "" {
		c.Backend = backendSim
	}
	if c.Cols == 0 {
		c.Cols = 16
	}
	if c.Rows == 0 {
		c.Rows = 2
	}
	if c.SPI.Hz == 0 {
		c.SPI.Hz = 1000000
	}
	if c.GPIO.PWMHz == 0 {
		c.GPIO.PWMHz = 500
	}
	if c.Sim.Color == "" {
		c.Sim.Color = "#9cc83c"
	}
	if c.Sim.Scale == 0 {
		c.Sim.Scale = 4
	}
	if c.Sim.Listen == "" {
		c.Sim.Listen = "localhost:8080"
	}
}

func (c *Config) validate() error {
	known := false
	for _, b := range backends {
		known = known || b == c.Backend
	}
	if !known {
		return fmt.Errorf("unknown backend %q, want one of %s", c.Backend, strings.Join(backends, ", "))
	}
	if c.Rows < 1 || c.Rows > 4 {
		return fmt.Errorf("rows must be between 1 and 4, got %d", c.Rows)
	}
	if c.Cols < 1 || c.Cols > 40 {
		return fmt.Errorf("cols must be between 1 and 40, got %d", c.Cols)
	}
	if c.I2C.Address > 0x7f {
		return fmt.Errorf("i2c address 0x%x is not a 7 bit address", c.I2C.Address)
	}
	if c.Sim.Scale < 1 {
		return fmt.Errorf("sim scale must be positive, got %d", c.Sim.Scale)
	}
	if _, err := parseHexColor(c.Sim.Color); err != nil {
		return err
	}
	switch c.Backend {
	case backendGPIO:
		return requirePins(map[string]string{
			"rs": c.GPIO.RS, "enable": c.GPIO.Enable,
			"d4": c.GPIO.D4, "d5": c.GPIO.D5, "d6": c.GPIO.D6, "d7": c.GPIO.D7,
		})
	case backendGPIORGB:
		return requirePins(map[string]string{
			"rs": c.GPIO.RS, "enable": c.GPIO.Enable,
			"d4": c.GPIO.D4, "d5": c.GPIO.D5, "d6": c.GPIO.D6, "d7": c.GPIO.D7,
			"red": c.GPIO.Red, "green": c.GPIO.Green, "blue": c.GPIO.Blue,
		})
	}
	return nil
}

func requirePins(pins map[string]string) error {
	var missing []string
	for name, pin := range pins {
		if pin == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("gpio pins missing: %s", strings.Join(missing, ", "))
}

// parseHexColor parses "#rrggbb", "rrggbb" or "0xrrggbb".
func parseHexColor(s string) (uint32, error) {
	v := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(v) != 6 {
		return 0, fmt.Errorf("color %q must have 6 hex digits", s)
	}
	c, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(c), nil
}

func (c *Config) i2cAddress() uint16 {
	switch {
	case c.I2C.Address != 0:
		return c.I2C.Address
	case c.Backend == backendPCF8574:
		return 0x27
	}
	return 0x20
}

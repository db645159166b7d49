// Package config loads an optional INI configuration file for the server
// or the driver, supplying defaults for anything the file does not set.
// The binaries under cmd/ use only the Default* constants below; neither
// calls LoadServer or LoadDriver.
package config

import (
	"time"

	"gopkg.in/ini.v1"
)

// Defaults mirror the driver/server CLI defaults.
const (
	DefaultBaud         = 38400
	DefaultTimeout      = 5 * time.Second
	DefaultRegisterMode = 0 // 0 = always register, 1 = require server probe
	DefaultUnit         = 1
)

// Server holds the server-side knobs: device, root directory, baud, and
// debug verbosity.
type Server struct {
	Device string `ini:"device"`
	Root   string `ini:"root"`
	Baud   int    `ini:"baud"`
	Debug  int    `ini:"debug"`
}

// Driver holds the driver-side knobs, named after /s /r /t /u
// option letters.
type Driver struct {
	Device       string        `ini:"device"`
	Baud         int           `ini:"baud"`
	RegisterMode int           `ini:"register_mode"`
	Timeout      time.Duration `ini:"-"`
	TimeoutMs    int           `ini:"timeout_ms"`
	Unit         int           `ini:"unit"`
}

func defaultServer() Server {
	return Server{Baud: DefaultBaud}
}

func defaultDriver() Driver {
	return Driver{
		Baud:         DefaultBaud,
		RegisterMode: DefaultRegisterMode,
		Timeout:      DefaultTimeout,
		TimeoutMs:    int(DefaultTimeout / time.Millisecond),
		Unit:         DefaultUnit,
	}
}

// LoadServer reads section [server] from path, falling back to defaults for
// anything the file (or the file's absence) doesn't set.
func LoadServer(path string) (Server, error) {
	cfg := defaultServer()
	if path == "" {
		return cfg, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := f.Section("server").MapTo(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	return cfg, nil
}

// LoadDriver reads section [driver] from path.
func LoadDriver(path string) (Driver, error) {
	cfg := defaultDriver()
	if path == "" {
		return cfg, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := f.Section("driver").MapTo(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.TimeoutMs > 0 {
		cfg.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	if cfg.Unit == 0 {
		cfg.Unit = DefaultUnit
	}
	return cfg, nil
}

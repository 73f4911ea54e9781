// Package config loads keychord configuration.
//
// Settings are layered in order of increasing precedence:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (LoadFile)
//  3. KEYCHORD_* environment variables (EnvLoader)
//  4. Command-line flags, applied by the caller
//
// A Watcher reloads the file when it changes on disk.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Config is the complete keychord configuration.
type Config struct {
	// Modifiers lists the keys treated as modifiers. Names are normalized,
	// so "ctrl" and "Control" are equivalent.
	Modifiers []string `toml:"modifiers"`

	// Initial is an optional shortcut the widget starts with.
	Initial string `toml:"initial"`

	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
	Terminal TerminalConfig `toml:"terminal"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`

	// File receives log output. Empty means stderr, except for the
	// terminal host which discards logs when no file is set.
	File string `toml:"file"`
}

// ServerConfig configures the browser host.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// Metrics enables the /metrics endpoint.
	Metrics bool `toml:"metrics"`

	// AllowedOrigins lists origin globs accepted for websocket upgrades,
	// written as full origins such as "http://localhost:*".
	// Empty means same-origin only.
	AllowedOrigins []string `toml:"allowed_origins"`

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int `toml:"read_buffer_size"`
	WriteBufferSize int `toml:"write_buffer_size"`
}

// TerminalConfig configures the terminal host.
type TerminalConfig struct {
	// ValidColor and InvalidColor are hex colors for the status indicator.
	ValidColor   string `toml:"valid_color"`
	InvalidColor string `toml:"invalid_color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Modifiers: []string{key.Control, key.Shift, key.Alt, key.Meta, key.CapsLock},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			Metrics:         true,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Terminal: TerminalConfig{
			ValidColor:   "#50fa7b",
			InvalidColor: "#ff5555",
		},
	}
}

// Load builds a configuration from defaults, the file at path (if any) and
// the environment, then validates it.
//
// An empty path skips the file. A path that does not exist is an error,
// since the caller asked for it explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := NewEnvLoader(EnvPrefix).Apply(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays settings from a TOML file. Settings missing from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.parse(path, data)
}

// parse decodes TOML data into c.
func (c *Config) parse(source string, data []byte) error {
	if err := toml.Unmarshal(data, c); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	mods, err := key.ParseModifierSet(c.Modifiers)
	switch {
	case err != nil:
		verr.add("modifiers: %v", err)
	case mods.IsEmpty():
		verr.add("modifiers: at least one modifier is required")
	}

	if c.Initial != "" && err == nil {
		if _, perr := key.Parse(c.Initial, mods); perr != nil {
			verr.add("initial: %v", perr)
		}
	}

	if !logging.ValidLevel(c.Logging.Level) {
		verr.add("logging.level: %q must be debug, info, warn or error", c.Logging.Level)
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		verr.add("server.addr: %v", err)
	}
	if c.Server.ReadBufferSize < 0 || c.Server.WriteBufferSize < 0 {
		verr.add("server buffer sizes must not be negative")
	}

	if _, err := colorful.Hex(c.Terminal.ValidColor); err != nil {
		verr.add("terminal.valid_color: %q is not a hex color", c.Terminal.ValidColor)
	}
	if _, err := colorful.Hex(c.Terminal.InvalidColor); err != nil {
		verr.add("terminal.invalid_color: %q is not a hex color", c.Terminal.InvalidColor)
	}

	return verr.orNil()
}

// ModifierSet returns the configured modifiers as a set.
func (c *Config) ModifierSet() (key.ModifierSet, error) {
	return key.ParseModifierSet(c.Modifiers)
}

// InitialValue returns the initial shortcut in canonical form, or "" if
// none is configured.
func (c *Config) InitialValue() (string, error) {
	if c.Initial == "" {
		return "", nil
	}
	mods, err := c.ModifierSet()
	if err != nil {
		return "", err
	}
	return key.NormalizeSpec(c.Initial, mods)
}

// Colors returns the parsed status colors.
func (c *Config) Colors() (valid, invalid colorful.Color, err error) {
	valid, err = colorful.Hex(c.Terminal.ValidColor)
	if err != nil {
		return valid, invalid, fmt.Errorf("terminal.valid_color: %w", err)
	}
	invalid, err = colorful.Hex(c.Terminal.InvalidColor)
	if err != nil {
		return valid, invalid, fmt.Errorf("terminal.invalid_color: %w", err)
	}
	return valid, invalid, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Modifiers = append([]string(nil), c.Modifiers...)
	clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return &clone
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

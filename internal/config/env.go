package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of keychord environment variables.
const EnvPrefix = "KEYCHORD_"

// EnvLoader overlays configuration from environment variables.
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a loader reading variables with the given prefix
// from the process environment.
// The prefix should include the trailing underscore (e.g., "KEYCHORD_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: os.LookupEnv}
}

// NewEnvLoaderWithLookup creates a loader with a custom lookup function.
// This allows tests to supply variables without touching the process environment.
func NewEnvLoaderWithLookup(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: lookup}
}

// Apply overlays every set variable onto cfg.
// Note: Empty string values are treated as valid values, not as unset.
//
// Recognized variables (with the default prefix):
//
//	KEYCHORD_MODIFIERS        comma-separated modifier names
//	KEYCHORD_INITIAL          initial shortcut
//	KEYCHORD_LOG_LEVEL        logging.level
//	KEYCHORD_LOG_FILE         logging.file
//	KEYCHORD_ADDR             server.addr
//	KEYCHORD_METRICS          server.metrics (bool)
//	KEYCHORD_ALLOWED_ORIGINS  comma-separated server.allowed_origins (http://host:* globs)
//	KEYCHORD_VALID_COLOR      terminal.valid_color
//	KEYCHORD_INVALID_COLOR    terminal.invalid_color
func (l *EnvLoader) Apply(cfg *Config) error {
	if v, ok := l.get("MODIFIERS"); ok {
		cfg.Modifiers = splitList(v)
	}
	if v, ok := l.get("INITIAL"); ok {
		cfg.Initial = v
	}
	if v, ok := l.get("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := l.get("LOG_FILE"); ok {
		cfg.Logging.File = v
	}
	if v, ok := l.get("ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := l.get("METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS: %w", l.prefix, err)
		}
		cfg.Server.Metrics = b
	}
	if v, ok := l.get("ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := l.get("VALID_COLOR"); ok {
		cfg.Terminal.ValidColor = v
	}
	if v, ok := l.get("INVALID_COLOR"); ok {
		cfg.Terminal.InvalidColor = v
	}
	return nil
}

func (l *EnvLoader) get(name string) (string, bool) {
	return l.lookup(l.prefix + name)
}

// splitList splits a comma-separated list, trimming blanks and dropping
// empty entries.
func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

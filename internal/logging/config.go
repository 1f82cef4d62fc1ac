// Package logging configures the process-wide zerolog logger for pimd binaries
// and tests.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "PIMD_LOG_LEVEL"
	EnvLogTimestamp = "PIMD_LOG_TIMESTAMP"
	EnvLogNoColor   = "PIMD_LOG_NOCOLOR"
	EnvLogJSON      = "PIMD_LOG_JSON"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logger configuration for one process.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	JSON      bool // raw JSON lines instead of the console writer
}

var configureOnce sync.Once

func ConfigureRuntime() { Configure(ProfileRuntime) }
func ConfigureTests()   { Configure(ProfileTest) }

// Configure installs the logger for profile once; later calls are no-ops.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := ProfileConfig(profile)
		cfg.Override(os.Getenv)
		log.Logger = cfg.New(os.Stderr)
		zerolog.SetGlobalLevel(cfg.Level)
	})
}

func ProfileConfig(profile Profile) Config {
	if profile == ProfileTest {
		return Config{Level: zerolog.DebugLevel}
	}
	return Config{Level: zerolog.InfoLevel, Timestamp: true}
}

// Override applies PIMD_LOG_* values looked up through getenv. Unparseable
// values are ignored.
func (c *Config) Override(getenv func(string) string) {
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		c.Level = lvl
	}
	toggles := []struct {
		key string
		dst *bool
	}{
		{EnvLogTimestamp, &c.Timestamp},
		{EnvLogNoColor, &c.NoColor},
		{EnvLogJSON, &c.JSON},
	}
	for _, t := range toggles {
		if v, err := strconv.ParseBool(strings.TrimSpace(getenv(t.key))); err == nil {
			*t.dst = v
		}
	}
}

// New builds a logger writing to out.
func (c Config) New(out io.Writer) zerolog.Logger {
	if !c.JSON {
		console := zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    c.NoColor,
			TimeFormat: time.RFC3339,
		}
		if !c.Timestamp {
			console.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		out = console
	}
	ctx := zerolog.New(out).Level(c.Level).With()
	if c.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch raw = strings.ToLower(strings.TrimSpace(raw)); raw {
	case "":
		return zerolog.NoLevel, false
	case "warning":
		return zerolog.WarnLevel, true
	case "off", "none":
		return zerolog.Disabled, true
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, false
	}
	return lvl, true
}

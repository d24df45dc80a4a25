// Package config loads the censustable command configuration and sets up logging.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/yaoapp/kun/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOutput is the current log writer, nil while logging to stderr.
var LogOutput io.WriteCloser

var levels = []string{"trace", "debug", "info", "warn", "error"}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("can't read config: %w", err)
	}
	if cfg.HeaderRow < 0 {
		return cfg, fmt.Errorf("CENSUS_HEADER_ROW must not be negative: %d", cfg.HeaderRow)
	}
	if !slices.Contains(levels, strings.ToLower(cfg.LogLevel)) {
		return cfg, fmt.Errorf("unknown CENSUS_LOG_LEVEL %q", cfg.LogLevel)
	}
	return cfg, nil
}

// LoadFrom overlays envfile onto the environment, then reads the
// configuration. A missing envfile is not an error.
func LoadFrom(envfile string) (Config, error) {
	file, err := filepath.Abs(envfile)
	if err != nil {
		return Load()
	}

	if _, err := os.Stat(file); err == nil {
		if err := godotenv.Overload(file); err != nil {
			return Config{}, fmt.Errorf("can't read %s: %w", file, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return Load()
}

// WorkbookPath resolves the workbook against the data directory.
func (c Config) WorkbookPath() string {
	return c.resolve(c.Workbook)
}

// GeographyPath resolves the geography lookup against the data directory.
func (c Config) GeographyPath() string {
	return c.resolve(c.Geography)
}

func (c Config) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Development reports whether the configuration runs in development mode.
func (c Config) Development() bool {
	return c.Mode == "development"
}

// SetupLog applies the log level and format and opens the log file. In
// development mode everything down to trace is logged.
func SetupLog(cfg Config) {
	setLevel(strings.ToLower(cfg.LogLevel))
	if cfg.Development() {
		log.SetLevel(log.TraceLevel)
	}

	log.SetFormatter(log.TEXT)
	if strings.EqualFold(cfg.LogMode, "JSON") {
		log.SetFormatter(log.JSON)
	}

	CloseLog()
	OpenLog(cfg)
}

func setLevel(name string) {
	switch name {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
}

// OpenLog sends the log to cfg.Log through a rotating writer, or to stderr
// when no file is configured or its directory does not exist.
func OpenLog(cfg Config) {
	if cfg.Log == "" {
		log.SetOutput(os.Stderr)
		return
	}

	logfile, err := filepath.Abs(cfg.Log)
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	if _, err := os.Stat(filepath.Dir(logfile)); errors.Is(err, os.ErrNotExist) {
		log.SetOutput(os.Stderr)
		log.Warn("log directory of %s does not exist, logging to stderr", logfile)
		return
	}

	LogOutput = &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    cfg.LogMaxSize, // megabytes
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge, // days
		LocalTime:  cfg.LogLocalTime,
	}
	log.SetOutput(LogOutput)
}

// CloseLog closes the log file, if any.
func CloseLog() {
	if LogOutput == nil {
		return
	}
	if err := LogOutput.Close(); err != nil {
		log.Error(err.Error())
	}
	LogOutput = nil
}

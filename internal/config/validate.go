package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateScan(&cfg.Scan)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateServer(s *ServerConfig) []error {
	var errs []error

	if s.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr: must not be empty"))
	}

	if s.DataDir == "" {
		errs = append(errs, errors.New("data_dir: must not be empty"))
	}

	return errs
}

const minBatchSize = 1

func validateScan(s *ScanConfig) []error {
	var errs []error

	if s.BatchSize < minBatchSize {
		errs = append(errs, fmt.Errorf("batch_size: must be >= %d, got %d", minBatchSize, s.BatchSize))
	}

	if _, err := time.ParseDuration(s.StaleAfter); err != nil {
		errs = append(errs, fmt.Errorf("stale_after: invalid duration %q: %w", s.StaleAfter, err))
	}

	return errs
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("level: must be one of debug, info, warn, error; got %q", l.Level))
	}

	if !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("format: must be one of auto, text, json; got %q", l.Format))
	}

	return errs
}

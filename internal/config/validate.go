package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateExiftool(); err != nil {
		return err
	}
	if err := c.validateResolve(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		return errors.New("paths.history_db must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	name := c.Scan.ReportFilename
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("scan.report_filename %q must be a bare file name", name)
	}
	for _, ext := range c.Scan.ExtraExtensions {
		if ext == "" || strings.ContainsAny(ext, "./\\") {
			return fmt.Errorf("scan.extra_extensions entry %q is not a bare extension", ext)
		}
	}
	return nil
}

func (c *Config) validateExiftool() error {
	if !c.Exiftool.Enabled {
		return nil
	}
	if c.Exiftool.Binary == "" {
		return errors.New("exiftool.binary must be set when exiftool.enabled is true")
	}
	if c.Exiftool.TimeoutSeconds < 1 {
		return errors.New("exiftool.timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateResolve() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	currentYear := time.Now().Year()
	if c.Resolve.MinYear < 1000 || c.Resolve.MinYear > currentYear {
		return fmt.Errorf("resolve.min_year %d must be between 1000 and %d", c.Resolve.MinYear, currentYear)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.KeepRuns < 1 {
		return errors.New("history.keep_runs must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Scan contains configuration for library traversal.
type Scan struct {
	ReportFilename  string   `toml:"report_filename"`
	ExtraExtensions []string `toml:"extra_extensions"`
}

// Exiftool contains configuration for the embedded-metadata reader.
type Exiftool struct {
	Enabled        bool   `toml:"enabled"`
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Resolve contains configuration for the timestamp resolution policy.
type Resolve struct {
	// Location names the timezone in which naive timestamps are
	// interpreted: "Local", "UTC", or an IANA zone name.
	Location string `toml:"location"`
	// MinYear is the lowest directory-name token accepted as a year.
	MinYear int `toml:"min_year"`
}

// History contains configuration for the run-history database.
type History struct {
	Enabled  bool `toml:"enabled"`
	KeepRuns int  `toml:"keep_runs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for phototime.
//
// Configuration sections by subsystem:
//   - Paths: log directory and history database location
//   - Scan: traversal settings (report filename, extra media extensions)
//   - Exiftool: embedded-metadata reader binary and timeout
//   - Resolve: timestamp interpretation zone and directory-year floor
//   - History: run-history retention
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Scan     Scan     `toml:"scan"`
	Exiftool Exiftool `toml:"exiftool"`
	Resolve  Resolve  `toml:"resolve"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/phototime/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("phototime.toml")
	if err != nil {
		return "", false, err
	}

	// Project-local config wins over the per-user default.
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	logDir, err := expandPath(firstNonEmpty(c.Paths.LogDir, defaultLogDir))
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir

	historyDB := strings.TrimSpace(c.Paths.HistoryDB)
	if historyDB == "" {
		historyDB = filepath.Join(c.Paths.LogDir, defaultHistoryDBName)
	} else {
		historyDB, err = expandPath(historyDB)
		if err != nil {
			return err
		}
	}
	c.Paths.HistoryDB = historyDB

	c.Scan.ReportFilename = strings.TrimSpace(c.Scan.ReportFilename)
	if c.Scan.ReportFilename == "" {
		c.Scan.ReportFilename = defaultReportFilename
	}
	for i, ext := range c.Scan.ExtraExtensions {
		c.Scan.ExtraExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}

	c.Exiftool.Binary = strings.TrimSpace(c.Exiftool.Binary)
	if c.Exiftool.Binary == "" {
		c.Exiftool.Binary = defaultExiftoolBinary
	}
	if c.Exiftool.TimeoutSeconds <= 0 {
		c.Exiftool.TimeoutSeconds = defaultExiftoolTimeoutSeconds
	}

	c.Resolve.Location = strings.TrimSpace(c.Resolve.Location)
	if c.Resolve.Location == "" {
		c.Resolve.Location = defaultLocation
	}
	if c.Resolve.MinYear <= 0 {
		c.Resolve.MinYear = defaultMinYear
	}

	if c.History.KeepRuns <= 0 {
		c.History.KeepRuns = defaultHistoryKeepRuns
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(firstNonEmpty(c.Logging.Format, defaultLogFormat)))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(firstNonEmpty(c.Logging.Level, defaultLogLevel)))

	return nil
}

// EnsureDirectories creates required directories for a run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, filepath.Dir(c.Paths.HistoryDB)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Location resolves the configured timezone for naive timestamps.
func (c *Config) Location() (*time.Location, error) {
	switch strings.ToLower(c.Resolve.Location) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	default:
		loc, err := time.LoadLocation(c.Resolve.Location)
		if err != nil {
			return nil, fmt.Errorf("resolve.location %q: %w", c.Resolve.Location, err)
		}
		return loc, nil
	}
}

// ExiftoolTimeout returns the per-invocation exiftool deadline.
func (c *Config) ExiftoolTimeout() time.Duration {
	return time.Duration(c.Exiftool.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"phototime/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "logs", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithExiftoolDisabled turns off the embedded-metadata extractor.
func WithExiftoolDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Exiftool.Enabled = false
	}
}

// WithLocation overrides the timestamp interpretation zone.
func WithLocation(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolve.Location = name
	}
}

// WithStubbedExiftool writes a stub exiftool that prints the given JSON
// payload and prepends its directory to PATH for the test's duration.
func WithStubbedExiftool(payload string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
		if err := os.WriteFile(filepath.Join(binDir, "exiftool"), []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub exiftool: %v", err)
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

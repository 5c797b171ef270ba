package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"phototime/internal/config"
	"phototime/internal/testsupport"
)

func writeTestConfig(t *testing.T, opts ...testsupport.ConfigOption) string {
	t.Helper()

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{
		testsupport.WithExiftoolDisabled(),
		testsupport.WithLocation("UTC"),
	}, opts...)...)
	return writeConfigFile(t, cfg)
}

func writeConfigFile(t *testing.T, cfg *config.Config) string {
	t.Helper()

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--config", configPath))
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestRunCommandUpdatesAndRecordsHistory(t *testing.T) {
	configPath := writeTestConfig(t)

	root := t.TempDir()
	media := filepath.Join(root, "Photos 2019", "img.jpg")
	testsupport.WriteMediaFile(t, media)
	testsupport.WriteSidecar(t, media, `{"photoTakenTime":{"timestamp":"1609459200"}}`)

	out, err := runCLI(t, configPath, "run", root)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Updated")

	info, err := os.Stat(media)
	if err != nil {
		t.Fatalf("stat media: %v", err)
	}
	want := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	if info.ModTime().Unix() != want.Unix() {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), want)
	}

	if _, err := os.Stat(filepath.Join(root, ".phototime.toml")); err != nil {
		t.Fatalf("expected aggregate report at root: %v", err)
	}

	out, err = runCLI(t, configPath, "history")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	requireContains(t, out, root)

	// The run identifier travels through the context into every log line.
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	logPayload, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "phototime.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(logPayload), "run_id=")
}

func TestRunCommandEmbeddedMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithLocation("UTC"),
		testsupport.WithStubbedExiftool(`[{"CreateDate":"2018:05:04 10:20:30"}]`))
	configPath := writeConfigFile(t, cfg)

	root := t.TempDir()
	media := filepath.Join(root, "misc", "clip.mov")
	testsupport.WriteMediaFile(t, media)

	out, err := runCLI(t, configPath, "run", root)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	info, err := os.Stat(media)
	if err != nil {
		t.Fatalf("stat media: %v", err)
	}
	want := time.Date(2018, 5, 4, 10, 20, 30, 0, time.UTC)
	if info.ModTime().Unix() != want.Unix() {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), want)
	}
}

func TestRunCommandDryRunLeavesFilesAlone(t *testing.T) {
	configPath := writeTestConfig(t)

	root := t.TempDir()
	media := filepath.Join(root, "Vacation 2018", "clip.mp4")
	testsupport.WriteMediaFile(t, media)

	before, err := os.Stat(media)
	if err != nil {
		t.Fatalf("stat media: %v", err)
	}

	out, err := runCLI(t, configPath, "run", "--dry-run", root)
	if err != nil {
		t.Fatalf("run --dry-run: %v\n%s", err, out)
	}
	requireContains(t, out, "Dry run: no files were modified.")

	after, err := os.Stat(media)
	if err != nil {
		t.Fatalf("stat media: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("dry run modified mtime: %v -> %v", before.ModTime(), after.ModTime())
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Name() == ".phototime.toml" {
			t.Fatalf("dry run wrote a report file at %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scan for report files: %v", err)
	}
}

func TestResolveCommandShowsCandidate(t *testing.T) {
	configPath := writeTestConfig(t)

	root := t.TempDir()
	media := filepath.Join(root, "Trip 2019", "img.jpg")
	testsupport.WriteMediaFile(t, media)
	testsupport.WriteSidecar(t, media, `{"photoTakenTime":{"timestamp":"1609459200"}}`)

	out, err := runCLI(t, configPath, "resolve", media)
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, out)
	}
	requireContains(t, out, "Source:   sidecar")
	requireContains(t, out, "Stamp:    202101010000.00")

	info, err := os.Stat(media)
	if err != nil {
		t.Fatalf("stat media: %v", err)
	}
	if info.ModTime().Year() != 1980 {
		t.Fatalf("resolve modified the file: %v", info.ModTime())
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/msl-script/internal/pager"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	data := "db: work/lunar.db\noutput_dir: sheets\nworkers: 3\ntextbox:\n  width: 40\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DB != filepath.Join(dir, "work", "lunar.db") {
		t.Errorf("expected db relative to config, got %s", c.DB)
	}
	if c.OutputDir != "sheets" || c.Workers != 3 {
		t.Errorf("unexpected config %+v", c)
	}

	opts := c.Pager()
	if opts.MaxWidth != 40 {
		t.Errorf("expected width 40, got %d", opts.MaxWidth)
	}
	if opts.MaxLines != pager.DefaultMaxLines {
		t.Errorf("expected default lines, got %d", opts.MaxLines)
	}
}

func TestLoad_MissingDefaultIsEmpty(t *testing.T) {
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	os.Chdir(t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DB != "" || c.Workers != 0 {
		t.Errorf("expected empty config, got %+v", c)
	}
}

func TestLoad_MissingExplicit(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("workers: [1, 2"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

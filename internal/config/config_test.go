package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	if !cfg.Optimize {
		t.Fatalf("expected the optimizer to run by default")
	}
	if cfg.Reflect {
		t.Fatalf("expected reflection metadata off by default")
	}
	if cfg.UseStringBuilder {
		t.Fatalf("expected the backend's StringBuilder collapse to be off by default")
	}
	if cfg.StringBuilderThreshold != 6 {
		t.Fatalf("expected the default string builder threshold to be 6, got %d", cfg.StringBuilderThreshold)
	}
	if cfg.HeapLimit != 0 {
		t.Fatalf("expected an unenforced heap limit by default, got %d", cfg.HeapLimit)
	}
}

func TestLoadYAMLOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "udonc.config.yaml")
	if err := os.WriteFile(path, []byte("reflect: true\nheapLimit: 1000\n"), 0o644); err != nil {
		t.Fatalf("failed writing fixture config: %v", err)
	}

	cfg, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	if !cfg.Reflect {
		t.Fatalf("expected reflect to be overridden to true")
	}
	if cfg.HeapLimit != 1000 {
		t.Fatalf("expected heapLimit to be overridden to 1000, got %d", cfg.HeapLimit)
	}
	if !cfg.Optimize {
		t.Fatalf("expected optimize to keep its default true since the file didn't mention it")
	}
	if cfg.StringBuilderThreshold != 6 {
		t.Fatalf("expected stringBuilderThreshold to keep its default, got %d", cfg.StringBuilderThreshold)
	}
}

func TestLoadYAMLMissingFileReturnsError(t *testing.T) {
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatalf("expected an error reading a missing config file")
	}
}

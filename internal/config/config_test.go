package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

func TestLoadProjectConfig_ValidYml(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
collapse_inner_functions: false
collapse_methods: false
sort_imports: false
keep_dynamic_imports: false
reject_stdlib_entry: true
package_overrides:
  yaml: PyYAML
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".pysliceirc.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.CollapseInner == nil || *cfg.CollapseInner != false {
		t.Errorf("CollapseInner = %v, want false", cfg.CollapseInner)
	}
	if cfg.CollapseMethods == nil || *cfg.CollapseMethods != false {
		t.Errorf("CollapseMethods = %v, want false", cfg.CollapseMethods)
	}
	if cfg.SortImports == nil || *cfg.SortImports != false {
		t.Errorf("SortImports = %v, want false", cfg.SortImports)
	}
	if cfg.KeepDynamicImports == nil || *cfg.KeepDynamicImports != false {
		t.Errorf("KeepDynamicImports = %v, want false", cfg.KeepDynamicImports)
	}
	if !cfg.RejectStdlib {
		t.Error("RejectStdlib = false, want true")
	}
	if cfg.PackageOverrides["yaml"] != "PyYAML" {
		t.Errorf("PackageOverrides[yaml] = %q, want PyYAML", cfg.PackageOverrides["yaml"])
	}
}

func TestLoadProjectConfig_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config for missing file, got %+v", cfg)
	}
}

func TestLoadProjectConfig_InvalidVersion(t *testing.T) {
	tmpDir := t.TempDir()

	content := "version: 99\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".pysliceirc.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProjectConfig(tmpDir, "")
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestLoadProjectConfig_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()

	content := "version: 1\noffline_pypi: true\n"
	customPath := filepath.Join(tmpDir, "custom-config.yml")
	if err := os.WriteFile(customPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, customPath)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if !cfg.OfflinePyPI {
		t.Error("OfflinePyPI = false, want true")
	}
}

func TestProjectConfig_ApplyToOptions(t *testing.T) {
	collapseInner := false
	collapseMethods := false
	sortImports := false
	keepDynamic := false
	pc := &ProjectConfig{
		Version:            1,
		CollapseInner:      &collapseInner,
		CollapseMethods:    &collapseMethods,
		SortImports:        &sortImports,
		KeepDynamicImports: &keepDynamic,
		RejectStdlib:       true,
	}

	opts := &pyslice.Options{}
	pc.ApplyToOptions(opts)

	if !opts.NoCollapseInnerFunctions {
		t.Error("expected NoCollapseInnerFunctions true when collapse_inner_functions: false")
	}
	if !opts.NoCollapseMethods {
		t.Error("expected NoCollapseMethods true when collapse_methods: false")
	}
	if !opts.NoSortImports {
		t.Error("expected NoSortImports true when sort_imports: false")
	}
	if !opts.DropDynamicImports {
		t.Error("expected DropDynamicImports true when keep_dynamic_imports: false")
	}
	if !opts.RejectStdlibEntry {
		t.Error("expected RejectStdlibEntry true")
	}
}

func TestProjectConfig_ApplyToOptionsLeavesUnsetFieldsAlone(t *testing.T) {
	pc := &ProjectConfig{Version: 1}
	opts := &pyslice.Options{}
	pc.ApplyToOptions(opts)

	if opts.NoCollapseInnerFunctions || opts.NoCollapseMethods || opts.NoSortImports || opts.DropDynamicImports {
		t.Errorf("expected all opt-out flags to remain false when config omits them, got %+v", opts)
	}
}

func TestLoadProjectConfig_YamlExtension(t *testing.T) {
	tmpDir := t.TempDir()

	content := "version: 1\noffline_pypi: true\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".pysliceirc.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config for .pysliceirc.yaml")
	}
}

// Package config handles .pysliceirc.yml project-level configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

// ProjectConfig represents the .pysliceirc.yml configuration file.
type ProjectConfig struct {
	Version            int               `yaml:"version"`
	CollapseInner      *bool             `yaml:"collapse_inner_functions"`
	CollapseMethods    *bool             `yaml:"collapse_methods"`
	SortImports        *bool             `yaml:"sort_imports"`
	KeepDynamicImports *bool             `yaml:"keep_dynamic_imports"`
	RejectStdlib       bool              `yaml:"reject_stdlib_entry"`
	OfflinePyPI        bool              `yaml:"offline_pypi"`
	PackageOverrides   map[string]string `yaml:"package_overrides"`
}

// LoadProjectConfig loads project configuration from .pysliceirc.yml or
// .pysliceirc.yaml. If explicitPath is provided (from --config flag), that
// file is loaded. Otherwise looks for .pysliceirc.yml then .pysliceirc.yaml
// in dir. Returns nil (no error) if no config file is found.
func LoadProjectConfig(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".pysliceirc.yml")
		yamlPath := filepath.Join(dir, ".pysliceirc.yaml")

		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return nil, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig values are valid.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}
	return nil
}

// ApplyToOptions applies project config overrides onto a pyslice.Options,
// leaving any field the config doesn't mention untouched.
func (c *ProjectConfig) ApplyToOptions(opts *pyslice.Options) {
	if c == nil || opts == nil {
		return
	}
	if c.CollapseInner != nil {
		opts.NoCollapseInnerFunctions = !*c.CollapseInner
	}
	if c.CollapseMethods != nil {
		opts.NoCollapseMethods = !*c.CollapseMethods
	}
	if c.SortImports != nil {
		opts.NoSortImports = !*c.SortImports
	}
	if c.KeepDynamicImports != nil {
		opts.DropDynamicImports = !*c.KeepDynamicImports
	}
	if c.RejectStdlib {
		opts.RejectStdlibEntry = true
	}
	if c.OfflinePyPI {
		opts.OfflinePyPI = true
	}
	if len(c.PackageOverrides) > 0 {
		if opts.PackageOverrides == nil {
			opts.PackageOverrides = make(map[string]string)
		}
		for k, v := range c.PackageOverrides {
			opts.PackageOverrides[k] = v
		}
	}
}

// Package config loads the YAML configuration for the export
// subcommand: where to connect, and how fast to scan.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExportConfig describes a companion export run against a live
// instance.
type ExportConfig struct {
	Addr      string  `yaml:"addr"`
	Password  string  `yaml:"password"`
	TLS       bool    `yaml:"tls"`
	Pretty    bool    `yaml:"pretty"`
	ScanCount int64   `yaml:"scanCount"`
	ScanRate  float64 `yaml:"scanRate"`

	path string
}

// Load reads and validates an export configuration file.
func Load(path string) (*ExportConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", absPath, err)
	}

	var cfg ExportConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", absPath, err)
	}

	cfg.path = absPath
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ExportConfig) applyDefaults() {
	if c.ScanCount <= 0 {
		c.ScanCount = 100
	}
}

// ValidationError collects configuration issues found at load time.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	msg := "invalid config"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	for _, err := range e.Errors {
		msg += "\n  - " + err
	}
	return msg
}

func (c *ExportConfig) validate() error {
	var errs []string
	if c.Addr == "" {
		errs = append(errs, "addr is required")
	}
	if c.ScanRate < 0 {
		errs = append(errs, "scanRate must not be negative")
	}
	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}

// Summary returns a concise one-line description, used by the CLI's
// --show flag.
func (c *ExportConfig) Summary() string {
	return fmt.Sprintf("addr=%s tls=%t pretty=%t scanCount=%d scanRate=%.1f", c.Addr, c.TLS, c.Pretty, c.ScanCount, c.ScanRate)
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the application configuration. Only ambient options
// live here; the forensic parameters are contract-level constants in the
// analyzer and cleaner packages.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format  string `yaml:"format"`
		Verbose bool   `yaml:"verbose"`
		Debug   bool   `yaml:"debug"`
		NoColor bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Cleaning output settings
	Clean struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"clean"`

	// Web server settings
	Web struct {
		Port string `yaml:"port"`
	} `yaml:"web"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false
	config.Clean.OutputDir = "./cleaned"
	config.Web.Port = "8080"

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"redact-check.yaml",
		"redact-check.yml",
	}
	for _, name := range candidates {
		if fileExists(name) {
			return name
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".redact-check", "config.yaml")
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// ValidateConfig checks the loaded configuration for unusable values
func ValidateConfig(config *Config) error {
	switch config.Defaults.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", config.Defaults.Format)
	}
	if config.Web.Port != "" {
		for _, r := range config.Web.Port {
			if r < '0' || r > '9' {
				return fmt.Errorf("invalid web port %q", config.Web.Port)
			}
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

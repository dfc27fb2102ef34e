// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration file support for pdftext.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration structure
type Config struct {
	// Default settings applied when no flag overrides them
	Defaults struct {
		Format   string `yaml:"format"`
		Engine   string `yaml:"engine"`
		Pretty   bool   `yaml:"pretty"`
		Metadata bool   `yaml:"metadata"`
		Forms    bool   `yaml:"forms"`
		Layout   bool   `yaml:"layout"`
		Validate bool   `yaml:"validate"`
		MaxPages int    `yaml:"max_pages"`
		Verbose  bool   `yaml:"verbose"`
		Debug    bool   `yaml:"debug"`
		NoColor  bool   `yaml:"no_color"`
		Output   string `yaml:"output"`
	} `yaml:"defaults"`

	// Named profiles for different use cases
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a named configuration profile
type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Engine      string `yaml:"engine"`
	Pretty      bool   `yaml:"pretty"`
	Metadata    bool   `yaml:"metadata"`
	Forms       bool   `yaml:"forms"`
	Layout      bool   `yaml:"layout"`
	Validate    bool   `yaml:"validate"`
	MaxPages    int    `yaml:"max_pages"`
	Verbose     bool   `yaml:"verbose"`
	Debug       bool   `yaml:"debug"`
	NoColor     bool   `yaml:"no_color"`
}

// EngineNames lists the extraction engines a config file or flag may select.
var EngineNames = []string{"pdftext", "pdfcpu"}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*Config, error) {
	// Set default configuration
	config := &Config{}
	config.Defaults.Format = "json"
	config.Defaults.Engine = "pdftext"

	// Built-in profiles, overridable by the config file
	config.Profiles = map[string]Profile{
		"full": {
			Description: "Extract text, form fields, and document metadata with layout-aware spacing",
			Format:      "json",
			Engine:      "pdftext",
			Pretty:      true,
			Metadata:    true,
			Forms:       true,
			Layout:      true,
		},
		"strict": {
			Description: "Validate PDF structure before extracting",
			Format:      "json",
			Engine:      "pdftext",
			Validate:    true,
		},
		"plain": {
			Description: "Human-readable text report",
			Format:      "text",
			Engine:      "pdftext",
		},
	}

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	// Clean the config path to prevent path traversal
	configPath = filepath.Clean(configPath)

	// Read config file
	data, err := os.ReadFile(configPath) // #nosec G304 - configPath is cleaned above
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Validate configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from a file, falling back to defaults on error
func LoadConfigOrDefault(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		// Return default config on error
		defaultConfig, _ := LoadConfig("")
		return defaultConfig
	}
	return config
}

// ValidateConfig checks that configured values are usable
func ValidateConfig(config *Config) error {
	if err := validateEngine(config.Defaults.Engine); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if config.Defaults.MaxPages < 0 {
		return fmt.Errorf("defaults: max_pages must not be negative, got %d", config.Defaults.MaxPages)
	}

	for name, profile := range config.Profiles {
		if err := validateEngine(profile.Engine); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		if profile.MaxPages < 0 {
			return fmt.Errorf("profile %q: max_pages must not be negative, got %d", name, profile.MaxPages)
		}
	}

	return nil
}

func validateEngine(engine string) error {
	if engine == "" {
		return nil
	}
	for _, name := range EngineNames {
		if engine == name {
			return nil
		}
	}
	return fmt.Errorf("unknown engine %q (available: %v)", engine, EngineNames)
}

// FindConfigFile looks for a config file in standard locations
func FindConfigFile() string {
	// Check current directory first
	candidates := []string{
		"pdftext.yaml",
		"pdftext.yml",
		".pdftext.yaml",
		".pdftext.yml",
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}

	// Check explicit config directory override
	if configDir := os.Getenv("PDFTEXT_CONFIG_DIR"); configDir != "" {
		configPath := filepath.Join(configDir, "config.yaml")
		if fileExists(configPath) {
			return configPath
		}
	}

	if runtime.GOOS == "windows" {
		return findWindowsConfigFile()
	}
	return findUnixConfigFile()
}

// findWindowsConfigFile checks Windows-specific config locations
func findWindowsConfigFile() string {
	// %APPDATA%\pdftext\config.yaml
	if appData := os.Getenv("APPDATA"); appData != "" {
		configPath := filepath.Join(appData, "pdftext", "config.yaml")
		if fileExists(configPath) {
			return configPath
		}
	}

	// %USERPROFILE%\.pdftext\config.yaml
	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		configPath := filepath.Join(userProfile, ".pdftext", "config.yaml")
		if fileExists(configPath) {
			return configPath
		}
	}

	return ""
}

// findUnixConfigFile checks Unix-specific config locations
func findUnixConfigFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	candidates := []string{
		filepath.Join(homeDir, ".pdftext", "config.yaml"),
		filepath.Join(homeDir, ".config", "pdftext", "config.yaml"),
		filepath.Join(homeDir, ".pdftext.yaml"),
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if c.Profiles == nil {
		return nil
	}
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ListProfiles returns the names of all available profiles
func (c *Config) ListProfiles() []string {
	if c.Profiles == nil {
		return nil
	}
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/nlp"
	"ambiguity-scan/internal/paths"
	"ambiguity-scan/internal/resilience"

	"gopkg.in/yaml.v3"
)

// Parser modes.
const (
	ParserModeJSON = "json"
	ParserModeHTTP = "http"
)

var (
	validFormats   = []string{"text", "json", "yaml", "csv"}
	validLogFormat = []string{"console", "json"}
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format           string `yaml:"format"`
		ConfidenceLevels string `yaml:"confidence_levels"`
		Detectors        string `yaml:"detectors"`
		Verbose          bool   `yaml:"verbose"`
		Debug            bool   `yaml:"debug"`
		NoColor          bool   `yaml:"no_color"`
		Parallelism      int    `yaml:"parallelism"`
	} `yaml:"defaults"`

	Detection DetectionSettings `yaml:"detection"`
	Parser    ParserSettings    `yaml:"parser"`

	Exceptions struct {
		Enabled bool   `yaml:"enabled"`
		File    string `yaml:"file"`
	} `yaml:"exceptions"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Profiles for different kinds of documents
	Profiles map[string]Profile `yaml:"profiles"`
}

// DetectionSettings is the YAML form of detector.Config.
type DetectionSettings struct {
	Severities    map[string]string `yaml:"severities"`
	Categories    map[string]string `yaml:"categories"`
	Enabled       []string          `yaml:"enabled"`
	MinConfidence float64           `yaml:"min_confidence"`
	// Patterns adds phrases to a detector's built-in list, keyed by detector name.
	Patterns map[string][]string `yaml:"patterns"`
}

// ParserSettings selects and tunes the sentence parser.
type ParserSettings struct {
	Mode       string        `yaml:"mode"`
	Endpoint   string        `yaml:"endpoint"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rate_limit"`
	Burst      int           `yaml:"burst"`
	MaxRetries int           `yaml:"max_retries"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// Profile represents an analysis profile with specific settings
type Profile struct {
	Format           string             `yaml:"format"`
	ConfidenceLevels string             `yaml:"confidence_levels"`
	Detectors        string             `yaml:"detectors"`
	Verbose          bool               `yaml:"verbose"`
	NoColor          bool               `yaml:"no_color"`
	Description      string             `yaml:"description"`
	Metadata         map[string]string  `yaml:"metadata"`
	Detection        *DetectionSettings `yaml:"detection,omitempty"`
}

func defaultConfig() *Config {
	config := &Config{Profiles: make(map[string]Profile)}

	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"
	config.Defaults.Detectors = "all"
	config.Defaults.Parallelism = 1

	config.Parser.Mode = ParserModeJSON
	config.Parser.Timeout = 10 * time.Second
	config.Parser.Burst = 1
	config.Parser.MaxRetries = 3
	config.Parser.CacheTTL = 10 * time.Minute

	config.Exceptions.Enabled = true
	config.Exceptions.File = paths.GetExceptionsFile()

	config.Logging.Level = "warn"
	config.Logging.Format = "console"

	config.Profiles["review"] = Profile{
		Format:           "text",
		ConfidenceLevels: "high,medium",
		Detectors:        "all",
		Description:      "Reviewer-facing output without low-confidence findings",
	}
	config.Profiles["legal"] = Profile{
		Format:           "json",
		ConfidenceLevels: "all",
		Detectors:        "unsupported_claims,fabrication_risk",
		Description:      "Contract and policy text, where absolute promises carry the most risk",
		Metadata:         map[string]string{"domain": "legal"},
	}
	return config
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultExceptionsEnabled := config.Exceptions.Enabled

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// YAML leaves absent bools false, so restore the ones that default to true
	if !containsField(data, "exceptions", "enabled") {
		config.Exceptions.Enabled = defaultExceptionsEnabled
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory and
// then in the user configuration directory.
func FindConfigFile() string {
	for _, name := range []string{".ambiguity-scan.yaml", ".ambiguity-scan.yml", "ambiguity-scan.yaml"} {
		if fileExists(name) {
			return name
		}
	}
	if standard := paths.GetConfigFile(); fileExists(standard) {
		return standard
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	slices.Sort(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// DetectionConfig builds the detector configuration. Profile detection
// settings, when given, replace the top-level ones.
func (c *Config) DetectionConfig(profile *Profile) (*detector.Config, error) {
	settings := c.Detection
	if profile != nil && profile.Detection != nil {
		settings = *profile.Detection
	}
	return settings.Build()
}

// Build converts the settings into an immutable detector.Config.
func (s DetectionSettings) Build() (*detector.Config, error) {
	opts := detector.ConfigOptions{
		Severities:    make(map[detector.AmbiguityType]detector.Severity, len(s.Severities)),
		Categories:    make(map[detector.AmbiguityType]detector.Category, len(s.Categories)),
		MinConfidence: s.MinConfidence,
		Patterns:      s.Patterns,
	}
	for name, value := range s.Severities {
		t, err := detector.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("detection.severities: %w", err)
		}
		sev, err := detector.ParseSeverity(value)
		if err != nil {
			return nil, fmt.Errorf("detection.severities[%s]: %w", name, err)
		}
		opts.Severities[t] = sev
	}
	for name, value := range s.Categories {
		t, err := detector.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("detection.categories: %w", err)
		}
		cat, err := detector.ParseCategory(value)
		if err != nil {
			return nil, fmt.Errorf("detection.categories[%s]: %w", name, err)
		}
		opts.Categories[t] = cat
	}
	for _, name := range s.Enabled {
		t, err := detector.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("detection.enabled: %w", err)
		}
		opts.Enabled = append(opts.Enabled, t)
	}
	return detector.NewConfig(opts), nil
}

// HTTPParserConfig maps the parser settings onto the HTTP client config.
func (p ParserSettings) HTTPParserConfig() nlp.HTTPParserConfig {
	retry := resilience.DefaultRetryConfig()
	retry.MaxRetries = p.MaxRetries
	return nlp.HTTPParserConfig{
		Endpoint:  p.Endpoint,
		Timeout:   p.Timeout,
		RateLimit: p.RateLimit,
		Burst:     p.Burst,
		Retry:     retry,
	}
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		value, exists := current[key]
		if !exists {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateConfig checks field values that YAML decoding cannot.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if f := strings.ToLower(config.Defaults.Format); f != "" && !slices.Contains(validFormats, f) {
		return fmt.Errorf("unknown output format %q", config.Defaults.Format)
	}
	if config.Defaults.Parallelism < 0 {
		return fmt.Errorf("parallelism cannot be negative")
	}
	if f := strings.ToLower(config.Logging.Format); f != "" && !slices.Contains(validLogFormat, f) {
		return fmt.Errorf("unknown log format %q", config.Logging.Format)
	}

	if err := validateParser(config.Parser); err != nil {
		return fmt.Errorf("parser configuration validation failed: %w", err)
	}
	if _, err := config.Detection.Build(); err != nil {
		return err
	}
	for name, profile := range config.Profiles {
		if profile.Detection == nil {
			continue
		}
		if _, err := profile.Detection.Build(); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}
	return nil
}

func validateParser(p ParserSettings) error {
	switch strings.ToLower(p.Mode) {
	case "", ParserModeJSON:
	case ParserModeHTTP:
		if strings.TrimSpace(p.Endpoint) == "" {
			return fmt.Errorf("endpoint is required in http mode")
		}
	default:
		return fmt.Errorf("unknown parser mode %q", p.Mode)
	}
	if p.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, warn receives the error and the
// default configuration is returned.
func LoadConfigOrDefault(configFile string, warn func(error)) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		if warn != nil {
			warn(err)
		}
		cfg, _ = LoadConfig("")
	}
	return cfg
}

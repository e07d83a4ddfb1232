// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"maps"
	"slices"
)

// ConfigOptions overrides the built-in tables when building a Config.
type ConfigOptions struct {
	Severities map[AmbiguityType]Severity
	Categories map[AmbiguityType]Category
	// Enabled restricts reporting to these types; empty enables all.
	Enabled []AmbiguityType
	// Patterns is a registry of extra named patterns for extension detectors.
	Patterns map[string][]string
	// MinConfidence raises the reporting floor above MinConfidence.
	MinConfidence float64
}

// Config is the detection configuration. It is immutable once built and is
// shared by every detector of a coordinator without locking.
type Config struct {
	severities    map[AmbiguityType]Severity
	categories    map[AmbiguityType]Category
	enabled       map[AmbiguityType]bool
	patterns      map[string][]string
	minConfidence float64
}

// DefaultConfig returns the built-in tables with every type enabled.
func DefaultConfig() *Config {
	return NewConfig(ConfigOptions{})
}

// NewConfig builds a Config. The option maps are copied.
func NewConfig(opts ConfigOptions) *Config {
	c := &Config{
		severities:    maps.Clone(defaultSeverities),
		categories:    maps.Clone(defaultCategories),
		enabled:       make(map[AmbiguityType]bool, len(AllTypes)),
		patterns:      make(map[string][]string, len(opts.Patterns)),
		minConfidence: max(MinConfidence, opts.MinConfidence),
	}
	if c.minConfidence > 1 {
		c.minConfidence = 1
	}
	for t, s := range opts.Severities {
		if s.Rank() > 0 {
			c.severities[t] = s
		}
	}
	for t, cat := range opts.Categories {
		if cat != "" {
			c.categories[t] = cat
		}
	}
	if len(opts.Enabled) == 0 {
		for _, t := range AllTypes {
			c.enabled[t] = true
		}
	} else {
		for _, t := range opts.Enabled {
			c.enabled[t] = true
		}
	}
	for name, p := range opts.Patterns {
		c.patterns[name] = slices.Clone(p)
	}
	return c
}

// Severity returns the configured severity of t.
func (c *Config) Severity(t AmbiguityType) Severity {
	if s, ok := c.severities[t]; ok {
		return s
	}
	return Medium
}

// Category returns the configured category of t.
func (c *Config) Category(t AmbiguityType) Category {
	if cat, ok := c.categories[t]; ok {
		return cat
	}
	return Semantic
}

// IsEnabled reports whether findings of type t are reported.
func (c *Config) IsEnabled(t AmbiguityType) bool {
	return c.enabled[t]
}

// AnyEnabled reports whether at least one of ts is enabled.
func (c *Config) AnyEnabled(ts ...AmbiguityType) bool {
	for _, t := range ts {
		if c.enabled[t] {
			return true
		}
	}
	return false
}

// EnabledTypes returns the enabled types in declaration order.
func (c *Config) EnabledTypes() []AmbiguityType {
	var out []AmbiguityType
	for _, t := range AllTypes {
		if c.enabled[t] {
			out = append(out, t)
		}
	}
	return out
}

// Patterns returns a copy of the named pattern list.
func (c *Config) Patterns(name string) []string {
	return slices.Clone(c.patterns[name])
}

// MinConfidence returns the reporting floor, never below the package floor.
func (c *Config) MinConfidence() float64 {
	return c.minConfidence
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"strings"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/detectors/claims"
	"ambiguity-scan/internal/detectors/fabrication"
	"ambiguity-scan/internal/detectors/missingactor"
	"ambiguity-scan/internal/detectors/pronoun"
	"ambiguity-scan/internal/help"
)

// Detector names accepted by ParseDetectorsToRun, in run order.
var detectorNames = []string{
	missingactor.Name,
	pronoun.Name,
	claims.Name,
	fabrication.Name,
}

// DetectorNames returns the registered detector names in run order.
func DetectorNames() []string {
	return append([]string(nil), detectorNames...)
}

// normalizeDetectorName accepts "missing_actor", "MISSING_ACTOR" and
// "missing-actor" alike.
func normalizeDetectorName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// ParseDetectorsToRun converts a slice of detector names into an enabled map.
// An empty slice or ["all"] enables every detector. Unknown names are ignored.
func ParseDetectorsToRun(names []string) map[string]bool {
	result := make(map[string]bool, len(detectorNames))
	for _, n := range detectorNames {
		result[n] = false
	}

	if len(names) == 0 || (len(names) == 1 && normalizeDetectorName(names[0]) == "all") {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, name := range names {
		if n := normalizeDetectorName(name); n != "" {
			if _, exists := result[n]; exists {
				result[n] = true
			}
		}
	}
	return result
}

// BuildDetectorSet constructs the standard detectors filtered by the enabled
// map, in run order. A detector is left out when cfg disables every type it
// reports. Pass nil for cfg or exc to use the defaults.
func BuildDetectorSet(enabled map[string]bool, cfg *detector.Config, exc detector.ExceptionChecker) []detector.Detector {
	if cfg == nil {
		cfg = detector.DefaultConfig()
	}
	if exc == nil {
		exc = detector.NoExceptions{}
	}

	var result []detector.Detector
	add := func(d detector.Detector) {
		if enabled[d.Name()] && cfg.AnyEnabled(d.Types()...) {
			result = append(result, d)
		}
	}
	add(missingactor.New(cfg, exc))
	add(pronoun.New(cfg, exc))
	add(claims.New(cfg, exc))
	add(fabrication.New(cfg, exc))
	return result
}

// HelpProviders returns the help entries of every standard detector.
func HelpProviders() []help.Provider {
	return []help.Provider{
		missingactor.New(nil, nil),
		pronoun.New(nil, nil),
		claims.New(nil, nil),
		fabrication.New(nil, nil),
	}
}

// ParseConfidenceLevels converts a comma-separated confidence level string into a map.
// "all" or empty string enables every level.
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		"high":   false,
		"medium": false,
		"low":    false,
	}

	if levels == "all" || levels == "" {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch l := strings.ToLower(strings.TrimSpace(level)); l {
		case "high", "medium", "low":
			result[l] = true
		}
	}
	return result
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import "ambiguity-scan/internal/detector"

// Report is the top-level structure shared by the JSON and YAML outputs.
type Report struct {
	Results []detector.Record `json:"results" yaml:"results"`
	Summary Summary           `json:"summary" yaml:"summary"`
}

// Summary counts the reported records.
type Summary struct {
	Total      int            `json:"total" yaml:"total"`
	BySeverity map[string]int `json:"by_severity" yaml:"by_severity"`
	ByType     map[string]int `json:"by_type" yaml:"by_type"`
	ByLevel    map[string]int `json:"by_confidence_level" yaml:"by_confidence_level"`
}

// NewReport filters records by confidence and counts what remains.
func NewReport(records []detector.Record, options FormatterOptions) Report {
	results := FilterByConfidence(records, options)
	summary := Summary{
		Total:      len(results),
		BySeverity: map[string]int{},
		ByType:     map[string]int{},
		ByLevel:    map[string]int{},
	}
	for _, r := range results {
		summary.BySeverity[string(r.Severity)]++
		summary.ByType[string(r.Subtype)]++
		summary.ByLevel[ConfidenceLevel(r.Confidence)]++
	}
	return Report{Results: results, Summary: summary}
}

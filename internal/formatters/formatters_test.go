// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	stdjson "encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/formatters"
	_ "ambiguity-scan/internal/formatters/csv"
	_ "ambiguity-scan/internal/formatters/json"
	_ "ambiguity-scan/internal/formatters/text"
	_ "ambiguity-scan/internal/formatters/yaml"
)

func sampleRecords() []detector.Record {
	return []detector.Record{
		{
			Type:          detector.RecordType,
			Subtype:       detector.AmbiguousPronoun,
			Category:      detector.Referential,
			Severity:      detector.Medium,
			Confidence:    0.7,
			Sentence:      "The client and the server exchange keys before they expire.",
			SentenceIndex: 0,
			FlaggedText:   "they",
			Message:       "Ambiguous pronoun 'they'",
			Suggestions:   []string{"Replace the pronoun with the noun it refers to."},
			Span:          &detector.Span{Start: 47, End: 51},
		},
		{
			Type:          detector.RecordType,
			Subtype:       detector.UnsupportedClaims,
			Category:      detector.Semantic,
			Severity:      detector.Critical,
			Confidence:    0.9,
			Sentence:      "This approach always works.",
			SentenceIndex: 1,
			FlaggedText:   "always",
			Message:       "=SUM(A1) always",
		},
		{
			Type:          detector.RecordType,
			Subtype:       detector.MissingActor,
			Category:      detector.Structural,
			Severity:      detector.High,
			Confidence:    0.45,
			Sentence:      "It was reviewed.",
			SentenceIndex: 2,
			FlaggedText:   "reviewed",
		},
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())

	_, err := formatters.Export("sarif", nil, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, text, yaml")
}

func TestConfidenceLevel(t *testing.T) {
	cases := map[float64]string{0.95: "high", 0.8: "high", 0.7: "medium", 0.6: "medium", 0.5: "low", 0.35: "low"}
	for conf, want := range cases {
		assert.Equal(t, want, formatters.ConfidenceLevel(conf), "confidence %v", conf)
	}
}

func TestFilterByConfidence(t *testing.T) {
	opts := formatters.FormatterOptions{ConfidenceLevel: map[string]bool{"high": true}}
	got := formatters.FilterByConfidence(sampleRecords(), opts)
	require.Len(t, got, 1)
	assert.Equal(t, detector.UnsupportedClaims, got[0].Subtype)

	assert.Len(t, formatters.FilterByConfidence(sampleRecords(), formatters.FormatterOptions{}), 3)
}

func TestJSONFormat(t *testing.T) {
	out, err := formatters.Export("json", sampleRecords(), formatters.FormatterOptions{Compact: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "\n")

	var report formatters.Report
	require.NoError(t, stdjson.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.BySeverity["critical"])
	assert.Equal(t, 1, report.Summary.ByLevel["low"])
	assert.Equal(t, &detector.Span{Start: 47, End: 51}, report.Results[0].Span)
}

func TestJSONFormat_Empty(t *testing.T) {
	out, err := formatters.Export("json", nil, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, `"results": []`)
}

func TestYAMLFormat(t *testing.T) {
	opts := formatters.FormatterOptions{ConfidenceLevel: map[string]bool{"high": true, "medium": true}}
	out, err := formatters.Export("yaml", sampleRecords(), opts)
	require.NoError(t, err)

	var report formatters.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, "they", report.Results[0].FlaggedText)
}

func TestCSVFormat(t *testing.T) {
	out, err := formatters.Export("csv", sampleRecords(), formatters.FormatterOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Sentence,Type,Category"))
	assert.Contains(t, lines[1], ",they,The client and the server exchange keys before they expire.,")
	assert.Contains(t, lines[2], "'=SUM(A1) always", "formula characters are neutralized")
	assert.Contains(t, lines[3], ",low,0.450,")
}

func TestTextFormat(t *testing.T) {
	opts := formatters.FormatterOptions{NoColor: true}

	out, err := formatters.Export("text", sampleRecords(), opts)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "LEVEL"))
	assert.Contains(t, lines[2], "critical", "most severe first")
	assert.Contains(t, lines[3], "high")
	assert.Contains(t, out, "3 finding(s): 1 critical, 1 high, 1 medium")

	out, err = formatters.Export("text", nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "No ambiguities found.\n", out)

	opts.ConfidenceLevel = map[string]bool{"high": false, "medium": false, "low": false}
	out, err = formatters.Export("text", sampleRecords(), opts)
	require.NoError(t, err)
	assert.Contains(t, out, "at the specified confidence levels")
}

func TestTextFormat_Verbose(t *testing.T) {
	out, err := formatters.Export("text", sampleRecords()[:1], formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, out, "=== Finding Details ===")
	assert.Contains(t, out, "Flagged: they [47:51]")
	assert.Contains(t, out, "  - Replace the pronoun with the noun it refers to.")
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/formatters"
	"ambiguity-scan/internal/paths"
)

const passiveBundle = `{
  "text": "The configuration is updated automatically.",
  "metadata": {"block_type": "paragraph"},
  "sentences": [{
    "text": "The configuration is updated automatically.",
    "tokens": [
      {"id": 0, "start": 0,  "end": 3,  "text": "The",           "lemma": "the",           "pos": "DET",   "tag": "DT",  "dep": "det",       "head": 1},
      {"id": 1, "start": 4,  "end": 17, "text": "configuration", "lemma": "configuration", "pos": "NOUN",  "tag": "NN",  "dep": "nsubjpass", "head": 3, "morph": "Number=Sing"},
      {"id": 2, "start": 18, "end": 20, "text": "is",            "lemma": "be",            "pos": "AUX",   "tag": "VBZ", "dep": "auxpass",   "head": 3, "morph": "Tense=Pres"},
      {"id": 3, "start": 21, "end": 28, "text": "updated",       "lemma": "update",        "pos": "VERB",  "tag": "VBN", "dep": "ROOT",      "head": 3, "morph": "VerbForm=Part"},
      {"id": 4, "start": 29, "end": 42, "text": "automatically", "lemma": "automatically", "pos": "ADV",   "tag": "RB",  "dep": "advmod",    "head": 3},
      {"id": 5, "start": 42, "end": 43, "text": ".",             "lemma": ".",             "pos": "PUNCT", "tag": ".",   "dep": "punct",     "head": 3}
    ]
  }]
}`

// isolate points the config directory at a temp dir so no user config or
// exception file leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.ConfigDirEnv, dir)
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(passiveBundle), 0600))
	return path
}

func hasSubtype(records []detector.Record, typ detector.AmbiguityType) bool {
	for _, r := range records {
		if r.Subtype == typ {
			return true
		}
	}
	return false
}

func TestAnalyze_JSONFromFile(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "analyze", writeBundle(t), "--format", "json")
	require.NoError(t, err)

	var report formatters.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, hasSubtype(report.Results, detector.MissingActor), out)
	assert.Equal(t, len(report.Results), report.Summary.Total)
	for _, r := range report.Results {
		assert.Equal(t, 0, r.SentenceIndex)
	}
}

func TestAnalyze_Stdin(t *testing.T) {
	isolate(t)
	out, err := execute(t, passiveBundle, "analyze", "--format", "yaml", "--detectors", "missing-actor")
	require.NoError(t, err)
	assert.Contains(t, out, "subtype: missing-actor")
	assert.NotContains(t, out, "subtype: unsupported-claims")
}

func TestAnalyze_OutputFile(t *testing.T) {
	isolate(t)
	target := filepath.Join(t.TempDir(), "report.csv")
	out, err := execute(t, "", "analyze", writeBundle(t), "--format", "csv", "--output", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Sentence,Type,Category,Severity"), string(data))
}

func TestAnalyze_FailOn(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "analyze", writeBundle(t), "--fail-on", "high")
	assert.ErrorIs(t, err, ErrFindings)

	_, err = execute(t, "", "analyze", writeBundle(t), "--fail-on", "critical", "--detectors", "missing_actor")
	assert.NoError(t, err)
}

func TestAnalyze_FailOnIgnoresFilteredFindings(t *testing.T) {
	isolate(t)
	bundle := writeBundle(t)

	out, err := execute(t, "", "analyze", bundle, "--fail-on", "high", "--detectors", "missing_actor", "--confidence", "low")
	assert.NoError(t, err)
	assert.Contains(t, out, "No ambiguities found at the specified confidence levels.")

	_, err = execute(t, "", "analyze", bundle, "--fail-on", "high", "--detectors", "missing_actor", "--confidence", "high")
	assert.ErrorIs(t, err, ErrFindings)
}

func TestAnalyze_InvalidArguments(t *testing.T) {
	isolate(t)
	bundle := writeBundle(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"analyze", bundle, "--format", "xml"}},
		{"unknown fail-on", []string{"analyze", bundle, "--fail-on", "fatal"}},
		{"unknown profile", []string{"analyze", bundle, "--profile", "nope"}},
		{"unknown parser", []string{"analyze", bundle, "--parser", "grpc"}},
		{"missing bundle", []string{"analyze", filepath.Join(t.TempDir(), "none.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestAnalyze_ExceptionSuppressesFinding(t *testing.T) {
	dir := isolate(t)
	bundle := writeBundle(t)

	_, err := execute(t, "", "exceptions", "add", "updated", "--category", "passive")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "exceptions.yaml"))

	out, err := execute(t, "", "analyze", bundle, "--format", "json", "--compact")
	require.NoError(t, err)
	var report formatters.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, hasSubtype(report.Results, detector.MissingActor), out)

	out, err = execute(t, "", "analyze", bundle, "--format", "json", "--no-exceptions")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, hasSubtype(report.Results, detector.MissingActor), out)
}

func TestDetectorsCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "detectors")
	require.NoError(t, err)
	for _, name := range []string{"MISSING_ACTOR", "PRONOUN_AMBIGUITY", "UNSUPPORTED_CLAIMS", "FABRICATION_RISK"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "", "detectors", "missing-actor")
	require.NoError(t, err)
	assert.Contains(t, out, "MISSING_ACTOR Detector")

	_, err = execute(t, "", "detectors", "spelling")
	assert.Error(t, err)
}

func TestExceptionsCommand(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "rules.yaml")

	out, err := execute(t, "", "exceptions", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "No exception rules found.")

	out, err = execute(t, "", "exceptions", "add", "industry-leading", "--file", file,
		"--category", "claims", "--reason", "approved marketing copy", "--created-by", "docs-team")
	require.NoError(t, err)
	assert.Contains(t, out, "EXC-00000001")

	_, err = execute(t, "", "exceptions", "add", "industry-leading", "--file", file, "--category", "claims")
	assert.Error(t, err, "duplicate phrase in the same category")

	_, err = execute(t, "", "exceptions", "add", "whatever", "--file", file, "--category", "style")
	assert.Error(t, err)

	out, err = execute(t, "", "exceptions", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Phrase: industry-leading")
	assert.Contains(t, out, "Created By: docs-team")

	out, err = execute(t, "", "exceptions", "cleanup", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleaned up 0 expired exception rules")

	out, err = execute(t, "", "exceptions", "remove", "EXC-00000001", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed exception rule: EXC-00000001")

	_, err = execute(t, "", "exceptions", "remove", "EXC-00000001", "--file", file)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ambiguity-scan")
}

func TestInvalidDefaultConfigFallsBack(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("defaults:\n  format: xml\n"), 0600))

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, errOut.String(), "Using default configuration")
	assert.Contains(t, out.String(), "ambiguity-scan")
}

func TestInvalidConfigFile(t *testing.T) {
	isolate(t)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("defaults:\n  format: xml\n"), 0600))

	_, err := execute(t, "", "--config", cfg, "version")
	assert.Error(t, err)
}

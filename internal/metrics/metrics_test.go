// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSentence()
	m.RecordSentence()
	m.RecordFinding("missing-actor", "high")
	m.RecordDetector("pronoun_ambiguity", time.Millisecond, true)
	m.RecordDetector("pronoun_ambiguity", time.Millisecond, false)
	m.RecordExceptionHit("claims")
	m.RecordParseFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SentencesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FindingsTotal.WithLabelValues("missing-actor", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetectorFailures.WithLabelValues("pronoun_ambiguity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExceptionHitsTotal.WithLabelValues("claims")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailuresTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DetectorDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSentence()
		m.RecordFinding("x", "y")
		m.RecordDetector("x", time.Second, false)
		m.RecordExceptionHit("global")
		m.RecordParseFailure()
	})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "none.prom")))
	assert.Nil(t, m.Registry())
}

func TestWriteTextfile(t *testing.T) {
	m := New(nil)
	m.RecordSentence()

	path := filepath.Join(t.TempDir(), "scan.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ambiguity_scan_sentences_analyzed_total 1")
}

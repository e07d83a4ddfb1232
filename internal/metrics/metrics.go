// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus collectors for ambiguity analysis. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ambiguity_scan"

type Metrics struct {
	registry *prometheus.Registry

	SentencesTotal     prometheus.Counter
	FindingsTotal      *prometheus.CounterVec
	DetectorFailures   *prometheus.CounterVec
	DetectorDuration   *prometheus.HistogramVec
	ExceptionHitsTotal *prometheus.CounterVec
	ParseFailuresTotal prometheus.Counter
}

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SentencesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sentences_analyzed_total",
				Help:      "Total number of sentences analyzed",
			},
		),
		FindingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "findings_total",
				Help:      "Total number of findings reported",
			},
			[]string{"type", "severity"},
		),
		DetectorFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detector_failures_total",
				Help:      "Detector invocations that returned an error or panicked",
			},
			[]string{"detector"},
		),
		DetectorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "detector_duration_seconds",
				Help:      "Time spent in one detector invocation",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"detector"},
		),
		ExceptionHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exception_hits_total",
				Help:      "Flagged spans suppressed by an exception rule",
			},
			[]string{"category"},
		),
		ParseFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_failures_total",
				Help:      "Sentences skipped because the parser failed",
			},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordSentence() {
	if m == nil {
		return
	}
	m.SentencesTotal.Inc()
}

func (m *Metrics) RecordFinding(typ, severity string) {
	if m == nil {
		return
	}
	m.FindingsTotal.WithLabelValues(typ, severity).Inc()
}

// RecordDetector observes one invocation and counts it as a failure when ok is false.
func (m *Metrics) RecordDetector(name string, duration time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.DetectorDuration.WithLabelValues(name).Observe(duration.Seconds())
	if !ok {
		m.DetectorFailures.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) RecordExceptionHit(category string) {
	if m == nil {
		return
	}
	m.ExceptionHitsTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordParseFailure() {
	if m == nil {
		return
	}
	m.ParseFailuresTotal.Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

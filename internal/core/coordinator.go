// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core runs the registered detectors over a document and collects
// their findings.
package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/metrics"
	"ambiguity-scan/internal/nlp"
	"ambiguity-scan/internal/observability"
)

// ParserDetector is the name reported on errors raised while parsing.
const ParserDetector = "parser"

// DetectionError records one failed detector invocation. The failure is
// isolated: other detectors and sentences still run.
type DetectionError struct {
	Detector      string
	SentenceIndex int
	Err           error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s failed on sentence %d: %v", e.Detector, e.SentenceIndex, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// Result is the detailed outcome of one analysis.
type Result struct {
	Records           []detector.Record
	Errors            []*DetectionError
	SentencesAnalyzed int
}

// Coordinator runs a fixed detector set. It holds no per-document state and
// may be shared between goroutines.
type Coordinator struct {
	cfg         *detector.Config
	exceptions  detector.ExceptionChecker
	detectors   []detector.Detector
	enabled     map[string]bool
	logger      *zap.Logger
	metrics     *metrics.Metrics
	observer    *observability.StandardObserver
	parallelism int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithExceptions sets the checker handed to the standard detectors.
func WithExceptions(exc detector.ExceptionChecker) Option {
	return func(c *Coordinator) {
		if exc != nil {
			c.exceptions = exc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func WithObserver(o *observability.StandardObserver) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithParallelism analyzes up to n sentences at once. Values below 2 keep
// the analysis on the calling goroutine.
func WithParallelism(n int) Option {
	return func(c *Coordinator) { c.parallelism = n }
}

// WithEnabledDetectors restricts the standard set, as returned by
// ParseDetectorsToRun.
func WithEnabledDetectors(enabled map[string]bool) Option {
	return func(c *Coordinator) { c.enabled = enabled }
}

// WithDetectors replaces the standard set.
func WithDetectors(ds ...detector.Detector) Option {
	return func(c *Coordinator) { c.detectors = ds }
}

// NewCoordinator builds a coordinator. A nil cfg uses the defaults.
func NewCoordinator(cfg *detector.Config, opts ...Option) *Coordinator {
	if cfg == nil {
		cfg = detector.DefaultConfig()
	}
	c := &Coordinator{
		cfg:        cfg,
		exceptions: detector.NoExceptions{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = observability.NewStandardObserver(observability.ObservabilityMetrics, c.logger)
	}

	if c.detectors == nil {
		enabled := c.enabled
		if enabled == nil {
			enabled = ParseDetectorsToRun(nil)
		}
		c.detectors = BuildDetectorSet(enabled, cfg, c.exceptions)
	} else {
		active := make([]detector.Detector, 0, len(c.detectors))
		for _, d := range c.detectors {
			if d != nil && cfg.AnyEnabled(d.Types()...) {
				active = append(active, d)
			}
		}
		c.detectors = active
	}
	return c
}

// Detectors returns the active detectors in run order.
func (c *Coordinator) Detectors() []detector.Detector {
	return append([]detector.Detector(nil), c.detectors...)
}

// Analyze returns the findings of every active detector over sentences, in
// sentence order and then detector order. Failures are logged and skipped.
func (c *Coordinator) Analyze(ctx context.Context, text string, sentences []string, parser nlp.Parser, meta map[string]string) []detector.Record {
	return c.AnalyzeDetailed(ctx, text, sentences, parser, meta).Records
}

type sentenceResult struct {
	records  []detector.Record
	errs     []*DetectionError
	analyzed bool
}

// AnalyzeDetailed is Analyze with the per-invocation errors kept.
func (c *Coordinator) AnalyzeDetailed(ctx context.Context, text string, sentences []string, parser nlp.Parser, meta map[string]string) (res Result) {
	res.Records = []detector.Record{}
	if parser == nil {
		c.logger.Warn("no parser available, skipping analysis")
		return res
	}

	var panicked atomic.Bool
	done := c.observer.StartTiming("coordinator", "analyze")
	defer func() {
		if r := recover(); r != nil {
			panicked.Store(true)
			c.logger.Error("analysis aborted", zap.Any("panic", r))
		}
		done(!panicked.Load(), zap.Int("sentences", res.SentencesAnalyzed), zap.Int("findings", len(res.Records)))
	}()

	results := make([]sentenceResult, len(sentences))
	paragraphs := splitParagraphs(text)

	run := func(i int) {
		defer func() {
			if r := recover(); r != nil {
				panicked.Store(true)
				c.logger.Error("sentence analysis aborted", zap.Int("sentence_index", i), zap.Any("panic", r))
			}
		}()
		results[i] = c.analyzeSentence(ctx, i, sentences, paragraphFor(paragraphs, sentences[i]), parser, meta)
	}

	if c.parallelism < 2 {
		for i := range sentences {
			if ctx.Err() != nil {
				break
			}
			run(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.parallelism)
		for i := range sentences {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, r := range results {
		res.Records = append(res.Records, r.records...)
		res.Errors = append(res.Errors, r.errs...)
		if r.analyzed {
			res.SentencesAnalyzed++
		}
	}
	if err := ctx.Err(); err != nil {
		c.logger.Warn("analysis cancelled", zap.Error(err), zap.Int("sentences", res.SentencesAnalyzed))
	}
	return res
}

func (c *Coordinator) analyzeSentence(ctx context.Context, idx int, sentences []string, paragraph string, parser nlp.Parser, meta map[string]string) sentenceResult {
	var out sentenceResult
	if strings.TrimSpace(sentences[idx]) == "" {
		return out
	}

	doc, err := parser.Parse(ctx, sentences[idx])
	if err != nil {
		c.logger.Warn("failed to parse sentence", zap.Int("sentence_index", idx), zap.Error(err))
		c.metrics.RecordParseFailure()
		out.errs = append(out.errs, &DetectionError{Detector: ParserDetector, SentenceIndex: idx, Err: err})
		return out
	}
	out.analyzed = true
	c.metrics.RecordSentence()

	sc := detector.NewSentenceContext(idx, sentences, paragraph, meta)
	for _, d := range c.detectors {
		found, err := c.runDetector(ctx, d, sc, doc, parser)
		if err != nil {
			out.errs = append(out.errs, err)
			continue
		}
		for _, det := range found {
			if !c.cfg.IsEnabled(det.Type) || det.Confidence() < c.cfg.MinConfidence() {
				continue
			}
			out.records = append(out.records, det.ToRecord())
			c.metrics.RecordFinding(string(det.Type), string(det.Severity))
		}
	}
	return out
}

// runDetector invokes d once. Errors and panics are converted into a
// DetectionError and any partial output is discarded.
func (c *Coordinator) runDetector(ctx context.Context, d detector.Detector, sc detector.SentenceContext, doc *nlp.Doc, parser nlp.Parser) (found []detector.Detection, derr *DetectionError) {
	name := d.Name()
	done := c.observer.StartTiming("detector", name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			found = nil
			derr = &DetectionError{Detector: name, SentenceIndex: sc.SentenceIndex, Err: fmt.Errorf("panic: %v", r)}
		}
		elapsed := time.Since(start)
		c.metrics.RecordDetector(name, elapsed, derr == nil)
		if derr == nil {
			done(true, zap.Int("sentence_index", sc.SentenceIndex))
			return
		}
		c.logger.Warn("detector failed",
			zap.String("detector", name),
			zap.Int("sentence_index", sc.SentenceIndex),
			zap.Duration("duration", elapsed),
			zap.Error(derr.Err))
	}()

	found, err := d.Detect(ctx, sc, doc, parser)
	if err != nil {
		return nil, &DetectionError{Detector: name, SentenceIndex: sc.SentenceIndex, Err: err}
	}
	return found, nil
}

// splitParagraphs splits text on blank lines.
func splitParagraphs(text string) []string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimSpace(line))
	}
	flush()
	return paragraphs
}

// paragraphFor returns the paragraph containing sentence, or "" when the
// sentence does not appear verbatim.
func paragraphFor(paragraphs []string, sentence string) string {
	s := strings.TrimSpace(sentence)
	if s == "" {
		return ""
	}
	for _, p := range paragraphs {
		if strings.Contains(p, s) {
			return p
		}
	}
	return ""
}

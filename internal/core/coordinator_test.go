// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/metrics"
	"ambiguity-scan/internal/nlp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const updatedAutomatically = `
# text = The configuration is updated automatically.
1 The the DET DT _ 2 det _ _
2 configuration configuration NOUN NN Number=Sing 4 nsubjpass _ _
3 is be AUX VBZ Tense=Pres 4 auxpass _ _
4 updated update VERB VBN VerbForm=Part 0 ROOT _ _
5 automatically automatically ADV RB _ 4 advmod _ _
6 . . PUNCT . _ 4 punct _ _
`

const alwaysWorks = `
# text = This approach always works and never fails.
1 This this DET DT _ 2 det _ _
2 approach approach NOUN NN _ 4 nsubj _ _
3 always always ADV RB _ 4 advmod _ _
4 works work VERB VBZ _ 0 ROOT _ _
5 and and CCONJ CC _ 4 cc _ _
6 never never ADV RB _ 7 neg _ _
7 fails fail VERB VBZ _ 4 conj _ _
8 . . PUNCT . _ 4 punct _ _
`

// fakeDetector reports one finding per sentence at a fixed confidence.
type fakeDetector struct {
	name  string
	types []detector.AmbiguityType
	conf  float64
	err   error
	panic bool
}

func (f *fakeDetector) Name() string                    { return f.name }
func (f *fakeDetector) Types() []detector.AmbiguityType { return f.types }

func (f *fakeDetector) Detect(_ context.Context, sc detector.SentenceContext, doc *nlp.Doc, _ nlp.Parser) ([]detector.Detection, error) {
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	det, err := detector.NewDetection(f.types[0], detector.DefaultCategory(f.types[0]), detector.DefaultSeverity(f.types[0]), sc,
		detector.Evidence{Tokens: []string{doc.Tokens()[0].Text}, Pattern: "fake", Confidence: f.conf})
	if err != nil {
		return nil, err
	}
	return []detector.Detection{det.WithDetector(f.name)}, nil
}

// wordParser gives every sentence a flat parse rooted at its first word.
var wordParser = nlp.ParserFunc(func(_ context.Context, sentence string) (*nlp.Doc, error) {
	b := nlp.NewDocBuilder(sentence)
	for i, w := range strings.Fields(sentence) {
		spec := nlp.TokenSpec{Text: w, Lemma: w, POS: "X", Tag: "XX", Dep: "dep", Head: 0}
		if i == 0 {
			spec.Dep, spec.Head = "ROOT", -1
		}
		b.Add(spec)
	}
	return b.Build()
})

func TestAnalyze_NilParser(t *testing.T) {
	c := NewCoordinator(nil)
	got := c.Analyze(context.Background(), "text", []string{"One sentence."}, nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	c := NewCoordinator(nil)
	res := c.AnalyzeDetailed(context.Background(), "", nil, wordParser, nil)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.SentencesAnalyzed)
}

func TestAnalyze_OrderAndBlankSentences(t *testing.T) {
	a := &fakeDetector{name: "a", types: []detector.AmbiguityType{detector.MissingActor}, conf: 0.9}
	b := &fakeDetector{name: "b", types: []detector.AmbiguityType{detector.UnsupportedClaims}, conf: 0.8}
	c := NewCoordinator(nil, WithDetectors(a, b))

	res := c.AnalyzeDetailed(context.Background(), "", []string{"First one.", "   ", "Second one."}, wordParser, nil)
	require.Len(t, res.Records, 4)
	assert.Equal(t, 2, res.SentencesAnalyzed)

	var order []string
	for _, r := range res.Records {
		order = append(order, r.Detector+"@"+r.Sentence)
	}
	assert.Equal(t, []string{"a@First one.", "b@First one.", "a@Second one.", "b@Second one."}, order)
	assert.Equal(t, 2, res.Records[2].SentenceIndex)
}

func TestAnalyze_SentencePanicFailsAnalyzeTiming(t *testing.T) {
	obsCore, logs := observer.New(zap.WarnLevel)
	parser := nlp.ParserFunc(func(ctx context.Context, sentence string) (*nlp.Doc, error) {
		if sentence == "Explode now." {
			panic("parser crashed")
		}
		return wordParser.Parse(ctx, sentence)
	})
	c := NewCoordinator(nil,
		WithLogger(zap.New(obsCore)),
		WithDetectors(&fakeDetector{name: "works", types: []detector.AmbiguityType{detector.UnsupportedClaims}, conf: 0.9}))

	res := c.AnalyzeDetailed(context.Background(), "", []string{"Explode now.", "Fine here."}, parser, nil)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Records[0].SentenceIndex)
	assert.Equal(t, 1, logs.FilterMessage("sentence analysis aborted").Len())

	failed := logs.FilterMessage("operation failed").FilterField(zap.String("operation", "analyze"))
	assert.Equal(t, 1, failed.Len())

	logs.TakeAll()
	c.AnalyzeDetailed(context.Background(), "", []string{"Fine here."}, parser, nil)
	assert.Zero(t, logs.FilterMessage("operation failed").Len())
}

func TestAnalyze_DetectorFailureIsIsolated(t *testing.T) {
	sentinel := errors.New("broken")
	obsCore, logs := observer.New(zap.WarnLevel)
	reg := metrics.New(nil)

	c := NewCoordinator(nil,
		WithLogger(zap.New(obsCore)),
		WithMetrics(reg),
		WithDetectors(
			&fakeDetector{name: "panics", types: []detector.AmbiguityType{detector.MissingActor}, panic: true},
			&fakeDetector{name: "errors", types: []detector.AmbiguityType{detector.AmbiguousPronoun}, err: sentinel},
			&fakeDetector{name: "works", types: []detector.AmbiguityType{detector.UnsupportedClaims}, conf: 0.9},
		))

	res := c.AnalyzeDetailed(context.Background(), "", []string{"Only sentence."}, wordParser, nil)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "works", res.Records[0].Detector)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "panics", res.Errors[0].Detector)
	assert.Contains(t, res.Errors[0].Error(), "panic: boom")
	assert.ErrorIs(t, res.Errors[1], sentinel)

	var de *DetectionError
	assert.True(t, errors.As(error(res.Errors[1]), &de))
	assert.Equal(t, 0, de.SentenceIndex)

	assert.Equal(t, 2, logs.FilterMessage("detector failed").Len())
	assert.Zero(t, logs.FilterMessage("operation failed").Len(), "failures are logged once")
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.DetectorFailures.WithLabelValues("panics")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.FindingsTotal.WithLabelValues(string(detector.UnsupportedClaims), string(detector.Critical))))
}

func TestAnalyze_ParseFailure(t *testing.T) {
	reg := metrics.New(nil)
	parser := nlp.NewJSONParser(nlp.MustParseCoNLLU(updatedAutomatically))
	c := NewCoordinator(nil, WithMetrics(reg))

	res := c.AnalyzeDetailed(context.Background(), "",
		[]string{"A sentence nobody parsed.", "The configuration is updated automatically."}, parser, nil)

	require.NotEmpty(t, res.Errors)
	assert.Equal(t, ParserDetector, res.Errors[0].Detector)
	assert.ErrorIs(t, res.Errors[0], nlp.ErrNoParse)
	assert.Equal(t, 1, res.SentencesAnalyzed)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ParseFailuresTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.SentencesTotal))
}

func TestAnalyze_ConfidenceFloorAndTypeFilter(t *testing.T) {
	low := &fakeDetector{name: "low", types: []detector.AmbiguityType{detector.MissingActor}, conf: 0.5}
	high := &fakeDetector{name: "high", types: []detector.AmbiguityType{detector.UnsupportedClaims}, conf: 0.9}
	off := &fakeDetector{name: "off", types: []detector.AmbiguityType{detector.FabricationRisk}, conf: 0.9}

	cfg := detector.NewConfig(detector.ConfigOptions{
		MinConfidence: 0.7,
		Enabled:       []detector.AmbiguityType{detector.MissingActor, detector.UnsupportedClaims},
	})
	c := NewCoordinator(cfg, WithDetectors(low, high, off))

	names := func() []string {
		var out []string
		for _, d := range c.Detectors() {
			out = append(out, d.Name())
		}
		return out
	}()
	assert.Equal(t, []string{"low", "high"}, names, "detectors with no enabled type are not invoked")

	got := c.Analyze(context.Background(), "", []string{"Some sentence here."}, wordParser, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "high", got[0].Detector)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	parser := nlp.NewJSONParser(nlp.MustParseCoNLLU(updatedAutomatically), nlp.MustParseCoNLLU(alwaysWorks))
	sentences := []string{"The configuration is updated automatically.", "This approach always works and never fails."}
	text := sentences[0] + " " + sentences[1]

	got := NewCoordinator(nil).Analyze(context.Background(), text, sentences, parser, nil)
	require.NotEmpty(t, got)

	byDetector := map[string][]detector.Record{}
	prev := -1
	for _, r := range got {
		assert.GreaterOrEqual(t, r.SentenceIndex, prev, "records are in sentence order")
		prev = r.SentenceIndex
		assert.GreaterOrEqual(t, r.Confidence, detector.MinConfidence)
		assert.LessOrEqual(t, r.Confidence, 1.0)
		assert.Equal(t, detector.RecordType, r.Type)
		byDetector[r.Detector] = append(byDetector[r.Detector], r)
	}

	require.NotEmpty(t, byDetector["missing_actor"])
	assert.Equal(t, 0, byDetector["missing_actor"][0].SentenceIndex)
	assert.Equal(t, detector.MissingActor, byDetector["missing_actor"][0].Subtype)

	require.Len(t, byDetector["unsupported_claims"], 2)
	assert.Equal(t, "always", byDetector["unsupported_claims"][0].FlaggedText)
	assert.Equal(t, "never", byDetector["unsupported_claims"][1].FlaggedText)
}

func TestAnalyze_DeterministicAndParallel(t *testing.T) {
	parser := nlp.NewJSONParser(nlp.MustParseCoNLLU(updatedAutomatically), nlp.MustParseCoNLLU(alwaysWorks))
	sentences := []string{
		"The configuration is updated automatically.",
		"This approach always works and never fails.",
		"The configuration is updated automatically.",
	}

	sequential := NewCoordinator(nil)
	first := sequential.Analyze(context.Background(), "", sentences, parser, nil)
	second := sequential.Analyze(context.Background(), "", sentences, parser, nil)
	assert.Empty(t, cmp.Diff(first, second))

	parallel := NewCoordinator(nil, WithParallelism(4))
	assert.Empty(t, cmp.Diff(first, parallel.Analyze(context.Background(), "", sentences, parser, nil)))
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &fakeDetector{name: "a", types: []detector.AmbiguityType{detector.MissingActor}, conf: 0.9}
	res := NewCoordinator(nil, WithDetectors(a)).AnalyzeDetailed(ctx, "", []string{"One.", "Two."}, wordParser, nil)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.SentencesAnalyzed)
}

func TestAnalyze_ParagraphContext(t *testing.T) {
	var seen string
	probe := &probeDetector{fn: func(sc detector.SentenceContext) { seen = sc.ParagraphContext }}
	text := "Intro line.\n\nFirst one. Second one.\n\nOutro."

	NewCoordinator(nil, WithDetectors(probe)).Analyze(context.Background(), text, []string{"Second one."}, wordParser, nil)
	assert.Equal(t, "First one. Second one.", seen)
}

type probeDetector struct {
	fn func(detector.SentenceContext)
}

func (p *probeDetector) Name() string { return "probe" }
func (p *probeDetector) Types() []detector.AmbiguityType {
	return []detector.AmbiguityType{detector.MissingActor}
}
func (p *probeDetector) Detect(_ context.Context, sc detector.SentenceContext, _ *nlp.Doc, _ nlp.Parser) ([]detector.Detection, error) {
	p.fn(sc)
	return nil, nil
}

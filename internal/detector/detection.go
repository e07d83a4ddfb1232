// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"ambiguity-scan/internal/nlp"
)

// MinConfidence is the floor below which no finding is ever constructed.
const MinConfidence = 0.35

// ErrBelowThreshold is returned by NewDetection for out-of-range confidence.
var ErrBelowThreshold = errors.New("confidence outside reportable range")

// Evidence holds the facts behind one finding.
type Evidence struct {
	Tokens      []string
	Pattern     string
	Confidence  float64
	Features    map[string]any
	ContextInfo map[string]any
}

// Span is a half-open character range in the sentence.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Detection is one finding. Values are created by NewDetection and the With
// helpers, which always copy, so a Detection can be shared freely.
type Detection struct {
	Type           AmbiguityType
	Category       Category
	Severity       Severity
	Context        SentenceContext
	Evidence       Evidence
	Strategies     []ResolutionStrategy
	AIInstructions []string
	Examples       []string
	Span           *Span
	FlaggedText    string
	Detector       string
}

// NewDetection validates the confidence and builds a finding.
func NewDetection(t AmbiguityType, cat Category, sev Severity, sc SentenceContext, ev Evidence) (Detection, error) {
	if math.IsNaN(ev.Confidence) || ev.Confidence < MinConfidence || ev.Confidence > 1 {
		return Detection{}, fmt.Errorf("%w: %s at %.3f", ErrBelowThreshold, t, ev.Confidence)
	}
	ev.Tokens = slices.Clone(ev.Tokens)
	ev.Features = maps.Clone(ev.Features)
	ev.ContextInfo = maps.Clone(ev.ContextInfo)
	return Detection{Type: t, Category: cat, Severity: sev, Context: sc, Evidence: ev}, nil
}

// Confidence returns the evidence confidence.
func (d Detection) Confidence() float64 {
	return d.Evidence.Confidence
}

func (d Detection) WithStrategies(s ...ResolutionStrategy) Detection {
	d.Strategies = slices.Clone(s)
	return d
}

func (d Detection) WithInstructions(lines ...string) Detection {
	d.AIInstructions = slices.Clone(lines)
	return d
}

func (d Detection) WithExamples(lines ...string) Detection {
	d.Examples = slices.Clone(lines)
	return d
}

// WithSpan records the character range and its text. Invalid ranges are ignored.
func (d Detection) WithSpan(start, end int) Detection {
	if start < 0 || end <= start || end > len(d.Context.Sentence) {
		return d
	}
	d.Span = &Span{Start: start, End: end}
	d.FlaggedText = d.Context.Sentence[start:end]
	return d
}

// WithDocSpan records a range given in doc coordinates. When the parsed text
// differs from the context sentence the fragment is located by text.
func (d Detection) WithDocSpan(doc *nlp.Doc, start, end int) Detection {
	if doc == nil || start < 0 || end > len(doc.Text) || end <= start {
		return d
	}
	if doc.Text == d.Context.Sentence {
		return d.WithSpan(start, end)
	}
	frag := doc.Text[start:end]
	if i := strings.Index(d.Context.Sentence, frag); i >= 0 {
		return d.WithSpan(i, i+len(frag))
	}
	return d
}

func (d Detection) WithDetector(name string) Detection {
	d.Detector = name
	return d
}

// Clamp limits a score to [0, 1].
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Round fixes a score to three decimals so additive scoring compares and
// serializes deterministically.
func Round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Score clamps and rounds v.
func Score(v float64) float64 {
	return Round(Clamp(v))
}

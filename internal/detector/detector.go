// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector holds the contracts shared by the ambiguity detectors and
// the coordinator that runs them: the ambiguity taxonomy, the per-sentence
// context, findings with their evidence, the flat output record and the
// immutable detection configuration.
package detector

import (
	"context"
	"errors"

	"ambiguity-scan/internal/nlp"
)

// ErrNilDoc is returned by a detector handed no parse.
var ErrNilDoc = errors.New("detector called without a parsed sentence")

// Detector runs one heuristic pipeline over a parsed sentence.
//
// Detect must not retain sc or doc. parser is used only to analyse the
// sentences around sc; it may be nil, in which case a detector falls back to
// the current sentence alone. Implementations must be safe for concurrent use.
type Detector interface {
	Name() string
	Types() []AmbiguityType
	Detect(ctx context.Context, sc SentenceContext, doc *nlp.Doc, parser nlp.Parser) ([]Detection, error)
}

// RuleCategory selects which exception list a span is checked against.
type RuleCategory string

const (
	RuleGlobal      RuleCategory = "global"
	RuleClaims      RuleCategory = "claims"
	RulePassive     RuleCategory = "passive"
	RulePronoun     RuleCategory = "pronoun"
	RuleFabrication RuleCategory = "fabrication"
)

// RuleCategories lists the valid exception categories.
var RuleCategories = []RuleCategory{RuleGlobal, RuleClaims, RulePassive, RulePronoun, RuleFabrication}

// ExceptionChecker reports whether a flagged span is exempt from reporting.
// A span is exempt when it matches a rule in category or in RuleGlobal.
type ExceptionChecker interface {
	IsExcepted(text string, category RuleCategory) bool
}

// NoExceptions excepts nothing.
type NoExceptions struct{}

// IsExcepted always returns false.
func (NoExceptions) IsExcepted(string, RuleCategory) bool { return false }

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RecordType is the constant record type of every finding.
const RecordType = "ambiguity"

// EvidenceRecord is the serialized form of Evidence.
type EvidenceRecord struct {
	Tokens      []string       `json:"tokens" yaml:"tokens"`
	Pattern     string         `json:"pattern" yaml:"pattern"`
	Features    map[string]any `json:"features,omitempty" yaml:"features,omitempty"`
	ContextInfo map[string]any `json:"context_info,omitempty" yaml:"context_info,omitempty"`
}

// Record is the flat reporting form of a Detection.
type Record struct {
	Type                 string         `json:"type" yaml:"type"`
	Subtype              AmbiguityType  `json:"subtype" yaml:"subtype"`
	Category             Category       `json:"category" yaml:"category"`
	Message              string         `json:"message" yaml:"message"`
	Suggestions          []string       `json:"suggestions" yaml:"suggestions"`
	Sentence             string         `json:"sentence" yaml:"sentence"`
	SentenceIndex        int            `json:"sentence_index" yaml:"sentence_index"`
	Severity             Severity       `json:"severity" yaml:"severity"`
	Confidence           float64        `json:"confidence" yaml:"confidence"`
	ConfidenceScore      float64        `json:"confidence_score" yaml:"confidence_score"`
	AIInstructions       []string       `json:"ai_instructions" yaml:"ai_instructions"`
	Examples             []string       `json:"examples" yaml:"examples"`
	Evidence             EvidenceRecord `json:"evidence" yaml:"evidence"`
	ResolutionStrategies []string       `json:"resolution_strategies" yaml:"resolution_strategies"`
	IsAmbiguity          bool           `json:"is_ambiguity" yaml:"is_ambiguity"`
	AIFixable            bool           `json:"ai_fixable" yaml:"ai_fixable"`
	Span                 *Span          `json:"span,omitempty" yaml:"span,omitempty"`
	FlaggedText          string         `json:"flagged_text,omitempty" yaml:"flagged_text,omitempty"`
	Detector             string         `json:"detector,omitempty" yaml:"detector,omitempty"`
}

var strategyText = map[ResolutionStrategy]string{
	IdentifyActor:       "Identify who or what performs the action.",
	ClarifyPronoun:      "Replace the pronoun with the noun it refers to.",
	RestructureSentence: "Restructure the sentence so the relationship is explicit.",
	AddContext:          "Add the context the reader needs to follow the statement.",
	SpecifyReference:    "Name the specific item being referred to.",
	QuantifyPrecisely:   "Replace absolute wording with a precise, supportable statement.",
}

var typeGuidance = map[AmbiguityType]string{
	MissingActor:      "Use active voice with an explicit subject.",
	AmbiguousPronoun:  "Repeat the noun when more than one candidate precedes the pronoun.",
	UnclearAntecedent: "Start the sentence with the noun instead of a pronoun.",
	UnsupportedClaims: "Qualify the claim or cite the evidence that supports it.",
	FabricationRisk:   "Keep the original level of detail; do not add specifics that are not in the source.",
}

// Message renders the human-readable message for d.
func (d Detection) Message() string {
	flagged := d.FlaggedText
	if flagged == "" {
		flagged = strings.Join(d.Evidence.Tokens, " ")
	}

	switch d.Type {
	case MissingActor:
		return fmt.Sprintf("Passive voice without a clear actor: '%s' does not say who performs the action.", flagged)
	case AmbiguousPronoun:
		return fmt.Sprintf("Ambiguous pronoun: '%s' could refer to more than one noun.", flagged)
	case UnclearAntecedent:
		return fmt.Sprintf("Unclear antecedent: '%s' has no single clear referent in the preceding text.", flagged)
	case UnsupportedClaims:
		return fmt.Sprintf("Unsupported claim: '%s' makes an absolute promise that may not be verifiable.", flagged)
	case FabricationRisk:
		return fmt.Sprintf("Fabrication risk: '%s' is vague enough that a rewrite may invent unverified details.", flagged)
	default:
		return fmt.Sprintf("Ambiguity (%s): '%s'.", d.Type, flagged)
	}
}

// Suggestions lists the strategy guidance followed by type guidance.
func (d Detection) Suggestions() []string {
	out := make([]string, 0, len(d.Strategies)+1)
	for _, s := range d.Strategies {
		if text, ok := strategyText[s]; ok {
			out = append(out, text)
		}
	}
	if g, ok := typeGuidance[d.Type]; ok {
		out = append(out, g)
	}
	return out
}

// ToRecord serializes d. The result depends only on d, so repeated calls
// produce identical records.
func (d Detection) ToRecord() Record {
	strategies := make([]string, len(d.Strategies))
	for i, s := range d.Strategies {
		strategies[i] = string(s)
	}

	r := Record{
		Type:                 RecordType,
		Subtype:              d.Type,
		Category:             d.Category,
		Message:              d.Message(),
		Suggestions:          d.Suggestions(),
		Sentence:             d.Context.Sentence,
		SentenceIndex:        d.Context.SentenceIndex,
		Severity:             d.Severity,
		Confidence:           d.Evidence.Confidence,
		ConfidenceScore:      d.Evidence.Confidence,
		AIInstructions:       nonNil(d.AIInstructions),
		Examples:             nonNil(d.Examples),
		ResolutionStrategies: strategies,
		IsAmbiguity:          true,
		AIFixable:            true,
		FlaggedText:          d.FlaggedText,
		Detector:             d.Detector,
		Evidence: EvidenceRecord{
			Tokens:      nonNil(d.Evidence.Tokens),
			Pattern:     d.Evidence.Pattern,
			Features:    maps.Clone(d.Evidence.Features),
			ContextInfo: maps.Clone(d.Evidence.ContextInfo),
		},
	}
	if d.Span != nil {
		span := *d.Span
		r.Span = &span
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

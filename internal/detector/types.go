// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"strings"
)

// AmbiguityType is the kind of ambiguity a finding reports.
type AmbiguityType string

const (
	MissingActor       AmbiguityType = "missing-actor"
	AmbiguousPronoun   AmbiguityType = "ambiguous-pronoun"
	UnclearAntecedent  AmbiguityType = "unclear-antecedent"
	UnclearSubject     AmbiguityType = "unclear-subject"
	AmbiguousModifier  AmbiguityType = "ambiguous-modifier"
	VagueQuantifier    AmbiguityType = "vague-quantifier"
	UnclearTemporal    AmbiguityType = "unclear-temporal"
	UnsupportedClaims  AmbiguityType = "unsupported-claims"
	FabricationRisk    AmbiguityType = "fabrication-risk"
	ExcessiveCertainty AmbiguityType = "excessive-certainty"
)

// AllTypes lists every ambiguity type in declaration order.
var AllTypes = []AmbiguityType{
	MissingActor,
	AmbiguousPronoun,
	UnclearAntecedent,
	UnclearSubject,
	AmbiguousModifier,
	VagueQuantifier,
	UnclearTemporal,
	UnsupportedClaims,
	FabricationRisk,
	ExcessiveCertainty,
}

// ParseType converts a string such as "missing-actor" or "missing_actor".
func ParseType(s string) (AmbiguityType, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, t := range AllTypes {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown ambiguity type %q", s)
}

// Category groups ambiguity types for prioritization and display.
type Category string

const (
	Referential Category = "referential"
	Structural  Category = "structural"
	Semantic    Category = "semantic"
	Temporal    Category = "temporal"
)

// ParseCategory converts a category name.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Referential, Structural, Semantic, Temporal:
		return c, nil
	}
	return "", fmt.Errorf("unknown ambiguity category %q", s)
}

// Severity is ordered low < medium < high < critical.
type Severity string

const (
	Low      Severity = "low"
	Medium   Severity = "medium"
	High     Severity = "high"
	Critical Severity = "critical"
)

// Rank orders severities; unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	case Critical:
		return 4
	}
	return 0
}

// ParseSeverity converts a severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// ResolutionStrategy tags the remediation a rewriter should apply.
type ResolutionStrategy string

const (
	IdentifyActor       ResolutionStrategy = "identify-actor"
	ClarifyPronoun      ResolutionStrategy = "clarify-pronoun"
	RestructureSentence ResolutionStrategy = "restructure-sentence"
	AddContext          ResolutionStrategy = "add-context"
	SpecifyReference    ResolutionStrategy = "specify-reference"
	QuantifyPrecisely   ResolutionStrategy = "quantify-precisely"
)

var defaultCategories = map[AmbiguityType]Category{
	MissingActor:       Structural,
	AmbiguousPronoun:   Referential,
	UnclearAntecedent:  Referential,
	UnclearSubject:     Referential,
	AmbiguousModifier:  Structural,
	VagueQuantifier:    Semantic,
	UnclearTemporal:    Temporal,
	UnsupportedClaims:  Semantic,
	FabricationRisk:    Semantic,
	ExcessiveCertainty: Semantic,
}

var defaultSeverities = map[AmbiguityType]Severity{
	MissingActor:       High,
	AmbiguousPronoun:   Medium,
	UnclearAntecedent:  Medium,
	UnclearSubject:     Medium,
	AmbiguousModifier:  Low,
	VagueQuantifier:    Low,
	UnclearTemporal:    Low,
	UnsupportedClaims:  Critical,
	FabricationRisk:    Critical,
	ExcessiveCertainty: High,
}

// DefaultCategory returns the static category of t.
func DefaultCategory(t AmbiguityType) Category {
	return defaultCategories[t]
}

// DefaultSeverity returns the static severity of t.
func DefaultSeverity(t AmbiguityType) Severity {
	return defaultSeverities[t]
}

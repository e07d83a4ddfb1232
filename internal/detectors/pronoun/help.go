// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pronoun

import (
	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/help"
)

// GetCheckInfo returns standardized information about this detector
func (d *Detector) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "PRONOUN_AMBIGUITY",
		ShortDescription: "Pronouns with more than one plausible antecedent",
		DetailedDescription: `Collects the nouns before a third-person or relative pronoun in the same
sentence and in the two preceding sentences, then reports the pronoun when no
single noun dominates by grammatical role. A sentence-initial pronoun whose
candidates come from earlier sentences is reported as an unclear antecedent.`,
		Patterns: []string{
			"it, its, this, that, these, those",
			"they, them, their, theirs, which, what",
		},
		Types: []string{string(detector.AmbiguousPronoun), string(detector.UnclearAntecedent)},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Referent count", Description: "60, 80 or 90 for two, three or more candidates", Weight: 60},
			{Name: "Several subjects", Description: "more than one candidate is a subject", Weight: 10},
			{Name: "Several objects", Description: "more than one candidate is an object", Weight: 10},
			{Name: "Mixed roles", Description: "both subjects and objects compete", Weight: 5},
			{Name: "Demonstrative", Description: "pronoun is it, this or that", Weight: 5},
			{Name: "Sentence initial", Description: "pronoun opens the sentence", Weight: 5},
			{Name: "Discourse marker", Description: "also, therefore, thus and similar", Weight: -20},
			{Name: "Cross-sentence", Description: "a candidate comes from an earlier sentence", Weight: -5},
		},
		NegativeKeywords: []string{"also", "additionally", "furthermore", "moreover", "then", "therefore", "thus"},
		ConfigurationInfo: `Findings below 0.6 are never reported. Exceptions in the "pronoun" category
match the pronoun text.`,
		Examples: []string{
			"The server and the gateway exchange packets. It is fast.",
			"The client and the server exchange keys before they expire.",
		},
	}
}

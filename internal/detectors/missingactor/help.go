// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package missingactor

import (
	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/help"
)

// GetCheckInfo returns standardized information about this detector
func (d *Detector) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "MISSING_ACTOR",
		ShortDescription: "Passive voice that never names who performs the action",
		DetailedDescription: `Finds passive constructions such as "The file is deleted" where no agent
appears in the sentence, in its two preceding sentences, or in the paragraph.
State participles ("the task is done") and predicate adjectives are not reported
unless the sentence carries past-tense or temporal evidence of an action.`,
		Patterns: []string{
			"auxpass dependency on a participle",
			"nsubjpass dependency on a participle",
			"form of 'be' followed by a VBN within three tokens",
		},
		Types: []string{string(detector.MissingActor)},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Base", Description: "every confirmed passive", Weight: 50},
			{Name: "Technical verb", Description: "configure, deploy, delete and similar", Weight: 20},
			{Name: "Imperative context", Description: "sentence also gives an instruction", Weight: 15},
			{Name: "Short sentence", Description: "fewer than 8 tokens", Weight: 10},
			{Name: "Implicit actor", Description: "pronoun or possessive hints at the actor", Weight: -20},
			{Name: "UI domain", Description: "document domain is ui", Weight: -5},
		},
		PositiveKeywords: []string{"configure", "deploy", "delete", "update", "validate"},
		NegativeKeywords: []string{"it", "this", "that", "they"},
		ConfigurationInfo: `Exceptions in the "passive" category suppress a finding when they match
the auxiliary plus verb ("is deployed") or the verb alone.`,
		Examples: []string{
			"The configuration is updated automatically.",
			"Logs are deleted after 30 days.",
		},
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fabrication

import (
	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/help"
)

// GetCheckInfo returns standardized information about this detector
func (d *Detector) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "FABRICATION_RISK",
		ShortDescription: "Vague wording that invites a rewriter to invent specifics",
		DetailedDescription: `Reports vague action verbs, phrases that stop short of an explanation
("communicates with", "takes care of"), bare process nouns and purpose phrases.
Gerunds and process nouns that only modify a larger noun phrase are ignored, as
are short headings, list items and table cells made of a technical label.`,
		Patterns: []string{
			VagueAction,
			IncompleteExplained,
			ProcessReference,
			PurposeStatement,
		},
		Types: []string{string(detector.FabricationRisk)},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Vague verb or process noun", Description: "base for single-token patterns", Weight: 50},
			{Name: "Phrase pattern", Description: "base for incomplete explanations and purpose phrases", Weight: 60},
			{Name: "High-risk verb", Description: "communicate, interact, work, handle", Weight: 30},
			{Name: "No object", Description: "verb has no direct or prepositional object", Weight: 20},
			{Name: "Technical sentence", Description: "mentions system, api, backend and similar", Weight: 20},
			{Name: "Specific context", Description: "name, number, URL or long term nearby", Weight: -20},
		},
		PositiveKeywords: []string{"communicate", "interact", "work", "handle"},
		ConfigurationInfo: `Findings below 0.7 are never reported. Exceptions in the "fabrication"
category match the flagged word or phrase.`,
		Examples: []string{
			"The module communicates with the backend to synchronize state.",
			"The gateway handles the rest.",
		},
	}
}

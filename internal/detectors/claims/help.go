// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package claims

import (
	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/help"
)

// GetCheckInfo returns standardized information about this detector
func (d *Detector) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "UNSUPPORTED_CLAIMS",
		ShortDescription: "Absolute or promissory wording that cannot be substantiated",
		DetailedDescription: `Reports absolute words (always, never, guarantee, 100%) and moderate words
(ensure, will, must) that sit next to security or reliability nouns, plus fixed
promise phrases such as "is guaranteed to" or "zero downtime". Every finding is
semantic and critical and lists softer alternatives for the rewriter.`,
		Patterns: []string{
			"guarantee, always, never, impossible, certain, 100%, zero, all, none, every, any",
			"ensure, will, shall, must, complete, total, full, entire near risk words",
			"will always work, is guaranteed to, zero risk, never fails, fully secure",
		},
		Types: []string{string(detector.UnsupportedClaims)},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Strong word", Description: "90 for guarantee, always, never, impossible", Weight: 80},
			{Name: "Moderate word", Description: "plus 40 next to a risk word", Weight: 40},
			{Name: "Promise phrase", Description: "fixed phrase match", Weight: 80},
			{Name: "Technical sentence", Description: "mentions system, data, security and similar", Weight: 10},
			{Name: "System subject", Description: "the subject names the system or service", Weight: 10},
			{Name: "Hedge nearby", Description: "usually, may, typically within three tokens", Weight: -20},
			{Name: "Legal domain", Description: "document domain is legal", Weight: 5},
		},
		NegativeKeywords: []string{"usually", "typically", "generally", "may", "might", "likely"},
		ConfigurationInfo: `Findings below 0.5 are never reported. Exceptions in the "claims" category
match the flagged word or phrase.`,
		Examples: []string{
			"This approach always works and never fails.",
			"The service will protect your data.",
		},
	}
}

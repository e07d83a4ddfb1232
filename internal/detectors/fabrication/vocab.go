// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fabrication

import "regexp"

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var (
	vagueVerbs = set(
		"communicate", "interact", "process", "handle", "manage",
		"work", "operate", "function", "perform", "execute",
	)

	// verbs that most often lead a rewriter to invent a mechanism
	highRiskVerbs = set("communicate", "interact", "work", "handle")

	processNouns = set(
		"backup", "configuration", "installation", "deployment", "integration",
		"synchronization", "authentication", "authorization", "validation",
		"verification", "monitoring", "logging", "analysis", "processing",
	)

	incompletePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:communicates|interacts|works|integrates|connects|interfaces) with\b`),
		regexp.MustCompile(`(?i)\bhandles? (?:the )?(?:rest|details|everything)\b`),
		regexp.MustCompile(`(?i)\btakes care of\b`),
		regexp.MustCompile(`(?i)\bdeals with\b`),
	}

	purposePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bto (?:ensure|guarantee|provide|support|enable|allow|maintain|improve|optimize|facilitate)\b`),
		regexp.MustCompile(`(?i)\bin order to\b`),
		regexp.MustCompile(`(?i)\bfor \w+ purposes\b`),
		regexp.MustCompile(`(?i)\bso that\b`),
	}

	technicalKeywords = set(
		"system", "server", "application", "service", "api", "database",
		"network", "module", "component", "backend", "frontend", "client",
		"platform", "interface", "protocol", "endpoint", "data", "software",
		"cluster",
	)

	technicalAdjectives = set(
		"error", "data", "file", "image", "user", "system", "network",
		"security", "application", "database", "server", "client", "automatic",
		"manual", "real-time", "batch", "background",
	)

	systemNouns = set(
		"system", "server", "service", "tool", "process", "pipeline", "module",
		"component", "engine", "framework", "platform", "application", "job",
		"task", "script", "schedule", "policy", "settings", "file", "log", "step",
	)

	technicalLabels = set(
		"configuration", "installation", "deployment", "authentication",
		"authorization", "backup", "monitoring", "logging", "integration",
		"validation", "verification", "synchronization", "data processing",
		"error handling", "system configuration", "user management",
		"backup and restore", "access control", "performance monitoring",
	)

	labelPrefixes = set("code", "image", "security", "data", "system")

	labelBlockTypes = set("list_item", "heading", "section", "table_cell")
)

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package claims

import "regexp"

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var (
	strongWords = set(
		"guarantee", "always", "never", "impossible", "certain",
		"100%", "zero", "all", "none", "every", "any",
	)

	// strong words scored at the top of the range
	absoluteWords = set("guarantee", "always", "never", "impossible")

	// moderate words and the nearby nouns that make them read as promises
	moderateRisk = map[string]map[string]bool{
		"ensure":   set("data", "security", "integrity", "backup", "protection"),
		"will":     set("prevent", "protect", "eliminate", "guarantee", "secure", "recover"),
		"shall":    set("comply", "compliance", "meet", "requirement"),
		"must":     set("secure", "compliance", "security", "safety"),
		"complete": set("protection", "security", "coverage", "recovery", "compatibility"),
		"total":    set("security", "protection", "control", "coverage"),
		"full":     set("protection", "security", "compatibility", "coverage", "recovery"),
		"entire":   set("system", "data", "network", "infrastructure"),
	}

	promisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bwill always (?:work|succeed|function)\b`),
		regexp.MustCompile(`(?i)\b(?:is|are) guaranteed to\b`),
		regexp.MustCompile(`(?i)\b100% (?:reliable|secure|accurate|safe|uptime)\b`),
		regexp.MustCompile(`(?i)\bzero (?:risk|downtime|errors?|data loss)\b`),
		regexp.MustCompile(`(?i)\bnever (?:fails?|breaks?|loses?)\b`),
		regexp.MustCompile(`(?i)\bcompletely (?:secure|safe|reliable)\b`),
		regexp.MustCompile(`(?i)\bfully (?:secure|protected|guaranteed)\b`),
		regexp.MustCompile(`(?i)\bno risk\b`),
		regexp.MustCompile(`(?i)\bwithout (?:any )?risk\b`),
	}

	technicalKeywords = set(
		"system", "server", "application", "software", "service", "api",
		"database", "network", "security", "data", "configuration", "deployment",
		"performance", "code", "backup", "encryption", "authentication", "cloud",
		"infrastructure",
	)

	systemSubjects = set("system", "server", "application", "software", "service")

	hedges = set(
		"usually", "typically", "generally", "often", "may", "might", "can",
		"could", "should", "likely", "expected", "designed", "intended",
		"normally", "commonly",
	)

	alternatives = map[string][]string{
		"guarantee":  {"ensure", "help ensure", "is designed to"},
		"always":     {"typically", "usually", "generally"},
		"never":      {"rarely", "is not designed to"},
		"impossible": {"unlikely", "not supported"},
		"certain":    {"likely", "expected"},
		"100%":       {"highly", "in tested configurations"},
		"zero":       {"minimal"},
		"all":        {"most", "the supported"},
		"none":       {"few", "no known"},
		"every":      {"each supported"},
		"any":        {"supported"},
		"ensure":     {"help ensure", "is designed to"},
		"will":       {"is designed to", "is expected to"},
		"shall":      {"should"},
		"must":       {"should"},
		"complete":   {"comprehensive"},
		"total":      {"broad", "extensive"},
		"full":       {"broad", "extensive"},
		"entire":     {"broad", "extensive"},
	}
)

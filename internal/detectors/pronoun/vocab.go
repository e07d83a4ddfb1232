// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pronoun

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var (
	// third-person and relative pronouns; first and second person never need an antecedent
	pronouns = set(
		"it", "its", "this", "that", "these", "those",
		"they", "them", "their", "theirs", "which", "what",
	)

	demonstratives = set("it", "this", "that")

	metaVerbs = set("test", "describe", "show", "explain", "illustrate")

	// excluded when scanning neighbouring sentences
	contextVagueNouns = set("thing", "stuff", "item", "one")

	// excluded from every referent list
	vagueLemmas = set("thing", "way", "time", "part", "use", "work", "place")

	likelyAntecedents = set(
		"system", "platform", "framework", "service", "tool", "interface",
		"application", "program", "software", "module", "component", "database",
		"server", "network", "device", "machine", "engine", "processor",
	)

	concreteData = set(
		"information", "file", "document", "record", "entry", "value",
		"parameter", "setting", "option", "field",
	)

	discourseMarkers = set("also", "additionally", "furthermore", "moreover", "then", "therefore", "thus")
)

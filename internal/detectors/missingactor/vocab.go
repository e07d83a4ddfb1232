// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package missingactor

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var (
	beForms = set("is", "are", "was", "were", "being", "been")

	pastAux = set("was", "were", "been")

	// participles that usually describe a state rather than an action
	stateLemmas = set(
		"done", "finished", "ready", "prepared", "set", "fixed", "broken",
		"closed", "open", "available", "busy", "free", "connected", "offline",
	)

	temporalMarkers = set("yesterday", "recently", "just", "already", "earlier")

	stateSubordinators = set("when", "after", "once", "if", "while", "until")

	stateAdjectives = set("ready", "available", "complete", "finished")

	clearActors = set(
		"system", "user", "application", "program", "software", "server",
		"database", "service", "api", "interface", "module", "component",
		"administrator", "developer", "operator", "manager", "you", "we",
	)

	technicalVerbs = set(
		"configure", "generate", "create", "install", "setup", "deploy",
		"execute", "run", "start", "stop", "update", "modify", "delete",
		"process", "handle", "manage", "control", "monitor", "validate",
	)

	imperativeVerbs = set(
		"click", "select", "enter", "type", "press", "choose", "open",
		"navigate", "run", "install", "configure", "set", "use", "ensure",
		"verify", "check", "add", "remove", "save", "restart",
	)

	implicitActorPronouns = set("it", "this", "that", "they")

	// by-phrase objects that describe manner rather than a performer
	nonAgentNouns = set("default", "design", "hand", "means", "way", "using", "mistake", "chance", "accident", "convention")
)

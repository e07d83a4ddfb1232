// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

// stopWords is a subset of spaCy's English stop list covering function words.
var stopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true, "against": true,
	"all": true, "also": true, "am": true, "an": true, "and": true, "any": true, "are": true,
	"as": true, "at": true, "be": true, "because": true, "been": true, "before": true,
	"being": true, "below": true, "between": true, "both": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true, "doing": true,
	"down": true, "during": true, "each": true, "either": true, "else": true, "every": true,
	"few": true, "for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true, "hers": true,
	"herself": true, "him": true, "himself": true, "his": true, "how": true, "however": true,
	"i": true, "if": true, "in": true, "into": true, "is": true, "it": true, "its": true,
	"itself": true, "just": true, "may": true, "me": true, "might": true, "more": true,
	"most": true, "must": true, "my": true, "myself": true, "neither": true, "no": true,
	"nor": true, "not": true, "now": true, "of": true, "off": true, "on": true, "once": true,
	"one": true, "only": true, "or": true, "other": true, "our": true, "ours": true,
	"ourselves": true, "out": true, "over": true, "own": true, "same": true, "she": true,
	"should": true, "so": true, "some": true, "such": true, "than": true, "that": true,
	"the": true, "their": true, "theirs": true, "them": true, "themselves": true,
	"then": true, "there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "to": true, "too": true, "under": true, "until": true, "up": true,
	"very": true, "via": true, "was": true, "we": true, "were": true, "what": true,
	"when": true, "where": true, "whether": true, "which": true, "while": true, "who": true,
	"whom": true, "whose": true, "why": true, "will": true, "with": true, "within": true,
	"without": true, "would": true, "yet": true, "you": true, "your": true, "yours": true,
	"yourself": true, "yourselves": true,
}

// IsStopWord reports whether the lower-cased word is a stop word.
func IsStopWord(lower string) bool {
	return stopWords[lower]
}

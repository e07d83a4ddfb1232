// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"maps"
	"strings"
)

// ContextWindow is the number of neighbouring sentences kept on each side.
const ContextWindow = 2

// Document context keys understood by the detectors.
const (
	MetaBlockType = "block_type"
	MetaDomain    = "domain"
)

// SentenceContext is the input unit of every detector. It is built once per
// sentence and not modified afterwards.
type SentenceContext struct {
	SentenceIndex      int
	Sentence           string
	PrecedingSentences []string // document order, nearest last
	FollowingSentences []string // document order, nearest first
	ParagraphContext   string

	documentContext map[string]string
}

// NewSentenceContext builds the context of sentences[index]. Blank sentences
// are skipped when filling the windows. The metadata map is copied.
func NewSentenceContext(index int, sentences []string, paragraph string, meta map[string]string) SentenceContext {
	sc := SentenceContext{
		SentenceIndex:    index,
		ParagraphContext: paragraph,
		documentContext:  maps.Clone(meta),
	}
	if index < 0 || index >= len(sentences) {
		return sc
	}
	sc.Sentence = strings.TrimSpace(sentences[index])

	for i := index - 1; i >= 0 && len(sc.PrecedingSentences) < ContextWindow; i-- {
		if s := strings.TrimSpace(sentences[i]); s != "" {
			sc.PrecedingSentences = append([]string{s}, sc.PrecedingSentences...)
		}
	}
	for i := index + 1; i < len(sentences) && len(sc.FollowingSentences) < ContextWindow; i++ {
		if s := strings.TrimSpace(sentences[i]); s != "" {
			sc.FollowingSentences = append(sc.FollowingSentences, s)
		}
	}
	return sc
}

// Document returns a document-context value, or "" when absent.
func (sc SentenceContext) Document(key string) string {
	return sc.documentContext[key]
}

// DocumentContext returns a copy of the caller-supplied metadata.
func (sc SentenceContext) DocumentContext() map[string]string {
	return maps.Clone(sc.documentContext)
}

// Domain returns the lower-cased domain hint.
func (sc SentenceContext) Domain() string {
	return strings.ToLower(sc.Document(MetaDomain))
}

// NearestPreceding returns up to n preceding sentences, nearest first.
func (sc SentenceContext) NearestPreceding(n int) []string {
	var out []string
	for i := len(sc.PrecedingSentences) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, sc.PrecedingSentences[i])
	}
	return out
}

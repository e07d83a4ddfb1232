// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySentence is returned when a parse is requested for blank text.
var ErrEmptySentence = errors.New("empty sentence")

// TokenSpec describes one token handed to a DocBuilder. Head is the absolute
// index of the head token; a negative Head or a Head equal to the token's own
// index marks the root.
type TokenSpec struct {
	Text  string
	Lemma string
	POS   string
	Tag   string
	Dep   string
	Head  int
	Morph string // CoNLL-U FEATS, e.g. "Number=Sing|Poss=Yes"
}

type pendingToken struct {
	spec   TokenSpec
	offset int // -1 locates the token in the text
}

// DocBuilder assembles a Doc from token specs.
type DocBuilder struct {
	text   string
	tokens []pendingToken
}

// NewDocBuilder starts a Doc for the given sentence text. An empty text is
// rebuilt from the token forms on Build.
func NewDocBuilder(text string) *DocBuilder {
	return &DocBuilder{text: text}
}

// Add appends a token whose character offset is found by scanning the text.
func (b *DocBuilder) Add(spec TokenSpec) *DocBuilder {
	b.tokens = append(b.tokens, pendingToken{spec: spec, offset: -1})
	return b
}

// AddAt appends a token with a known character offset.
func (b *DocBuilder) AddAt(spec TokenSpec, offset int) *DocBuilder {
	b.tokens = append(b.tokens, pendingToken{spec: spec, offset: offset})
	return b
}

// Build validates the head links and returns the finished Doc.
func (b *DocBuilder) Build() (*Doc, error) {
	if len(b.tokens) == 0 {
		return nil, ErrEmptySentence
	}

	text := b.text
	if text == "" {
		forms := make([]string, len(b.tokens))
		for i, p := range b.tokens {
			forms[i] = p.spec.Text
		}
		text = strings.Join(forms, " ")
	}

	doc := &Doc{Text: text, tokens: make([]*Token, len(b.tokens))}
	cursor := 0
	for i, p := range b.tokens {
		if p.spec.Text == "" {
			return nil, fmt.Errorf("token %d has no text", i)
		}

		offset := p.offset
		if offset < 0 {
			found := strings.Index(text[cursor:], p.spec.Text)
			if found < 0 {
				return nil, fmt.Errorf("token %d %q not found in sentence text", i, p.spec.Text)
			}
			offset = cursor + found
		}
		if offset+len(p.spec.Text) > len(text) {
			return nil, fmt.Errorf("token %d %q extends past sentence text", i, p.spec.Text)
		}
		cursor = offset + len(p.spec.Text)

		head := p.spec.Head
		if head < 0 {
			head = i
		}
		if head >= len(b.tokens) {
			return nil, fmt.Errorf("token %d %q has head %d outside the sentence", i, p.spec.Text, head)
		}

		lower := strings.ToLower(p.spec.Text)
		doc.tokens[i] = &Token{
			Index:  i,
			Offset: offset,
			Text:   p.spec.Text,
			Lemma:  p.spec.Lemma,
			POS:    p.spec.POS,
			Tag:    p.spec.Tag,
			Dep:    p.spec.Dep,
			Stop:   IsStopWord(lower),
			morph:  parseFeats(p.spec.Morph),
			head:   head,
			doc:    doc,
		}
	}

	for _, t := range doc.tokens {
		if t.head != t.Index {
			parent := doc.tokens[t.head]
			parent.children = append(parent.children, t.Index)
		}
	}

	if err := checkAcyclic(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkAcyclic rejects head chains that never reach a root.
func checkAcyclic(doc *Doc) error {
	for _, t := range doc.tokens {
		cur := t
		for steps := 0; !cur.IsRoot(); steps++ {
			if steps > len(doc.tokens) {
				return fmt.Errorf("token %d %q is part of a head cycle", t.Index, t.Text)
			}
			cur = cur.Head()
		}
	}
	return nil
}

func parseFeats(feats string) map[string]string {
	feats = strings.TrimSpace(feats)
	if feats == "" || feats == "_" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(feats, "|") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

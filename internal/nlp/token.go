// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package nlp defines the parsed-sentence model consumed by the ambiguity
// detectors and the adapters that produce it from external dependency parsers.
//
// The model follows the conventions of spaCy's English pipelines: coarse
// universal POS tags (NOUN, VERB, AUX, ...), Penn Treebank fine-grained tags
// (VBN, VBG, NN, ...) and ClearNLP dependency labels (nsubjpass, auxpass,
// agent, dobj, ...). The root token carries the label "ROOT" and is its own head.
package nlp

import (
	"sort"
	"strings"
)

// Token is a single word of a parsed sentence.
type Token struct {
	Index  int    // position in the sentence
	Offset int    // character offset of the token in Doc.Text
	Text   string // surface form
	Lemma  string
	POS    string // coarse part of speech
	Tag    string // fine-grained tag
	Dep    string // dependency label
	Stop   bool   // stop word flag

	morph    map[string]string
	head     int
	children []int
	doc      *Doc
}

// Lower returns the lower-cased surface form.
func (t *Token) Lower() string {
	return strings.ToLower(t.Text)
}

// LowerLemma returns the lower-cased lemma, falling back to the surface form.
func (t *Token) LowerLemma() string {
	if t.Lemma == "" {
		return t.Lower()
	}
	return strings.ToLower(t.Lemma)
}

// End returns the character offset just past the token.
func (t *Token) End() int {
	return t.Offset + len(t.Text)
}

// Head returns the syntactic head. The root is its own head.
func (t *Token) Head() *Token {
	return t.doc.tokens[t.head]
}

// IsRoot reports whether the token heads the sentence.
func (t *Token) IsRoot() bool {
	return t.head == t.Index
}

// IsPunct reports whether the token is punctuation.
func (t *Token) IsPunct() bool {
	return t.POS == "PUNCT"
}

// Children returns the direct dependents in sentence order.
func (t *Token) Children() []*Token {
	out := make([]*Token, 0, len(t.children))
	for _, i := range t.children {
		out = append(out, t.doc.tokens[i])
	}
	return out
}

// ChildrenWithDep returns the direct dependents attached with any of deps.
func (t *Token) ChildrenWithDep(deps ...string) []*Token {
	var out []*Token
	for _, i := range t.children {
		c := t.doc.tokens[i]
		for _, d := range deps {
			if c.Dep == d {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// HasChildWithDep reports whether any direct dependent carries one of deps.
func (t *Token) HasChildWithDep(deps ...string) bool {
	return len(t.ChildrenWithDep(deps...)) > 0
}

// Morph returns the value of a morphological feature such as "Poss" or "Tense".
func (t *Token) Morph(key string) (string, bool) {
	v, ok := t.morph[key]
	return v, ok
}

// HasMorph reports whether the feature key is set to value.
func (t *Token) HasMorph(key, value string) bool {
	v, ok := t.morph[key]
	return ok && v == value
}

// MorphString renders the features in CoNLL-U FEATS order (sorted by key).
func (t *Token) MorphString() string {
	if len(t.morph) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t.morph))
	for k := range t.morph {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+t.morph[k])
	}
	return strings.Join(parts, "|")
}

// Nbor returns the token at a relative offset, or nil outside the sentence.
func (t *Token) Nbor(delta int) *Token {
	return t.doc.Token(t.Index + delta)
}

// Doc is a dependency-parsed sentence. A Doc is read-only once built and may
// be shared between goroutines.
type Doc struct {
	Text   string
	tokens []*Token
}

// Len returns the number of tokens.
func (d *Doc) Len() int {
	return len(d.tokens)
}

// Tokens returns the tokens in sentence order.
func (d *Doc) Tokens() []*Token {
	out := make([]*Token, len(d.tokens))
	copy(out, d.tokens)
	return out
}

// Token returns the token at index i, or nil when i is out of range.
func (d *Doc) Token(i int) *Token {
	if i < 0 || i >= len(d.tokens) {
		return nil
	}
	return d.tokens[i]
}

// Roots returns the tokens that head themselves.
func (d *Doc) Roots() []*Token {
	var out []*Token
	for _, t := range d.tokens {
		if t.IsRoot() {
			out = append(out, t)
		}
	}
	return out
}

// Subtree returns t and all of its descendants in sentence order.
func (d *Doc) Subtree(t *Token) []*Token {
	seen := map[int]bool{}
	var walk func(*Token)
	walk = func(n *Token) {
		if seen[n.Index] {
			return
		}
		seen[n.Index] = true
		for _, c := range n.children {
			walk(d.tokens[c])
		}
	}
	walk(t)

	out := make([]*Token, 0, len(seen))
	for _, tok := range d.tokens {
		if seen[tok.Index] {
			out = append(out, tok)
		}
	}
	return out
}

// ContainsLower reports whether any token's lower-cased text is in words.
func (d *Doc) ContainsLower(words map[string]bool) bool {
	for _, t := range d.tokens {
		if words[t.Lower()] {
			return true
		}
	}
	return false
}

// WordCount returns the number of non-punctuation tokens.
func (d *Doc) WordCount() int {
	n := 0
	for _, t := range d.tokens {
		if !t.IsPunct() {
			n++
		}
	}
	return n
}

// FirstWord returns the first non-punctuation token, or nil for an empty doc.
func (d *Doc) FirstWord() *Token {
	for _, t := range d.tokens {
		if !t.IsPunct() {
			return t
		}
	}
	return nil
}

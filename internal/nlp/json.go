// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// JSONToken is one token in the layout produced by spaCy's Doc.to_json.
// Head is the absolute index of the head token. Text is optional and is taken
// from the document text by character span when absent.
type JSONToken struct {
	ID    int    `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text,omitempty"`
	Lemma string `json:"lemma,omitempty"`
	POS   string `json:"pos,omitempty"`
	Tag   string `json:"tag,omitempty"`
	Dep   string `json:"dep,omitempty"`
	Head  int    `json:"head"`
	Morph string `json:"morph,omitempty"`
}

// JSONDoc is a single parsed sentence in spaCy JSON layout.
type JSONDoc struct {
	Text   string      `json:"text"`
	Tokens []JSONToken `json:"tokens"`
}

// Doc converts the JSON form into a validated Doc.
func (jd JSONDoc) Doc() (*Doc, error) {
	b := NewDocBuilder(jd.Text)
	for i, jt := range jd.Tokens {
		if jt.ID != i {
			return nil, fmt.Errorf("token %d has id %d", i, jt.ID)
		}
		text := jt.Text
		if text == "" {
			if jt.Start < 0 || jt.End > len(jd.Text) || jt.Start >= jt.End {
				return nil, fmt.Errorf("token %d has invalid span [%d,%d)", i, jt.Start, jt.End)
			}
			text = jd.Text[jt.Start:jt.End]
		}
		dep := jt.Dep
		if jt.Head == i {
			dep = "ROOT"
		}
		spec := TokenSpec{
			Text:  text,
			Lemma: jt.Lemma,
			POS:   jt.POS,
			Tag:   jt.Tag,
			Dep:   dep,
			Head:  jt.Head,
			Morph: jt.Morph,
		}
		if jt.End == 0 {
			b.Add(spec)
		} else {
			b.AddAt(spec, jt.Start)
		}
	}
	return b.Build()
}

// ToJSON renders a Doc in spaCy JSON layout.
func ToJSON(doc *Doc) JSONDoc {
	out := JSONDoc{Text: doc.Text, Tokens: make([]JSONToken, 0, doc.Len())}
	for _, t := range doc.tokens {
		out.Tokens = append(out.Tokens, JSONToken{
			ID:    t.Index,
			Start: t.Offset,
			End:   t.End(),
			Text:  t.Text,
			Lemma: t.Lemma,
			POS:   t.POS,
			Tag:   t.Tag,
			Dep:   t.Dep,
			Head:  t.head,
			Morph: t.MorphString(),
		})
	}
	return out
}

// DecodeDoc parses a single spaCy JSON document.
func DecodeDoc(data []byte) (*Doc, error) {
	var jd JSONDoc
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("decoding parse: %w", err)
	}
	return jd.Doc()
}

// JSONParser serves precomputed parses keyed by sentence text.
type JSONParser struct {
	mu   sync.RWMutex
	docs map[string]*Doc
}

// NewJSONParser returns a parser serving the given docs.
func NewJSONParser(docs ...*Doc) *JSONParser {
	p := &JSONParser{docs: make(map[string]*Doc, len(docs))}
	for _, d := range docs {
		p.Put(d)
	}
	return p
}

// Put registers a parse under its sentence text.
func (p *JSONParser) Put(doc *Doc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[strings.TrimSpace(doc.Text)] = doc
}

// Len returns the number of sentences with a parse.
func (p *JSONParser) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.docs)
}

// Parse returns the stored parse for sentence or ErrNoParse.
func (p *JSONParser) Parse(_ context.Context, sentence string) (*Doc, error) {
	key := strings.TrimSpace(sentence)
	if key == "" {
		return nil, ErrEmptySentence
	}
	p.mu.RLock()
	doc, ok := p.docs[key]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoParse, key)
	}
	return doc, nil
}

// BundleSentence is one sentence of a Bundle with its optional parse.
type BundleSentence struct {
	Text   string      `json:"text"`
	Tokens []JSONToken `json:"tokens,omitempty"`
}

// Bundle is the document input accepted by the CLI: the full text, caller
// metadata such as block_type and domain, and the pre-split sentences with
// their parses.
type Bundle struct {
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Sentences []BundleSentence  `json:"sentences"`
}

// ReadBundle decodes a Bundle from r.
func ReadBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	if len(b.Sentences) == 0 {
		return nil, fmt.Errorf("bundle has no sentences")
	}
	return &b, nil
}

// SentenceTexts returns the sentence strings in document order.
func (b *Bundle) SentenceTexts() []string {
	out := make([]string, len(b.Sentences))
	for i, s := range b.Sentences {
		out[i] = s.Text
	}
	return out
}

// Parser builds a JSONParser from the sentences that carry tokens.
func (b *Bundle) Parser() (*JSONParser, error) {
	p := NewJSONParser()
	for i, s := range b.Sentences {
		if len(s.Tokens) == 0 {
			continue
		}
		doc, err := JSONDoc{Text: s.Text, Tokens: s.Tokens}.Doc()
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		p.Put(doc)
	}
	return p, nil
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fabrication flags vague wording that invites a rewriter to invent
// details the source never gave.
package fabrication

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/nlp"
)

// Name is the registry key of this detector.
const Name = "fabrication_risk"

// Pattern families.
const (
	VagueAction         = "vague_action_verb"
	IncompleteExplained = "incomplete_explanation"
	ProcessReference    = "technical_process_reference"
	PurposeStatement    = "purpose_statement"
)

const (
	vagueBase        = 0.5
	incompleteBase   = 0.6
	processBase      = 0.5
	purposeBase      = 0.6
	highRiskBonus    = 0.3
	noObjectBonus    = 0.2
	technicalBonus   = 0.2
	specificityCut   = 0.2
	tokenWindow      = 3
	phraseWindow     = 4
	specificTokenLen = 8
	maxLabelWords    = 3
	localThreshold   = 0.7
)

type hit struct {
	start, end  int
	first, last int
	text        string
	family      string
	conf        float64
	features    map[string]any
}

// Detector finds fabrication-prone phrasing.
type Detector struct {
	cfg        *detector.Config
	exceptions detector.ExceptionChecker
}

// New returns a detector. A nil cfg uses the defaults and a nil checker
// excepts nothing.
func New(cfg *detector.Config, exceptions detector.ExceptionChecker) *Detector {
	if cfg == nil {
		cfg = detector.DefaultConfig()
	}
	if exceptions == nil {
		exceptions = detector.NoExceptions{}
	}
	return &Detector{cfg: cfg, exceptions: exceptions}
}

func (d *Detector) Name() string { return Name }

func (d *Detector) Types() []detector.AmbiguityType {
	return []detector.AmbiguityType{detector.FabricationRisk}
}

// Detect implements detector.Detector.
func (d *Detector) Detect(_ context.Context, sc detector.SentenceContext, doc *nlp.Doc, _ nlp.Parser) ([]detector.Detection, error) {
	if doc == nil {
		return nil, detector.ErrNilDoc
	}
	if isStructuralLabel(sc, doc) {
		return nil, nil
	}

	technical := hasAny(doc, technicalKeywords)

	var hits []hit
	hits = append(hits, vagueVerbHits(doc, technical)...)
	hits = append(hits, phraseHits(doc, incompletePatterns, IncompleteExplained, incompleteBase, technical)...)
	hits = append(hits, processNounHits(doc, technical)...)
	hits = append(hits, phraseHits(doc, purposePatterns, PurposeStatement, purposeBase, technical)...)

	hits = slices.DeleteFunc(hits, func(h hit) bool { return h.conf < localThreshold })
	hits = resolveOverlaps(hits)

	var out []detector.Detection
	for _, h := range hits {
		if d.exceptions.IsExcepted(h.text, detector.RuleFabrication) {
			continue
		}
		det, err := detector.NewDetection(
			detector.FabricationRisk,
			detector.Semantic,
			detector.Critical,
			sc,
			detector.Evidence{
				Tokens:      tokenTexts(doc, h),
				Pattern:     h.family,
				Confidence:  h.conf,
				Features:    h.features,
				ContextInfo: map[string]any{"technical_sentence": technical},
			},
		)
		if err != nil {
			return out, fmt.Errorf("building finding for %q: %w", h.text, err)
		}
		out = append(out, det.
			WithStrategies(detector.RestructureSentence, detector.AddContext).
			WithInstructions(instructions(h)...).
			WithDocSpan(doc, h.start, h.end).
			WithDetector(Name))
	}
	return out, nil
}

func vagueVerbHits(doc *nlp.Doc, technical bool) []hit {
	var hits []hit
	for _, t := range doc.Tokens() {
		if t.POS != "VERB" || !vagueVerbs[t.LowerLemma()] {
			continue
		}
		if t.Tag == "VBG" && isGerundModifier(doc, t) {
			continue
		}
		h := tokenHit(t, VagueAction)
		highRisk := highRiskVerbs[t.LowerLemma()]
		lacksObject := !hasObject(t)
		specific := hasSpecificity(doc, h.first, h.last, tokenWindow)
		h.conf = score(vagueBase, highRisk, lacksObject, technical, specific)
		h.features = features(highRisk, lacksObject, technical, specific)
		hits = append(hits, h)
	}
	return hits
}

func processNounHits(doc *nlp.Doc, technical bool) []hit {
	var hits []hit
	for _, t := range doc.Tokens() {
		if t.POS != "NOUN" || !(processNouns[t.Lower()] || processNouns[t.LowerLemma()]) {
			continue
		}
		if isCompoundModifier(t) {
			continue
		}
		h := tokenHit(t, ProcessReference)
		lacksObject := !t.HasChildWithDep("prep")
		specific := hasSpecificity(doc, h.first, h.last, tokenWindow)
		h.conf = score(processBase, false, lacksObject, technical, specific)
		h.features = features(false, lacksObject, technical, specific)
		hits = append(hits, h)
	}
	return hits
}

// phraseHits scores regex matches over the raw sentence. The object and
// lexical bonuses are judged on the first verb inside the match.
func phraseHits(doc *nlp.Doc, patterns []*regexp.Regexp, family string, base float64, technical bool) []hit {
	var hits []hit
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(doc.Text, -1) {
			h := hit{start: loc[0], end: loc[1], first: -1, last: -1, text: doc.Text[loc[0]:loc[1]], family: family}
			var verb *nlp.Token
			for _, t := range doc.Tokens() {
				if t.Offset < loc[1] && t.End() > loc[0] {
					if h.first < 0 {
						h.first = t.Index
					}
					h.last = t.Index
					if verb == nil && t.POS == "VERB" {
						verb = t
					}
				}
			}
			if h.first < 0 {
				continue
			}

			var highRisk, lacksObject bool
			if family == IncompleteExplained && verb != nil {
				highRisk = highRiskVerbs[verb.LowerLemma()]
				lacksObject = !hasObject(verb)
			}
			specific := hasSpecificity(doc, h.first, h.last, phraseWindow)
			h.conf = score(base, highRisk, lacksObject, technical, specific)
			h.features = features(highRisk, lacksObject, technical, specific)
			hits = append(hits, h)
		}
	}
	return hits
}

func tokenHit(t *nlp.Token, family string) hit {
	return hit{start: t.Offset, end: t.End(), first: t.Index, last: t.Index, text: t.Text, family: family}
}

func score(base float64, highRisk, lacksObject, technical, specific bool) float64 {
	conf := base
	if highRisk {
		conf += highRiskBonus
	}
	if lacksObject {
		conf += noObjectBonus
	}
	if technical {
		conf += technicalBonus
	}
	if specific {
		conf -= specificityCut
	}
	return detector.Score(conf)
}

func features(highRisk, lacksObject, technical, specific bool) map[string]any {
	return map[string]any{
		"high_risk_verb":     highRisk,
		"lacks_object":       lacksObject,
		"technical_sentence": technical,
		"specific_context":   specific,
	}
}

// isGerundModifier reports whether an -ing form is acting as part of a noun
// phrase rather than as a verb.
func isGerundModifier(doc *nlp.Doc, t *nlp.Token) bool {
	head := t.Head()
	switch t.Dep {
	case "compound", "amod", "acl":
		if head != t && (head.POS == "NOUN" || head.POS == "PROPN") {
			return true
		}
	}

	prev, next := doc.Token(t.Index-1), doc.Token(t.Index+1)
	if prev != nil && next != nil && technicalAdjectives[prev.Lower()] && (next.POS == "NOUN" || next.POS == "PROPN") {
		return true
	}

	if !t.HasChildWithDep("dobj", "iobj", "ccomp", "xcomp") {
		switch t.Dep {
		case "compound", "amod", "nmod", "poss":
			return true
		}
	}
	return false
}

// isCompoundModifier reports whether a process noun only modifies a larger
// noun phrase, as in "backup job" or "the deployment pipeline fails".
func isCompoundModifier(t *nlp.Token) bool {
	if t.Dep != "compound" {
		return false
	}
	head := t.Head()
	if systemNouns[head.LowerLemma()] || systemNouns[head.Lower()] {
		return true
	}
	switch head.Dep {
	case "nsubj", "nsubjpass", "dobj", "pobj", "iobj", "attr":
		return true
	}
	return false
}

func hasObject(verb *nlp.Token) bool {
	if verb.HasChildWithDep("dobj") {
		return true
	}
	for _, p := range verb.ChildrenWithDep("prep") {
		if p.HasChildWithDep("pobj") {
			return true
		}
	}
	return false
}

// hasSpecificity looks for concrete detail near the match: a name, a number,
// a URL or a long technical term.
func hasSpecificity(doc *nlp.Doc, first, last, window int) bool {
	for i := first - window; i <= last+window; i++ {
		if i >= first && i <= last {
			continue
		}
		t := doc.Token(i)
		if t == nil || t.IsPunct() {
			continue
		}
		switch {
		case t.POS == "PROPN", t.POS == "NUM":
			return true
		case strings.IndexFunc(t.Text, unicode.IsDigit) >= 0:
			return true
		case strings.Contains(t.Text, "://"), strings.HasPrefix(strings.ToLower(t.Text), "www."):
			return true
		case len(t.Text) > specificTokenLen:
			return true
		}
	}
	return false
}

func hasAny(doc *nlp.Doc, words map[string]bool) bool {
	for _, t := range doc.Tokens() {
		if words[t.Lower()] || words[t.LowerLemma()] {
			return true
		}
	}
	return false
}

// isStructuralLabel exempts short headings and list entries such as
// "Authentication" or "Data processing".
func isStructuralLabel(sc detector.SentenceContext, doc *nlp.Doc) bool {
	if !labelBlockTypes[strings.ToLower(sc.Document(detector.MetaBlockType))] {
		return false
	}
	if doc.WordCount() > maxLabelWords {
		return false
	}
	label := strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) && r != '-' {
			return ' '
		}
		return unicode.ToLower(r)
	}, doc.Text)), " ")
	if technicalLabels[label] {
		return true
	}
	words := strings.Fields(label)
	return len(words) == 2 && labelPrefixes[words[0]]
}

// resolveOverlaps keeps the longer of two overlapping findings, or the more
// confident one when they are the same length. Output is in text order.
func resolveOverlaps(hits []hit) []hit {
	slices.SortStableFunc(hits, func(a, b hit) int {
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return lb - la
		}
		switch {
		case a.conf > b.conf:
			return -1
		case a.conf < b.conf:
			return 1
		}
		return a.start - b.start
	})

	var kept []hit
	for _, h := range hits {
		overlaps := slices.ContainsFunc(kept, func(k hit) bool {
			return h.start < k.end && k.start < h.end
		})
		if !overlaps {
			kept = append(kept, h)
		}
	}
	slices.SortFunc(kept, func(a, b hit) int { return a.start - b.start })
	return kept
}

func tokenTexts(doc *nlp.Doc, h hit) []string {
	var out []string
	for i := h.first; i <= h.last; i++ {
		if t := doc.Token(i); t != nil {
			out = append(out, t.Text)
		}
	}
	return out
}

func instructions(h hit) []string {
	lines := []string{
		fmt.Sprintf("Do not expand '%s' with protocols, names, numbers or steps that the source does not state.", h.text),
		"Preserve the original level of detail.",
	}
	switch h.family {
	case VagueAction, IncompleteExplained:
		lines = append(lines, "If the mechanism is unknown, keep the general verb rather than guessing a specific one.")
	case ProcessReference:
		lines = append(lines, "Do not describe how the process works unless the surrounding text already does.")
	case PurposeStatement:
		lines = append(lines, "Do not add benefits or outcomes beyond the stated purpose.")
	}
	return lines
}

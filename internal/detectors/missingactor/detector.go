// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package missingactor flags passive constructions that never say who
// performs the action.
package missingactor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/nlp"
)

// Name is the registry key of this detector.
const Name = "missing_actor"

const (
	baseConfidence     = 0.5
	technicalBonus     = 0.2
	imperativeBonus    = 0.15
	shortSentenceBonus = 0.1
	implicitActorCut   = 0.2
	uiDomainCut        = 0.05
	shortSentenceLen   = 8
	lookahead          = 3
)

// Detector finds passive voice with no identifiable actor.
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
	return []detector.AmbiguityType{detector.MissingActor}
}

// candidate is a participle together with the auxiliary that marks it passive.
type candidate struct {
	verb   *nlp.Token
	aux    *nlp.Token
	source string
}

// Detect implements detector.Detector.
func (d *Detector) Detect(_ context.Context, sc detector.SentenceContext, doc *nlp.Doc, _ nlp.Parser) ([]detector.Detection, error) {
	if doc == nil {
		return nil, detector.ErrNilDoc
	}

	var out []detector.Detection
	for _, c := range findCandidates(doc) {
		ok, reason := isTruePassive(doc, c)
		if !ok {
			continue
		}
		if hasActor(sc, doc, c.verb) {
			continue
		}

		conf, features := d.score(sc, doc, c.verb)
		technical := technicalVerbs[c.verb.LowerLemma()]
		if conf < detector.MinConfidence {
			if !technical {
				continue
			}
			// technical passives are always reported
			conf = detector.MinConfidence
		}

		phrase := c.verb.Text
		if c.aux != nil {
			phrase = c.aux.Text + " " + c.verb.Text
		}
		if d.exceptions.IsExcepted(phrase, detector.RulePassive) ||
			d.exceptions.IsExcepted(c.verb.Text, detector.RulePassive) {
			continue
		}

		tokens := []string{c.verb.Text}
		if c.aux != nil {
			tokens = []string{c.aux.Text, c.verb.Text}
		}
		det, err := detector.NewDetection(
			detector.MissingActor,
			d.cfg.Category(detector.MissingActor),
			d.cfg.Severity(detector.MissingActor),
			sc,
			detector.Evidence{
				Tokens:     tokens,
				Pattern:    "passive_voice_" + c.source,
				Confidence: conf,
				Features:   features,
				ContextInfo: map[string]any{
					"validation": reason,
					"verb_lemma": c.verb.LowerLemma(),
					"verb_dep":   c.verb.Dep,
				},
			},
		)
		if err != nil {
			return out, fmt.Errorf("building finding for %q: %w", c.verb.Text, err)
		}
		out = append(out, det.
			WithStrategies(detector.IdentifyActor, detector.RestructureSentence).
			WithInstructions(instructions(c.verb)...).
			WithExamples(examples(c.verb)...).
			WithDocSpan(doc, c.verb.Offset, c.verb.End()).
			WithDetector(Name))
	}
	return out, nil
}

// findCandidates returns passive participles in sentence order, one per verb.
func findCandidates(doc *nlp.Doc) []candidate {
	byVerb := map[int]candidate{}
	add := func(verb, aux *nlp.Token, source string) {
		if verb == nil {
			return
		}
		if prev, ok := byVerb[verb.Index]; ok {
			if prev.aux == nil && aux != nil {
				prev.aux = aux
				byVerb[verb.Index] = prev
			}
			return
		}
		byVerb[verb.Index] = candidate{verb: verb, aux: aux, source: source}
	}

	for _, t := range doc.Tokens() {
		switch t.Dep {
		case "auxpass":
			add(t.Head(), t, "auxpass")
		case "nsubjpass":
			add(t.Head(), passiveAux(t.Head()), "nsubjpass")
		}

		if !beForms[t.Lower()] {
			continue
		}
		if p := participleAfter(doc, t); p != nil {
			add(p, t, "be_participle")
		}
	}

	out := make([]candidate, 0, len(byVerb))
	for _, c := range byVerb {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b candidate) int { return a.verb.Index - b.verb.Index })
	return out
}

// participleAfter finds a VBN that is a child of be or within the lookahead.
func participleAfter(doc *nlp.Doc, be *nlp.Token) *nlp.Token {
	for _, c := range be.Children() {
		if c.Tag == "VBN" && c.Index > be.Index {
			return c
		}
	}
	for i := be.Index + 1; i <= be.Index+lookahead; i++ {
		t := doc.Token(i)
		if t == nil || t.IsPunct() {
			return nil
		}
		if t.Tag == "VBN" {
			return t
		}
	}
	return nil
}

func passiveAux(verb *nlp.Token) *nlp.Token {
	for _, c := range verb.ChildrenWithDep("auxpass", "aux") {
		if beForms[c.Lower()] || c.LowerLemma() == "be" {
			return c
		}
	}
	return nil
}

// hasAgent reports whether verb has a by-phrase naming a performer. Fixed
// adverbials such as "by default" or "by hand" name no one.
func hasAgent(verb *nlp.Token) bool {
	for _, by := range verb.ChildrenWithDep("agent", "prep") {
		if by.Lower() != "by" {
			continue
		}
		for _, obj := range by.ChildrenWithDep("pobj") {
			if isNominal(obj) && !nonAgentNouns[obj.LowerLemma()] && !nonAgentNouns[obj.Lower()] {
				return true
			}
		}
	}
	return false
}

func isNominal(t *nlp.Token) bool {
	return t.POS == "NOUN" || t.POS == "PROPN" || t.POS == "PRON"
}

// isTruePassive separates real passives from predicate adjectives. The
// returned reason names the rule that decided.
func isTruePassive(doc *nlp.Doc, c candidate) (bool, string) {
	verb := c.verb
	if hasAgent(verb) {
		return true, "agent"
	}
	if verb.Dep == "advcl" {
		return false, "adverbial_clause"
	}

	if stateLemmas[verb.LowerLemma()] || stateLemmas[verb.Lower()] {
		if hasPastAux(verb, c.aux) || doc.ContainsLower(temporalMarkers) {
			return true, "state_with_evidence"
		}
		return false, "state_participle"
	}

	if verb.IsRoot() {
		if c.aux != nil && (doc.ContainsLower(stateSubordinators) || doc.ContainsLower(stateAdjectives)) {
			return false, "predicate_adjective"
		}
		return true, "root"
	}

	switch verb.Dep {
	case "ccomp", "xcomp", "conj":
		return true, "clausal"
	}
	return true, "default"
}

func hasPastAux(verb, aux *nlp.Token) bool {
	if aux != nil && pastAux[aux.Lower()] {
		return true
	}
	for _, c := range verb.ChildrenWithDep("aux", "auxpass") {
		if pastAux[c.Lower()] {
			return true
		}
	}
	return false
}

// hasActor reports whether the performer can be recovered from the
// sentence or its neighbourhood.
func hasActor(sc detector.SentenceContext, doc *nlp.Doc, verb *nlp.Token) bool {
	if hasAgent(verb) {
		return true
	}

	for _, t := range doc.Tokens() {
		if t.Dep == "nsubj" && (clearActors[t.Lower()] || clearActors[t.LowerLemma()]) {
			return true
		}
	}

	for _, s := range sc.NearestPreceding(detector.ContextWindow) {
		if mentionsActor(s) {
			return true
		}
	}
	return mentionsActor(sc.ParagraphContext)
}

func mentionsActor(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if clearActors[strings.Trim(w, ".,;:!?()[]\"'")] {
			return true
		}
	}
	return false
}

func (d *Detector) score(sc detector.SentenceContext, doc *nlp.Doc, verb *nlp.Token) (float64, map[string]any) {
	conf := baseConfidence
	technical := technicalVerbs[verb.LowerLemma()]
	imperative := hasImperative(doc)
	short := doc.Len() < shortSentenceLen
	implicit := hasImplicitActor(doc)

	if technical {
		conf += technicalBonus
	}
	if imperative {
		conf += imperativeBonus
	}
	if short {
		conf += shortSentenceBonus
	}
	if implicit {
		conf -= implicitActorCut
	}
	if sc.Domain() == "ui" {
		conf -= uiDomainCut
	}

	return detector.Score(conf), map[string]any{
		"technical_verb":      technical,
		"imperative_context":  imperative,
		"short_sentence":      short,
		"implicit_actor_clue": implicit,
		"token_count":         doc.Len(),
	}
}

// hasImperative looks for a bare-form instruction verb without a subject.
func hasImperative(doc *nlp.Doc) bool {
	for _, t := range doc.Tokens() {
		if t.Tag != "VB" || !imperativeVerbs[t.LowerLemma()] {
			continue
		}
		if !t.HasChildWithDep("nsubj", "nsubjpass", "aux") {
			return true
		}
	}
	return false
}

func hasImplicitActor(doc *nlp.Doc) bool {
	for _, t := range doc.Tokens() {
		if implicitActorPronouns[t.Lower()] || t.HasMorph("Poss", "Yes") {
			return true
		}
	}
	return false
}

// thirdPerson inflects a lemma for a singular subject.
func thirdPerson(lemma string) string {
	switch {
	case strings.HasSuffix(lemma, "s"), strings.HasSuffix(lemma, "x"), strings.HasSuffix(lemma, "z"),
		strings.HasSuffix(lemma, "ch"), strings.HasSuffix(lemma, "sh"):
		return lemma + "es"
	case strings.HasSuffix(lemma, "y") && len(lemma) > 1 && !strings.ContainsRune("aeiou", rune(lemma[len(lemma)-2])):
		return lemma[:len(lemma)-1] + "ies"
	}
	return lemma + "s"
}

func instructions(verb *nlp.Token) []string {
	lemma := verb.LowerLemma()
	return []string{
		fmt.Sprintf("Instead of 'This is %s', write 'The system %s this' or 'You %s this'.",
			verb.Lower(), thirdPerson(lemma), lemma),
		fmt.Sprintf("Name the actor that performs '%s' as the subject of the sentence.", lemma),
		"Keep the meaning unchanged; only make the actor explicit.",
	}
}

func examples(verb *nlp.Token) []string {
	lemma := verb.LowerLemma()
	return []string{
		fmt.Sprintf("Before: The file is %s.", verb.Lower()),
		fmt.Sprintf("After: The system %s the file.", thirdPerson(lemma)),
	}
}

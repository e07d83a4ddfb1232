// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pronoun flags pronouns whose antecedent cannot be resolved to a
// single noun in the sentence or the two sentences before it.
package pronoun

import (
	"context"
	"fmt"
	"strings"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/nlp"
)

// Name is the registry key of this detector.
const Name = "pronoun_ambiguity"

const (
	minReferents    = 2
	minPosDistance  = 2
	minReferentLen  = 3
	localThreshold  = 0.6
	discourseCut    = 0.2
	contextCut      = 0.05
	multiRoleBonus  = 0.1
	mixedRoleBonus  = 0.05
	pronounBonus    = 0.05
	initialBonus    = 0.05
	highSeverityMin = 0.8
)

type role int

const (
	roleOther role = iota
	roleSubject
	roleObject
)

func (r role) String() string {
	switch r {
	case roleSubject:
		return "subject"
	case roleObject:
		return "object"
	}
	return "other"
}

type referent struct {
	text        string
	lemma       string
	role        role
	fromContext bool
}

// Detector finds pronouns with more than one plausible antecedent.
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
	return []detector.AmbiguityType{detector.AmbiguousPronoun, detector.UnclearAntecedent}
}

// Detect implements detector.Detector. Preceding sentences are parsed with
// parser; when it is nil or fails only the current sentence is searched.
func (d *Detector) Detect(ctx context.Context, sc detector.SentenceContext, doc *nlp.Doc, parser nlp.Parser) ([]detector.Detection, error) {
	if doc == nil {
		return nil, detector.ErrNilDoc
	}

	var (
		out          []detector.Detection
		ctxRefs      []referent
		contextReady bool
	)
	discourse := doc.ContainsLower(discourseMarkers)
	first := doc.FirstWord()

	for _, p := range doc.Tokens() {
		if !pronouns[p.Lower()] || skipPronoun(p, first) {
			continue
		}
		if !contextReady {
			ctxRefs = contextReferents(ctx, sc, parser)
			contextReady = true
		}

		initial := p == first
		refs := filterReferents(append(currentReferents(doc, p), ctxRefs...))
		if initial && p.Lower() == "it" {
			refs = prioritize(refs)
		}
		if resolved(refs, discourse) {
			continue
		}

		conf, features := score(p, refs, initial, discourse)
		if conf < localThreshold {
			continue
		}
		if d.exceptions.IsExcepted(p.Text, detector.RulePronoun) {
			continue
		}

		typ := detector.AmbiguousPronoun
		if initial && anyFromContext(refs) {
			typ = detector.UnclearAntecedent
		}

		det, err := detector.NewDetection(
			typ,
			d.cfg.Category(typ),
			severity(conf, len(refs)),
			sc,
			detector.Evidence{
				Tokens:     []string{p.Text},
				Pattern:    "pronoun_multiple_referents",
				Confidence: conf,
				Features:   features,
				ContextInfo: map[string]any{
					"pronoun_dep": p.Dep,
					"pronoun_pos": p.POS,
				},
			},
		)
		if err != nil {
			return out, fmt.Errorf("building finding for %q: %w", p.Text, err)
		}
		out = append(out, det.
			WithStrategies(detector.ClarifyPronoun, detector.SpecifyReference).
			WithInstructions(instructions(p, refs)...).
			WithExamples(examples(p, refs)...).
			WithDocSpan(doc, p.Offset, p.End()).
			WithDetector(Name))
	}
	return out, nil
}

// skipPronoun applies the exclusions that resolve a pronoun from structure alone.
func skipPronoun(p, first *nlp.Token) bool {
	lower := p.Lower()
	if lower == "that" && p.POS == "SCONJ" {
		return true
	}

	// "fetches the record and caches it"
	if p.Dep == "dobj" {
		if head := p.Head(); head.Dep == "conj" && head.Head().HasChildWithDep("dobj") {
			return true
		}
	}

	if p != first {
		return false
	}
	if isSubject(p) && (lower == "this" || lower == "it") && metaVerbs[p.Head().LowerLemma()] {
		return true
	}
	if lower == "this" && isSubject(p) && isCopularDescription(p.Head()) {
		return true
	}
	if lower == "this" && p.Dep == "det" {
		noun := p.Head()
		concrete := (noun.POS == "NOUN" || noun.POS == "PROPN") &&
			len(noun.Text) >= minReferentLen && !vagueLemmas[noun.LowerLemma()] && !contextVagueNouns[noun.LowerLemma()]
		if concrete && isSubject(noun) {
			verb := noun.Head()
			if metaVerbs[verb.LowerLemma()] || isCopularDescription(verb) {
				return true
			}
		}
	}
	return false
}

func isSubject(t *nlp.Token) bool {
	return t.Dep == "nsubj" || t.Dep == "nsubjpass"
}

func isCopularDescription(verb *nlp.Token) bool {
	return verb.LowerLemma() == "be" && verb.HasChildWithDep("attr", "acomp")
}

func isNoun(t *nlp.Token) bool {
	return t.POS == "NOUN" || t.POS == "PROPN"
}

// roleOf follows conj chains so "the server and the gateway" are both subjects.
// The complement of a preposition on a verb with a subject and no direct
// object ("the server connects to the gateway") is a co-participant and
// counts as a subject too.
func roleOf(t *nlp.Token) role {
	cur := t
	for cur.Dep == "conj" && !cur.IsRoot() {
		cur = cur.Head()
	}
	switch cur.Dep {
	case "nsubj", "nsubjpass":
		return roleSubject
	case "pobj":
		if isCoParticipant(cur) {
			return roleSubject
		}
		return roleObject
	case "dobj", "iobj", "attr":
		return roleObject
	}
	return roleOther
}

func isCoParticipant(pobj *nlp.Token) bool {
	prep := pobj.Head()
	if prep.Dep != "prep" || prep.IsRoot() {
		return false
	}
	verb := prep.Head()
	return verb.POS == "VERB" &&
		verb.HasChildWithDep("nsubj", "nsubjpass") &&
		!verb.HasChildWithDep("dobj")
}

func currentReferents(doc *nlp.Doc, p *nlp.Token) []referent {
	var refs []referent
	for _, t := range doc.Tokens() {
		if t.Index >= p.Index {
			break
		}
		if p.Index-t.Index <= minPosDistance || !isNoun(t) {
			continue
		}
		if nlp.IsStopWord(t.Lower()) || len(t.Text) < 2 {
			continue
		}
		refs = append(refs, referent{text: t.Text, lemma: t.LowerLemma(), role: roleOf(t)})
	}
	return refs
}

func contextReferents(ctx context.Context, sc detector.SentenceContext, parser nlp.Parser) []referent {
	if parser == nil {
		return nil
	}
	var refs []referent
	for _, s := range sc.NearestPreceding(detector.ContextWindow) {
		doc, err := parser.Parse(ctx, s)
		if err != nil || doc == nil {
			continue
		}
		for _, t := range doc.Tokens() {
			if !isNoun(t) || nlp.IsStopWord(t.Lower()) || len(t.Text) < 2 || contextVagueNouns[t.LowerLemma()] {
				continue
			}
			refs = append(refs, referent{text: t.Text, lemma: t.LowerLemma(), role: roleOf(t), fromContext: true})
		}
	}
	return refs
}

// filterReferents drops vague and short nouns and keeps one entry per lemma.
// A subject reading of a lemma wins over any other.
func filterReferents(in []referent) []referent {
	index := map[string]int{}
	var out []referent
	for _, r := range in {
		if len(r.text) < minReferentLen || vagueLemmas[r.lemma] {
			continue
		}
		if i, ok := index[r.lemma]; ok {
			if r.role == roleSubject && out[i].role != roleSubject {
				out[i] = r
			}
			continue
		}
		index[r.lemma] = len(out)
		out = append(out, r)
	}
	return out
}

// prioritize narrows the candidates of a sentence-initial "it" using
// grammatical role.
func prioritize(refs []referent) []referent {
	subjects, objects := split(refs)
	switch {
	case len(subjects) >= 2:
		return append(subjects, objects...)
	case len(subjects) == 1:
		out := subjects
		for _, o := range objects {
			if likelyAntecedents[o.lemma] && !concreteData[o.lemma] && o.lemma != "data" {
				out = append(out, o)
			}
		}
		return out
	}
	return refs
}

func split(refs []referent) (subjects, objects []referent) {
	for _, r := range refs {
		switch r.role {
		case roleSubject:
			subjects = append(subjects, r)
		case roleObject:
			objects = append(objects, r)
		}
	}
	return subjects, objects
}

// resolved reports whether one antecedent dominates.
func resolved(refs []referent, discourse bool) bool {
	n := len(refs)
	if n < minReferents {
		return true
	}
	subjects, _ := split(refs)
	if len(subjects) == 1 && n <= 3 {
		return true
	}
	if n == 2 && discourse {
		return true
	}
	return false
}

func score(p *nlp.Token, refs []referent, initial, discourse bool) (float64, map[string]any) {
	subjects, objects := split(refs)

	var conf float64
	switch n := len(refs); {
	case n >= 4:
		conf = 0.9
	case n == 3:
		conf = 0.8
	default:
		conf = 0.6
	}
	if len(subjects) > 1 {
		conf += multiRoleBonus
	}
	if len(objects) > 1 {
		conf += multiRoleBonus
	}
	if len(subjects) > 0 && len(objects) > 0 {
		conf += mixedRoleBonus
	}
	if demonstratives[p.Lower()] {
		conf += pronounBonus
	}
	if initial {
		conf += initialBonus
	}
	if discourse {
		conf -= discourseCut
	}
	fromContext := anyFromContext(refs)
	if fromContext {
		conf -= contextCut
	}

	names := make([]string, len(refs))
	roles := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.text
		roles[i] = r.role.String()
	}
	return detector.Score(conf), map[string]any{
		"referent_count":    len(refs),
		"subject_count":     len(subjects),
		"object_count":      len(objects),
		"context_referents": fromContext,
		"discourse_marker":  discourse,
		"sentence_initial":  initial,
		"referents":         names,
		"referent_roles":    roles,
	}
}

func anyFromContext(refs []referent) bool {
	for _, r := range refs {
		if r.fromContext {
			return true
		}
	}
	return false
}

func severity(conf float64, n int) detector.Severity {
	switch {
	case conf >= highSeverityMin || n >= 3:
		return detector.High
	case conf >= localThreshold || n == 2:
		return detector.Medium
	}
	return detector.Low
}

func quoted(refs []referent) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = "'" + r.text + "'"
	}
	return strings.Join(parts, ", ")
}

func instructions(p *nlp.Token, refs []referent) []string {
	return []string{
		fmt.Sprintf("Replace '%s' with the noun it refers to. Candidates: %s.", p.Text, quoted(refs)),
		"If the pronoun refers to the whole previous statement, name that statement explicitly.",
		"Do not introduce nouns that are not already in the surrounding text.",
	}
}

func examples(p *nlp.Token, refs []referent) []string {
	target := "the component"
	if len(refs) > 0 {
		target = "the " + strings.ToLower(refs[0].text)
	}
	return []string{
		fmt.Sprintf("Before: ... %s ...", p.Text),
		fmt.Sprintf("After: ... %s ...", target),
	}
}

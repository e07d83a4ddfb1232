// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package claims flags absolute and promissory wording that a document is
// unlikely to be able to substantiate.
package claims

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/nlp"
)

// Name is the registry key of this detector.
const Name = "unsupported_claims"

const (
	strongBase      = 0.8
	absoluteBase    = 0.9
	moderateBase    = 0.4
	riskWordBonus   = 0.4
	promiseBase     = 0.8
	technicalBonus  = 0.1
	systemBonus     = 0.1
	hedgeCut        = 0.2
	legalBonus      = 0.05
	hedgeWindow     = 3
	localThreshold  = 0.5
	strengthStrong  = "strong"
	strengthModest  = "moderate"
	strengthPromise = "promise"
)

// hit is a candidate claim before scoring. Offsets are in doc coordinates
// and first/last are inclusive token indices.
type hit struct {
	start, end  int
	first, last int
	text        string
	key         string
	strength    string
	base        float64
	riskWord    bool
}

// Detector finds unsupported absolute claims.
type Detector struct {
	cfg        *detector.Config
	exceptions detector.ExceptionChecker
	promises   []*regexp.Regexp
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
	return &Detector{cfg: cfg, exceptions: exceptions, promises: promiseSet(cfg.Patterns(Name))}
}

// promiseSet appends the configured extra phrases, matched whole-word and
// case-insensitively, to the built-in promise patterns.
func promiseSet(extra []string) []*regexp.Regexp {
	out := slices.Clone(promisePatterns)
	for _, phrase := range extra {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(phrase)+`\b`))
		}
	}
	return out
}

func (d *Detector) Name() string { return Name }

func (d *Detector) Types() []detector.AmbiguityType {
	return []detector.AmbiguityType{detector.UnsupportedClaims}
}

// Detect implements detector.Detector.
func (d *Detector) Detect(_ context.Context, sc detector.SentenceContext, doc *nlp.Doc, _ nlp.Parser) ([]detector.Detection, error) {
	if doc == nil {
		return nil, detector.ErrNilDoc
	}

	hits := tokenHits(doc)
	hits = append(hits, promiseHits(doc, hits, d.promises)...)
	slices.SortStableFunc(hits, func(a, b hit) int { return a.start - b.start })

	technical := hasAny(doc, technicalKeywords)
	systemSubject := hasSystemSubject(doc)
	legal := sc.Domain() == "legal"

	var out []detector.Detection
	for _, h := range hits {
		hedged := hedgedNear(doc, h)
		conf := h.base
		if technical {
			conf += technicalBonus
		}
		if systemSubject {
			conf += systemBonus
		}
		if hedged {
			conf -= hedgeCut
		}
		if legal {
			conf += legalBonus
		}
		conf = detector.Score(conf)
		if conf < localThreshold {
			continue
		}
		if d.exceptions.IsExcepted(h.text, detector.RuleClaims) {
			continue
		}

		alts := alternatives[h.key]
		det, err := detector.NewDetection(
			detector.UnsupportedClaims,
			detector.Semantic,
			detector.Critical,
			sc,
			detector.Evidence{
				Tokens:     tokenTexts(doc, h),
				Pattern:    patternName(h.strength),
				Confidence: conf,
				Features: map[string]any{
					"claim_strength": h.strength,
					"risk_word":      h.riskWord,
					"technical":      technical,
					"system_subject": systemSubject,
					"hedged":         hedged,
					"legal_domain":   legal,
				},
				ContextInfo: map[string]any{
					"claim_word":   h.key,
					"alternatives": slices.Clone(alts),
				},
			},
		)
		if err != nil {
			return out, fmt.Errorf("building finding for %q: %w", h.text, err)
		}
		out = append(out, det.
			WithStrategies(detector.QuantifyPrecisely, detector.AddContext).
			WithInstructions(instructions(h, alts)...).
			WithExamples(examples(h, alts)...).
			WithDocSpan(doc, h.start, h.end).
			WithDetector(Name))
	}
	return out, nil
}

func tokenHits(doc *nlp.Doc) []hit {
	var hits []hit
	for _, t := range doc.Tokens() {
		lower, lemma := t.Lower(), t.LowerLemma()
		h := hit{start: t.Offset, end: t.End(), first: t.Index, last: t.Index, text: t.Text}

		switch {
		case lower == "100" && t.Nbor(1) != nil && t.Nbor(1).Text == "%":
			pct := t.Nbor(1)
			h.end, h.last, h.text = pct.End(), pct.Index, doc.Text[t.Offset:pct.End()]
			h.key, h.strength, h.base = "100%", strengthStrong, strongBase
		case strings.HasPrefix(lower, "guarantee") || lemma == "guarantee":
			h.key, h.strength, h.base = "guarantee", strengthStrong, absoluteBase
		case strongWords[lower] || strongWords[lemma]:
			h.key = lower
			if !strongWords[lower] {
				h.key = lemma
			}
			h.strength, h.base = strengthStrong, strongBase
			if absoluteWords[h.key] {
				h.base = absoluteBase
			}
		case moderateRisk[lower] != nil || moderateRisk[lemma] != nil:
			h.key = lower
			if moderateRisk[lower] == nil {
				h.key = lemma
			}
			h.strength, h.base = strengthModest, moderateBase
			if hasRiskWord(doc, t, moderateRisk[h.key]) {
				h.riskWord = true
				h.base += riskWordBonus
			}
		default:
			continue
		}
		hits = append(hits, h)
	}
	return hits
}

// promiseHits scans the raw text for fixed promise phrases. A phrase that
// overlaps an earlier hit is left to that hit.
func promiseHits(doc *nlp.Doc, existing []hit, patterns []*regexp.Regexp) []hit {
	taken := slices.Clone(existing)
	var hits []hit
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(doc.Text, -1) {
			if overlapsAny(taken, loc[0], loc[1]) {
				continue
			}
			h := hit{
				start:    loc[0],
				end:      loc[1],
				first:    -1,
				last:     -1,
				text:     doc.Text[loc[0]:loc[1]],
				strength: strengthPromise,
				base:     promiseBase,
			}
			h.key = phraseKey(h.text)
			for _, t := range doc.Tokens() {
				if t.Offset < loc[1] && t.End() > loc[0] {
					if h.first < 0 {
						h.first = t.Index
					}
					h.last = t.Index
				}
			}
			hits = append(hits, h)
			taken = append(taken, h)
		}
	}
	return hits
}

func overlapsAny(hits []hit, start, end int) bool {
	for _, h := range hits {
		if start < h.end && h.start < end {
			return true
		}
	}
	return false
}

// phraseKey picks the alternatives entry for a promise phrase.
func phraseKey(phrase string) string {
	for _, w := range strings.Fields(strings.ToLower(phrase)) {
		if strings.HasPrefix(w, "guarantee") {
			return "guarantee"
		}
		if _, ok := alternatives[w]; ok {
			return w
		}
	}
	return ""
}

func hasRiskWord(doc *nlp.Doc, claim *nlp.Token, risk map[string]bool) bool {
	for _, t := range doc.Tokens() {
		if t != claim && (risk[t.Lower()] || risk[t.LowerLemma()]) {
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

// hasSystemSubject reports whether a subject phrase names the system itself.
func hasSystemSubject(doc *nlp.Doc) bool {
	for _, t := range doc.Tokens() {
		if t.Dep != "nsubj" && t.Dep != "nsubjpass" {
			continue
		}
		for _, s := range doc.Subtree(t) {
			if systemSubjects[s.Lower()] || systemSubjects[s.LowerLemma()] {
				return true
			}
		}
	}
	return false
}

func hedgedNear(doc *nlp.Doc, h hit) bool {
	if h.first < 0 {
		return false
	}
	for i := h.first - hedgeWindow; i <= h.last+hedgeWindow; i++ {
		if i >= h.first && i <= h.last {
			continue
		}
		if t := doc.Token(i); t != nil && hedges[t.Lower()] {
			return true
		}
	}
	return false
}

func tokenTexts(doc *nlp.Doc, h hit) []string {
	if h.first < 0 {
		return []string{h.text}
	}
	var out []string
	for i := h.first; i <= h.last; i++ {
		out = append(out, doc.Token(i).Text)
	}
	return out
}

func patternName(strength string) string {
	switch strength {
	case strengthModest:
		return "strengthening_risk"
	case strengthPromise:
		return "promise_phrase"
	}
	return "absolute_claim"
}

func instructions(h hit, alts []string) []string {
	lines := []string{
		fmt.Sprintf("Replace the absolute claim '%s' with a qualified statement.", h.text),
	}
	if len(alts) > 0 {
		lines = append(lines, fmt.Sprintf("Preferred alternatives for '%s': %s.", h.key, strings.Join(alts, ", ")))
	}
	return append(lines,
		"Do not add figures, guarantees or conditions that the source does not state.",
		"Never strengthen the claim while rewriting.",
	)
}

func examples(h hit, alts []string) []string {
	if len(alts) == 0 {
		return nil
	}
	return []string{
		fmt.Sprintf("Before: The service %s recovers.", h.key),
		fmt.Sprintf("After: The service %s recovers.", alts[0]),
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseCoNLLU reads one sentence in CoNLL-U layout:
//
//	ID FORM LEMMA UPOS XPOS FEATS HEAD DEPREL [DEPS MISC]
//
// Columns may be separated by tabs or runs of spaces. IDs and heads are
// 1-based with head 0 marking the root. A "# text = ..." comment supplies the
// sentence text; otherwise it is rebuilt from the forms, honouring
// SpaceAfter=No in MISC. Multiword range lines ("1-2") are skipped.
func ParseCoNLLU(input string) (*Doc, error) {
	var (
		text   string
		specs  []TokenSpec
		noSpac []bool
	)

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if k, v, ok := strings.Cut(strings.TrimPrefix(line, "#"), "="); ok && strings.TrimSpace(k) == "text" {
				text = strings.TrimSpace(v)
			}
			continue
		}

		var cols []string
		if strings.Contains(line, "\t") {
			cols = strings.Split(line, "\t")
		} else {
			cols = strings.Fields(line)
		}
		if len(cols) < 8 {
			return nil, fmt.Errorf("line %d: expected at least 8 columns, got %d", lineNo, len(cols))
		}
		if strings.ContainsAny(cols[0], "-.") {
			continue
		}

		id, err := strconv.Atoi(cols[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad token id %q: %w", lineNo, cols[0], err)
		}
		if id != len(specs)+1 {
			return nil, fmt.Errorf("line %d: token id %d out of sequence", lineNo, id)
		}
		head, err := strconv.Atoi(cols[6])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad head %q: %w", lineNo, cols[6], err)
		}

		dep := cols[7]
		if head == 0 {
			dep = "ROOT"
		}
		specs = append(specs, TokenSpec{
			Text:  cols[1],
			Lemma: blankUnderscore(cols[2]),
			POS:   blankUnderscore(cols[3]),
			Tag:   blankUnderscore(cols[4]),
			Morph: cols[5],
			Head:  head - 1,
			Dep:   dep,
		})
		noSpac = append(noSpac, len(cols) >= 10 && strings.Contains(cols[9], "SpaceAfter=No"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, ErrEmptySentence
	}

	if text == "" {
		var sb strings.Builder
		for i, s := range specs {
			sb.WriteString(s.Text)
			if i < len(specs)-1 && !noSpac[i] {
				sb.WriteByte(' ')
			}
		}
		text = sb.String()
	}

	b := NewDocBuilder(text)
	for _, s := range specs {
		b.Add(s)
	}
	return b.Build()
}

// MustParseCoNLLU is ParseCoNLLU for fixtures known to be valid.
func MustParseCoNLLU(input string) *Doc {
	doc, err := ParseCoNLLU(input)
	if err != nil {
		panic(err)
	}
	return doc
}

func blankUnderscore(s string) string {
	if s == "_" {
		return ""
	}
	return s
}

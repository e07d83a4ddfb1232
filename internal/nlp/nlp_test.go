// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passiveFixture = `
# text = The configuration is updated automatically.
1	The	the	DET	DT	Definite=Def|PronType=Art	2	det	_	_
2	configuration	configuration	NOUN	NN	Number=Sing	4	nsubjpass	_	_
3	is	be	AUX	VBZ	Mood=Ind|Tense=Pres|VerbForm=Fin	4	auxpass	_	_
4	updated	update	VERB	VBN	Aspect=Perf|Tense=Past|VerbForm=Part	0	ROOT	_	_
5	automatically	automatically	ADV	RB	_	4	advmod	_	SpaceAfter=No
6	.	.	PUNCT	.	PunctType=Peri	4	punct	_	_
`

func TestParseCoNLLU(t *testing.T) {
	doc, err := ParseCoNLLU(passiveFixture)
	require.NoError(t, err)

	assert.Equal(t, "The configuration is updated automatically.", doc.Text)
	require.Equal(t, 6, doc.Len())

	root := doc.Roots()
	require.Len(t, root, 1)
	assert.Equal(t, "updated", root[0].Text)
	assert.Equal(t, "ROOT", root[0].Dep)
	assert.True(t, root[0].IsRoot())
	assert.Same(t, root[0], root[0].Head())

	subj := doc.Token(1)
	assert.Equal(t, "nsubjpass", subj.Dep)
	assert.Same(t, root[0], subj.Head())
	assert.Equal(t, 4, subj.Offset)
	assert.Equal(t, 17, subj.End())

	assert.True(t, root[0].HasChildWithDep("auxpass"))
	assert.Len(t, root[0].Children(), 4)
	assert.True(t, root[0].HasMorph("VerbForm", "Part"))
	v, ok := subj.Morph("Number")
	assert.True(t, ok)
	assert.Equal(t, "Sing", v)

	assert.True(t, doc.Token(0).Stop)
	assert.False(t, subj.Stop)
	assert.Equal(t, 5, doc.WordCount())
	assert.Same(t, doc.Token(0), doc.FirstWord())
	assert.Nil(t, doc.Token(6))
	assert.Nil(t, doc.Token(0).Nbor(-1))
	assert.Same(t, subj, doc.Token(0).Nbor(1))
}

func TestParseCoNLLU_RebuildsTextFromForms(t *testing.T) {
	doc, err := ParseCoNLLU(`
1 It it PRON PRP _ 2 nsubj _ _
2 works work VERB VBZ _ 0 ROOT _ SpaceAfter=No
3 . . PUNCT . _ 2 punct _ _
`)
	require.NoError(t, err)
	assert.Equal(t, "It works.", doc.Text)
	assert.Equal(t, 8, doc.Token(2).Offset)
}

func TestParseCoNLLU_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "# text = nothing\n"},
		{"short row", "1 It it PRON\n"},
		{"bad id", "x It it PRON PRP _ 0 ROOT\n"},
		{"out of sequence", "2 It it PRON PRP _ 0 ROOT\n"},
		{"head outside", "1 It it PRON PRP _ 5 nsubj\n"},
		{"cycle", "1 a a X X _ 2 dep\n2 b b X X _ 1 dep\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCoNLLU(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestSubtree(t *testing.T) {
	doc := MustParseCoNLLU(passiveFixture)
	sub := doc.Subtree(doc.Token(1))
	require.Len(t, sub, 2)
	assert.Equal(t, "The", sub[0].Text)
	assert.Equal(t, "configuration", sub[1].Text)
	assert.Len(t, doc.Subtree(doc.Token(3)), 6)
}

func TestDocBuilder(t *testing.T) {
	doc, err := NewDocBuilder("Run it").
		Add(TokenSpec{Text: "Run", Lemma: "run", POS: "VERB", Tag: "VB", Dep: "ROOT", Head: -1}).
		Add(TokenSpec{Text: "it", Lemma: "it", POS: "PRON", Tag: "PRP", Dep: "dobj", Head: 0}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "it", doc.Token(0).ChildrenWithDep("dobj")[0].Text)

	_, err = NewDocBuilder("Run").Add(TokenSpec{Text: "Walk", Head: -1}).Build()
	assert.Error(t, err)

	_, err = NewDocBuilder("x").Build()
	assert.ErrorIs(t, err, ErrEmptySentence)
}

func TestJSONRoundTrip(t *testing.T) {
	doc := MustParseCoNLLU(passiveFixture)
	data, err := json.Marshal(ToJSON(doc))
	require.NoError(t, err)

	back, err := DecodeDoc(data)
	require.NoError(t, err)
	require.Equal(t, doc.Len(), back.Len())
	for i, tok := range doc.Tokens() {
		other := back.Token(i)
		assert.Equal(t, tok.Text, other.Text)
		assert.Equal(t, tok.Offset, other.Offset)
		assert.Equal(t, tok.Dep, other.Dep)
		assert.Equal(t, tok.Head().Index, other.Head().Index)
		assert.Equal(t, tok.MorphString(), other.MorphString())
	}
}

func TestDecodeDoc_SpanOnlyTokens(t *testing.T) {
	doc, err := DecodeDoc([]byte(`{"text":"Data flows.","tokens":[
		{"id":0,"start":0,"end":4,"pos":"NOUN","tag":"NNS","dep":"nsubj","head":1},
		{"id":1,"start":5,"end":10,"pos":"VERB","tag":"VBZ","dep":"ROOT","head":1},
		{"id":2,"start":10,"end":11,"pos":"PUNCT","tag":".","dep":"punct","head":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, "flows", doc.Token(1).Text)
	assert.Equal(t, "ROOT", doc.Token(1).Dep)
}

func TestJSONParser(t *testing.T) {
	doc := MustParseCoNLLU(passiveFixture)
	p := NewJSONParser(doc)

	got, err := p.Parse(context.Background(), "  The configuration is updated automatically. ")
	require.NoError(t, err)
	assert.Same(t, doc, got)

	_, err = p.Parse(context.Background(), "Unknown sentence.")
	assert.ErrorIs(t, err, ErrNoParse)

	_, err = p.Parse(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptySentence)
}

func TestReadBundle(t *testing.T) {
	doc := MustParseCoNLLU(passiveFixture)
	jd := ToJSON(doc)
	in := map[string]any{
		"text":     doc.Text + " Plain.",
		"metadata": map[string]string{"domain": "api"},
		"sentences": []any{
			map[string]any{"text": doc.Text, "tokens": jd.Tokens},
			map[string]any{"text": "Plain."},
		},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	b, err := ReadBundle(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{doc.Text, "Plain."}, b.SentenceTexts())
	assert.Equal(t, "api", b.Metadata["domain"])

	p, err := b.Parser()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())

	_, err = ReadBundle(strings.NewReader(`{"text":"x","sentences":[]}`))
	assert.Error(t, err)
}

func TestCachedParser(t *testing.T) {
	doc := MustParseCoNLLU(passiveFixture)
	calls := 0
	inner := ParserFunc(func(ctx context.Context, s string) (*Doc, error) {
		calls++
		if s == "missing" {
			return nil, ErrNoParse
		}
		return doc, nil
	})

	c := NewCachedParser(inner, 0)
	for i := 0; i < 3; i++ {
		got, err := c.Parse(context.Background(), doc.Text)
		require.NoError(t, err)
		assert.Same(t, doc, got)
	}
	assert.Equal(t, 1, calls)

	_, err := c.Parse(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoParse)
	_, _ = c.Parse(context.Background(), "missing")
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, c.Len())
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("it"))
	assert.False(t, IsStopWord("server"))
}

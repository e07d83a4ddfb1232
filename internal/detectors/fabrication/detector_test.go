// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fabrication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/exceptions"
	"ambiguity-scan/internal/nlp"
)

const communicatesWithBackend = `
# text = The module communicates with the backend to synchronize state.
1 The the DET DT _ 2 det _ _
2 module module NOUN NN _ 3 nsubj _ _
3 communicates communicate VERB VBZ _ 0 ROOT _ _
4 with with ADP IN _ 3 prep _ _
5 the the DET DT _ 6 det _ _
6 backend backend NOUN NN _ 4 pobj _ _
7 to to PART TO _ 8 aux _ _
8 synchronize synchronize VERB VB _ 3 advcl _ _
9 state state NOUN NN _ 8 dobj _ _
10 . . PUNCT . _ 3 punct _ _
`

const dataProcessingNoun = `
# text = The data processing system logs errors.
1 The the DET DT _ 4 det _ _
2 data data NOUN NNS _ 3 compound _ _
3 processing processing NOUN NN _ 4 compound _ _
4 system system NOUN NN _ 5 nsubj _ _
5 logs log VERB VBZ _ 0 ROOT _ _
6 errors error NOUN NNS _ 5 dobj _ _
7 . . PUNCT . _ 5 punct _ _
`

const dataProcessingGerund = `
# text = The data processing system logs errors.
1 The the DET DT _ 4 det _ _
2 data data NOUN NNS _ 3 npadvmod _ _
3 processing process VERB VBG _ 4 amod _ _
4 system system NOUN NN _ 5 nsubj _ _
5 logs log VERB VBZ _ 0 ROOT _ _
6 errors error NOUN NNS _ 5 dobj _ _
7 . . PUNCT . _ 5 punct _ _
`

const systemConfiguration = `
# text = System configuration
1 System system NOUN NN _ 2 compound _ _
2 configuration configuration NOUN NN _ 0 ROOT _ _
`

const handlesTheRest = `
# text = The gateway handles the rest.
1 The the DET DT _ 2 det _ _
2 gateway gateway NOUN NN _ 3 nsubj _ _
3 handles handle VERB VBZ _ 0 ROOT _ _
4 the the DET DT _ 5 det _ _
5 rest rest NOUN NN _ 3 dobj _ _
6 . . PUNCT . _ 3 punct _ _
`

const restartsToImprove = `
# text = The service restarts to improve uptime.
1 The the DET DT _ 2 det _ _
2 service service NOUN NN _ 3 nsubj _ _
3 restarts restart VERB VBZ _ 0 ROOT _ _
4 to to PART TO _ 5 aux _ _
5 improve improve VERB VB _ 3 advcl _ _
6 uptime uptime NOUN NN _ 5 dobj _ _
7 . . PUNCT . _ 3 punct _ _
`

const teamMeets = `
# text = The team meets weekly to improve morale.
1 The the DET DT _ 2 det _ _
2 team team NOUN NN _ 3 nsubj _ _
3 meets meet VERB VBZ _ 0 ROOT _ _
4 weekly weekly ADV RB _ 3 advmod _ _
5 to to PART TO _ 6 aux _ _
6 improve improve VERB VB _ 3 advcl _ _
7 morale morale NOUN NN _ 6 dobj _ _
8 . . PUNCT . _ 3 punct _ _
`

const communicatesWithKafka = `
# text = The agent communicates with Kafka.
1 The the DET DT _ 2 det _ _
2 agent agent NOUN NN _ 3 nsubj _ _
3 communicates communicate VERB VBZ _ 0 ROOT _ _
4 with with ADP IN _ 3 prep _ _
5 Kafka Kafka PROPN NNP _ 4 pobj _ _
6 . . PUNCT . _ 3 punct _ _
`

func detect(t *testing.T, d *Detector, fixture string, meta map[string]string) []detector.Detection {
	t.Helper()
	doc := nlp.MustParseCoNLLU(fixture)
	sc := detector.NewSentenceContext(0, []string{doc.Text}, "", meta)
	got, err := d.Detect(context.Background(), sc, doc, nil)
	require.NoError(t, err)
	return got
}

func TestDetect_IncompleteExplanation(t *testing.T) {
	got := detect(t, New(nil, nil), communicatesWithBackend, nil)
	require.Len(t, got, 1, "the verb finding is absorbed by the longer phrase")

	f := got[0]
	assert.Equal(t, detector.FabricationRisk, f.Type)
	assert.Equal(t, detector.Semantic, f.Category)
	assert.Equal(t, detector.Critical, f.Severity)
	assert.Equal(t, "communicates with", f.FlaggedText)
	assert.Equal(t, IncompleteExplained, f.Evidence.Pattern)
	assert.Equal(t, []string{"communicates", "with"}, f.Evidence.Tokens)
	assert.InDelta(t, 0.9, f.Confidence(), 1e-9)
	assert.Equal(t, true, f.Evidence.Features["specific_context"])
	assert.Contains(t, f.AIInstructions[0], "Do not expand")
	assert.Equal(t, []detector.ResolutionStrategy{detector.RestructureSentence, detector.AddContext}, f.Strategies)
}

func TestDetect_CompoundNounExclusion(t *testing.T) {
	assert.Empty(t, detect(t, New(nil, nil), dataProcessingNoun, nil))
	assert.Empty(t, detect(t, New(nil, nil), dataProcessingGerund, nil))
}

func TestDetect_StructuralLabel(t *testing.T) {
	assert.Empty(t, detect(t, New(nil, nil), systemConfiguration, map[string]string{"block_type": "heading"}))

	got := detect(t, New(nil, nil), systemConfiguration, map[string]string{"block_type": "paragraph"})
	require.Len(t, got, 1)
	assert.Equal(t, "configuration", got[0].FlaggedText)
	assert.Equal(t, ProcessReference, got[0].Evidence.Pattern)
	assert.InDelta(t, 0.9, got[0].Confidence(), 1e-9)
}

func TestDetect_HandlesTheRest(t *testing.T) {
	got := detect(t, New(nil, nil), handlesTheRest, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "handles the rest", got[0].FlaggedText)
	assert.InDelta(t, 0.9, got[0].Confidence(), 1e-9)
}

func TestDetect_PurposeStatement(t *testing.T) {
	got := detect(t, New(nil, nil), restartsToImprove, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "to improve", got[0].FlaggedText)
	assert.Equal(t, PurposeStatement, got[0].Evidence.Pattern)
	assert.InDelta(t, 0.8, got[0].Confidence(), 1e-9)

	assert.Empty(t, detect(t, New(nil, nil), teamMeets, nil), "purpose outside technical prose stays below threshold")
}

func TestDetect_SpecificityLowersConfidence(t *testing.T) {
	got := detect(t, New(nil, nil), communicatesWithKafka, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "communicates with", got[0].FlaggedText)
	assert.InDelta(t, 0.7, got[0].Confidence(), 1e-9)
}

func TestDetect_Exceptions(t *testing.T) {
	filter, err := exceptions.New([]exceptions.Rule{
		{ID: "EXC-1", Phrase: "communicates with", Category: detector.RuleFabrication, Enabled: true},
	})
	require.NoError(t, err)
	assert.Empty(t, detect(t, New(nil, filter), communicatesWithBackend, nil))
}

func TestDetect_NilDoc(t *testing.T) {
	_, err := New(nil, nil).Detect(context.Background(), detector.SentenceContext{}, nil, nil)
	assert.ErrorIs(t, err, detector.ErrNilDoc)
}

func TestResolveOverlaps(t *testing.T) {
	got := resolveOverlaps([]hit{
		{start: 0, end: 5, conf: 0.9, text: "short"},
		{start: 0, end: 10, conf: 0.7, text: "longer one"},
		{start: 20, end: 25, conf: 0.7, text: "tie-a"},
		{start: 22, end: 27, conf: 0.8, text: "tie-b"},
	})
	var texts []string
	for _, h := range got {
		texts = append(texts, h.text)
	}
	assert.Equal(t, []string{"longer one", "tie-b"}, texts)
}

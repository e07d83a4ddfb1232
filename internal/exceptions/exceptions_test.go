// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package exceptions

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambiguity-scan/internal/detector"
)

func rule(id, phrase string, cat detector.RuleCategory) Rule {
	return Rule{ID: id, Phrase: phrase, Category: cat, Enabled: true}
}

func TestIsExcepted_CategoryAndGlobal(t *testing.T) {
	f, err := New([]Rule{
		rule("EXC-1", "always", detector.RuleClaims),
		rule("EXC-2", "Kubernetes", detector.RuleGlobal),
		rule("EXC-3", "is deployed", detector.RulePassive),
	})
	require.NoError(t, err)

	tests := []struct {
		text string
		cat  detector.RuleCategory
		want bool
	}{
		{"always", detector.RuleClaims, true},
		{"ALWAYS", detector.RuleClaims, true},
		{"always", detector.RulePronoun, false},
		{"kubernetes", detector.RuleFabrication, true},
		{"kubernetes", detector.RuleClaims, true},
		{"is  deployed", detector.RulePassive, true},
		{"deployed", detector.RulePassive, false},
		{"", detector.RuleClaims, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.IsExcepted(tt.text, tt.cat), "%q in %s", tt.text, tt.cat)
	}
}

func TestIsExcepted_ContainsMode(t *testing.T) {
	r := rule("EXC-1", "guarantee", detector.RuleClaims)
	r.Match = MatchContains
	f, err := New([]Rule{r})
	require.NoError(t, err)

	assert.True(t, f.IsExcepted("is guaranteed to", detector.RuleClaims))
}

func TestIsExcepted_DisabledAndExpired(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	disabled := rule("EXC-1", "never", detector.RuleClaims)
	disabled.Enabled = false
	expired := rule("EXC-2", "always", detector.RuleClaims)
	expired.ExpiresAt = &past
	live := rule("EXC-3", "impossible", detector.RuleClaims)
	live.ExpiresAt = &future

	f, err := New([]Rule{disabled, expired, live}, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	assert.False(t, f.IsExcepted("never", detector.RuleClaims))
	assert.False(t, f.IsExcepted("always", detector.RuleClaims))
	assert.True(t, f.IsExcepted("impossible", detector.RuleClaims))

	f.SetEnabled(false)
	assert.False(t, f.IsEnabled())
	assert.False(t, f.IsExcepted("impossible", detector.RuleClaims))
}

func TestHitObserver(t *testing.T) {
	var hits []string
	f, err := New([]Rule{rule("EXC-7", "always", detector.RuleGlobal)},
		WithHitObserver(func(cat detector.RuleCategory, id string) {
			hits = append(hits, string(cat)+":"+id)
		}))
	require.NoError(t, err)

	f.IsExcepted("always", detector.RuleClaims)
	f.IsExcepted("sometimes", detector.RuleClaims)
	assert.Equal(t, []string{"claims:EXC-7"}, hits)
}

func TestNew_RejectsInvalidRules(t *testing.T) {
	_, err := New([]Rule{rule("x", " ", detector.RuleClaims)})
	assert.Error(t, err)
	_, err = New([]Rule{rule("x", "a", "bogus")})
	assert.Error(t, err)
	bad := rule("x", "a", detector.RuleClaims)
	bad.Match = "regex"
	_, err = New([]Rule{bad})
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, f.ListExceptions())
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [:"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestAddRemoveAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "exceptions.yaml")
	f, err := Load(path)
	require.NoError(t, err)

	r1, err := f.AddException("always", detector.RuleClaims, "marketing copy", "tester", nil)
	require.NoError(t, err)
	assert.Equal(t, "EXC-00000001", r1.ID)

	r2, err := f.AddException("the system", detector.RuleGlobal, "", "tester", nil)
	require.NoError(t, err)
	assert.Equal(t, "EXC-00000002", r2.ID)

	_, err = f.AddException("ALWAYS", detector.RuleClaims, "", "", nil)
	assert.Error(t, err, "duplicate phrase in the same category")

	_, err = f.AddException("x", "bogus", "", "", nil)
	assert.Error(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.ListExceptions(), 2)
	assert.True(t, reloaded.IsExcepted("Always", detector.RuleClaims))

	require.NoError(t, reloaded.RemoveException(r1.ID))
	assert.Error(t, reloaded.RemoveException(r1.ID))
	assert.False(t, reloaded.IsExcepted("always", detector.RuleClaims))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, again.ListExceptions(), 1)
}

func TestCleanupExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "exceptions.yaml")
	f, err := Load(path, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	past := now.Add(-24 * time.Hour)
	_, err = f.AddException("always", detector.RuleClaims, "", "", &past)
	require.NoError(t, err)
	_, err = f.AddException("never", detector.RuleClaims, "", "", nil)
	require.NoError(t, err)

	removed, err := f.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, f.ListExceptions(), 1)

	removed, err = f.CleanupExpired()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestConcurrentQueries(t *testing.T) {
	f, err := New([]Rule{
		rule("EXC-1", "always", detector.RuleClaims),
		rule("EXC-2", "it", detector.RulePronoun),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan string, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if !f.IsExcepted("always", detector.RuleClaims) || f.IsExcepted("always", detector.RulePronoun) {
				errs <- "claims cross-talk"
			}
		}()
		go func() {
			defer wg.Done()
			if !f.IsExcepted("it", detector.RulePronoun) || f.IsExcepted("it", detector.RuleClaims) {
				errs <- "pronoun cross-talk"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

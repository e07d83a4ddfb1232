// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package exceptions implements the shared exception filter: configured
// phrases that are never reported, per detector category or globally.
package exceptions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"ambiguity-scan/internal/detector"
)

// Match modes for a rule.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
)

// Rule is a single exception rule.
type Rule struct {
	ID        string                `yaml:"id"`
	Phrase    string                `yaml:"phrase"`
	Category  detector.RuleCategory `yaml:"category"`
	Match     string                `yaml:"match,omitempty"`
	Reason    string                `yaml:"reason"`
	Enabled   bool                  `yaml:"enabled"`
	CreatedBy string                `yaml:"created_by,omitempty"`
	CreatedAt time.Time             `yaml:"created_at"`
	ExpiresAt *time.Time            `yaml:"expires_at,omitempty"`
}

// File is the on-disk exception rule file.
type File struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

type compiledRule struct {
	rule   Rule
	folded string
}

// HitFunc is called whenever a rule excepts a span.
type HitFunc func(category detector.RuleCategory, ruleID string)

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithHitObserver registers a callback for excepted spans.
func WithHitObserver(fn HitFunc) Option {
	return func(f *Filter) { f.onHit = fn }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) { f.now = now }
}

// Filter answers IsExcepted queries. Queries take a read lock and the
// category is a parameter, so concurrent detectors never observe each
// other's lookups. Management calls take the write lock.
type Filter struct {
	mu       sync.RWMutex
	path     string
	file     File
	compiled []compiledRule
	enabled  bool

	now    func() time.Time
	onHit  HitFunc
	logger *zap.Logger
}

// New returns an in-memory filter over rules. Nothing is persisted.
func New(rules []Rule, opts ...Option) (*Filter, error) {
	f := newFilter("", opts)
	for _, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, err
		}
	}
	f.file.Rules = slices.Clone(rules)
	f.compile()
	return f, nil
}

// Load reads the rule file at path. A missing file yields an empty filter
// that will create the file on the first change.
func Load(path string, opts ...Option) (*Filter, error) {
	f := newFilter(path, opts)

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		f.logger.Debug("no exception file", zap.String("path", path))
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("error reading exception file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing exception file %s: %w", path, err)
	}
	for i, r := range file.Rules {
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("exception rule %d in %s: %w", i, path, err)
		}
	}
	if file.Version == "" {
		file.Version = "1.0"
	}
	f.file = file
	f.compile()
	f.logger.Debug("loaded exception rules", zap.String("path", path), zap.Int("rules", len(file.Rules)))
	return f, nil
}

func newFilter(path string, opts []Option) *Filter {
	f := &Filter{
		path:    path,
		file:    File{Version: "1.0"},
		enabled: true,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func validateRule(r Rule) error {
	if strings.TrimSpace(r.Phrase) == "" {
		return fmt.Errorf("rule %q has an empty phrase", r.ID)
	}
	if !slices.Contains(detector.RuleCategories, r.Category) {
		return fmt.Errorf("rule %q has unknown category %q", r.ID, r.Category)
	}
	switch r.Match {
	case "", MatchExact, MatchContains:
		return nil
	}
	return fmt.Errorf("rule %q has unknown match mode %q", r.ID, r.Match)
}

// fold normalises case and whitespace. A Caser is not safe for concurrent
// use, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// compile must be called with the write lock held or before publication.
func (f *Filter) compile() {
	f.compiled = make([]compiledRule, 0, len(f.file.Rules))
	for _, r := range f.file.Rules {
		f.compiled = append(f.compiled, compiledRule{rule: r, folded: fold(r.Phrase)})
	}
}

// IsExcepted reports whether text matches an active rule in category or in
// the global category.
func (f *Filter) IsExcepted(text string, category detector.RuleCategory) bool {
	_, ok := f.Lookup(text, category)
	return ok
}

// Lookup is IsExcepted that also returns the matching rule.
func (f *Filter) Lookup(text string, category detector.RuleCategory) (Rule, bool) {
	folded := fold(text)
	if folded == "" {
		return Rule{}, false
	}

	f.mu.RLock()
	if !f.enabled {
		f.mu.RUnlock()
		return Rule{}, false
	}
	now := f.now()
	var hit *Rule
	for i := range f.compiled {
		c := &f.compiled[i]
		r := &c.rule
		if !r.Enabled || (r.Category != category && r.Category != detector.RuleGlobal) {
			continue
		}
		if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
			continue
		}
		if folded == c.folded || (r.Match == MatchContains && strings.Contains(folded, c.folded)) {
			hit = r
			break
		}
	}
	f.mu.RUnlock()

	if hit == nil {
		return Rule{}, false
	}
	if f.onHit != nil {
		f.onHit(category, hit.ID)
	}
	return *hit, true
}

// AddException adds an enabled rule and saves the file.
func (f *Filter) AddException(phrase string, category detector.RuleCategory, reason, createdBy string, expiresAt *time.Time) (Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	folded := fold(phrase)
	for _, c := range f.compiled {
		if c.folded == folded && c.rule.Category == category {
			return Rule{}, fmt.Errorf("exception for %q in category %s already exists (%s)", phrase, category, c.rule.ID)
		}
	}

	maxID := 0
	for _, r := range f.file.Rules {
		var num int
		if _, err := fmt.Sscanf(r.ID, "EXC-%08d", &num); err == nil && num > maxID {
			maxID = num
		}
	}

	rule := Rule{
		ID:        fmt.Sprintf("EXC-%08d", maxID+1),
		Phrase:    strings.TrimSpace(phrase),
		Category:  category,
		Reason:    reason,
		Enabled:   true,
		CreatedBy: createdBy,
		CreatedAt: f.now().UTC().Truncate(time.Second),
		ExpiresAt: expiresAt,
	}
	if err := validateRule(rule); err != nil {
		return Rule{}, err
	}

	f.file.Rules = append(f.file.Rules, rule)
	f.compile()
	return rule, f.save()
}

// RemoveException deletes the rule with id and saves the file.
func (f *Filter) RemoveException(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, r := range f.file.Rules {
		if r.ID == id {
			f.file.Rules = slices.Delete(f.file.Rules, i, i+1)
			f.compile()
			return f.save()
		}
	}
	return fmt.Errorf("exception rule with ID %s not found", id)
}

// ListExceptions returns a copy of all rules.
func (f *Filter) ListExceptions() []Rule {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.file.Rules)
}

// CleanupExpired removes expired rules and returns how many were removed.
func (f *Filter) CleanupExpired() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	before := len(f.file.Rules)
	f.file.Rules = slices.DeleteFunc(f.file.Rules, func(r Rule) bool {
		return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
	})
	removed := before - len(f.file.Rules)
	if removed == 0 {
		return 0, nil
	}
	f.compile()
	return removed, f.save()
}

// SetEnabled turns the whole filter on or off.
func (f *Filter) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// IsEnabled reports whether the filter is active.
func (f *Filter) IsEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled
}

// Path returns the backing file path, empty for in-memory filters.
func (f *Filter) Path() string {
	return f.path
}

func (f *Filter) save() error {
	if f.path == "" {
		return nil
	}

	data, err := yaml.Marshal(&f.file)
	if err != nil {
		return fmt.Errorf("failed to marshal exception rules: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write exception rules: %w", err)
	}
	f.logger.Debug("saved exception rules", zap.String("path", f.path), zap.Int("rules", len(f.file.Rules)))
	return nil
}

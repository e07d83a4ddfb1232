// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedParser memoizes parses of an underlying Parser. The same sentence is
// typically parsed once as the current sentence and again as preceding
// context for its neighbours, so the hit rate is high even within one
// document. Failures are not cached.
type CachedParser struct {
	next  Parser
	cache *gocache.Cache
}

// NewCachedParser wraps next with an in-memory cache. ttl <= 0 keeps entries
// until the process exits.
func NewCachedParser(next Parser, ttl time.Duration) *CachedParser {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &CachedParser{next: next, cache: gocache.New(ttl, cleanup)}
}

// Parse returns the cached parse or delegates to the wrapped parser.
func (c *CachedParser) Parse(ctx context.Context, sentence string) (*Doc, error) {
	key := cacheKey(sentence)
	if v, ok := c.cache.Get(key); ok {
		return v.(*Doc), nil
	}

	doc, err := c.next.Parse(ctx, sentence)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, doc)
	return doc, nil
}

// Len returns the number of cached parses.
func (c *CachedParser) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(sentence string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(sentence)))
	return hex.EncodeToString(sum[:])
}

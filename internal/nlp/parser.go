// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"errors"
)

// ErrNoParse is returned when a parser has no analysis for a sentence.
var ErrNoParse = errors.New("no parse available for sentence")

// Parser is the syntactic-analysis capability the detectors depend on.
// Implementations must be safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, sentence string) (*Doc, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, sentence string) (*Doc, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, sentence string) (*Doc, error) {
	return f(ctx, sentence)
}

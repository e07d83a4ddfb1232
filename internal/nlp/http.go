// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ambiguity-scan/internal/resilience"
)

// HTTPParserConfig configures the client for an external parsing service.
type HTTPParserConfig struct {
	Endpoint  string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	Retry     resilience.RetryConfig
	Breaker   resilience.CircuitBreakerConfig
}

// HTTPParser posts sentences to a parsing service and decodes the spaCy JSON
// response. Calls are rate limited, retried with backoff on transient
// failures and guarded by a circuit breaker.
type HTTPParser struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	logger   *zap.Logger
}

// NewHTTPParser builds a client. A nil logger disables logging.
func NewHTTPParser(cfg HTTPParserConfig, logger *zap.Logger) (*HTTPParser, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("parser endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = resilience.DefaultCircuitBreakerConfig("nlp-parser")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	retry := cfg.Retry
	retry.OnRetry = func(attempt int, err error) {
		logger.Debug("retrying parser request", zap.Int("attempt", attempt), zap.Error(err))
	}

	breakerCfg := cfg.Breaker
	breakerCfg.OnStateChange = func(name string, from, to resilience.CircuitBreakerState) {
		logger.Warn("parser circuit breaker state change",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}

	return &HTTPParser{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  limiter,
		retry:    retry,
		breaker:  resilience.NewCircuitBreaker(breakerCfg),
		logger:   logger,
	}, nil
}

type parseRequest struct {
	Text string `json:"text"`
}

// Parse sends one sentence to the service.
func (p *HTTPParser) Parse(ctx context.Context, sentence string) (*Doc, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil, ErrEmptySentence
	}

	var doc *Doc
	err := resilience.RetryWithCircuitBreaker(ctx, p.retry, p.breaker, func(ctx context.Context) error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		d, err := p.do(ctx, sentence)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing sentence via %s: %w", p.endpoint, err)
	}
	return doc, nil
}

func (p *HTTPParser) do(ctx context.Context, sentence string) (*Doc, error) {
	body, err := json.Marshal(parseRequest{Text: sentence})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, resilience.NewPermanentError(fmt.Sprintf("building parser request: %v", err), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resilience.NewTransientError(fmt.Sprintf("reading parser response: %v", err), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(payload))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, resilience.ClassifyHTTPStatus(resp.StatusCode, snippet)
	}

	doc, err := DecodeDoc(payload)
	if err != nil {
		return nil, resilience.NewPermanentError(fmt.Sprintf("invalid parser response: %v", err), err)
	}
	return doc, nil
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// ErrorType classifies a failure of the external parsing service
type ErrorType int

const (
	ErrorTypeUnknown            ErrorType = iota
	ErrorTypeTransient                    // connection resets, refused connections
	ErrorTypePermanent                    // requests that will never succeed
	ErrorTypeTimeout                      // client or server side timeouts
	ErrorTypeRateLimit                    // HTTP 429
	ErrorTypeServiceUnavailable           // HTTP 5xx
	ErrorTypeInvalidInput                 // HTTP 4xx other than 429, undecodable payloads
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypePermanent:
		return "Permanent"
	case ErrorTypeTimeout:
		return "Timeout"
	case ErrorTypeRateLimit:
		return "RateLimit"
	case ErrorTypeServiceUnavailable:
		return "ServiceUnavailable"
	case ErrorTypeInvalidInput:
		return "InvalidInput"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// ClassifyError categorizes an error for retry and circuit-breaker decisions.
// Errors already classified anywhere in the chain are returned as is.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &ClassifiedError{Original: err, Type: ErrorTypePermanent, Message: err.Error()}
	case isTimeoutError(err):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTimeout,
			Message:   fmt.Sprintf("timeout: %v", err),
			Retryable: true,
		}
	case isNetworkError(err):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTransient,
			Message:   fmt.Sprintf("network error: %v", err),
			Retryable: true,
		}
	}

	return &ClassifiedError{
		Original: err,
		Type:     ErrorTypeUnknown,
		Message:  err.Error(),
	}
}

// ClassifyHTTPStatus maps a non-2xx response status to a classified error.
func ClassifyHTTPStatus(status int, body string) *ClassifiedError {
	msg := fmt.Sprintf("parser service returned %d %s", status, http.StatusText(status))
	if body != "" {
		msg += ": " + body
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &ClassifiedError{Type: ErrorTypeRateLimit, Message: msg, Retryable: true}
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return &ClassifiedError{Type: ErrorTypeTimeout, Message: msg, Retryable: true}
	case status >= 500:
		return &ClassifiedError{Type: ErrorTypeServiceUnavailable, Message: msg, Retryable: true}
	case status >= 400:
		return &ClassifiedError{Type: ErrorTypeInvalidInput, Message: msg}
	default:
		return &ClassifiedError{Type: ErrorTypeUnknown, Message: msg}
	}
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// NewTransientError creates a new transient error
func NewTransientError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypeTransient,
		Message:   message,
		Retryable: true,
	}
}

// NewPermanentError creates a new permanent error
func NewPermanentError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypePermanent,
		Message:   message,
		Retryable: false,
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"time"

	"go.uber.org/zap"
)

// StandardObserver times component operations and reports them as structured
// log entries.
type StandardObserver struct {
	level  ObservabilityLevel
	logger *zap.Logger
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer. A nil logger disables output.
func NewStandardObserver(level ObservabilityLevel, logger *zap.Logger) *StandardObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation string) func(success bool, fields ...zap.Field) {
	if o == nil || o.level == ObservabilityOff {
		return func(bool, ...zap.Field) {}
	}
	start := time.Now()

	return func(success bool, fields ...zap.Field) {
		o.LogOperation(OperationData{
			Component: component,
			Operation: operation,
			Duration:  time.Since(start),
			Success:   success,
		}, fields...)
	}
}

// LogOperation logs operation data. Successful operations are only logged
// at debug level; failures are logged whenever the observer is on.
func (o *StandardObserver) LogOperation(data OperationData, extra ...zap.Field) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	fields := append([]zap.Field{
		zap.String("component", data.Component),
		zap.String("operation", data.Operation),
		zap.Duration("duration", data.Duration),
		zap.Bool("success", data.Success),
	}, extra...)

	switch {
	case !data.Success:
		o.logger.Warn("operation failed", fields...)
	case o.level == ObservabilityDebug:
		o.logger.Debug("operation completed", fields...)
	}
}

// OperationData describes one timed operation.
type OperationData struct {
	Component string
	Operation string
	Duration  time.Duration
	Success   bool
}

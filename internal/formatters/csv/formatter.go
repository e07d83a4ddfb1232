// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(records []detector.Record, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Sentence", "Type", "Category", "Severity", "Confidence Level", "Confidence", "Flagged Text", "Text", "Message"}
	if options.Verbose {
		headers = append(headers, "Suggestions", "Detector")
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range formatters.FilterByConfidence(records, options) {
		row := []string{
			strconv.Itoa(r.SentenceIndex),
			string(r.Subtype),
			string(r.Category),
			string(r.Severity),
			formatters.ConfidenceLevel(r.Confidence),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
			sanitizeFormulaInjection(r.FlaggedText),
			sanitizeFormulaInjection(r.Sentence),
			sanitizeFormulaInjection(r.Message),
		}
		if options.Verbose {
			row = append(row, sanitizeFormulaInjection(strings.Join(r.Suggestions, " | ")), r.Detector)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing CSV: %w", err)
	}
	return sb.String(), nil
}

// sanitizeFormulaInjection keeps spreadsheets from evaluating a cell that
// starts with a formula character.
func sanitizeFormulaInjection(field string) string {
	if field == "" {
		return field
	}
	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

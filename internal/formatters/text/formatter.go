// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"slices"
	"strings"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/formatters"

	"github.com/fatih/color"
)

const maxFlaggedWidth = 30

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(records []detector.Record, options formatters.FormatterOptions) (string, error) {
	if len(records) == 0 {
		return "No ambiguities found.\n", nil
	}
	filtered := formatters.FilterByConfidence(records, options)
	if len(filtered) == 0 {
		return "No ambiguities found at the specified confidence levels.\n", nil
	}

	// Most severe first, document order within a severity
	slices.SortStableFunc(filtered, func(a, b detector.Record) int {
		if d := b.Severity.Rank() - a.Severity.Rank(); d != 0 {
			return d
		}
		return a.SentenceIndex - b.SentenceIndex
	})

	var builder strings.Builder
	if options.Verbose {
		for _, r := range filtered {
			f.appendDetailed(&builder, r, options)
		}
	} else {
		width := flaggedWidth(filtered)
		f.appendHeaders(&builder, width, options)
		for _, r := range filtered {
			f.appendSummaryLine(&builder, r, width, options)
		}
	}
	f.appendTotals(&builder, filtered, options)
	return builder.String(), nil
}

// paint renders with the named color unless color is disabled.
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...any) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) levelColor(level string) string {
	switch level {
	case "high":
		return "red"
	case "medium":
		return "yellow"
	default:
		return "green"
	}
}

func (f *Formatter) severityColor(sev detector.Severity) string {
	switch sev {
	case detector.Critical, detector.High:
		return "red"
	case detector.Medium:
		return "yellow"
	default:
		return "green"
	}
}

func flaggedWidth(records []detector.Record) int {
	width := len("FLAGGED")
	for _, r := range records {
		if n := len([]rune(r.FlaggedText)); n > width {
			width = n
		}
	}
	return min(width, maxFlaggedWidth)
}

func (f *Formatter) appendHeaders(builder *strings.Builder, width int, options formatters.FormatterOptions) {
	header := fmt.Sprintf("%-8s %-9s %-19s %-6s %-5s %-*s %s", "LEVEL", "SEVERITY", "TYPE", "CONF", "SENT", width, "FLAGGED", "MESSAGE")
	builder.WriteString(f.paint("white", options, "%s\n", header))
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", len(header))))
}

func (f *Formatter) appendSummaryLine(builder *strings.Builder, r detector.Record, width int, options formatters.FormatterOptions) {
	level := formatters.ConfidenceLevel(r.Confidence)

	flagged := []rune(r.FlaggedText)
	if len(flagged) > width {
		flagged = append(flagged[:width-3], []rune("...")...)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s %s %s\n",
		f.paint(f.levelColor(level), options, "[%-6s]", strings.ToUpper(level)),
		f.paint(f.severityColor(r.Severity), options, "%-9s", r.Severity),
		f.paint("cyan", options, "%-19s", r.Subtype),
		f.paint("blue", options, "%-6.2f", r.Confidence),
		f.paint("magenta", options, "%-5d", r.SentenceIndex),
		fmt.Sprintf("%-*s", width, string(flagged)),
		r.Message)
}

func (f *Formatter) appendDetailed(builder *strings.Builder, r detector.Record, options formatters.FormatterOptions) {
	level := formatters.ConfidenceLevel(r.Confidence)

	builder.WriteString(f.paint("white", options, "=== Finding Details ===\n"))
	fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "Sentence %d:", r.SentenceIndex), r.Sentence)
	if r.FlaggedText != "" {
		fmt.Fprintf(builder, "%s %s", f.paint("cyan", options, "Flagged:"), r.FlaggedText)
		if r.Span != nil {
			builder.WriteString(f.paint("magenta", options, " [%d:%d]", r.Span.Start, r.Span.End))
		}
		builder.WriteString("\n")
	}
	fmt.Fprintf(builder, "%s %s (%s)\n", f.paint("cyan", options, "Type:"), r.Subtype, r.Category)
	fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "Severity:"), f.paint(f.severityColor(r.Severity), options, "%s", r.Severity))
	fmt.Fprintf(builder, "%s %.3f %s\n", f.paint("cyan", options, "Confidence:"), r.Confidence,
		f.paint(f.levelColor(level), options, "(%s)", level))
	fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "Message:"), r.Message)
	fmt.Fprintf(builder, "%s %s (%s)\n", f.paint("cyan", options, "Evidence:"), strings.Join(r.Evidence.Tokens, " "), r.Evidence.Pattern)

	f.appendList(builder, "Suggestions:", r.Suggestions, options)
	f.appendList(builder, "Rewrite instructions:", r.AIInstructions, options)
	f.appendList(builder, "Examples:", r.Examples, options)
	if r.Detector != "" {
		fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "Detector:"), r.Detector)
	}
	builder.WriteString("\n")
}

func (f *Formatter) appendList(builder *strings.Builder, title string, items []string, options formatters.FormatterOptions) {
	if len(items) == 0 {
		return
	}
	builder.WriteString(f.paint("cyan", options, "%s\n", title))
	for _, item := range items {
		fmt.Fprintf(builder, "  - %s\n", item)
	}
}

func (f *Formatter) appendTotals(builder *strings.Builder, records []detector.Record, options formatters.FormatterOptions) {
	counts := map[detector.Severity]int{}
	for _, r := range records {
		counts[r.Severity]++
	}
	var parts []string
	for _, sev := range []detector.Severity{detector.Critical, detector.High, detector.Medium, detector.Low} {
		if counts[sev] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[sev], sev))
		}
	}
	builder.WriteString(f.paint("white", options, "\n%d finding(s): %s\n", len(records), strings.Join(parts, ", ")))
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a detector
type CheckInfo struct {
	Name                string             // Name of the check (e.g., "MISSING_ACTOR")
	ShortDescription    string             // Short description for the checks list
	DetailedDescription string             // Detailed description of what the check does
	Patterns            []string           // Patterns the check looks for
	Types               []string           // Ambiguity types the check reports
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Words that raise confidence
	NegativeKeywords    []string           // Words that lower confidence
	ConfigurationInfo   string             // How to configure or except the check
	Examples            []string           // Sample sentences
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Signed adjustment in percentage points
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System renders help content for registered detectors
type System struct {
	providers map[string]Provider
	colors    map[string]*color.Color
}

// NewSystem creates a new help system
func NewSystem(noColor bool) *System {
	if noColor {
		color.NoColor = true
	}

	return &System{
		providers: make(map[string]Provider),
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

func (h *System) sortedInfos() []CheckInfo {
	infos := make([]CheckInfo, 0, len(h.providers))
	for _, p := range h.providers {
		infos = append(infos, p.GetCheckInfo())
	}
	slices.SortFunc(infos, func(a, b CheckInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

// ShowChecksHelp lists every registered detector
func (h *System) ShowChecksHelp(out io.Writer) {
	h.colors["title"].Fprintln(out, "Available Detectors")
	fmt.Fprintln(out, "===================")
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CHECK\tTYPES\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  -----\t-----\t-----------")
	for _, info := range h.sortedInfos() {
		fmt.Fprint(w, "  ")
		h.colors["emphasis"].Fprint(w, info.Name)
		fmt.Fprintf(w, "\t%s\t%s\n", strings.Join(info.Types, ","), info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "For detailed information about a specific detector, use:")
	h.colors["example"].Fprintln(out, "  ambiguity-scan detectors <check>")
}

// ShowCheckHelp displays detailed help for one detector
func (h *System) ShowCheckHelp(out io.Writer, checkName string) bool {
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		h.colors["negative"].Fprintf(out, "Error: detector '%s' not found.\n", checkName)
		fmt.Fprintln(out, "Use 'ambiguity-scan detectors' to see a list of available detectors.")
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(out, "%s Detector\n", info.Name)
	fmt.Fprintln(out, strings.Repeat("=", len(info.Name)+9))
	fmt.Fprintln(out)
	fmt.Fprintln(out, info.DetailedDescription)
	fmt.Fprintln(out)

	h.list(out, "TYPES REPORTED:", info.Types)
	h.list(out, "PATTERNS DETECTED:", info.Patterns)

	if len(info.ConfidenceFactors) > 0 {
		h.colors["header"].Fprintln(out, "CONFIDENCE SCORING:")
		for _, factor := range info.ConfidenceFactors {
			fmt.Fprint(out, "  - ")
			h.colors["item"].Fprintf(out, "%s ", factor.Name)
			fmt.Fprintf(out, "(%+.0f%%): %s\n", factor.Weight, factor.Description)
		}
		fmt.Fprintln(out)
	}

	if len(info.PositiveKeywords) > 0 {
		fmt.Fprint(out, "  Raises confidence: ")
		h.colors["positive"].Fprintln(out, strings.Join(info.PositiveKeywords, ", "))
	}
	if len(info.NegativeKeywords) > 0 {
		fmt.Fprint(out, "  Lowers confidence: ")
		h.colors["negative"].Fprintln(out, strings.Join(info.NegativeKeywords, ", "))
	}
	if len(info.PositiveKeywords) > 0 || len(info.NegativeKeywords) > 0 {
		fmt.Fprintln(out)
	}

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(out, "CONFIGURATION:")
		fmt.Fprintln(out, info.ConfigurationInfo)
		fmt.Fprintln(out)
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(out, "  ")
			h.colors["example"].Fprintln(out, example)
		}
	}

	return true
}

func (h *System) list(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	h.colors["header"].Fprintln(out, title)
	for _, item := range items {
		fmt.Fprint(out, "  - ")
		h.colors["item"].Fprintln(out, item)
	}
	fmt.Fprintln(out)
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ambiguity-scan/internal/config"
	"ambiguity-scan/internal/core"
	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/exceptions"
	"ambiguity-scan/internal/formatters"
	_ "ambiguity-scan/internal/formatters/csv"
	_ "ambiguity-scan/internal/formatters/json"
	_ "ambiguity-scan/internal/formatters/text"
	_ "ambiguity-scan/internal/formatters/yaml"
	"ambiguity-scan/internal/metrics"
	"ambiguity-scan/internal/nlp"
	"ambiguity-scan/internal/observability"
)

// analyzeSettings holds the resolved analyze options.
type analyzeSettings struct {
	format           string
	confidenceLevels string
	detectors        string
	verbose          bool
	compact          bool
	parallelism      int
	parserMode       string
	endpoint         string
	exceptionsFile   string
	noExceptions     bool
	metricsFile      string
	output           string
	failOn           string
	profile          *config.Profile
	meta             map[string]string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		profileName string
		meta        map[string]string
	)

	cmd := &cobra.Command{
		Use:   "analyze [bundle.json]",
		Short: "Analyze a parsed document bundle",
		Long: `Analyze reads a document bundle (the full text, optional metadata and the
sentences with their dependency parses) from a file or stdin and reports the
ambiguities found.

In http parser mode the bundle may omit the parses; each sentence is sent to
the configured parsing service instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.resolveAnalyze(profileName, meta)
			if err != nil {
				return err
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return a.runAnalyze(cmd, input, s)
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", "", "output format: "+strings.Join(formatters.List(), ", "))
	flags.String("confidence", "", "confidence levels to report: all or a list of high,medium,low")
	flags.String("detectors", "", "detectors to run: all or a list such as missing_actor,unsupported_claims")
	flags.BoolP("verbose", "v", false, "show instructions, examples and evidence")
	flags.Bool("compact", false, "single-line JSON output")
	flags.Int("parallelism", 0, "sentences analyzed concurrently")
	flags.String("parser", "", "parser mode: json (parses in the bundle) or http")
	flags.String("endpoint", "", "parsing service URL for http mode")
	flags.String("exceptions-file", "", "exception rule file")
	flags.Bool("no-exceptions", false, "ignore exception rules")
	flags.String("metrics-file", "", "write Prometheus metrics to this textfile")
	flags.StringP("output", "o", "", "write the report to a file instead of stdout")
	flags.String("fail-on", "", "exit with status 1 when a reported finding has at least this severity")
	flags.StringVar(&profileName, "profile", "", "named profile from the config file")
	flags.StringToStringVar(&meta, "meta", nil, "document metadata such as domain=legal or block_type=heading")

	for _, name := range []string{
		"format", "confidence", "detectors", "verbose", "compact", "parallelism", "parser",
		"endpoint", "exceptions-file", "no-exceptions", "metrics-file", "output", "fail-on",
	} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

// resolveAnalyze layers the profile over the config defaults, then lets
// viper apply environment variables and flags on top.
func (a *app) resolveAnalyze(profileName string, meta map[string]string) (analyzeSettings, error) {
	cfg := a.cfg
	var profile *config.Profile
	if profileName != "" {
		profile = cfg.GetProfile(profileName)
		if profile == nil {
			return analyzeSettings{}, fmt.Errorf("unknown profile %q (available: %s)", profileName, strings.Join(cfg.ListProfiles(), ", "))
		}
	}

	format, levels, detectors, verbose := cfg.Defaults.Format, cfg.Defaults.ConfidenceLevels, cfg.Defaults.Detectors, cfg.Defaults.Verbose
	if profile != nil {
		if profile.Format != "" {
			format = profile.Format
		}
		if profile.ConfidenceLevels != "" {
			levels = profile.ConfidenceLevels
		}
		if profile.Detectors != "" {
			detectors = profile.Detectors
		}
		verbose = verbose || profile.Verbose
		if profile.NoColor {
			a.v.SetDefault("no-color", true)
		}
	}

	v := a.v
	v.SetDefault("format", format)
	v.SetDefault("confidence", levels)
	v.SetDefault("detectors", detectors)
	v.SetDefault("verbose", verbose)
	v.SetDefault("parallelism", cfg.Defaults.Parallelism)
	v.SetDefault("parser", cfg.Parser.Mode)
	v.SetDefault("endpoint", cfg.Parser.Endpoint)
	v.SetDefault("exceptions-file", cfg.Exceptions.File)
	v.SetDefault("no-exceptions", !cfg.Exceptions.Enabled)

	s := analyzeSettings{
		format:           strings.ToLower(v.GetString("format")),
		confidenceLevels: v.GetString("confidence"),
		detectors:        v.GetString("detectors"),
		verbose:          v.GetBool("verbose"),
		compact:          v.GetBool("compact"),
		parallelism:      v.GetInt("parallelism"),
		parserMode:       strings.ToLower(v.GetString("parser")),
		endpoint:         v.GetString("endpoint"),
		exceptionsFile:   v.GetString("exceptions-file"),
		noExceptions:     v.GetBool("no-exceptions"),
		metricsFile:      v.GetString("metrics-file"),
		output:           v.GetString("output"),
		failOn:           v.GetString("fail-on"),
		profile:          profile,
		meta:             map[string]string{},
	}
	if profile != nil {
		maps.Copy(s.meta, profile.Metadata)
	}
	maps.Copy(s.meta, meta)

	if _, ok := formatters.Get(s.format); !ok {
		return s, fmt.Errorf("unsupported format %q (available: %s)", s.format, strings.Join(formatters.List(), ", "))
	}
	if s.failOn != "" {
		if _, err := detector.ParseSeverity(s.failOn); err != nil {
			return s, fmt.Errorf("--fail-on: %w", err)
		}
	}
	return s, nil
}

func (a *app) runAnalyze(cmd *cobra.Command, input string, s analyzeSettings) error {
	bundle, err := readBundle(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}

	parser, err := a.buildParser(bundle, s)
	if err != nil {
		return err
	}

	m := metrics.New(nil)

	detectionCfg, err := a.cfg.DetectionConfig(s.profile)
	if err != nil {
		return err
	}

	opts := []core.Option{
		core.WithLogger(a.logger),
		core.WithMetrics(m),
		core.WithObserver(observability.NewStandardObserver(a.observabilityLevel(), a.logger)),
		core.WithParallelism(s.parallelism),
		core.WithEnabledDetectors(core.ParseDetectorsToRun(splitList(s.detectors))),
	}
	if s.exceptionsFile != "" {
		filter, err := exceptions.Load(s.exceptionsFile,
			exceptions.WithLogger(a.logger),
			exceptions.WithHitObserver(func(category detector.RuleCategory, ruleID string) {
				m.RecordExceptionHit(string(category))
				a.logger.Debug("exception applied", zap.String("rule", ruleID), zap.String("category", string(category)))
			}))
		if err != nil {
			return err
		}
		filter.SetEnabled(!s.noExceptions)
		a.logger.Debug("exception rules",
			zap.String("path", filter.Path()),
			zap.Int("rules", len(filter.ListExceptions())),
			zap.Bool("enabled", filter.IsEnabled()))
		opts = append(opts, core.WithExceptions(filter))
	}

	coordinator := core.NewCoordinator(detectionCfg, opts...)
	meta := maps.Clone(bundle.Metadata)
	if meta == nil {
		meta = map[string]string{}
	}
	maps.Copy(meta, s.meta)

	res := coordinator.AnalyzeDetailed(cmd.Context(), bundle.Text, bundle.SentenceTexts(), parser, meta)
	a.logger.Info("analysis complete",
		zap.Int("sentences", res.SentencesAnalyzed),
		zap.Int("findings", len(res.Records)),
		zap.Int("errors", len(res.Errors)))

	out := cmd.OutOrStdout()
	var file *os.File
	if s.output != "" {
		file, err = os.Create(filepath.Clean(s.output))
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	formatOpts := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(s.confidenceLevels),
		Verbose:         s.verbose,
		NoColor:         a.noColor(out),
		Compact:         s.compact,
	}
	report, err := formatters.Export(s.format, res.Records, formatOpts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if !strings.HasSuffix(report, "\n") {
		fmt.Fprintln(out)
	}

	if s.metricsFile != "" {
		if err := m.WriteTextfile(s.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if s.failOn != "" {
		threshold, _ := detector.ParseSeverity(s.failOn)
		// only findings that made it into the report count
		for _, r := range formatters.FilterByConfidence(res.Records, formatOpts) {
			if r.Severity.Rank() >= threshold.Rank() {
				return ErrFindings
			}
		}
	}
	return nil
}

func readBundle(stdin io.Reader, input string) (*nlp.Bundle, error) {
	if input == "-" {
		return nlp.ReadBundle(stdin)
	}
	f, err := os.Open(filepath.Clean(input))
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()
	return nlp.ReadBundle(f)
}

func (a *app) buildParser(bundle *nlp.Bundle, s analyzeSettings) (nlp.Parser, error) {
	switch s.parserMode {
	case "", config.ParserModeJSON:
		return bundle.Parser()
	case config.ParserModeHTTP:
		hc := a.cfg.Parser.HTTPParserConfig()
		hc.Endpoint = s.endpoint
		hp, err := nlp.NewHTTPParser(hc, a.logger)
		if err != nil {
			return nil, err
		}
		if a.cfg.Parser.CacheTTL > 0 {
			return nlp.NewCachedParser(hp, a.cfg.Parser.CacheTTL), nil
		}
		return hp, nil
	default:
		return nil, fmt.Errorf("unknown parser mode %q", s.parserMode)
	}
}

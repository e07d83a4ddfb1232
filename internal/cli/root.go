// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the ambiguity-scan command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"ambiguity-scan/internal/config"
	"ambiguity-scan/internal/observability"
)

// EnvPrefix is the prefix of environment overrides, e.g. AMBIGUITY_SCAN_FORMAT.
const EnvPrefix = "AMBIGUITY_SCAN"

// ErrFindings is returned by analyze when --fail-on is met. main maps it to
// exit status 1 without printing it.
var ErrFindings = errors.New("findings at or above the failure severity")

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "ambiguity-scan",
		Short: "Find ambiguous wording before text is handed to an AI rewriter",
		Long: `ambiguity-scan reads pre-split, pre-parsed sentences and reports wording that
a rewriter is likely to resolve wrongly: passive voice with no actor, pronouns
with several candidate referents, unsupported absolute claims and vague phrases
that invite invented detail.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (AMBIGUITY_SCAN_*)
3. Profile settings
4. Config file (.ambiguity-scan.yaml or the user config directory)
5. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: .ambiguity-scan.yaml, then the user config directory)")
	flags.Bool("debug", false, "debug logging")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("no-color", flags.Lookup("no-color"))
	_ = a.v.BindPFlag("log-level", flags.Lookup("log-level"))

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newAnalyzeCmd(a),
		newDetectorsCmd(a),
		newExceptionsCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads the config file and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	var cfg *config.Config
	if a.cfgFile != "" {
		loaded, err := config.LoadConfig(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.LoadConfigOrDefault("", func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Error loading config file: %v\n", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Using default configuration\n")
		})
	}
	a.cfg = cfg

	a.v.SetDefault("debug", cfg.Defaults.Debug)
	a.v.SetDefault("no-color", cfg.Defaults.NoColor)
	a.v.SetDefault("log-level", cfg.Logging.Level)

	level := a.v.GetString("log-level")
	if a.v.GetBool("debug") {
		level = "debug"
	}
	logger, err := observability.NewLogger(level, cfg.Logging.Format != "json")
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.logger = logger
	if a.cfgFile != "" {
		a.logger.Debug("using config file", zap.String("path", a.cfgFile))
	}
	return nil
}

func (a *app) observabilityLevel() observability.ObservabilityLevel {
	if a.v.GetBool("debug") {
		return observability.ObservabilityDebug
	}
	return observability.ObservabilityMetrics
}

// noColor reports whether output to w must be plain.
func (a *app) noColor(w io.Writer) bool {
	if a.v.GetBool("no-color") {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

// splitList splits a comma-separated flag value, treating "" as empty.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

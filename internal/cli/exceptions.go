// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"ambiguity-scan/internal/detector"
	"ambiguity-scan/internal/exceptions"
)

func newExceptionsCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "exceptions",
		Short: "Manage phrases that are never reported",
		Long: `Exception rules name phrases that a detector must not report. A rule belongs
to one category (claims, passive, pronoun, fabrication) or to the global
category, which applies to every detector.`,
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "exception rule file (default: from config)")

	load := func() (*exceptions.Filter, error) {
		path := file
		if path == "" {
			path = a.cfg.Exceptions.File
		}
		return exceptions.Load(path, exceptions.WithLogger(a.logger))
	}

	cmd.AddCommand(
		newExceptionsAddCmd(load),
		newExceptionsListCmd(load),
		newExceptionsRemoveCmd(load),
		newExceptionsCleanupCmd(load),
	)
	return cmd
}

type filterLoader func() (*exceptions.Filter, error)

func newExceptionsAddCmd(load filterLoader) *cobra.Command {
	var (
		category  string
		reason    string
		createdBy string
		expiresIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add <phrase>",
		Short: "Add an exception rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := load()
			if err != nil {
				return err
			}
			if createdBy == "" {
				if u, err := user.Current(); err == nil {
					createdBy = u.Username
				}
			}
			var expiresAt *time.Time
			if expiresIn > 0 {
				t := time.Now().Add(expiresIn).UTC().Truncate(time.Second)
				expiresAt = &t
			}

			rule, err := filter.AddException(args[0], detector.RuleCategory(category), reason, createdBy, expiresAt)
			if err != nil {
				return fmt.Errorf("adding exception: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exception %s for %q (%s)\n", rule.ID, rule.Phrase, rule.Category)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", string(detector.RuleGlobal), "rule category: global, claims, passive, pronoun, fabrication")
	cmd.Flags().StringVar(&reason, "reason", "", "why the phrase is acceptable")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "author of the rule (default: current user)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "expire the rule after this duration, e.g. 720h")
	return cmd
}

func newExceptionsListCmd(load filterLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exception rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rules := filter.ListExceptions()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No exception rules found.")
				return nil
			}

			fmt.Fprintf(out, "Found %d exception rules:\n\n", len(rules))
			for _, rule := range rules {
				fmt.Fprintf(out, "ID: %s\n", rule.ID)
				fmt.Fprintf(out, "Phrase: %s\n", rule.Phrase)
				fmt.Fprintf(out, "Category: %s\n", rule.Category)
				if rule.Match != "" {
					fmt.Fprintf(out, "Match: %s\n", rule.Match)
				}
				fmt.Fprintf(out, "Enabled: %t\n", rule.Enabled)
				if rule.Reason != "" {
					fmt.Fprintf(out, "Reason: %s\n", rule.Reason)
				}
				if rule.CreatedBy != "" {
					fmt.Fprintf(out, "Created By: %s\n", rule.CreatedBy)
				}
				fmt.Fprintf(out, "Created At: %s\n", rule.CreatedAt.Format("2006-01-02 15:04:05"))
				if rule.ExpiresAt != nil {
					fmt.Fprintf(out, "Expires At: %s\n", rule.ExpiresAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintln(out, "---")
			}
			return nil
		},
	}
}

func newExceptionsRemoveCmd(load filterLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an exception rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := load()
			if err != nil {
				return err
			}
			if err := filter.RemoveException(args[0]); err != nil {
				return fmt.Errorf("removing exception: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed exception rule: %s\n", args[0])
			return nil
		},
	}
}

func newExceptionsCleanupCmd(load filterLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired exception rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := load()
			if err != nil {
				return err
			}
			removed, err := filter.CleanupExpired()
			if err != nil {
				return fmt.Errorf("cleaning up exceptions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleaned up %d expired exception rules\n", removed)
			return nil
		},
	}
}

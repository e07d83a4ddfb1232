// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ambiguity-scan/internal/core"
	"ambiguity-scan/internal/help"
)

func newDetectorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "detectors [name]",
		Aliases: []string{"checks"},
		Short:   "List the detectors or describe one",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			system := help.NewSystem(a.noColor(out))
			for _, p := range core.HelpProviders() {
				system.RegisterProvider(p)
			}

			if len(args) == 0 {
				system.ShowChecksHelp(out)
				return nil
			}
			if !system.ShowCheckHelp(out, strings.ReplaceAll(args[0], "-", "_")) {
				return fmt.Errorf("unknown detector %q", args[0])
			}
			return nil
		},
	}
}

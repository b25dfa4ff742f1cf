/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/sportstore"
)

func NewVersion() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := sportstore.GetVersionInfo()
			if output != formatText {
				return encode(cmd.OutOrStdout(), output, info)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "sportstore version %s\n", info.Version)
			fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(w, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, yaml, json)")
	return cmd
}

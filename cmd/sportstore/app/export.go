/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/suparena/sportstore"
	"github.com/suparena/sportstore/storagemodels"
)

func NewExport(opts *Options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "dump every stored document, grouped by collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				dump := make(map[string][]storagemodels.Document)
				for _, et := range store.Registry().Types() {
					docs, err := store.Engine().List(ctx, et.Name)
					if err != nil {
						return err
					}
					if docs == nil {
						docs = []storagemodels.Document{}
					}
					dump[et.Name] = docs
				}
				return encode(cmd.OutOrStdout(), format, dump)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format (yaml, json)")
	return cmd
}

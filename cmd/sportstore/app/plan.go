/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/suparena/sportstore"
	"github.com/suparena/sportstore/datastore"
	storeerrors "github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/model"
	"github.com/suparena/sportstore/storagemodels"
)

func findPlan(ctx context.Context, ds *datastore.Datastore, ref string) (*model.RunningPlan, error) {
	id, err := storagemodels.ParseIdentifier(ref)
	if err != nil {
		return nil, err
	}
	p, ok, err := datastore.FindByIdentifier[*model.RunningPlan](ctx, ds, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storeerrors.NewNotFoundError(model.RunningPlansCollection, ref)
	}
	return p, nil
}

func NewPlan(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <cmd>",
		Short: "manage running plans",
	}
	cmd.AddCommand(newPlanAdd(opts))
	cmd.AddCommand(newPlanList(opts))
	cmd.AddCommand(newPlanDelete(opts))
	cmd.AddCommand(newPlanActivate(opts))
	return cmd
}

func newPlanAdd(opts *Options) *cobra.Command {
	var remarks, start string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "add a running plan and print its identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.NewRunningPlan(args[0])
			p.SetRemarks(remarks)
			if start != "" {
				d, err := parseDate(start)
				if err != nil {
					return err
				}
				p.SetStartDate(d)
			}
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				if err := store.Save(ctx, p); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Identifier())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&remarks, "remarks", "", "free text remarks")
	cmd.Flags().StringVar(&start, "start", "", "start date as YYYY-MM-DD")
	return cmd
}

func newPlanList(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list running plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				plans, err := datastore.FindAll[*model.RunningPlan](ctx, store.Datastore)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "IDENTIFIER\tNAME\tSTART\tCOMPLETED")
				for _, p := range plans {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", p.Identifier(), p.Name(), p.StartDate(), p.Completed())
				}
				return w.Flush()
			})
		},
	}
}

func newPlanDelete(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <identifier>",
		Short: "delete a running plan",
		Long: `
Deleting a plan leaves references to it in place; users whose active plan
was deleted simply have no resolvable active plan.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				p, err := findPlan(ctx, store.Datastore, args[0])
				if err != nil {
					return err
				}
				return store.Delete(ctx, p)
			})
		},
	}
}

func newPlanActivate(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <user identifier|email> <plan identifier|none>",
		Short: "set or clear the active running plan of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				u, err := findUser(ctx, store.Datastore, args[0])
				if err != nil {
					return err
				}
				if args[1] == "none" {
					u.SetActiveRunningPlanID(nil)
				} else {
					p, err := findPlan(ctx, store.Datastore, args[1])
					if err != nil {
						return err
					}
					id := p.Identifier()
					u.SetActiveRunningPlanID(&id)
				}
				return store.Update(ctx, u)
			})
		},
	}
}

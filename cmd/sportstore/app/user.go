/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/spf13/cobra"

	"github.com/suparena/sportstore"
	"github.com/suparena/sportstore/datastore"
	storeerrors "github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/model"
	"github.com/suparena/sportstore/storagemodels"
)

type userView struct {
	ID                  string `json:"identifier" yaml:"identifier"`
	FirstName           string `json:"firstName" yaml:"firstName"`
	LastName            string `json:"lastName" yaml:"lastName"`
	EmailAddress        string `json:"emailAddress" yaml:"emailAddress"`
	Birthday            string `json:"birthday" yaml:"birthday"`
	Age                 int    `json:"age" yaml:"age"`
	Gender              string `json:"gender" yaml:"gender"`
	TrainingLevel       string `json:"trainingLevel" yaml:"trainingLevel"`
	MaxPulse            int    `json:"maxPulse" yaml:"maxPulse"`
	ActiveRunningPlanID string `json:"activeRunningPlanId,omitempty" yaml:"activeRunningPlanId,omitempty"`
}

func viewUser(u *model.User, now time.Time) userView {
	v := userView{
		ID:            u.Identifier().String(),
		FirstName:     u.FirstName(),
		LastName:      u.LastName(),
		EmailAddress:  u.EmailAddress(),
		Birthday:      u.Birthday().String(),
		Age:           u.Age(now),
		Gender:        u.Gender().String(),
		TrainingLevel: u.TrainingLevel().String(),
		MaxPulse:      u.MaxPulse(),
	}
	if id := u.ActiveRunningPlanID(); id != nil {
		v.ActiveRunningPlanID = id.String()
	}
	return v
}

// findUser resolves an email address, or an identifier when ref has no @.
func findUser(ctx context.Context, ds *datastore.Datastore, ref string) (*model.User, error) {
	var (
		u   *model.User
		ok  bool
		err error
	)
	if strings.Contains(ref, "@") {
		u, ok, err = datastore.FindByUnique[*model.User](ctx, ds, model.UserEmailAddressKey, ref)
	} else {
		id, perr := storagemodels.ParseIdentifier(ref)
		if perr != nil {
			return nil, perr
		}
		u, ok, err = datastore.FindByIdentifier[*model.User](ctx, ds, id)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storeerrors.NewNotFoundError(model.UsersCollection, ref)
	}
	return u, nil
}

func parseDate(s string) (strfmt.Date, error) {
	var d strfmt.Date
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return d, storeerrors.NewValidationError("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return d, nil
}

func parseGender(name string) (model.Gender, error) {
	g, ok := model.ParseGender(name)
	if !ok {
		return 0, storeerrors.NewValidationError(model.UserGenderKey,
			fmt.Sprintf("unknown gender %q, expected unspecified, male, female or diverse", name))
	}
	return g, nil
}

func NewUser(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <cmd>",
		Short: "manage users",
	}
	cmd.AddCommand(newUserAdd(opts))
	cmd.AddCommand(newUserList(opts))
	cmd.AddCommand(newUserShow(opts))
	cmd.AddCommand(newUserSetGender(opts))
	cmd.AddCommand(newUserDelete(opts))
	return cmd
}

func newUserAdd(opts *Options) *cobra.Command {
	var first, last, email, gender, birthday string
	var maxPulse int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "add a user and print its identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := model.NewUser()
			if first != "" {
				u.SetFirstName(first)
			}
			if last != "" {
				u.SetLastName(last)
			}
			if email != "" {
				u.SetEmailAddress(email)
			}
			if gender != "" {
				g, err := parseGender(gender)
				if err != nil {
					return err
				}
				u.SetGender(g)
			}
			if birthday != "" {
				d, err := parseDate(birthday)
				if err != nil {
					return err
				}
				u.SetBirthday(d)
			}
			if maxPulse > 0 {
				u.SetMaxPulse(maxPulse)
			} else {
				u.SetMaxPulse(u.CalculateMaxPulse(time.Now()))
			}

			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				if err := store.Save(ctx, u); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.Identifier())
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&first, "first-name", "", "first name")
	flags.StringVar(&last, "last-name", "", "last name")
	flags.StringVar(&email, "email", "", "email address, unique across users")
	flags.StringVar(&gender, "gender", "", "unspecified, male, female or diverse")
	flags.StringVar(&birthday, "birthday", "", "birthday as YYYY-MM-DD")
	flags.IntVar(&maxPulse, "max-pulse", 0, "maximum pulse, derived from age and gender when unset")
	return cmd
}

func newUserList(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				users, err := datastore.FindAll[*model.User](ctx, store.Datastore)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "IDENTIFIER\tNAME\tEMAIL\tGENDER\tMAXPULSE")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%d\n",
						u.Identifier(), u.FirstName(), u.LastName(), u.EmailAddress(), u.Gender(), u.MaxPulse())
				}
				return w.Flush()
			})
		},
	}
}

func newUserShow(opts *Options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <identifier|email>",
		Short: "show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				u, err := findUser(ctx, store.Datastore, args[0])
				if err != nil {
					return err
				}
				return encode(cmd.OutOrStdout(), output, viewUser(u, time.Now()))
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatYAML, "output format (yaml, json)")
	return cmd
}

func newUserSetGender(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-gender <identifier|email> <gender>",
		Short: "change the gender of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseGender(args[1])
			if err != nil {
				return err
			}
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				u, err := findUser(ctx, store.Datastore, args[0])
				if err != nil {
					return err
				}
				if err := u.SetGenderStrict(g); err != nil {
					return err
				}
				return store.Update(ctx, u)
			})
		},
	}
}

func newUserDelete(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <identifier|email>",
		Short: "delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *sportstore.Store) error {
				u, err := findUser(ctx, store.Datastore, args[0])
				if err != nil {
					return err
				}
				return store.Delete(ctx, u)
			})
		},
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/sportstore"
	"github.com/suparena/sportstore/config"
	"github.com/suparena/sportstore/logger"
)

// Options are the flags shared by every command.
type Options struct {
	configDir string
	engine    string
	path      string
	logLevel  string
}

// Open loads the configuration, applies flag overrides and opens the store.
func (o *Options) Open(ctx context.Context) (*sportstore.Store, *zap.Logger, error) {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return nil, nil, err
	}
	if o.engine != "" {
		cfg.Store.Engine = o.engine
	}
	if o.path != "" {
		cfg.Store.Path = o.path
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	store, err := sportstore.Open(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return store, log, nil
}

// withStore runs fn on an opened store and closes it afterwards.
func (o *Options) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *sportstore.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, log, err := o.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
		_ = log.Sync()
	}()
	return fn(ctx, store)
}

func New() *cobra.Command {
	opts := &Options{}

	maincmd := &cobra.Command{
		Use:   "sportstore <options> <cmd> <args>",
		Short: "manage athletes and running plans",
		Long: `
This command manages the users and running plans kept by sportstore.
Settings are read from sportstore.yaml, a .env file and SPORTSTORE_*
environment variables; the flags below override them.
`,
		SilenceUsage: true,
	}

	flags := maincmd.PersistentFlags()
	flags.StringVarP(&opts.configDir, "config-dir", "c", ".", "directory holding sportstore.yaml and .env")
	flags.StringVarP(&opts.engine, "engine", "e", "", "storage engine (memory, sqlite, dynamodb)")
	flags.StringVarP(&opts.path, "path", "p", "", "sqlite database file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level")

	maincmd.AddCommand(NewVersion())
	maincmd.AddCommand(NewUser(opts))
	maincmd.AddCommand(NewPlan(opts))
	maincmd.AddCommand(NewExport(opts))
	return maincmd
}

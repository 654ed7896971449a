// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/authorcheck/internal/audit"
	"github.com/pdiddy/authorcheck/internal/logging"
)

func runScan(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper(), args[0])
	if err != nil {
		return err
	}

	base, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log := logging.ForRun(base)

	deps, err := audit.NewDependencies(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := audit.Run(ctx, cfg, deps)
	if err != nil {
		return err
	}
	return writeSummary(cmd.OutOrStdout(), res, format)
}

/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airwavefm/airwave/internal/db"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/schedule"
	"github.com/airwavefm/airwave/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load a programming grid from a YAML seed file",
	Long: `Load voice profiles, programs and the weekly time grid from a YAML
seed file. Existing entries are updated in place; overlapping time
slots are skipped with a warning.

Example:
  airwave seed ./deploy/programming.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	st := store.New(database, nil, events.NewBus(), logger)
	if err := schedule.Seed(cmd.Context(), args[0], st, logger); err != nil {
		return fmt.Errorf("seed programming grid: %w", err)
	}

	return nil
}

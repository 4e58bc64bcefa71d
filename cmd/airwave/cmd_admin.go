/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/airwavefm/airwave/internal/auth"
	"github.com/airwavefm/airwave/internal/db"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/store"
)

var adminEmail string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an operator account",
	Long: `Create an operator account for the admin API.

The password is read from the terminal, never from flags or arguments.
If the account already exists the command is a no-op.

Example:
  airwave create-admin --email ops@example.com`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address for the new account")
	_ = createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	st := store.New(database, nil, events.NewBus(), logger)
	authn := auth.NewAuthenticator(st, []byte(cfg.JWTSigningKey), auth.DefaultTokenTTL)

	if err := authn.Bootstrap(cmd.Context(), adminEmail, string(password)); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("operator account ready: %s\n", adminEmail)
	return nil
}

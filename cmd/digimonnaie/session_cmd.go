package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/digimonnaie/console/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored credentials",
	Long:  "Clear the stored token and user. A running console returns to the login form.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !store.Authenticated() {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		fmt.Fprintf(out, "user: %s\ntoken: present\nsession file: %s\n", store.UserID(), store.Path())
		return nil
	},
}

func openStore(cmd *cobra.Command) (*session.Manager, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := setupLogging(cfg); err != nil {
		return nil, err
	}
	store, err := session.Open(cfg.Session.StateDir)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	return store, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %v", d)
	}
	return d, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ankisync/internal/ankiconnect"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that AnkiConnect is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := ankiconnect.New(ankiconnect.NewHTTPTransport(cfg.Store, nil), cfg.Store, cfg.NoteType)
		v, err := client.Version(cmd.Context())
		if err != nil {
			return fmt.Errorf("AnkiConnect at %s: %w", cfg.Store.Endpoint, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "AnkiConnect reachable at %s (API version %d)\n", cfg.Store.Endpoint, v)
		if v < cfg.Store.Version {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: add-on speaks version %d, configured %d\n", v, cfg.Store.Version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ankisync/internal/secrets"
	"github.com/pdiddy/ankisync/pkg/types"
)

// setDefaults registers every config key so environment variables resolve
// even when no config file sets them.
func setDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("store.endpoint", d.Store.Endpoint)
	viper.SetDefault("store.version", d.Store.Version)
	viper.SetDefault("store.api_key", "")
	viper.SetDefault("store.timeout", d.Store.Timeout)
	viper.SetDefault("store.max_retries", d.Store.MaxRetries)
	viper.SetDefault("extract.default_deck", d.Extract.DefaultDeck)
	viper.SetDefault("extract.question_markers", d.Extract.QuestionMarkers)
	viper.SetDefault("extract.answer_markers", d.Extract.AnswerMarkers)
	viper.SetDefault("note_type", d.NoteType)
	viper.SetDefault("notes_dir", d.NotesDir)
	viper.SetDefault("asset_root", d.AssetRoot)
	viper.SetDefault("extension", d.Extension)
	viper.SetDefault("state_dir", d.StateDir)
	viper.SetDefault("sanitize", d.Sanitize)
	viper.SetDefault("secrets_dir", ".secrets")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.dir", "")
}

// configureEnv maps nested keys to ANKISYNC_ variables, e.g.
// store.endpoint to ANKISYNC_STORE_ENDPOINT.
func configureEnv() {
	viper.SetEnvPrefix("ANKISYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// bindFlags binds the named flags of cmd to config keys. Binding happens
// when a command runs so commands sharing a key do not shadow each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// loadConfig builds the effective configuration from defaults, config file,
// environment and flags, then validates it.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Store.APIKey == "" {
		cfg.Store.APIKey = loadedSecrets[secrets.AnkiConnectKey]
	}

	cfg.NotesDir = expandPath(cfg.NotesDir)
	cfg.AssetRoot = expandPath(cfg.AssetRoot)
	cfg.StateDir = expandPath(cfg.StateDir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config resolves defaults, the config file, ANKISYNC_* environment
variables and flags, validates the result and prints it. The API key is
redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Store.APIKey != "" {
			cfg.Store.APIKey = "<redacted>"
		}
		return writeYAML(cmd, cfg)
	},
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ankisync CLI. It publishes
// question/answer notes as cards to Anki through AnkiConnect and scaffolds
// new question notes from question lists.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ankisync/internal/logging"
	"github.com/pdiddy/ankisync/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds keys loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// closeLog releases the log file opened by the root command, if any.
var closeLog func() error

// rootCmd is the base command for the ankisync CLI.
var rootCmd = &cobra.Command{
	Use:   "ankisync",
	Short: "Publish question/answer notes to Anki",
	Long: `ankisync turns a tree of Markdown study notes into Anki cards. Each note
holds one or more "## Question" / "## Answer" sections and optional deck and
tag front-matter. Markup, tables, code, LaTeX and embedded images are
converted to card HTML and submitted through the AnkiConnect add-on.

The scaffold command generates numbered question notes from question lists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := logging.Setup(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			Dir:    expandPath(viper.GetString("log.dir")),
		})
		if err != nil {
			return err
		}
		closeLog = cleanup

		s, err := secrets.Load(expandPath(viper.GetString("secrets_dir")))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logging.L().Debug("loaded secrets", "count", len(s))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(func() {
		if closeLog != nil {
			closeLog()
		}
	})

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ankisync.yaml or ~/.config/ankisync/ankisync.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("endpoint", "", "AnkiConnect URL (default http://127.0.0.1:8765)")

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("store.endpoint", pf.Lookup("endpoint"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(expandPath(cfgFile))
	} else {
		viper.SetConfigName("ankisync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ankisync"))
		}
	}

	configureEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ankisync/internal/secrets"
	"github.com/pdiddy/ankisync/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	configureEnv()
	loadedSecrets = nil
	t.Cleanup(func() {
		viper.Reset()
		loadedSecrets = nil
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetConfig(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultEndpoint, cfg.Store.Endpoint)
	assert.Equal(t, types.DefaultAPIVersion, cfg.Store.Version)
	assert.Equal(t, types.DefaultTimeout, cfg.Store.Timeout)
	assert.Equal(t, types.DefaultNoteType, cfg.NoteType)
	assert.Equal(t, types.DefaultQuestionMarkers, cfg.Extract.QuestionMarkers)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	resetConfig(t)
	t.Setenv("ANKISYNC_STORE_ENDPOINT", "http://anki.local:9000")
	t.Setenv("ANKISYNC_STORE_TIMEOUT", "5s")
	t.Setenv("ANKISYNC_NOTE_TYPE", "Basic (and reversed card)")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://anki.local:9000", cfg.Store.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "Basic (and reversed card)", cfg.NoteType)
}

func TestLoadConfig_File(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "ankisync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  max_retries: 5
extract:
  default_deck: Inbox
asset_root: media
sanitize: true
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Store.MaxRetries)
	assert.Equal(t, "Inbox", cfg.Extract.DefaultDeck)
	assert.Equal(t, "media", cfg.AssetRoot)
	assert.True(t, cfg.Sanitize)
	assert.Equal(t, types.DefaultEndpoint, cfg.Store.Endpoint)
}

func TestLoadConfig_SecretKey(t *testing.T) {
	resetConfig(t)
	loadedSecrets = map[string]string{secrets.AnkiConnectKey: "k3y"}

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "k3y", cfg.Store.APIKey)

	t.Setenv("ANKISYNC_STORE_API_KEY", "from-env")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Store.APIKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	resetConfig(t)
	viper.Set("note_type", "")

	_, err := loadConfig()
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	resetConfig(t)
	viper.Set("state_dir", "~/ankisync-state")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.StateDir), cfg.StateDir)
	assert.Equal(t, "ankisync-state", filepath.Base(cfg.StateDir))
}

func TestConfigCmd_RedactsKey(t *testing.T) {
	resetConfig(t)
	viper.Set("store.api_key", "secret")

	var buf bytes.Buffer
	configCmd.SetOut(&buf)
	t.Cleanup(func() { configCmd.SetOut(nil) })

	require.NoError(t, configCmd.RunE(configCmd, nil))
	assert.Contains(t, buf.String(), "api_key: <redacted>")
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), "endpoint: http://127.0.0.1:8765")
}

func TestStateDirDefaultsAgree(t *testing.T) {
	history := historyCmd.PersistentFlags().Lookup("state-dir")
	sync := syncCmd.Flags().Lookup("state-dir")
	require.NotNil(t, history)
	require.NotNil(t, sync)

	assert.Equal(t, types.DefaultStateDir, history.DefValue)
	assert.Equal(t, sync.DefValue, history.DefValue)
}

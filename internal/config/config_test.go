package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: "abc123"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.Discord.Token)
	assert.Equal(t, "127.0.0.1", cfg.Server.ListenAddr)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "/var/lib/killfeed/killfeed.db", cfg.Database.Path)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, 4222, cfg.NATS.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "/var/lib/killfeed/assets", cfg.Assets.Dir)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: "abc123"
  guild_id: "g1"
server:
  listen_addr: "0.0.0.0"
  http_port: 9090
database:
  path: "/tmp/killfeed.db"
nats:
  embedded: true
  port: 14222
auth:
  jwt_secret: "secret"
  token_duration: 1h
assets:
  dir: "/opt/assets"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "g1", cfg.Discord.GuildID)
	assert.Equal(t, "0.0.0.0", cfg.Server.ListenAddr)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "/tmp/killfeed.db", cfg.Database.Path)
	assert.True(t, cfg.NATS.Embedded)
	assert.Equal(t, 14222, cfg.NATS.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "/opt/assets", cfg.Assets.Dir)
}

func TestLoadRequiresToken(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9090
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord.token")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := &Config{}
	cfg.Discord.Token = "abc123"
	cfg.ApplyDefaults()
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config holds the bot token")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

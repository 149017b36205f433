package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempHome points forgeDir at a fresh directory for one test.
func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := homeOverride
	homeOverride = ""
	t.Cleanup(func() { homeOverride = prev })
	t.Setenv("DECKFORGE_HOME", dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	home := useTempHome(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DefaultPartyCount, cfg.PartyCount)
	assert.Equal(t, DefaultPartyLabel, cfg.PartyLabel)
	assert.Equal(t, "sqlite", cfg.DeckStore.Driver)
	assert.Equal(t, filepath.Join(home, "decks.db"), cfg.DeckStore.Path)
	assert.Equal(t, filepath.Join(home, "captures"), cfg.Capture.Dir)
	assert.Equal(t, ":8088", cfg.Server.Addr)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	home := useTempHome(t)
	data := `party_count: 4
party_label: "Team %d"
author: file-author
deck_store:
  driver: http
  url: http://decks.example
capture:
  scale: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(data), 0644))
	t.Setenv("DECKFORGE_AUTHOR", "env-author")
	t.Setenv("DECKFORGE_DECK_TOKEN", "s3cret")
	t.Setenv("DECKFORGE_PARTY_COUNT", "6")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 6, cfg.PartyCount)
	assert.Equal(t, "Team %d", cfg.PartyLabel)
	assert.Equal(t, "env-author", cfg.Author)
	assert.Equal(t, "http", cfg.DeckStore.Driver)
	assert.Equal(t, "http://decks.example", cfg.DeckStore.URL)
	assert.Equal(t, "s3cret", cfg.DeckStore.Token)
	assert.Equal(t, 3, cfg.Capture.Scale)
	assert.Equal(t, "#1a1614", cfg.Capture.Background)
}

func TestLoadConfigBadEnv(t *testing.T) {
	useTempHome(t)
	t.Setenv("DECKFORGE_PARTY_COUNT", "many")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	useTempHome(t)
	cfg := DefaultConfig()
	cfg.Author = "saved"
	cfg.PartyCount = 2

	require.NoError(t, SaveConfig(cfg))
	loaded, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Author)
	assert.Equal(t, 2, loaded.PartyCount)
}

func TestHomeOverrideWins(t *testing.T) {
	useTempHome(t)
	homeOverride = "/tmp/elsewhere"
	assert.Equal(t, filepath.Join("/tmp/elsewhere", "parties.yaml"), partiesPath())
}

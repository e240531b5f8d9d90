package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/recognizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadDir(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Missing)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "grammars", cfg.Training.GrammarDir)
	assert.Equal(t, recognizer.DefaultMaxPaths, cfg.Recognition.MaxPaths)
	assert.True(t, cfg.Recognition.Lower)
	assert.Equal(t, filepath.Join(dir, "intent.fst"), cfg.Path(cfg.Training.IntentFST))
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	t.Setenv("LATTICE_TEST_REDIS", "localhost:6380")
	dir := t.TempDir()
	testutils.WriteFile(t, filepath.Join(dir, config.DefaultFile), `
log_level: debug
training:
  fst_dir: out/fsts
  workers: "4"
  whitelist: [GetTime]
recognition:
  fuzzy: true
  skip_unknown: true
  stop_words: [please, the]
  max_paths: 50
redis:
  addr: ${LATTICE_TEST_REDIS}
  ttl: 1m
`)

	cfg, err := config.LoadDir(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Missing)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Untouched keys keep their defaults
	assert.Equal(t, "grammars", cfg.Training.GrammarDir)
	assert.Equal(t, "out/fsts", cfg.Training.FSTDir)
	assert.Equal(t, 4, cfg.Training.Workers)
	assert.Equal(t, ":12101", cfg.Server.Addr)

	assert.Equal(t, recognizer.Config{
		Lower:       true,
		Fuzzy:       true,
		SkipUnknown: true,
		StopWords:   []string{"please", "the"},
		MaxPaths:    50,
	}, cfg.Recognition.Config)

	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "lattice:fst:", cfg.Redis.Prefix)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "training:\n  grammar_folder: x\n"},
		{"negative workers", "training:\n  workers: -1\n"},
		{"bad yaml", "training: [\n"},
		{"bad duration", "redis:\n  ttl: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutils.WriteFile(t, filepath.Join(dir, config.DefaultFile), tt.yaml)
			_, err := config.LoadDir(dir)
			assert.Error(t, err)
		})
	}
}

func TestRecognizerConfig_StopWordsFile(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, filepath.Join(dir, config.DefaultFile), `
recognition:
  stop_words: [please]
  stop_words_file: stop_words.txt
`)
	testutils.WriteFile(t, filepath.Join(dir, "stop_words.txt"), "# fillers\nthe\n\nuh\n")

	cfg, err := config.LoadDir(dir)
	require.NoError(t, err)
	rc, err := cfg.RecognizerConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"please", "the", "uh"}, rc.StopWords)
	assert.Equal(t, []string{"please"}, cfg.Recognition.StopWords)
}

func TestWhitelist(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, filepath.Join(dir, config.DefaultFile), `
training:
  whitelist: [GetTime]
  whitelist_file: whitelist
`)
	testutils.WriteFile(t, filepath.Join(dir, "whitelist"), "SetTimer\n")

	cfg, err := config.LoadDir(dir)
	require.NoError(t, err)
	names, err := cfg.Whitelist()
	require.NoError(t, err)
	assert.Equal(t, []string{"GetTime", "SetTimer"}, names)

	cfg.Training.WhitelistFile = "absent"
	names, err = cfg.Whitelist()
	require.NoError(t, err)
	assert.Equal(t, []string{"GetTime"}, names)
}

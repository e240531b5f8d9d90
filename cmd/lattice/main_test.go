package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompileAndRecognize(t *testing.T) {
	dir := testutils.WriteProfileDir(t)

	_, err := run(t, "compile", "--profile", dir, "-q")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "intent.fst"))

	out, err := run(t, "recognize", "--profile", dir, "what time is it")
	require.NoError(t, err)
	assert.Contains(t, out, `"GetTime"`)
}

func TestValidate_ReportsFailures(t *testing.T) {
	dir := testutils.WriteProfileDir(t)
	testutils.WriteFile(t, filepath.Join(dir, "grammars", "Broken.gram"), "public <Broken> = [never closed;")

	out, err := run(t, "validate", "--profile", dir)
	require.Error(t, err)
	assert.Contains(t, out, "Broken")
	assert.NoFileExists(t, filepath.Join(dir, "intent.fst"))
}

func TestSentences_WritesGrammars(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sentences.ini")
	testutils.WriteFile(t, src, "[Greet]\nhello there\n")
	out := filepath.Join(dir, "out")

	_, err := run(t, "sentences", "--profile", dir, src, "--out", out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "Greet.gram"))
}

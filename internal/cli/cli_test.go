package cli_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/recognizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentencesINI = `[Greet]
hello there
good (morning | evening)
`

func profile(t *testing.T) *config.Config {
	t.Helper()
	root := testutils.WriteProfileDir(t)
	testutils.WriteFile(t, filepath.Join(root, "sentences.ini"), sentencesINI)
	cfg, err := config.LoadDir(root)
	require.NoError(t, err)
	return cfg
}

func TestCompile_WritesOutputs(t *testing.T) {
	cfg := profile(t)

	report, err := cli.Compile(context.Background(), cfg, cli.CompileOptions{})
	require.NoError(t, err)
	require.NoError(t, report.BuildErr)
	assert.Len(t, report.Result.Intents, 5)

	assert.FileExists(t, cfg.Path("intent.fst"))
	for _, name := range []string{"ChangeLight", "ChangeLightColor", "GetTime", "Greet", "SetTimer"} {
		assert.FileExists(t, filepath.Join(cfg.Path("fsts"), name+".fst"))
	}

	vocab, err := config.ReadList(cfg.Path("vocab.txt"))
	require.NoError(t, err)
	assert.Equal(t, report.Result.Vocabulary, vocab)
	assert.Contains(t, vocab, "evening")
}

func TestCompile_ThenRecognize(t *testing.T) {
	cfg := profile(t)
	ctx := context.Background()

	_, err := cli.Compile(ctx, cfg, cli.CompileOptions{})
	require.NoError(t, err)

	rec, err := cli.OpenRecognizer(ctx, cfg, nil, nil)
	require.NoError(t, err)

	got, err := rec.Recognize("Good Evening")
	require.NoError(t, err)
	assert.Equal(t, "Greet", got.Intent.Name)

	got, err = rec.Recognize("set a timer for ten minutes and forty two seconds")
	require.NoError(t, err)
	assert.Equal(t, "SetTimer", got.Intent.Name)
	assert.Equal(t, map[string]string{"minutes": "10", "seconds": "40 2"}, got.Slots)
}

func TestCompile_PartialFailureStillWrites(t *testing.T) {
	cfg := profile(t)
	testutils.WriteFile(t, filepath.Join(cfg.Path("grammars"), "Broken.gram"), "public <Broken> = [never closed;")

	report, err := cli.Compile(context.Background(), cfg, cli.CompileOptions{})
	require.NoError(t, err)

	var be *compiler.BuildError
	require.ErrorAs(t, report.BuildErr, &be)
	assert.Equal(t, []string{"Broken"}, be.Grammars())
	assert.Len(t, report.Result.Intents, 5)
	assert.FileExists(t, cfg.Path("intent.fst"))
	assert.NoFileExists(t, filepath.Join(cfg.Path("fsts"), "Broken.fst"))
}

func TestCompile_Whitelist(t *testing.T) {
	cfg := profile(t)
	cfg.Training.Whitelist = []string{"ChangeLight"}

	report, err := cli.Compile(context.Background(), cfg, cli.CompileOptions{})
	require.NoError(t, err)
	require.NoError(t, report.BuildErr)

	intents := make([]string, 0)
	for name := range report.Result.Intents {
		intents = append(intents, name)
	}
	assert.ElementsMatch(t, []string{"ChangeLight", "ChangeLightColor"}, intents)
	assert.Equal(t, []string{"GetTime", "Greet", "SetTimer"}, report.Result.Skipped)
}

func TestCompile_MirrorRemovesStaleArtifacts(t *testing.T) {
	cfg := profile(t)
	stale := filepath.Join(cfg.Path("fsts"), "Retired.fst")
	empty := fst.New(nil, nil)
	var buf bytes.Buffer
	require.NoError(t, empty.Encode(&buf))
	testutils.WriteFile(t, stale, buf.String())

	_, err := cli.Compile(context.Background(), cfg, cli.CompileOptions{})
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestCompile_PublishAndDryRun(t *testing.T) {
	cfg := profile(t)
	store := memory.NewStore()
	ctx := context.Background()

	report, err := cli.Compile(ctx, cfg, cli.CompileOptions{Publish: store, DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.NoFileExists(t, cfg.Path("intent.fst"))
	names, _ := store.List(ctx)
	assert.Empty(t, names)

	report, err = cli.Compile(ctx, cfg, cli.CompileOptions{Publish: store})
	require.NoError(t, err)
	assert.Contains(t, report.Written, "store:"+cli.IntentArtifact)

	rec, err := cli.OpenRecognizer(ctx, cfg, store, nil)
	require.NoError(t, err)
	got, err := rec.Recognize("tell me the time")
	require.NoError(t, err)
	assert.Equal(t, "GetTime", got.Intent.Name)
}

func TestCompile_InvalidSentences(t *testing.T) {
	cfg := profile(t)
	testutils.WriteFile(t, cfg.Path("sentences.ini"), "orphan sentence\n")

	_, err := cli.Compile(context.Background(), cfg, cli.CompileOptions{})
	assert.ErrorIs(t, err, domain.ErrGrammarSyntax)
}

func TestOpenRecognizer_MissingArtifact(t *testing.T) {
	cfg := profile(t)
	_, err := cli.OpenRecognizer(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestRecognizeLines(t *testing.T) {
	res := testutils.Build(t, "GetTime", "ChangeLight", "ChangeLightColor")
	rec := recognizer.New(res.Merged, recognizer.Config{})

	input := strings.Join([]string{
		"what time is it",
		"",
		`{"text": "turn on light"}`,
		`{"text": 1}`,
		`{"utterance": "turn on light"}`,
		`{not json`,
		"   ",
		"open the pod bay doors",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, cli.RecognizeLines(context.Background(), rec, strings.NewReader(input), &out))

	var reports []domain.Report
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var rep domain.Report
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rep))
		reports = append(reports, rep)
	}
	require.Len(t, reports, 6)

	assert.Equal(t, "GetTime", reports[0].Intent.Name)
	assert.Equal(t, "ChangeLight", reports[1].Intent.Name)
	assert.Equal(t, "on", reports[1].Slots["state"])
	for _, rep := range reports[2:5] {
		assert.Empty(t, rep.Intent.Name)
		assert.NotEmpty(t, rep.Error)
	}
	assert.Empty(t, reports[5].Intent.Name)
	assert.Empty(t, reports[5].Error)
}

func TestRecognizeLines_StopsOnCancel(t *testing.T) {
	res := testutils.Build(t, "GetTime")
	rec := recognizer.New(res.Merged, recognizer.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := cli.RecognizeLines(ctx, rec, strings.NewReader("what time is it\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestArtifactStore_DisabledWithoutAddr(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, cli.ArtifactStore(cfg))
}

func TestSetup_MissingProfile(t *testing.T) {
	cfg, logger, err := cli.Setup(t.TempDir(), false)
	require.NoError(t, err)
	assert.True(t, cfg.Missing)
	assert.NotNil(t, logger)
}

package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/recognizer"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, cfg recognizer.Config) *Server {
	t.Helper()
	res := testutils.Build(t, "GetTime", "ChangeLight", "ChangeLightColor")
	return NewServer(recognizer.New(res.Merged, cfg), nil)
}

func TestHandleRecognize(t *testing.T) {
	s := newServer(t, recognizer.Config{})

	resp, err := s.handleRecognize(context.Background(), mcp.CallToolRequest{}, RecognizeArgs{Text: "turn off light"})
	require.NoError(t, err)
	assert.Equal(t, "ChangeLight", resp.Intent)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, map[string]string{"state": "off"}, resp.Slots)
	require.Len(t, resp.Entities, 1)
	assert.Equal(t, "state", resp.Entities[0].Entity)
	assert.False(t, resp.Fuzzy)
	assert.Empty(t, resp.Error)
}

func TestHandleRecognize_Fuzzy(t *testing.T) {
	s := newServer(t, recognizer.Config{Fuzzy: true, StopWords: []string{"please"}})

	resp, err := s.handleRecognize(context.Background(), mcp.CallToolRequest{}, RecognizeArgs{Text: "please what time is it"})
	require.NoError(t, err)
	assert.Equal(t, "GetTime", resp.Intent)
	assert.True(t, resp.Fuzzy)
}

func TestHandleRecognize_EmptyUtterance(t *testing.T) {
	s := newServer(t, recognizer.Config{})

	resp, err := s.handleRecognize(context.Background(), mcp.CallToolRequest{}, RecognizeArgs{Text: ""})
	require.NoError(t, err)
	assert.Empty(t, resp.Intent)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleVocabulary(t *testing.T) {
	s := newServer(t, recognizer.Config{})

	contents, err := s.handleVocabulary(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, VocabularyURI, text.URI)
	words := strings.Split(text.Text, "\n")
	assert.Contains(t, words, "lamp")
	assert.Contains(t, words, "time")
}

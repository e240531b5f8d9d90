package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/lattice/internal/testutils"
	httpAdapter "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/recognizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newHandler(t *testing.T, opts ...httpAdapter.Option) http.Handler {
	t.Helper()
	res := testutils.Build(t, "GetTime", "SetTimer", "ChangeLight", "ChangeLightColor")
	return httpAdapter.NewHandler(recognizer.New(res.Merged, recognizer.Config{Lower: true}), opts...)
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) domain.Report {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var rep domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	return rep
}

func TestRecognize_JSONBody(t *testing.T) {
	handler := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader(`{"text": "What time is it"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	rep := decodeReport(t, w)
	assert.Equal(t, "GetTime", rep.Intent.Name)
	assert.Equal(t, 1.0, rep.Intent.Confidence)
	assert.Equal(t, "what time is it", rep.Text)
	assert.Empty(t, rep.Error)
}

func TestRecognize_PlainBody(t *testing.T) {
	handler := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader("turn on lamp\n"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	rep := decodeReport(t, w)
	assert.Equal(t, "ChangeLight", rep.Intent.Name)
	assert.Equal(t, map[string]string{"state": "on"}, rep.Slots)
}

func TestRecognize_NoMatch(t *testing.T) {
	handler := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader("make me a sandwich"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	rep := decodeReport(t, w)
	assert.Equal(t, "", rep.Intent.Name)
	assert.Equal(t, 0.0, rep.Intent.Confidence)
	assert.Empty(t, rep.Error)
}

func TestRecognize_EmptyUtteranceReportedInline(t *testing.T) {
	handler := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader(`{"text": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	rep := decodeReport(t, w)
	assert.Equal(t, "", rep.Intent.Name)
	assert.NotEmpty(t, rep.Error)
}

func TestRecognize_InvalidJSON(t *testing.T) {
	handler := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader(`{"text":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecognize_BodyTooLarge(t *testing.T) {
	handler := newHandler(t, httpAdapter.WithMaxBodyBytes(8))

	req := httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader("what time is it"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVocabulary(t *testing.T) {
	handler := newHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vocabulary", nil))

	require.Equal(t, http.StatusOK, w.Code)
	words := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Contains(t, words, "time")
	assert.Contains(t, words, "lamp")
	assert.Contains(t, words, "purple")
	assert.NotContains(t, words, domain.Epsilon)
}

func TestHealthAndCORS(t *testing.T) {
	handler := newHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/recognize", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	metrics := observability.New()
	res := testutils.Build(t, "GetTime")
	rec := recognizer.New(res.Merged, recognizer.Config{}, recognizer.WithObserver(metrics))
	handler := httpAdapter.NewHandler(rec, httpAdapter.WithMetrics(metrics.Handler()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recognize", strings.NewReader("what time is it")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `lattice_recognitions_total{mode="exact",status="match"} 1`)
}

func TestMetrics_NotMountedByDefault(t *testing.T) {
	handler := newHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	handler := newHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpAdapter.Serve(ctx, "127.0.0.1:0", handler, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

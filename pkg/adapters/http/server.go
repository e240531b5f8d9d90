package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 64 << 10

// Recognizer is the part of the recognizer the server needs.
type Recognizer interface {
	Recognize(text string) (domain.Recognition, error)
	Vocabulary() []string
}

// RecognizeRequest is the JSON body of POST /recognize.
type RecognizeRequest struct {
	Text string `json:"text"`
}

type server struct {
	rec     Recognizer
	metrics http.Handler
	logger  *slog.Logger
	maxBody int64
}

// Option configures the handler.
type Option func(*server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *server) { s.maxBody = n }
}

// NewHandler creates the HTTP handler serving rec.
func NewHandler(rec Recognizer, opts ...Option) http.Handler {
	s := &server{
		rec:     rec,
		logger:  logging.NewNop(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/recognize", s.recognize)
	r.Get("/vocabulary", s.vocabulary)
	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recognize accepts {"text": ...} as JSON or the utterance as a plain body.
func (s *server) recognize(w http.ResponseWriter, r *http.Request) {
	text, err := s.readText(w, r)
	if err != nil {
		s.logger.Warn("recognize: invalid request body", "err", err)
		writeJSON(w, s.logger, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec, err := s.rec.Recognize(text)
	if err != nil && !errors.As(err, new(*domain.RecognitionError)) {
		s.logger.Error("recognize failed", "err", err)
		writeJSON(w, s.logger, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, s.logger, http.StatusOK, domain.NewReport(rec, err))
}

func (s *server) readText(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req RecognizeRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return "", fmt.Errorf("invalid JSON body: %w", err)
		}
		return req.Text, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), nil
}

func (s *server) vocabulary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	words := s.rec.Vocabulary()
	if len(words) == 0 {
		return
	}
	if _, err := io.WriteString(w, strings.Join(words, "\n")+"\n"); err != nil {
		s.logger.Error("vocabulary response write failed", "err", err)
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down, giving in-flight requests up to five seconds.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		<-serverErrors
		return nil
	}
}

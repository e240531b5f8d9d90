package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VocabularyURI names the vocabulary resource.
const VocabularyURI = "lattice://vocabulary"

// Recognizer is the part of the recognizer the MCP server needs.
type Recognizer interface {
	Recognize(text string) (domain.Recognition, error)
	Vocabulary() []string
}

// RecognizeArgs are the arguments of the recognize tool.
type RecognizeArgs struct {
	Text string `json:"text"`
}

// RecognizeResponse is the structured result of the recognize tool.
type RecognizeResponse struct {
	Intent     string            `json:"intent" jsonschema_description:"Recognized intent name, empty when nothing matched"`
	Confidence float64           `json:"confidence" jsonschema_description:"Confidence of the primary interpretation"`
	Text       string            `json:"text" jsonschema_description:"Recognized sentence with rewrites applied"`
	Slots      map[string]string `json:"slots" jsonschema_description:"Entity values by name"`
	Entities   []domain.Entity   `json:"entities" jsonschema_description:"Tagged spans of the recognized sentence"`
	Fuzzy      bool              `json:"fuzzy" jsonschema_description:"Set when approximate matching produced the result"`
	Error      string            `json:"error,omitempty" jsonschema_description:"Why the utterance could not be processed"`
}

// Server exposes a recognizer as an MCP server.
type Server struct {
	rec       Recognizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(rec Recognizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		rec:       rec,
		logger:    logger,
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
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

		s.logger.Info("MCP Server shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	recognizeTool := mcp.NewTool("recognize",
		mcp.WithDescription("Recognize the intent and slots of a spoken or typed command."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The utterance to recognize")),
		mcp.WithOutputSchema[RecognizeResponse](),
	)
	s.mcpServer.AddTool(recognizeTool, mcp.NewStructuredToolHandler(s.handleRecognize))
}

func (s *Server) handleRecognize(ctx context.Context, request mcp.CallToolRequest, args RecognizeArgs) (RecognizeResponse, error) {
	rec, err := s.rec.Recognize(args.Text)
	if err != nil && !errors.As(err, new(*domain.RecognitionError)) {
		return RecognizeResponse{}, fmt.Errorf("recognize failed: %w", err)
	}

	resp := RecognizeResponse{
		Intent:     rec.Intent.Name,
		Confidence: rec.Intent.Confidence,
		Text:       rec.Text,
		Slots:      rec.Slots,
		Entities:   rec.Entities,
		Fuzzy:      rec.Fuzzy,
	}
	if err != nil {
		s.logger.Warn("MCP recognize: utterance rejected", "err", err)
		resp.Error = err.Error()
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(VocabularyURI, "Recognizer Vocabulary",
		mcp.WithMIMEType("text/plain"),
	), s.handleVocabulary)
}

func (s *Server) handleVocabulary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      VocabularyURI,
			MIMEType: "text/plain",
			Text:     strings.Join(s.rec.Vocabulary(), "\n"),
		},
	}, nil
}

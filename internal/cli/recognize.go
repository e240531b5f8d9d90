package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/recognizer"
)

// maxLine bounds one input line.
const maxLine = 1 << 20

// Recognizer interprets one utterance.
type Recognizer interface {
	Recognize(text string) (domain.Recognition, error)
}

type line struct {
	Text *string `json:"text"`
}

// RecognizeLines reads utterances from r, one per line, and writes one JSON
// report per utterance to w. A line is either a JSON object with a "text"
// field or the raw utterance. Blank lines are skipped. Per-line failures are
// reported inline and do not stop the loop.
func RecognizeLines(ctx context.Context, rec Recognizer, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		text, err := parseLine(raw)
		var rep domain.Report
		if err != nil {
			rep = domain.NewReport(domain.EmptyRecognition(), err)
		} else {
			rep = RecognizeText(rec, text)
		}
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return scanner.Err()
}

func parseLine(raw string) (string, error) {
	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}
	var l line
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return "", fmt.Errorf("invalid JSON line: %w", err)
	}
	if l.Text == nil {
		return "", errors.New(`JSON line has no "text" field`)
	}
	return *l.Text, nil
}

// RecognizeText recognizes one utterance and wraps any failure into the report.
func RecognizeText(rec Recognizer, text string) domain.Report {
	got, err := rec.Recognize(text)
	if err != nil && !errors.As(err, new(*domain.RecognitionError)) {
		err = &domain.RecognitionError{Text: text, Err: err}
	}
	return domain.NewReport(got, err)
}

// ArtifactStore returns the shared Redis store the profile configures, or
// nil when none is configured.
func ArtifactStore(cfg *config.Config) ports.ArtifactStore {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithPrefix(cfg.Redis.Prefix),
		redis.WithTTL(cfg.Redis.TTL),
	)
}

// OpenRecognizer loads the merged automaton, from store when given and from
// the profile's intent file otherwise, and configures a recognizer over it.
func OpenRecognizer(ctx context.Context, cfg *config.Config, store ports.ArtifactStore, logger *slog.Logger, opts ...recognizer.Option) (*recognizer.Recognizer, error) {
	rc, err := cfg.RecognizerConfig()
	if err != nil {
		return nil, err
	}
	options := []lattice.Option{
		lattice.WithLogger(logger),
		lattice.WithRecognizer(rc, opts...),
	}
	if store != nil {
		return lattice.Load(ctx, store, IntentArtifact, options...)
	}
	f, err := file.ReadArtifact(cfg.Path(cfg.Training.IntentFST))
	if err != nil {
		return nil, err
	}
	return lattice.Open(f, options...), nil
}

package recognizer

import (
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
)

// DefaultMaxPaths bounds exact search when Config.MaxPaths is zero.
const DefaultMaxPaths = 10000

// Recognition modes reported to observers and logs.
const (
	ModeExact = "exact"
	ModeFuzzy = "fuzzy"
)

// Config controls normalization and search.
type Config struct {
	// Lower lowercases the utterance before tokenizing.
	Lower bool `mapstructure:"lower" json:"lower" yaml:"lower"`
	// Fuzzy falls back to approximate search when exact search finds nothing.
	Fuzzy bool `mapstructure:"fuzzy" json:"fuzzy" yaml:"fuzzy"`
	// SkipUnknown drops tokens outside the automaton's vocabulary.
	SkipUnknown bool `mapstructure:"skip_unknown" json:"skip_unknown" yaml:"skip_unknown"`
	// StopWords may be skipped by fuzzy search.
	StopWords []string `mapstructure:"stop_words" json:"stop_words" yaml:"stop_words"`
	// MaxPaths caps explored paths in exact search. Negative disables the cap.
	MaxPaths int `mapstructure:"max_paths" json:"max_paths" yaml:"max_paths"`
}

// Observer receives the outcome of every recognition.
type Observer interface {
	Recognized(mode string, recognized bool, elapsed time.Duration)
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recognizer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver reports every recognition to o.
func WithObserver(o Observer) Option {
	return func(r *Recognizer) { r.observer = o }
}

// Recognizer matches utterances against one merged intent automaton.
type Recognizer struct {
	f        *fst.FST
	cfg      Config
	stop     map[string]bool
	vocab    map[string]bool
	logger   *slog.Logger
	observer Observer

	graphOnce sync.Once
	graph     *Graph
}

// New creates a Recognizer over f, which must not be mutated afterwards.
func New(f *fst.FST, cfg Config, opts ...Option) *Recognizer {
	if cfg.MaxPaths == 0 {
		cfg.MaxPaths = DefaultMaxPaths
	}
	r := &Recognizer{
		f:      f,
		cfg:    cfg,
		stop:   make(map[string]bool, len(cfg.StopWords)),
		vocab:  make(map[string]bool),
		logger: logging.NewNop(),
	}
	for _, w := range cfg.StopWords {
		if cfg.Lower {
			w = strings.ToLower(w)
		}
		r.stop[w] = true
	}
	if f != nil {
		for _, w := range f.Words() {
			r.vocab[w] = true
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Vocabulary returns the words the automaton can consume, sorted.
func (r *Recognizer) Vocabulary() []string {
	if r.f == nil {
		return nil
	}
	return r.f.Words()
}

// Config returns the effective configuration.
func (r *Recognizer) Config() Config { return r.cfg }

// Automaton returns the automaton r walks.
func (r *Recognizer) Automaton() *fst.FST { return r.f }

// Graph returns the fuzzy-search view of the automaton, building it on first use.
func (r *Recognizer) Graph() *Graph {
	r.graphOnce.Do(func() {
		r.graph = NewGraph(r.f)
	})
	return r.graph
}

// Tokens normalizes text and splits it on whitespace. With SkipUnknown,
// tokens outside the vocabulary are dropped.
func (r *Recognizer) Tokens(text string) []string {
	text = strings.TrimSpace(text)
	if r.cfg.Lower {
		text = strings.ToLower(text)
	}
	tokens := strings.Fields(text)
	if !r.cfg.SkipUnknown {
		return tokens
	}
	kept := tokens[:0]
	for _, tok := range tokens {
		if r.vocab[tok] {
			kept = append(kept, tok)
		}
	}
	return kept
}

// Recognize interprets one utterance. When nothing matches it returns
// domain.EmptyRecognition and a nil error. Malformed input returns the
// empty recognition together with a *domain.RecognitionError.
func (r *Recognizer) Recognize(text string) (domain.Recognition, error) {
	begin := time.Now()
	if r.f == nil {
		return domain.EmptyRecognition(), &domain.RecognitionError{Text: text, Err: domain.ErrArtifactNotFound}
	}
	if !utf8.ValidString(text) {
		return domain.EmptyRecognition(), &domain.RecognitionError{Text: text, Err: domain.ErrInvalidEncoding}
	}
	tokens := r.Tokens(text)
	if len(tokens) == 0 {
		return domain.EmptyRecognition(), &domain.RecognitionError{Text: text, Err: domain.ErrEmptyUtterance}
	}

	mode := ModeExact
	result := r.exact(tokens)
	if !result.Recognized() && r.cfg.Fuzzy {
		mode = ModeFuzzy
		result = r.fuzzy(tokens)
	}

	elapsed := time.Since(begin)
	if r.observer != nil {
		r.observer.Recognized(mode, result.Recognized(), elapsed)
	}
	r.logger.Debug("recognized",
		"mode", mode,
		"tokens", len(tokens),
		"intent", result.Intent.Name,
		"interpretations", len(result.Intents)+boolToInt(result.Recognized()),
		"truncated", result.Truncated,
		"elapsed", elapsed,
	)
	return result, nil
}

func (r *Recognizer) exact(tokens []string) domain.Recognition {
	paths, truncated := acceptExact(r.f, tokens, r.cfg.MaxPaths)
	if len(paths) == 0 {
		empty := domain.EmptyRecognition()
		empty.Truncated = truncated
		return empty
	}
	confidence := 1 / float64(len(paths))
	results := make([]domain.Recognition, len(paths))
	for i, p := range paths {
		results[i] = fromArcs(r.f, p)
		results[i].Intent.Confidence = confidence
	}
	primary := rank(results)
	primary.Truncated = truncated
	return primary
}

func (r *Recognizer) fuzzy(tokens []string) domain.Recognition {
	counted := 0
	for _, tok := range tokens {
		if !r.skippable(tok) {
			counted++
		}
	}

	matches := acceptFuzzy(r.Graph(), tokens, r.skippable)
	results := make([]domain.Recognition, 0, len(matches))
	for _, m := range matches {
		rec := fromArcs(r.f, m.arcs)
		if !rec.Recognized() {
			continue
		}
		rec.Intent.Confidence = 1
		if counted > 0 && m.score < counted {
			rec.Intent.Confidence = float64(m.score) / float64(counted)
		}
		rec.Fuzzy = true
		results = append(results, rec)
	}
	primary := rank(results)
	if len(results) > 0 {
		primary.Fuzzy = true
	}
	return primary
}

// skippable reports whether fuzzy search may pass over tok without consuming it.
func (r *Recognizer) skippable(tok string) bool {
	if r.stop[tok] {
		return true
	}
	return r.cfg.SkipUnknown && !r.vocab[tok]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package config loads the profile file that drives compilation, recognition
// and the network surfaces.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lattice/pkg/recognizer"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the profile file name looked up in the profile directory.
const DefaultFile = "profile.yml"

// Config is a decoded profile. Relative paths are resolved against Dir.
type Config struct {
	// Dir is the directory the profile was loaded from.
	Dir string `mapstructure:"-"`
	// Missing is set when no profile file existed and defaults were used.
	Missing bool `mapstructure:"-"`

	LogLevel    string      `mapstructure:"log_level"`
	Training    Training    `mapstructure:"training"`
	Recognition Recognition `mapstructure:"recognition"`
	Server      Server      `mapstructure:"server"`
	Redis       Redis       `mapstructure:"redis"`
}

// Training locates compile inputs and outputs.
type Training struct {
	GrammarDir     string   `mapstructure:"grammar_dir"`
	SlotsDir       string   `mapstructure:"slots_dir"`
	SentencesFile  string   `mapstructure:"sentences_file"`
	FSTDir         string   `mapstructure:"fst_dir"`
	IntentFST      string   `mapstructure:"intent_fst"`
	VocabularyFile string   `mapstructure:"vocabulary_file"`
	WhitelistFile  string   `mapstructure:"whitelist_file"`
	Whitelist      []string `mapstructure:"whitelist"`
	Workers        int      `mapstructure:"workers"`
}

// Recognition holds recognizer settings plus an optional stop word file.
type Recognition struct {
	recognizer.Config `mapstructure:",squash"`
	StopWordsFile     string `mapstructure:"stop_words_file"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

// Redis configures the shared artifact store. An empty Addr disables it.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the configuration used when the profile omits a value.
func Default() *Config {
	return &Config{
		Dir:      ".",
		LogLevel: "info",
		Training: Training{
			GrammarDir:     "grammars",
			SlotsDir:       "slots",
			SentencesFile:  "sentences.ini",
			FSTDir:         "fsts",
			IntentFST:      "intent.fst",
			VocabularyFile: "vocab.txt",
		},
		Recognition: Recognition{
			Config: recognizer.Config{
				Lower:    true,
				MaxPaths: recognizer.DefaultMaxPaths,
			},
		},
		Server: Server{
			Addr:    ":12101",
			Metrics: true,
		},
		Redis: Redis{
			Prefix: "lattice:fst:",
		},
	}
}

// Load reads the profile at path. A missing file yields the defaults with
// Missing set; the caller decides whether to warn.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Dir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Missing = true
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir loads DefaultFile from a profile directory.
func LoadDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultFile))
}

// Decode merges YAML data over cfg. String values have $VAR and ${VAR}
// expanded from the environment before decoding.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid profile yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(expandEnv(raw)); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return cfg.Validate()
}

func expandEnv(v any) any {
	switch t := v.(type) {
	case string:
		return os.ExpandEnv(t)
	case map[string]any:
		for k, val := range t {
			t[k] = expandEnv(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = expandEnv(val)
		}
		return t
	}
	return v
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Training.Workers < 0 {
		return fmt.Errorf("training.workers must not be negative")
	}
	if c.Training.IntentFST == "" {
		return fmt.Errorf("training.intent_fst is required")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	return nil
}

// Path resolves p against the profile directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// RecognizerConfig returns the recognizer settings with stop words from
// StopWordsFile appended to the inline list.
func (c *Config) RecognizerConfig() (recognizer.Config, error) {
	rc := c.Recognition.Config
	rc.StopWords = append([]string(nil), rc.StopWords...)
	if c.Recognition.StopWordsFile != "" {
		words, err := ReadList(c.Path(c.Recognition.StopWordsFile))
		if err != nil {
			return rc, fmt.Errorf("failed to read stop words: %w", err)
		}
		rc.StopWords = append(rc.StopWords, words...)
	}
	return rc, nil
}

// Whitelist returns the grammars to build: the inline list plus the
// contents of WhitelistFile. Empty means build everything.
func (c *Config) Whitelist() ([]string, error) {
	names := append([]string(nil), c.Training.Whitelist...)
	if c.Training.WhitelistFile != "" {
		listed, err := ReadList(c.Path(c.Training.WhitelistFile))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read whitelist: %w", err)
		}
		names = append(names, listed...)
	}
	return names, nil
}

// ReadList reads one entry per line, skipping blank lines and # comments.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

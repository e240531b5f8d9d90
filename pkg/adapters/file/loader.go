package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"gopkg.in/yaml.v3"
)

// GrammarExtension marks grammar source files.
const GrammarExtension = ".gram"

// Loader implements ports.GrammarLoader and ports.SlotLoader over a profile
// directory laid out as grammars/<Name>.gram and slots/<name>.
type Loader struct {
	GrammarDir string
	SlotDir    string
}

// NewLoader creates a Loader rooted at a profile directory.
func NewLoader(profileDir string) *Loader {
	return &Loader{
		GrammarDir: filepath.Join(profileDir, "grammars"),
		SlotDir:    filepath.Join(profileDir, "slots"),
	}
}

// ListGrammars returns grammar names (file stems), sorted.
func (l *Loader) ListGrammars(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.GrammarDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list grammars: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != GrammarExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), GrammarExtension))
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) LoadGrammar(ctx context.Context, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.GrammarDir, name+GrammarExtension))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrGrammarNotFound, name)
		}
		return "", fmt.Errorf("failed to read grammar %s: %w", name, err)
	}
	return string(data), nil
}

// LoadSlot reads slots/<name> as one value per line, skipping blank lines
// and # comments. When that file is absent, slots/<name>.yml holding a YAML
// list of strings is tried.
func (l *Loader) LoadSlot(ctx context.Context, name string) ([]string, error) {
	path := filepath.Join(l.SlotDir, filepath.FromSlash(name))
	lines, err := readLines(path)
	if err == nil {
		return lines, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read slot %s: %w", name, err)
	}

	for _, ext := range []string{".yml", ".yaml"} {
		lines, err := readManifest(path + ext)
		if err == nil {
			return lines, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read slot %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, name)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func readManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values []string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("invalid slot manifest %s: %w", path, err)
	}
	lines := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, v)
		}
	}
	return lines, nil
}

package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
)

// Extension is appended to artifact names on disk.
const Extension = ".fst"

// Store implements ports.ArtifactStore using the local filesystem.
// Each artifact is a JSON file named <name>.fst under BasePath.
type Store struct {
	BasePath string
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to "fsts".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = "fsts"
	}
	return &Store{BasePath: basePath}
}

// Path returns the file an artifact is stored in.
func (s *Store) Path(name string) string {
	return filepath.Join(s.BasePath, name+Extension)
}

// Save writes the artifact atomically: temp file in the same directory,
// fsync, then rename over the destination.
func (s *Store) Save(ctx context.Context, name string, f *fst.FST) error {
	if name == "" {
		return fmt.Errorf("artifact name cannot be empty")
	}
	return WriteAtomic(s.Path(name), func(w *os.File) error {
		return f.Encode(w)
	})
}

// Load reads and validates an artifact.
func (s *Store) Load(ctx context.Context, name string) (*fst.FST, error) {
	if name == "" {
		return nil, fmt.Errorf("artifact name cannot be empty")
	}
	return ReadArtifact(s.Path(name))
}

// Delete removes the artifact file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact file: %w", err)
	}
	return nil
}

// List returns artifact names found in BasePath, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}

// ReadArtifact decodes the artifact stored at path.
func ReadArtifact(path string) (*fst.FST, error) {
	r, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer r.Close()

	return fst.Decode(r)
}

// WriteAtomic creates path by letting write fill a temp file that is then
// renamed into place. Parent directories are created as needed.
func WriteAtomic(path string, write func(w *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmpFile); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows os.Rename fails if dest exists
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

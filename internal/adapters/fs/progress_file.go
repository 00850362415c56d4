package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/canship/internal/domain"
)

const progressSuffix = ".progress.json"

// ProgressFile implements ports.ProgressRepository using a JSON file per
// uploaded file and target.
type ProgressFile struct {
	dir  string
	name string
}

// NewProgressFile creates a repository in dir for the given key (usually
// the upload's file name and canister). The key is sanitised into a file name.
func NewProgressFile(dir, key string) *ProgressFile {
	return &ProgressFile{dir: dir, name: progressFileName(key)}
}

// Load retrieves the last saved progress from disk.
// Returns an empty record and nil error if no file exists.
func (r *ProgressFile) Load(ctx context.Context) (domain.Progress, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Progress{}, nil
		}
		return domain.Progress{}, err
	}

	var p domain.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Progress{}, err
	}

	return p, nil
}

// Save persists the progress atomically (write to temp file, then rename).
func (r *ProgressFile) Save(ctx context.Context, p domain.Progress) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Clear removes the progress file.
func (r *ProgressFile) Clear(ctx context.Context) error {
	err := os.Remove(r.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the full path to the progress file.
func (r *ProgressFile) Path() string {
	return filepath.Join(r.dir, r.name)
}

func progressFileName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
	if name == "" {
		name = "upload"
	}
	return name + progressSuffix
}

package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource implements ports.PayloadSource by reading a whole file.
type FileSource struct {
	path   string
	offset int64
}

// NewFileSource reads path, dropping the first offset bytes.
func NewFileSource(path string, offset int64) *FileSource {
	return &FileSource{path: path, offset: offset}
}

// Load reads the file.
func (s *FileSource) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	if s.offset < 0 || s.offset > int64(len(data)) {
		return nil, fmt.Errorf("offset %d outside file %s of %d bytes", s.offset, s.path, len(data))
	}
	return data[s.offset:], nil
}

// Name returns the file's base name.
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

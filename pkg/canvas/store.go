package canvas

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the document side of the host collaborator surface: resolve the
// active canvas document, read it, overwrite it. There is no per-record
// write path; persistence always rewrites the whole document.
type Store interface {
	// Active resolves and parses the currently open canvas document.
	// ok is false when no recognized document is active — a normal
	// condition, not an error. A parse failure is returned as an error;
	// the underlying file is left untouched.
	Active(ctx context.Context) (doc *Document, ok bool, err error)

	// Persist serializes doc and overwrites the active document.
	Persist(ctx context.Context, doc *Document) error
}

// DocumentExtension is the file extension a canvas document must carry to
// be recognized.
const DocumentExtension = ".canvas"

// FileStore is a Store over a single canvas file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the canvas file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Active reads and parses the canvas file. A missing file or a file of an
// unrecognized kind yields ok=false.
func (s *FileStore) Active(ctx context.Context) (*Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	if !strings.EqualFold(filepath.Ext(s.path), DocumentExtension) {
		return nil, false, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read canvas file: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Persist writes the document back atomically (temp file plus rename), so a
// crash mid-write never leaves a truncated canvas behind.
func (s *FileStore) Persist(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write canvas temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace canvas file: %w", err)
	}
	return nil
}

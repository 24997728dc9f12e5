package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentStore writes accepted documents to a corpus directory, one UTF-8
// plaintext file per document named {doc_id}.txt. Identifiers are
// deterministic, so rerunning overwrites a document with identical content
// rather than duplicating it.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates the corpus directory if needed and verifies it
// is writable.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("corpus directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create corpus directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("corpus directory %s is not writable: %w", dir, err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &DocumentStore{dir: dir}, nil
}

// Put writes the document text and returns the file path.
func (s *DocumentStore) Put(docID, text string) (string, error) {
	path := s.Path(docID)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("write document %s: %w", docID, err)
	}
	return path, nil
}

// Path returns where the document with the given id is stored.
func (s *DocumentStore) Path(docID string) string {
	return filepath.Join(s.dir, docID+".txt")
}

package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Record is one manifest line describing an accepted document. Records are
// created once per accepted page and never updated or deleted.
type Record struct {
	DocID        string `json:"doc_id"`
	PageID       int64  `json:"pageid"`
	Title        string `json:"title"`
	CategorySeed string `json:"category_seed"`
	WordCount    int    `json:"word_count"`
	URL          string `json:"url"`
	Source       string `json:"source"`
}

// Manifest appends newline-delimited JSON records to a file. Opening
// truncates: each run produces a fresh manifest, prior runs are overwritten.
type Manifest struct {
	mu   sync.Mutex
	file *os.File
}

// OpenManifest creates or truncates the manifest at path.
func OpenManifest(path string) (*Manifest, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	return &Manifest{file: f}, nil
}

// Append writes one record as a self-contained line. The whole line goes
// through a single Write call, so an interrupted or concurrent run never
// leaves an interleaved or truncated record.
func (m *Manifest) Append(rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal manifest record: %w", err)
	}
	payload = append(payload, '\n')

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.file.Write(payload); err != nil {
		return fmt.Errorf("append manifest record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (m *Manifest) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.file.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	return nil
}

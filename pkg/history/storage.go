package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sol-swap/pkg/types"
)

const DefaultStorageFileName = ".sol-swap-history.json"

// Record is one completed (or abandoned) swap attempt kept for audit.
type Record struct {
	Signature  string              `json:"signature"`
	FromSymbol string              `json:"fromSymbol"`
	ToSymbol   string              `json:"toSymbol"`
	Amount     string              `json:"amount"`
	Status     types.OutcomeStatus `json:"status"`
	Message    string              `json:"message,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// Storage persists swap records to a local JSON file.
type Storage struct {
	filePath string
	mu       sync.RWMutex
	records  []Record
}

type fileFormat struct {
	Records []Record `json:"records"`
}

// NewStorage opens (or lazily creates) the history file. An empty path
// defaults to the home directory.
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	storage := &Storage{filePath: filePath}

	if err := storage.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return storage, nil
}

func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var parsed fileFormat
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}

	s.records = parsed.Records
	return nil
}

// Append records an outcome and persists immediately.
func (s *Storage) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	s.records = append(s.records, rec)

	data, err := json.MarshalIndent(fileFormat{Records: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// List returns all records, newest last.
func (s *Storage) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

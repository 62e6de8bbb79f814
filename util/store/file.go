package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore persists all keys in a single JSON document. The document is
// loaded on first use and rewritten as a whole on every Set.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	doc    fileDoc
}

type fileDoc struct {
	Data map[string]string `json:"Data"`
}

func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".kredits", "brain.json")
	}
	return filepath.Join(home, ".kredits", "brain.json")
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if path == "" {
		path = DefaultFilePath()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

func (f *FileStore) Path() string {
	return f.path
}

// load must be called with mu held. A missing or unreadable document
// starts an empty store; the next Set overwrites it.
func (f *FileStore) load() {
	if f.loaded {
		return
	}
	f.loaded = true
	f.doc = fileDoc{Data: map[string]string{}}

	content, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("reading store file failed, starting empty", zap.String("path", f.path), zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(content, &f.doc); err != nil {
		f.logger.Warn("store file is not valid json, starting empty", zap.String("path", f.path), zap.Error(err))
		f.doc = fileDoc{Data: map[string]string{}}
		return
	}
	if f.doc.Data == nil {
		f.doc.Data = map[string]string{}
	}
}

func (f *FileStore) persist() error {
	jsonData, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	return os.WriteFile(f.path, jsonData, 0o644)
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	value, found := f.doc.Data[key]
	if !found {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	prev, existed := f.doc.Data[key]
	f.doc.Data[key] = string(value)
	if err := f.persist(); err != nil {
		// memory never runs ahead of the file
		if existed {
			f.doc.Data[key] = prev
		} else {
			delete(f.doc.Data, key)
		}
		return fmt.Errorf("persisting %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

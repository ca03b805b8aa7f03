// Package local implements a record store backed by one JSON file on the local filesystem.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
	"github.com/JakeFAU/sons-crawler/internal/metrics"
)

// Config captures the parameters for the file-backed record store.
type Config struct {
	// Path is the JSON file holding the record array.
	Path string `mapstructure:"path" yaml:"path"`
}

// RecordStore keeps the full record collection in a pretty-printed JSON
// array. Every write replaces the file through a temp file and rename, so
// readers only ever see a complete collection.
type RecordStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// New creates a file-backed record store, creating the parent directory if needed.
func New(cfg Config, logger *zap.Logger) (*RecordStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("record file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(cfg.Path)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create record directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat record directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("record directory path is not a directory")
	}

	return &RecordStore{
		path:   cfg.Path,
		logger: logger,
	}, nil
}

// Path returns the backing file path.
func (s *RecordStore) Path() string {
	return s.path
}

// Load returns every persisted record. A missing, unreadable or malformed
// file is replaced with an empty array and an empty collection is returned.
func (s *RecordStore) Load(ctx context.Context) ([]crawler.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Append adds records to the end of the collection. It does not check for
// duplicate links; callers pass already-deduplicated records.
func (s *RecordStore) Append(ctx context.Context, records []crawler.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	updated := make([]crawler.Record, 0, len(current)+len(records))
	updated = append(updated, current...)
	updated = append(updated, records...)
	if err := s.write(updated); err != nil {
		return err
	}

	metrics.SetStoreRecords(len(updated))
	s.logger.Info("records saved", zap.Int("added", len(records)), zap.Int("total", len(updated)))
	return nil
}

func (s *RecordStore) load() ([]crawler.Record, error) {
	// #nosec G304 -- path comes from service configuration.
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.reset(fmt.Errorf("read record file: %w", err))
	}
	var records []crawler.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return s.reset(fmt.Errorf("decode record file: %w", err))
	}
	if records == nil {
		records = []crawler.Record{}
	}
	return records, nil
}

// reset reinitializes the file to an empty array after a failed read.
func (s *RecordStore) reset(cause error) ([]crawler.Record, error) {
	s.logger.Warn("record file unusable; starting empty", zap.String("path", s.path), zap.Error(cause))
	if err := s.write([]crawler.Record{}); err != nil {
		return nil, fmt.Errorf("reinitialize record file: %w", err)
	}
	return []crawler.Record{}, nil
}

func (s *RecordStore) write(records []crawler.Record) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("temp file cleanup failed", zap.String("path", tmpName), zap.Error(rmErr))
		}
	}

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace record file: %w", err)
	}
	return nil
}

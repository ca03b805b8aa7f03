// Package memory provides an in-memory record store for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
	"github.com/JakeFAU/sons-crawler/internal/metrics"
)

// RecordStore keeps records in process memory. Contents are lost on restart.
type RecordStore struct {
	mu      sync.RWMutex
	records []crawler.Record
}

// NewRecordStore constructs a RecordStore seeded with records.
func NewRecordStore(seed ...crawler.Record) *RecordStore {
	return &RecordStore{records: append([]crawler.Record{}, seed...)}
}

// Load returns a copy of all records.
func (s *RecordStore) Load(_ context.Context) ([]crawler.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append adds records to the end of the collection.
func (s *RecordStore) Append(_ context.Context, records []crawler.Record) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	metrics.SetStoreRecords(len(s.records))
	return nil
}

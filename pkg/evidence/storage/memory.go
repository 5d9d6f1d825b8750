package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"acgs-hq/quorum/pkg/evidence"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This implementation is intended for testing and ephemeral deployments.
type MemoryStorage struct {
	records map[string]*evidence.SynthesisRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.SynthesisRecord),
	}
}

// Store persists a synthesis record to memory.
func (s *MemoryStorage) Store(_ context.Context, record *evidence.SynthesisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to prevent mutation after store
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves records matching the query filters, newest first.
func (s *MemoryStorage) Query(_ context.Context, query *evidence.Query) ([]*evidence.SynthesisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == nil {
		query = &evidence.Query{}
	}

	results := make([]*evidence.SynthesisRecord, 0)
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RequestTime.After(results[j].RequestTime)
	})

	start := query.Offset
	if start > len(results) {
		return []*evidence.SynthesisRecord{}, nil
	}
	results = results[start:]

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the total number of stored records.
func (s *MemoryStorage) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// DeleteOlderThan deletes records with RequestTime before the cutoff.
func (s *MemoryStorage) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.RequestTime.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteOldest deletes the oldest records until at most keep remain.
func (s *MemoryStorage) DeleteOldest(_ context.Context, keep int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := int64(len(s.records)) - keep
	if excess <= 0 {
		return 0, nil
	}

	ordered := make([]*evidence.SynthesisRecord, 0, len(s.records))
	for _, record := range s.records {
		ordered = append(ordered, record)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].RequestTime.Before(ordered[j].RequestTime)
	})

	for i := int64(0); i < excess; i++ {
		delete(s.records, ordered[i].ID)
	}
	return excess, nil
}

// Close releases backend resources. It is a no-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}

// matchesQuery checks whether a record satisfies all query filters.
func matchesQuery(record *evidence.SynthesisRecord, query *evidence.Query) bool {
	if query.StartTime != nil && record.RequestTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && !record.RequestTime.Before(*query.EndTime) {
		return false
	}
	if query.TemplateID != "" && record.TemplateID != query.TemplateID {
		return false
	}
	if query.Category != "" && record.TemplateCategory != query.Category {
		return false
	}
	if query.Consensus != nil && record.Consensus != *query.Consensus {
		return false
	}
	return true
}

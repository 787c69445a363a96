// Package reports keeps aggregated uploads in memory so dashboards,
// record pages and exports can be served without re-uploading the
// workbook. The store is bounded: when full, the oldest report is
// evicted. Nothing is persisted across restarts by design.
package reports

import (
	"errors"
	"sync"

	"avrcli/pkg/contracts/domain"
)

// ErrNotFound is returned when a report id is not (or no longer) in the
// store. Handlers map it to a 404 problem document.
var ErrNotFound = errors.New("report not found")

// DefaultMaxEntries bounds the store when the configuration does not.
const DefaultMaxEntries = 64

// Entry pairs a report's metadata with its cleaned table. The table
// pointer is shared with the parse cache and must be treated as
// immutable; cache eviction never invalidates a stored entry.
type Entry struct {
	Report domain.StoredReport
	Table  *domain.SlotTable
}

// Store is an in-memory, mutex-guarded report store.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	order      []string // insertion order, oldest first
	maxEntries int
}

// NewStore creates a bounded store. maxEntries <= 0 falls back to
// DefaultMaxEntries.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]*Entry),
		maxEntries: maxEntries,
	}
}

// Put stores a report and its table, evicting the oldest entries once
// the store is full. It returns the ids it evicted.
func (s *Store) Put(report domain.StoredReport, table *domain.SlotTable) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[report.ID]; exists {
		// Same id resubmitted: refresh in place, keep its position.
		s.entries[report.ID] = &Entry{Report: report, Table: table}
		return nil
	}

	var evicted []string
	for len(s.order) >= s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
		evicted = append(evicted, oldest)
	}

	s.entries[report.ID] = &Entry{Report: report, Table: table}
	s.order = append(s.order, report.ID)

	return evicted
}

// Get returns a copy of the report metadata and the shared table.
func (s *Store) Get(id string) (domain.StoredReport, *domain.SlotTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[id]
	if !exists {
		return domain.StoredReport{}, nil, ErrNotFound
	}

	return entry.Report, entry.Table, nil
}

// List returns report metadata, newest first.
func (s *Store) List() []domain.StoredReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StoredReport, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if entry, exists := s.entries[s.order[i]]; exists {
			result = append(result, entry.Report)
		}
	}
	return result
}

// Delete evicts a report. Deleting an unknown id is ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists {
		return ErrNotFound
	}

	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored reports.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns store statistics for the health endpoint.
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"entries":     len(s.entries),
		"max_entries": s.maxEntries,
	}
}

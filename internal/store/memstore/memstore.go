// Package memstore is an in-process store backend. It addresses rows by
// position, like the spreadsheet backend, and is what tests and dry runs use.
package memstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"
)

type Store struct {
	mu     sync.RWMutex
	tables map[string][]store.Row
}

func New() *Store {
	return &Store{tables: make(map[string][]store.Row)}
}

// Seed replaces a table's rows. Rows are copied as given, ragged or not.
func (s *Store) Seed(table string, rows ...store.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]store.Row, 0, len(rows))
	for _, r := range rows {
		copied = append(copied, r.Clone())
	}
	s.tables[table] = copied
}

// Rows returns a copy of every row in a table.
func (s *Store) Rows(table string) []store.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Row, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, r.Clone())
	}
	return out
}

func (s *Store) ReadTable(_ context.Context, table string, filter store.Filter) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []store.Record
	for i, r := range s.tables[table] {
		if !r.Matches(filter) {
			continue
		}
		records = append(records, store.Record{Ref: ref(i), Row: r.Clone()})
	}
	return records, nil
}

func (s *Store) AppendRow(_ context.Context, table string, row store.Row) (store.RowRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[table] = append(s.tables[table], row.Clone())
	return ref(len(s.tables[table]) - 1), nil
}

func (s *Store) UpdateRow(_ context.Context, table string, r store.RowRef, row store.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := strconv.Atoi(string(r))
	if err != nil || i < 0 || i >= len(s.tables[table]) {
		return custom_error.NewStoreUnavailable(
			fmt.Sprintf("update %s", table),
			fmt.Errorf("row reference %q out of range", r),
		)
	}
	s.tables[table][i] = row.Clone()
	return nil
}

func (s *Store) UpsertRows(_ context.Context, table string, rows []store.Row, conflictKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make(map[string]int, len(s.tables[table]))
	for i, r := range s.tables[table] {
		positions[r[conflictKey]] = i
	}
	for _, row := range rows {
		if i, ok := positions[row[conflictKey]]; ok {
			merged := s.tables[table][i].Clone()
			for k, v := range row {
				merged[k] = v
			}
			s.tables[table][i] = merged
			continue
		}
		s.tables[table] = append(s.tables[table], row.Clone())
		positions[row[conflictKey]] = len(s.tables[table]) - 1
	}
	return nil
}

func ref(i int) store.RowRef {
	return store.RowRef(strconv.Itoa(i))
}

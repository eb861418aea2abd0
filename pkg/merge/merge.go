// Package merge folds candidate rows into an existing keyed set, writing only
// the difference: unknown keys are appended, changed rows are updated in
// place and identical rows are skipped.
package merge

import "context"

type Outcome int

const (
	Skipped Outcome = iota
	Appended
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Updated:
		return "updated"
	default:
		return "skipped"
	}
}

// Target receives the writes decided by a Merger. Refs are opaque.
type Target[R any] interface {
	Append(ctx context.Context, row R) (string, error)
	Update(ctx context.Context, ref string, row R) error
}

type Result struct {
	Appended int `json:"appended_rows"`
	Updated  int `json:"updated_rows"`
	Skipped  int `json:"skipped_rows"`
}

type entry[R any] struct {
	ref string
	row R
}

type Merger[K comparable, R any] struct {
	key    func(R) K
	equal  func(a, b R) bool
	target Target[R]
	index  map[K]entry[R]
	result Result
}

func New[K comparable, R any](key func(R) K, equal func(a, b R) bool, target Target[R]) *Merger[K, R] {
	return &Merger[K, R]{
		key:    key,
		equal:  equal,
		target: target,
		index:  make(map[K]entry[R]),
	}
}

// Seed registers an existing row. A later row with the same key wins.
func (m *Merger[K, R]) Seed(ref string, row R) {
	m.index[m.key(row)] = entry[R]{ref: ref, row: row}
}

// Merge writes row if it is new or differs from the indexed one, and keeps the
// index current so later candidates with the same key compare against it.
func (m *Merger[K, R]) Merge(ctx context.Context, row R) (Outcome, error) {
	k := m.key(row)
	existing, ok := m.index[k]
	if !ok {
		ref, err := m.target.Append(ctx, row)
		if err != nil {
			return Skipped, err
		}
		m.index[k] = entry[R]{ref: ref, row: row}
		m.result.Appended++
		return Appended, nil
	}

	if m.equal(existing.row, row) {
		m.result.Skipped++
		return Skipped, nil
	}

	if err := m.target.Update(ctx, existing.ref, row); err != nil {
		return Skipped, err
	}
	m.index[k] = entry[R]{ref: existing.ref, row: row}
	m.result.Updated++
	return Updated, nil
}

func (m *Merger[K, R]) Len() int {
	return len(m.index)
}

func (m *Merger[K, R]) Result() Result {
	return m.result
}

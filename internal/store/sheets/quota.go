package sheets

import (
	"context"
	"sync"
	"time"
)

// quota is a sliding-window request budget for the Sheets API, which rejects
// callers that exceed their per-minute allowance. A nil quota never waits.
type quota struct {
	mu     sync.Mutex
	calls  []time.Time
	limit  int
	window time.Duration
}

func newQuota(limit int, window time.Duration) *quota {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &quota{limit: limit, window: window}
}

// wait blocks until a request fits in the window or ctx is done.
func (q *quota) wait(ctx context.Context) error {
	if q == nil {
		return nil
	}

	for {
		q.mu.Lock()
		now := time.Now()
		q.prune(now)
		if len(q.calls) < q.limit {
			q.calls = append(q.calls, now)
			q.mu.Unlock()
			return nil
		}
		delay := q.calls[0].Add(q.window).Sub(now)
		q.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (q *quota) remaining() int {
	if q == nil {
		return -1
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.prune(time.Now())
	return q.limit - len(q.calls)
}

func (q *quota) prune(now time.Time) {
	windowStart := now.Add(-q.window)
	i := 0
	for i < len(q.calls) && !q.calls[i].After(windowStart) {
		i++
	}
	q.calls = q.calls[i:]
}

package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Worker runs a reconciliation pass on a fixed interval, one pass at a time.
// A failed pass is logged and the next tick tries again.
type Worker struct {
	reconciler *Reconciler
	interval   time.Duration
	logger     *zap.Logger
}

func NewWorker(reconciler *Reconciler, interval time.Duration, logger *zap.Logger) *Worker {
	return &Worker{reconciler: reconciler, interval: interval, logger: logger}
}

// Run does a first pass immediately and then one per interval until ctx is
// done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("reconciliation worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.pass(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("reconciliation worker stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	started := time.Now()
	result, err := w.reconciler.RunReconciliation(ctx)
	if err != nil {
		w.logger.Error("reconciliation pass failed", zap.Error(err), zap.Duration("took", time.Since(started)))
		return
	}
	w.logger.Debug("reconciliation pass done",
		zap.Int("appended", result.Appended),
		zap.Int("updated", result.Updated),
		zap.Duration("took", time.Since(started)),
	)
}

package analytics

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/projects"
	"stockroom/internal/store"
	"stockroom/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWorkerRunsFirstPassImmediately(t *testing.T) {
	s := memstore.New()
	s.Seed(store.TableProjects, project("P-1", `[{"item_id":"A","quantity":5}]`, `[]`, `[]`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWorker(newReconciler(s), time.Hour, zap.NewNop()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, s.Rows(store.TableAnalytics), 1)
}

func TestWorkerLogsFailedPass(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := memstore.New()
	s.Seed(store.TableProjects, project("P-1", `[{"item_id":"A","quantity":5}]`, `[]`, `[]`))
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reconciler := NewReconciler(failingAppendStore{Store: s}, projects.NewRepository(s), logger)
	err := NewWorker(reconciler, time.Hour, logger).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, logs.FilterMessage("reconciliation pass failed").Len())
}

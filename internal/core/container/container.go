package container

import (
	"context"
	"fmt"

	"stockroom/internal/analytics"
	"stockroom/internal/config"
	"stockroom/internal/database"
	"stockroom/internal/inventory/inventory_log"
	"stockroom/internal/inventory/issues"
	"stockroom/internal/inventory/movements"
	"stockroom/internal/inventory/stocks"
	"stockroom/internal/projects"
	"stockroom/internal/store"
	"stockroom/internal/store/memstore"
	"stockroom/internal/store/postgres"
	"stockroom/internal/store/sheets"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Container struct {
	Store           store.Store
	StockRepository *stocks.StockRepository
	StockService    *stocks.StockService
	Movements       *movements.MovementService
	InventoryLog    *inventorylog.InventoryLog
	Issues          *issues.IssueService
	Projects        *projects.ProjectService
	Reconciler      *analytics.Reconciler
	Exporter        *analytics.Exporter

	closers []func() error
}

// NewAppContainer opens the configured backend and builds every service on
// top of it. Close releases whatever was opened.
func NewAppContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{}

	s, err := c.openStore(ctx, cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = s

	locker, err := c.newLocker(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.StockRepository = stocks.NewRepository(s)
	c.StockService = stocks.NewStockService(c.StockRepository, locker, logger)
	c.Movements = movements.NewMovementService(movements.NewRepository(s), logger)
	c.InventoryLog = inventorylog.NewInventoryLog(c.StockService, c.Movements, logger)

	projectRepo := projects.NewRepository(s)
	c.Projects = projects.NewProjectService(projectRepo, c.StockRepository, logger)
	c.Reconciler = analytics.NewReconciler(s, projectRepo, logger)
	c.Issues = issues.NewIssueService(issues.NewRepository(s), c.StockRepository, logger)
	c.Exporter = analytics.NewExporter(s, c.StockService, c.Movements, c.Issues)

	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using the in-memory backend, nothing will be persisted")
		return memstore.New(), nil
	case config.BackendPostgres:
		db, err := database.NewPostgresConnection(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		return postgres.New(db), nil
	case config.BackendSheets:
		service, err := sheets.NewService(ctx, cfg.Sheets.CredentialsJSON, cfg.Sheets.CredentialsFile, logger)
		if err != nil {
			return nil, err
		}
		return sheets.New(service, cfg.Sheets.SpreadsheetID, logger).WithRequestLimit(cfg.Sheets.RequestsPerMinute), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (c *Container) newLocker(ctx context.Context, cfg *config.Config) (stocks.Locker, error) {
	if cfg.Lock.Mode != config.LockRedis {
		return stocks.NoopLocker{}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Lock.RedisAddress})
	c.closers = append(c.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Lock.RedisAddress, err)
	}
	return stocks.NewRedisLocker(rdb, cfg.Lock.TTL), nil
}

// NewWorker builds the scheduled reconciliation loop.
func (c *Container) NewWorker(cfg *config.Config, logger *zap.Logger) *analytics.Worker {
	return analytics.NewWorker(c.Reconciler, cfg.ReconcileInterval, logger)
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}

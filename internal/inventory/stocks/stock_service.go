package stocks

import (
	"context"
	"fmt"
	"strings"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type Repository interface {
	GetStockItems(ctx context.Context) ([]models.Item, error)
	GetStockItem(ctx context.Context, id string) (*StockRecord, error)
	GetStockItemByArticle(ctx context.Context, articleNumber string) (*StockRecord, error)
	UpdateStockItem(ctx context.Context, rec *StockRecord) error
}

type StockService struct {
	r      Repository
	locker Locker
	logger *zap.Logger
}

func NewStockService(r Repository, locker Locker, logger *zap.Logger) *StockService {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &StockService{r: r, locker: locker, logger: logger}
}

// AdjustStock applies one take or return to an item's counter and returns the
// updated item. It does not log the movement.
//
// Without a Locker the read and the write are separate store calls, so two
// concurrent adjustments of the same item can both read the same stock and
// the second write wins.
func (s *StockService) AdjustStock(ctx context.Context, itemID string, quantity int, action metadata.Action) (*models.Item, error) {
	ctx, span := otel.Tracer("stockroom/stocks").Start(ctx, "AdjustStock")
	defer span.End()
	span.SetAttributes(
		attribute.String("item.id", itemID),
		attribute.Int("stock.quantity", quantity),
		attribute.String("stock.action", string(action)),
	)

	if quantity <= 0 {
		return nil, custom_error.NewInvalidArgument("quantity", "must be positive, got %d", quantity)
	}
	if _, err := metadata.NewAction(string(action)); err != nil {
		return nil, custom_error.NewInvalidArgument("action", "%s", err.Error())
	}

	unlock, err := s.locker.Lock(ctx, lockKey(itemID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock")
		return nil, err
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			s.logger.Warn("failed to release stock lock", zap.String("item_id", itemID), zap.Error(err))
		}
	}()

	rec, err := s.r.GetStockItem(ctx, itemID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	current := rec.Item.Stock
	var updated int
	switch action {
	case metadata.ActionTake:
		if current < quantity {
			return nil, &custom_error.InsufficientStockError{
				Description: rec.Item.Label(),
				Available:   current,
				Requested:   quantity,
			}
		}
		updated = current - quantity
	case metadata.ActionReturn:
		updated = current + quantity
	}

	setStock(rec, updated)
	if err := s.r.UpdateStockItem(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update")
		return nil, err
	}

	s.logger.Debug("stock adjusted",
		zap.String("item_id", itemID),
		zap.String("action", string(action)),
		zap.Int("quantity", quantity),
		zap.Int("from", current),
		zap.Int("to", updated),
	)
	span.SetAttributes(attribute.Int("stock.after", updated))

	item := rec.Item
	return &item, nil
}

// ResolveArticle maps a business article number to the item id AdjustStock
// expects.
func (s *StockService) ResolveArticle(ctx context.Context, articleNumber string) (string, error) {
	articleNumber = strings.TrimSpace(articleNumber)
	if articleNumber == "" {
		return "", custom_error.NewInvalidArgument("article_number", "must not be empty")
	}
	rec, err := s.r.GetStockItemByArticle(ctx, articleNumber)
	if err != nil {
		return "", err
	}
	if rec.Item.ID == "" {
		return "", fmt.Errorf("article %s has no item id", articleNumber)
	}
	return rec.Item.ID, nil
}

func (s *StockService) GetStockItems(ctx context.Context) ([]models.Item, error) {
	return s.r.GetStockItems(ctx)
}

// SetComment stores a free-text note about an item's stock, e.g. a pending
// delivery.
func (s *StockService) SetComment(ctx context.Context, req StockCommentRequest) (*models.Item, error) {
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, custom_error.NewInvalidArgument("comment", "must not be empty")
	}
	return s.writeComment(ctx, req.ItemID, comment)
}

func (s *StockService) ClearComment(ctx context.Context, itemID string) (*models.Item, error) {
	return s.writeComment(ctx, itemID, "")
}

func (s *StockService) writeComment(ctx context.Context, itemID, comment string) (*models.Item, error) {
	rec, err := s.r.GetStockItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	rec.Item.CommentOnStock = comment
	rec.Row["comment_on_stock"] = comment
	if err := s.r.UpdateStockItem(ctx, rec); err != nil {
		return nil, err
	}
	item := rec.Item
	return &item, nil
}

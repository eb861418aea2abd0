// Package inventorylog confirms a basket of scanned movements: it adjusts
// stock and writes the movement log, one line at a time.
package inventorylog

import (
	"context"
	"fmt"
	"strings"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"go.uber.org/zap"
)

type StockAdjuster interface {
	ResolveArticle(ctx context.Context, articleNumber string) (string, error)
	AdjustStock(ctx context.Context, itemID string, quantity int, action metadata.Action) (*models.Item, error)
}

type EventAppender interface {
	AppendEvent(ctx context.Context, articleNumber string, quantity int, action metadata.Action, userName, status, projectRef string) (*models.MovementLogEntry, error)
}

// Movement is one confirmed line. ApplyToStock defaults to true for takes
// and, for returns, to whether the return type restores stock.
type Movement struct {
	ArticleNumber string `json:"article_number"`
	Quantity      *int   `json:"quantity"`
	Action        string `json:"action"`
	ReturnType    string `json:"return_type"`
	ApplyToStock  *bool  `json:"apply_to_stock,omitempty"`
	ProjectRef    string `json:"project_ref"`
}

type ConfirmResult struct {
	Processed int                       `json:"processed"`
	Entries   []models.MovementLogEntry `json:"entries"`
}

type InventoryLog struct {
	stocks StockAdjuster
	events EventAppender
	logger *zap.Logger
}

func NewInventoryLog(stocks StockAdjuster, events EventAppender, logger *zap.Logger) *InventoryLog {
	return &InventoryLog{stocks: stocks, events: events, logger: logger}
}

// Confirm applies movements in order and stops at the first failure. Lines
// before the failing one stay applied: stock and log are not transactional.
func (l *InventoryLog) Confirm(ctx context.Context, userName string, movements []Movement) (*ConfirmResult, error) {
	result := &ConfirmResult{Entries: []models.MovementLogEntry{}}
	if len(movements) == 0 {
		return result, custom_error.NewInvalidArgument("movements", "no data provided")
	}

	for i, m := range movements {
		entry, err := l.confirmOne(ctx, userName, m)
		if err != nil {
			l.logger.Warn("movement rejected",
				zap.Int("line", i),
				zap.String("article_number", m.ArticleNumber),
				zap.Int("applied", result.Processed),
				zap.Error(err),
			)
			return result, err
		}
		result.Processed++
		result.Entries = append(result.Entries, *entry)
	}

	return result, nil
}

func (l *InventoryLog) confirmOne(ctx context.Context, userName string, m Movement) (*models.MovementLogEntry, error) {
	article := strings.TrimSpace(m.ArticleNumber)
	if article == "" {
		return nil, custom_error.NewInvalidArgument("article_number", "missing")
	}
	if m.Quantity == nil {
		return nil, custom_error.NewInvalidArgument("quantity", "missing for %s", article)
	}
	quantity := *m.Quantity
	if quantity <= 0 {
		return nil, custom_error.NewInvalidArgument("quantity", "must be positive for %s, got %d", article, quantity)
	}

	rawAction := m.Action
	if strings.TrimSpace(rawAction) == "" {
		rawAction = metadata.ActionTake.String()
	}
	action, err := metadata.NewAction(rawAction)
	if err != nil {
		return nil, custom_error.NewInvalidArgument("action", "%s", err.Error())
	}
	returnType := metadata.NewReturnType(m.ReturnType)

	itemID, err := l.stocks.ResolveArticle(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("unknown product %s: %w", article, err)
	}

	if applyToStock(action, returnType, m.ApplyToStock) {
		if _, err := l.stocks.AdjustStock(ctx, itemID, quantity, action); err != nil {
			return nil, err
		}
	}

	return l.events.AppendEvent(ctx, article, quantity, action, userName, returnType.String(), m.ProjectRef)
}

func applyToStock(action metadata.Action, returnType metadata.ReturnType, explicit *bool) bool {
	if action == metadata.ActionTake {
		return true
	}
	if explicit != nil {
		return *explicit
	}
	return returnType.RestoresStock()
}

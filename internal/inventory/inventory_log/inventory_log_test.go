package inventorylog

import (
	"context"
	"testing"

	"stockroom/internal/inventory/movements"
	"stockroom/internal/inventory/stocks"
	"stockroom/internal/store"
	"stockroom/internal/store/memstore"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func qty(n int) *int { return &n }

func flag(b bool) *bool { return &b }

func newLog(s store.Store) *InventoryLog {
	stockService := stocks.NewStockService(stocks.NewRepository(s), nil, zap.NewNop())
	movementService := movements.NewMovementService(movements.NewRepository(s), zap.NewNop())
	return NewInventoryLog(stockService, movementService, zap.NewNop())
}

func seeded() *memstore.Store {
	s := memstore.New()
	s.Seed(store.TableProducts,
		store.Row{"id": "1", "article_number": "A-1", "product_name": "Cable", "stock": "10"},
		store.Row{"id": "2", "article_number": "A-2", "product_name": "Tape", "stock": "1"},
	)
	return s
}

func TestConfirm(t *testing.T) {
	s := seeded()

	result, err := newLog(s).Confirm(context.Background(), "ola", []Movement{
		{ArticleNumber: "A-1", Quantity: qty(4)},
		{ArticleNumber: "A-1", Quantity: qty(1), Action: "return", ReturnType: "Returned"},
		{ArticleNumber: "A-1", Quantity: qty(2), Action: "return", ReturnType: "used"},
		{ArticleNumber: "A-1", Quantity: qty(1), Action: "return", ReturnType: "broken", ApplyToStock: flag(true)},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, "8", s.Rows(store.TableProducts)[0]["stock"])

	logs := s.Rows(store.TableLogs)
	require.Len(t, logs, 4)
	assert.Equal(t, "take", logs[0]["action"])
	assert.Equal(t, "", logs[0]["status"])
	assert.Equal(t, "returned", logs[1]["status"])
	assert.Equal(t, "used", logs[2]["status"])
	assert.Equal(t, "ola", logs[3]["user_name"])
}

func TestConfirmStopsAtFirstFailure(t *testing.T) {
	s := seeded()

	result, err := newLog(s).Confirm(context.Background(), "ola", []Movement{
		{ArticleNumber: "A-1", Quantity: qty(1), Action: "take"},
		{ArticleNumber: "A-2", Quantity: qty(5), Action: "take"},
		{ArticleNumber: "A-1", Quantity: qty(1), Action: "take"},
	})

	assert.True(t, custom_error.IsInsufficientStock(err))
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, "9", s.Rows(store.TableProducts)[0]["stock"])
	assert.Len(t, s.Rows(store.TableLogs), 1)
}

func TestConfirmRejectsBadLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []Movement
		check func(error) bool
	}{
		{"empty basket", nil, custom_error.IsInvalidArgument},
		{"missing article", []Movement{{Quantity: qty(1)}}, custom_error.IsInvalidArgument},
		{"missing quantity", []Movement{{ArticleNumber: "A-1"}}, custom_error.IsInvalidArgument},
		{"bad action", []Movement{{ArticleNumber: "A-1", Quantity: qty(1), Action: "issue"}}, custom_error.IsInvalidArgument},
		{"unknown article", []Movement{{ArticleNumber: "Z-9", Quantity: qty(1)}}, custom_error.IsNotFound},
		{"zero quantity", []Movement{{ArticleNumber: "A-1", Quantity: qty(0)}}, custom_error.IsInvalidArgument},
		{"negative used return", []Movement{{ArticleNumber: "A-1", Quantity: qty(-3), Action: "return", ReturnType: "used"}}, custom_error.IsInvalidArgument},
		{"negative return without stock", []Movement{{ArticleNumber: "A-1", Quantity: qty(-1), Action: "return", ApplyToStock: flag(false)}}, custom_error.IsInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded()
			_, err := newLog(s).Confirm(context.Background(), "ola", tt.lines)

			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Empty(t, s.Rows(store.TableLogs))
		})
	}
}

type MockStockAdjuster struct {
	mock.Mock
}

func (m *MockStockAdjuster) ResolveArticle(ctx context.Context, articleNumber string) (string, error) {
	args := m.Called(ctx, articleNumber)
	return args.String(0), args.Error(1)
}

func (m *MockStockAdjuster) AdjustStock(ctx context.Context, itemID string, quantity int, action metadata.Action) (*models.Item, error) {
	args := m.Called(ctx, itemID, quantity, action)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

type MockEventAppender struct {
	mock.Mock
}

func (m *MockEventAppender) AppendEvent(ctx context.Context, articleNumber string, quantity int, action metadata.Action, userName, status, projectRef string) (*models.MovementLogEntry, error) {
	args := m.Called(ctx, articleNumber, quantity, action, userName, status, projectRef)
	entry, _ := args.Get(0).(*models.MovementLogEntry)
	return entry, args.Error(1)
}

func TestConfirmSkipsStockForUsedReturns(t *testing.T) {
	stockMock := new(MockStockAdjuster)
	eventMock := new(MockEventAppender)

	stockMock.On("ResolveArticle", mock.Anything, "A-1").Return("1", nil).Once()
	eventMock.On("AppendEvent", mock.Anything, "A-1", 3, metadata.ActionReturn, "ola", "used", "P-1").
		Return(&models.MovementLogEntry{ID: "x"}, nil).Once()

	l := NewInventoryLog(stockMock, eventMock, zap.NewNop())
	_, err := l.Confirm(context.Background(), "ola", []Movement{
		{ArticleNumber: "A-1", Quantity: qty(3), Action: "return", ReturnType: "used", ProjectRef: "P-1"},
	})

	require.NoError(t, err)
	stockMock.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	stockMock.AssertExpectations(t)
	eventMock.AssertExpectations(t)
}

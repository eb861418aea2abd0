package stocks

import (
	"context"
	"sync"
	"testing"

	"stockroom/internal/store"
	"stockroom/internal/store/memstore"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededStore(stock string) *memstore.Store {
	s := memstore.New()
	s.Seed(store.TableProducts,
		store.Row{"id": "1", "article_number": "A-100", "product_name": "Drill bit", "product_description": "Drill bit 8mm", "stock": stock, "safety_stock": "5"},
		store.Row{"id": "2", "article_number": "A-200", "product_name": "Anchor", "stock": "3"},
	)
	return s
}

func newService(s store.Store, locker Locker) *StockService {
	return NewStockService(NewRepository(s), locker, zap.NewNop())
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("take decreases stock", func(t *testing.T) {
		s := seededStore("10")
		item, err := newService(s, nil).AdjustStock(ctx, "1", 3, metadata.ActionTake)

		require.NoError(t, err)
		assert.Equal(t, 7, item.Stock)
		assert.Equal(t, "7", s.Rows(store.TableProducts)[0]["stock"])
		assert.Equal(t, "Drill bit", s.Rows(store.TableProducts)[0]["product_name"])
	})

	t.Run("take then return restores stock", func(t *testing.T) {
		s := seededStore("10")
		svc := newService(s, nil)

		_, err := svc.AdjustStock(ctx, "1", 4, metadata.ActionTake)
		require.NoError(t, err)
		item, err := svc.AdjustStock(ctx, "1", 4, metadata.ActionReturn)
		require.NoError(t, err)

		assert.Equal(t, 10, item.Stock)
	})

	t.Run("take of exactly the stock leaves zero", func(t *testing.T) {
		item, err := newService(seededStore("3"), nil).AdjustStock(ctx, "1", 3, metadata.ActionTake)
		require.NoError(t, err)
		assert.Equal(t, 0, item.Stock)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		s := seededStore("2")
		_, err := newService(s, nil).AdjustStock(ctx, "1", 3, metadata.ActionTake)

		var insufficient *custom_error.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "Drill bit 8mm", insufficient.Description)
		assert.Equal(t, 2, insufficient.Available)
		assert.Equal(t, 3, insufficient.Requested)
		assert.Equal(t, "2", s.Rows(store.TableProducts)[0]["stock"])
	})

	t.Run("blank stock counts as zero", func(t *testing.T) {
		item, err := newService(seededStore(""), nil).AdjustStock(ctx, "1", 2, metadata.ActionReturn)
		require.NoError(t, err)
		assert.Equal(t, 2, item.Stock)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := newService(seededStore("10"), nil).AdjustStock(ctx, "99", 1, metadata.ActionTake)
		assert.True(t, custom_error.IsNotFound(err))
	})

	t.Run("invalid arguments", func(t *testing.T) {
		svc := newService(seededStore("10"), nil)

		_, err := svc.AdjustStock(ctx, "1", 0, metadata.ActionTake)
		assert.True(t, custom_error.IsInvalidArgument(err))

		_, err = svc.AdjustStock(ctx, "1", -2, metadata.ActionReturn)
		assert.True(t, custom_error.IsInvalidArgument(err))

		_, err = svc.AdjustStock(ctx, "1", 1, metadata.Action("issue"))
		assert.True(t, custom_error.IsInvalidArgument(err))
	})
}

// barrierStore lets every product read finish only once n reads have
// happened, so concurrent adjustments all see the same starting stock.
type barrierStore struct {
	store.Store
	reads sync.WaitGroup
}

func (b *barrierStore) ReadTable(ctx context.Context, table string, filter store.Filter) ([]store.Record, error) {
	records, err := b.Store.ReadTable(ctx, table, filter)
	if table == store.TableProducts {
		b.reads.Done()
		b.reads.Wait()
	}
	return records, err
}

func TestAdjustStockLostUpdateWithoutLock(t *testing.T) {
	s := seededStore("10")
	b := &barrierStore{Store: s}
	b.reads.Add(2)
	svc := newService(b, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustStock(context.Background(), "1", 3, metadata.ActionTake)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Both takes succeeded but only one decrement survived.
	assert.Equal(t, "7", s.Rows(store.TableProducts)[0]["stock"])
}

type mutexLocker struct {
	mu sync.Mutex
}

func (m *mutexLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	m.mu.Lock()
	return func(context.Context) error {
		m.mu.Unlock()
		return nil
	}, nil
}

func TestAdjustStockSerialisedWithLock(t *testing.T) {
	s := seededStore("10")
	svc := newService(s, &mutexLocker{})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustStock(context.Background(), "1", 3, metadata.ActionTake)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "1", s.Rows(store.TableProducts)[0]["stock"])
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	args := m.Called(ctx, key)
	if fn, ok := args.Get(0).(func(context.Context) error); ok {
		return fn, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAdjustStockUsesItemLock(t *testing.T) {
	released := false
	locker := new(MockLocker)
	locker.On("Lock", mock.Anything, "stock:1").Return(func(context.Context) error {
		released = true
		return nil
	}, nil).Once()

	_, err := newService(seededStore("10"), locker).AdjustStock(context.Background(), "1", 1, metadata.ActionTake)

	require.NoError(t, err)
	assert.True(t, released)
	locker.AssertExpectations(t)
}

func TestAdjustStockLockFailure(t *testing.T) {
	s := seededStore("10")
	locker := new(MockLocker)
	locker.On("Lock", mock.Anything, "stock:1").Return(nil, ErrLockNotObtained).Once()

	_, err := newService(s, locker).AdjustStock(context.Background(), "1", 1, metadata.ActionTake)

	assert.ErrorIs(t, err, ErrLockNotObtained)
	assert.Equal(t, "10", s.Rows(store.TableProducts)[0]["stock"])
}

func TestResolveArticle(t *testing.T) {
	svc := newService(seededStore("10"), nil)

	id, err := svc.ResolveArticle(context.Background(), " A-200 ")
	require.NoError(t, err)
	assert.Equal(t, "2", id)

	_, err = svc.ResolveArticle(context.Background(), "A-999")
	assert.True(t, custom_error.IsNotFound(err))

	_, err = svc.ResolveArticle(context.Background(), "")
	assert.True(t, custom_error.IsInvalidArgument(err))
}

func TestAdjustStockKeepsOtherColumns(t *testing.T) {
	s := memstore.New()
	s.Seed(store.TableProducts, store.Row{
		"id":                "1",
		"article_number":    "A-1",
		"stock":             "10",
		"qr_code_url":       "qr/A-1.png",
		"product_image_url": "img/A-1.jpg",
	})
	svc := newService(s, nil)

	_, err := svc.AdjustStock(context.Background(), "1", 2, metadata.ActionTake)
	require.NoError(t, err)
	_, err = svc.SetComment(context.Background(), StockCommentRequest{ItemID: "1", Comment: "recount"})
	require.NoError(t, err)

	row := s.Rows(store.TableProducts)[0]
	assert.Equal(t, "8", row["stock"])
	assert.Equal(t, "recount", row["comment_on_stock"])
	assert.Equal(t, "qr/A-1.png", row["qr_code_url"])
	assert.Equal(t, "img/A-1.jpg", row["product_image_url"])
}

func TestStockComment(t *testing.T) {
	s := seededStore("10")
	svc := newService(s, nil)

	item, err := svc.SetComment(context.Background(), StockCommentRequest{ItemID: "2", Comment: "  delivery on Friday "})
	require.NoError(t, err)
	assert.Equal(t, "delivery on Friday", item.CommentOnStock)
	assert.Equal(t, "delivery on Friday", s.Rows(store.TableProducts)[1]["comment_on_stock"])

	_, err = svc.SetComment(context.Background(), StockCommentRequest{ItemID: "2", Comment: " "})
	assert.True(t, custom_error.IsInvalidArgument(err))

	item, err = svc.ClearComment(context.Background(), "2")
	require.NoError(t, err)
	assert.Empty(t, item.CommentOnStock)
	assert.Equal(t, "", s.Rows(store.TableProducts)[1]["comment_on_stock"])
}

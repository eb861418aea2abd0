package memstore

import (
	"context"
	"testing"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAppendUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(store.TableProducts, store.Row{"id": "1", "article_number": "A-1", "stock": "4"})

	ref, err := s.AppendRow(ctx, store.TableProducts, store.Row{"id": "2", "article_number": "A-2"})
	require.NoError(t, err)

	records, err := s.ReadTable(ctx, store.TableProducts, store.Filter{"article_number": "A-2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ref, records[0].Ref)

	row := records[0].Row
	row["stock"] = "9"
	require.NoError(t, s.UpdateRow(ctx, store.TableProducts, ref, row))

	assert.Equal(t, "9", s.Rows(store.TableProducts)[1]["stock"])
}

func TestReadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(store.TableLogs, store.Row{"id": "x"})

	records, err := s.ReadTable(ctx, store.TableLogs, nil)
	require.NoError(t, err)
	records[0].Row["id"] = "mutated"

	assert.Equal(t, "x", s.Rows(store.TableLogs)[0]["id"])
}

func TestUpdateUnknownRef(t *testing.T) {
	err := New().UpdateRow(context.Background(), store.TableLogs, "7", store.Row{})
	assert.True(t, custom_error.IsStoreUnavailable(err))
}

func TestUpsertRows(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed("users", store.Row{"email": "a@x.io", "name": "Anna", "role": "worker"})

	err := s.UpsertRows(ctx, "users", []store.Row{
		{"email": "a@x.io", "role": "master"},
		{"email": "b@x.io", "name": "Bo"},
	}, "email")
	require.NoError(t, err)

	rows := s.Rows("users")
	require.Len(t, rows, 2)
	assert.Equal(t, store.Row{"email": "a@x.io", "name": "Anna", "role": "master"}, rows[0])
	assert.Equal(t, "Bo", rows[1]["name"])
}

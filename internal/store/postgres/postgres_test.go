package postgres

import (
	"testing"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQuery(t *testing.T) {
	query, _, err := selectQuery(store.TableLogs, store.Filter{"article_number": "A-1"}).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "logs"`)
	assert.Contains(t, query, `"article_number" = 'A-1'`)
	assert.Contains(t, query, `ORDER BY "row_id" ASC`)
}

func TestSelectQueryWithoutFilter(t *testing.T) {
	query, _, err := selectQuery(store.TableProjects, nil).ToSQL()
	require.NoError(t, err)

	assert.NotContains(t, query, "WHERE")
}

func TestUpdateQuery(t *testing.T) {
	ds, err := updateQuery(store.TableProducts, "4", store.Row{"stock": "7", "comment_on_stock": ""})
	require.NoError(t, err)

	query, _, err := ds.ToSQL()
	require.NoError(t, err)

	assert.Contains(t, query, `UPDATE "products" SET`)
	assert.Contains(t, query, `"stock"='7'`)
	assert.Contains(t, query, `"comment_on_stock"=DEFAULT`)
	assert.Contains(t, query, `"row_id" = 4`)
}

func TestUpdateQueryRejectsForeignRef(t *testing.T) {
	_, err := updateQuery(store.TableProducts, "A7", store.Row{"stock": "1"})
	assert.Error(t, err)
}

func TestUpsertQuery(t *testing.T) {
	rows := []store.Row{
		{"id": "1", "stock": "5"},
		{"id": "2", "stock": ""},
	}

	query, _, err := upsertQuery(store.TableProducts, rows, "id").ToSQL()
	require.NoError(t, err)

	assert.Contains(t, query, `INSERT INTO "products" ("id", "stock")`)
	assert.Contains(t, query, `('1', '5')`)
	assert.Contains(t, query, `('2', DEFAULT)`)
	assert.Contains(t, query, `ON CONFLICT (id) DO UPDATE SET "stock"=EXCLUDED.stock`)
	assert.NotContains(t, query, `"id"=EXCLUDED.id`)
}

func TestUpsertLeavesOmittedColumnsAlone(t *testing.T) {
	rows := []store.Row{
		{"id": "1", "stock": "5"},
		{"id": "2", "location": "B2"},
		{"id": "3", "location": "C3"},
	}

	batches := upsertBatches(rows, "id")
	require.Len(t, batches, 2)
	assert.Equal(t, rows[:1], batches[0])
	assert.Equal(t, rows[1:], batches[1])

	query, _, err := upsertQuery(store.TableProducts, batches[1], "id").ToSQL()
	require.NoError(t, err)

	assert.Contains(t, query, `INSERT INTO "products" ("id", "location")`)
	assert.Contains(t, query, `"location"=EXCLUDED.location`)
	assert.NotContains(t, query, "stock")
	assert.NotContains(t, query, "DEFAULT")
}

func TestUpsertBatchesSplitRepeatedKeys(t *testing.T) {
	rows := []store.Row{
		{"id": "1", "stock": "5"},
		{"id": "2", "stock": "6"},
		{"id": "1", "stock": "7"},
	}

	batches := upsertBatches(rows, "id")

	require.Len(t, batches, 2)
	assert.Equal(t, rows[:2], batches[0])
	assert.Equal(t, rows[2:], batches[1])
}

func TestWrapError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		err := wrapError("append products", &pq.Error{Code: "23505", Message: "duplicate key"})

		var unique *custom_error.UniqueViolationError
		assert.ErrorAs(t, err, &unique)
	})

	t.Run("other driver error", func(t *testing.T) {
		err := wrapError("append products", &pq.Error{Code: "08006", Message: "connection failure"})
		assert.True(t, custom_error.IsStoreUnavailable(err))
	})

	t.Run("plain error", func(t *testing.T) {
		err := wrapError("read logs", assert.AnError)
		assert.True(t, custom_error.IsStoreUnavailable(err))
		assert.ErrorIs(t, err, assert.AnError)
	})
}

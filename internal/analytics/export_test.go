package analytics

import (
	"bytes"
	"context"
	"testing"

	"stockroom/internal/store"
	"stockroom/internal/store/memstore"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type staticItems []models.Item

func (s staticItems) GetStockItems(context.Context) ([]models.Item, error) { return s, nil }

type staticEvents []models.MovementLogEntry

func (s staticEvents) AllEvents(context.Context) ([]models.MovementLogEntry, error) { return s, nil }

type staticIssues []models.IssueReport

func (s staticIssues) AllIssues(context.Context) ([]models.IssueReport, error) { return s, nil }

type failingEvents struct{}

func (failingEvents) AllEvents(context.Context) ([]models.MovementLogEntry, error) {
	return nil, assert.AnError
}

func TestExportWorkbook(t *testing.T) {
	s := memstore.New()
	s.Seed(store.TableAnalytics, store.Row{
		"article_number": "A", "project_number": "P-1", "order_time": "2024-05-01T08:00:00Z",
		"item_name": "Anchor", "projected_quantity": "5", "taken_quantity": "3", "returned_quantity": "0",
	})
	items := staticItems{
		{ArticleNumber: "A", ProductName: "Anchor", Location: "R1", Stock: 1, SafetyStock: 4},
		{ArticleNumber: "B", ProductName: "Bolt", Stock: 9, SafetyStock: 2},
	}
	events := staticEvents{
		{ID: "e1", ArticleNumber: "A", Quantity: 3, Action: metadata.ActionTake, UserName: "ola", Timestamp: "2024-05-10T07:00:00.000000Z", Status: "", ProjectRef: "P-1"},
	}

	issues := staticIssues{
		{ID: "i1", Issue: "damaged", ArticleNumber: "A", ProductName: "Anchor", Count: 1, UserName: "ola"},
		{ID: "i2", Issue: "missing", ArticleNumber: "A", ProductName: "Anchor", Count: 2, UserName: "piotr"},
	}

	var buf bytes.Buffer
	err := NewExporter(s, items, events, issues).ExportWorkbook(context.Background(), &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAnalytics, SheetLogs, SheetLowStock, SheetIssues, SheetIssueTop}, f.GetSheetList())

	rows, err := f.GetRows(SheetAnalytics)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Article Number", rows[0][0])
	assert.Equal(t, []string{"A", "2024-05-01T08:00:00Z", "", "", "", "P-1", "", "Anchor", "5", "3", "0"}, rows[1])

	rows, err = f.GetRows(SheetLogs)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "take", rows[1][3])
	assert.Equal(t, "ola", rows[1][4])

	rows, err = f.GetRows(SheetLowStock)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"A", "Anchor", "R1", "1", "4", "3"}, rows[1])

	rows, err = f.GetRows(SheetIssues)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "damaged", rows[1][1])

	rows, err = f.GetRows(SheetIssueTop)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"A", "Anchor", "2"}, rows[1])
}

func TestExportWorkbookPropagatesSourceErrors(t *testing.T) {
	var buf bytes.Buffer
	err := NewExporter(memstore.New(), staticItems{}, failingEvents{}, staticIssues{}).ExportWorkbook(context.Background(), &buf)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, buf.Len())
}

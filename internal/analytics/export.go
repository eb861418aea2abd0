package analytics

import (
	"context"
	"fmt"
	"io"

	"stockroom/internal/inventory/movements"
	"stockroom/internal/store"
	"stockroom/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetAnalytics = "data_analytics"
	SheetLogs      = "logs"
	SheetLowStock  = "low_stock"
	SheetIssues    = "issue_reports"
	SheetIssueTop  = "issue_counts"
)

var analyticsHeadings = []string{
	"Article Number", "Order time", "Order status", "Warehouse", "Driller",
	"Drilling unit / Project number", "Pickup time", "Item name",
	"Projected quantity", "Taken quantity", "Returned quantity", "Comments",
}

var logHeadings = []string{"ID", "Article Number", "Quantity", "Action", "User", "Timestamp", "Status", "Project"}

var issueHeadings = []string{"ID", "Issue", "Article Number", "Product name", "Count", "Timestamp", "User", "Created at"}

var issueCountHeadings = []string{"Article Number", "Product name", "Reports"}

var lowStockHeadings = []string{"Article Number", "Product name", "Location", "Stock", "Safety stock", "Deficit", "Comment"}

type ItemSource interface {
	GetStockItems(ctx context.Context) ([]models.Item, error)
}

type EventSource interface {
	AllEvents(ctx context.Context) ([]models.MovementLogEntry, error)
}

type IssueSource interface {
	AllIssues(ctx context.Context) ([]models.IssueReport, error)
}

type Exporter struct {
	store  store.Store
	items  ItemSource
	events EventSource
	issues IssueSource
}

func NewExporter(s store.Store, items ItemSource, events EventSource, issues IssueSource) *Exporter {
	return &Exporter{store: s, items: items, events: events, issues: issues}
}

// ExportWorkbook writes an xlsx workbook with the analytics table, the
// movement log, the items below safety stock and the issue reports with
// their per-item counts.
func (e *Exporter) ExportWorkbook(ctx context.Context, w io.Writer) error {
	records, err := e.store.ReadTable(ctx, store.TableAnalytics, nil)
	if err != nil {
		return fmt.Errorf("unable to read analytics table: %w", err)
	}
	events, err := e.events.AllEvents(ctx)
	if err != nil {
		return err
	}
	items, err := e.items.GetStockItems(ctx)
	if err != nil {
		return err
	}
	issues, err := e.issues.AllIssues(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	analyticsRows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		a := FromRow(rec.Row)
		analyticsRows = append(analyticsRows, []interface{}{
			a.ArticleNumber, a.OrderTime, a.OrderStatus, a.Warehouse, a.Driller,
			a.ProjectNumber, a.PickupTime, a.ItemName,
			a.ProjectedQuantity, a.TakenQuantity, a.ReturnedQuantity, a.Comments,
		})
	}
	if err := writeSheet(f, SheetAnalytics, analyticsHeadings, analyticsRows); err != nil {
		return err
	}

	logRows := make([][]interface{}, 0, len(events))
	for _, ev := range events {
		logRows = append(logRows, []interface{}{
			ev.ID, ev.ArticleNumber, ev.Quantity, ev.Action.String(), ev.UserName, ev.Timestamp, ev.Status, ev.ProjectRef,
		})
	}
	if err := writeSheet(f, SheetLogs, logHeadings, logRows); err != nil {
		return err
	}

	shortages := ItemsBelowSafetyStock(items)
	lowRows := make([][]interface{}, 0, len(shortages))
	for _, s := range shortages {
		lowRows = append(lowRows, []interface{}{
			s.ArticleNumber, s.ProductName, s.Location, s.Stock, s.SafetyStock, s.Deficit, s.CommentOnStock,
		})
	}
	if err := writeSheet(f, SheetLowStock, lowStockHeadings, lowRows); err != nil {
		return err
	}

	issueRows := make([][]interface{}, 0, len(issues))
	for _, is := range issues {
		issueRows = append(issueRows, []interface{}{
			is.ID, is.Issue, is.ArticleNumber, is.ProductName, is.Count, is.Timestamp, is.UserName, is.CreatedAt,
		})
	}
	if err := writeSheet(f, SheetIssues, issueHeadings, issueRows); err != nil {
		return err
	}

	counts := movements.IssueCounts(issues)
	countRows := make([][]interface{}, 0, len(counts))
	for _, c := range counts {
		countRows = append(countRows, []interface{}{c.ArticleNumber, c.ProductName, c.Reports})
	}
	if err := writeSheet(f, SheetIssueTop, issueCountHeadings, countRows); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(SheetAnalytics); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headings []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(headings))
	for i, h := range headings {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

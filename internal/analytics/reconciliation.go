// Package analytics derives the consolidated per-project item table from the
// project sub-ledgers and reports on stock levels.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"stockroom/internal/core/logger"
	"stockroom/internal/projects"
	"stockroom/internal/store"
	"stockroom/pkg/merge"
	"stockroom/pkg/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type ProjectSource interface {
	GetProjects(ctx context.Context) ([]projects.ProjectRecord, error)
}

// Reconciler folds every project's item, taken and returned lists into one
// analytics row per (article, project, order time). Runs within one process
// are serialised; it must be the only writer of the analytics table.
type Reconciler struct {
	store    store.Store
	projects ProjectSource
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewReconciler(s store.Store, p ProjectSource, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: s, projects: p, logger: logger}
}

var analyticsColumns = store.Columns[store.TableAnalytics]

func (r *Reconciler) RunReconciliation(ctx context.Context) (merge.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := otel.Tracer("stockroom/analytics").Start(ctx, "RunReconciliation")
	defer span.End()

	merger := merge.New(rowKey, rowsEqual, merge.Target[store.Row](&tableTarget{store: r.store, table: store.TableAnalytics}))

	existing, err := r.store.ReadTable(ctx, store.TableAnalytics, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read analytics")
		return merge.Result{}, fmt.Errorf("unable to read analytics table: %w", err)
	}
	for _, rec := range existing {
		row := rec.Row.Pad(analyticsColumns)
		if rowKey(row) == (models.AnalyticsKey{}) {
			continue
		}
		merger.Seed(string(rec.Ref), row)
	}

	records, err := r.projects.GetProjects(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read projects")
		return merger.Result(), err
	}

	for i := range records {
		rec := &records[i]
		if rec.DecodeErr != nil {
			logger.WithTrace(ctx, r.logger).Warn("malformed project lists treated as empty",
				zap.String("project_number", rec.Project.ProjectNumber),
				zap.Error(rec.DecodeErr),
			)
		}

		for _, candidate := range BuildRows(rec) {
			if _, err := merger.Merge(ctx, toRow(candidate)); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "write analytics")
				return merger.Result(), fmt.Errorf("project %s, article %s: %w", candidate.ProjectNumber, candidate.ArticleNumber, err)
			}
		}
	}

	result := merger.Result()
	span.SetAttributes(
		attribute.Int("analytics.appended", result.Appended),
		attribute.Int("analytics.updated", result.Updated),
		attribute.Int("analytics.skipped", result.Skipped),
	)
	logger.WithTrace(ctx, r.logger).Info("reconciliation finished",
		zap.Int("projects", len(records)),
		zap.Int("appended", result.Appended),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

type itemTotals struct {
	name        string
	projected   int
	taken       int
	returned    int
	returnTypes []string
	byType      map[string]int
}

// BuildRows aggregates one project's lists per item id. Every item id seen in
// any of the three lists gets a row, in sorted order.
func BuildRows(rec *projects.ProjectRecord) []models.AnalyticsRow {
	p := &rec.Project
	totals := map[string]*itemTotals{}
	get := func(id, name string) *itemTotals {
		t, ok := totals[id]
		if !ok {
			t = &itemTotals{byType: map[string]int{}}
			totals[id] = t
		}
		if t.name == "" {
			t.name = name
		}
		return t
	}

	for _, it := range p.Items {
		if it.ItemID != "" {
			get(it.ItemID, it.ItemName).projected += it.Quantity
		}
	}
	for _, it := range p.TakenByWorker {
		if it.ItemID != "" {
			get(it.ItemID, it.ItemName).taken += it.Quantity
		}
	}
	for _, it := range p.ReturnedByWorker {
		if it.ItemID == "" {
			continue
		}
		t := get(it.ItemID, it.ItemName)
		t.returned += it.Quantity
		if it.ReturnType == "" {
			continue
		}
		if _, seen := t.byType[it.ReturnType]; !seen {
			t.returnTypes = append(t.returnTypes, it.ReturnType)
		}
		t.byType[it.ReturnType] += it.Quantity
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	driller := ""
	if len(p.Workers) > 0 {
		driller = p.Workers[0].Name
		if driller == "" {
			driller = p.Workers[0].Username
		}
	}

	rows := make([]models.AnalyticsRow, 0, len(ids))
	for _, id := range ids {
		t := totals[id]
		comments := make([]string, 0, len(t.returnTypes))
		for _, rt := range t.returnTypes {
			comments = append(comments, rt+":"+strconv.Itoa(t.byType[rt]))
		}

		rows = append(rows, models.AnalyticsRow{
			ArticleNumber:     id,
			OrderTime:         rec.Row.Get("created_at"),
			OrderStatus:       rec.Row.Get("status"),
			Warehouse:         rec.Row.Get("customer_name"),
			Driller:           strings.TrimSpace(driller),
			ProjectNumber:     p.ProjectNumber,
			PickupTime:        rec.Row.Get("start_date"),
			ItemName:          t.name,
			ProjectedQuantity: t.projected,
			TakenQuantity:     t.taken,
			ReturnedQuantity:  t.returned,
			Comments:          strings.Join(comments, "; "),
		})
	}
	return rows
}

func toRow(a models.AnalyticsRow) store.Row {
	return store.Row{
		"article_number":     a.ArticleNumber,
		"order_time":         a.OrderTime,
		"order_status":       a.OrderStatus,
		"warehouse":          a.Warehouse,
		"driller":            a.Driller,
		"project_number":     a.ProjectNumber,
		"pickup_time":        a.PickupTime,
		"item_name":          a.ItemName,
		"projected_quantity": strconv.Itoa(a.ProjectedQuantity),
		"taken_quantity":     strconv.Itoa(a.TakenQuantity),
		"returned_quantity":  strconv.Itoa(a.ReturnedQuantity),
		"comments":           a.Comments,
	}
}

// FromRow reads an analytics row leniently.
func FromRow(row store.Row) models.AnalyticsRow {
	return models.AnalyticsRow{
		ArticleNumber:     row.Get("article_number"),
		OrderTime:         row.Get("order_time"),
		OrderStatus:       row.Get("order_status"),
		Warehouse:         row.Get("warehouse"),
		Driller:           row.Get("driller"),
		ProjectNumber:     row.Get("project_number"),
		PickupTime:        row.Get("pickup_time"),
		ItemName:          row.Get("item_name"),
		ProjectedQuantity: row.Int("projected_quantity", 0),
		TakenQuantity:     row.Int("taken_quantity", 0),
		ReturnedQuantity:  row.Int("returned_quantity", 0),
		Comments:          row.Get("comments"),
	}
}

func rowKey(row store.Row) models.AnalyticsKey {
	return models.AnalyticsKey{
		ArticleNumber: row.Get("article_number"),
		ProjectNumber: row.Get("project_number"),
		OrderTime:     row.Get("order_time"),
	}
}

// rowsEqual compares every analytics column as stored text.
func rowsEqual(a, b store.Row) bool {
	for _, c := range analyticsColumns {
		if a[c] != b[c] {
			return false
		}
	}
	return true
}

type tableTarget struct {
	store store.Store
	table string
}

func (t *tableTarget) Append(ctx context.Context, row store.Row) (string, error) {
	ref, err := t.store.AppendRow(ctx, t.table, row)
	return string(ref), err
}

func (t *tableTarget) Update(ctx context.Context, ref string, row store.Row) error {
	return t.store.UpdateRow(ctx, t.table, store.RowRef(ref), row)
}

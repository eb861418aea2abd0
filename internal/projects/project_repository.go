package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
	"stockroom/pkg/sublist"
)

// Embedded list columns of a project row.
const (
	columnWorkers  = "workers"
	columnItems    = "items"
	columnTaken    = "taken_by_worker"
	columnReturned = "returned_by_worker"
)

// ProjectRecord is a decoded project with the row it came from. DecodeErr
// collects every list column that could not be parsed; those lists are empty
// in Project.
type ProjectRecord struct {
	Project   models.Project
	Ref       store.RowRef
	Row       store.Row
	DecodeErr error
}

type ProjectRepository struct {
	store store.Store
}

func NewRepository(s store.Store) *ProjectRepository {
	return &ProjectRepository{store: s}
}

func (r *ProjectRepository) GetProjects(ctx context.Context) ([]ProjectRecord, error) {
	return r.read(ctx, nil)
}

// GetProject returns the first project with the given number.
func (r *ProjectRepository) GetProject(ctx context.Context, projectNumber string) (*ProjectRecord, error) {
	projectNumber = strings.TrimSpace(projectNumber)
	if projectNumber == "" {
		return nil, custom_error.NewInvalidArgument("project_number", "must not be empty")
	}

	records, err := r.read(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Project.ProjectNumber == projectNumber {
			return &records[i], nil
		}
	}
	return nil, custom_error.NewNotFound("project", projectNumber)
}

func (r *ProjectRepository) InsertProject(ctx context.Context, p models.Project) error {
	row := store.Row{
		"id":             p.ID,
		"project_number": p.ProjectNumber,
		"start_date":     p.StartDate,
		"end_date":       p.EndDate,
		"created_by":     p.CreatedBy,
		"created_at":     p.CreatedAt,
		"status":         p.Status.String(),
		"customer_name":  p.CustomerName,
	}
	lists := map[string]any{
		columnWorkers:  p.Workers,
		columnItems:    p.Items,
		columnTaken:    p.TakenByWorker,
		columnReturned: p.ReturnedByWorker,
	}
	for column, value := range lists {
		encoded, err := sublist.Encode(value)
		if err != nil {
			return err
		}
		row[column] = encoded
	}

	if _, err := r.store.AppendRow(ctx, store.TableProjects, row); err != nil {
		return fmt.Errorf("failed to insert project %s: %w", p.ProjectNumber, err)
	}
	return nil
}

// WriteColumns sets the given columns on the record's row and writes the row
// back. Columns not named keep the text that was read.
func (r *ProjectRepository) WriteColumns(ctx context.Context, rec *ProjectRecord, values map[string]string) error {
	for column, value := range values {
		rec.Row[column] = value
	}
	if err := r.store.UpdateRow(ctx, store.TableProjects, rec.Ref, rec.Row); err != nil {
		return fmt.Errorf("failed to update project %s: %w", rec.Project.ProjectNumber, err)
	}
	return nil
}

func (r *ProjectRepository) read(ctx context.Context, filter store.Filter) ([]ProjectRecord, error) {
	records, err := r.store.ReadTable(ctx, store.TableProjects, filter)
	if err != nil {
		return nil, fmt.Errorf("unable to read projects: %w", err)
	}

	out := make([]ProjectRecord, 0, len(records))
	for _, rec := range records {
		row := rec.Row.Pad(store.ColumnsOf(store.TableProjects, rec.Row))
		project, decodeErr := transformToProject(row)
		out = append(out, ProjectRecord{
			Project:   project,
			Ref:       rec.Ref,
			Row:       row,
			DecodeErr: decodeErr,
		})
	}
	return out, nil
}

func transformToProject(row store.Row) (models.Project, error) {
	status := metadata.ProjectStatus(strings.ToLower(row.Get("status")))
	if status == "" {
		status = metadata.StatusActive
	}
	customer := row.Get("customer_name")
	if customer == "" {
		customer = row.Get("project_address")
	}

	p := models.Project{
		ID:            row.Get("id"),
		ProjectNumber: row.Get("project_number"),
		CreatedBy:     row.Get("created_by"),
		CreatedAt:     row.Get("created_at"),
		StartDate:     row.Get("start_date"),
		EndDate:       row.Get("end_date"),
		Status:        status,
		CustomerName:  customer,
	}

	var errs []error
	decode := func(column string) []sublist.Entry {
		entries, err := sublist.Decode(row[column])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", column, err))
		}
		return entries
	}

	p.Workers = decodeWorkers(decode(columnWorkers))
	p.Items = decodeLines(decode(columnItems))
	p.TakenByWorker = decodeLines(decode(columnTaken))
	p.ReturnedByWorker = decodeReturns(decode(columnReturned))

	return p, errors.Join(errs...)
}

func decodeWorkers(entries []sublist.Entry) []models.Worker {
	workers := make([]models.Worker, 0, len(entries))
	for _, e := range entries {
		username := e.String("username")
		if username == "" {
			username = e.String("email")
		}
		workers = append(workers, models.Worker{Username: username, Name: e.String("name")})
	}
	return workers
}

// Missing quantities count as zero.
func decodeLines(entries []sublist.Entry) []models.LineItem {
	lines := make([]models.LineItem, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, models.LineItem{
			ItemID:   e.String("item_id"),
			ItemName: e.String("item_name"),
			Quantity: e.Int("quantity", 0),
		})
	}
	return lines
}

func decodeReturns(entries []sublist.Entry) []models.ReturnedItem {
	returns := make([]models.ReturnedItem, 0, len(entries))
	for _, e := range entries {
		returns = append(returns, models.ReturnedItem{
			ItemID:     e.String("item_id"),
			ItemName:   e.String("item_name"),
			Quantity:   e.Int("quantity", 0),
			ReturnType: strings.ToLower(e.String("return_type")),
		})
	}
	return returns
}

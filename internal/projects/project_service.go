package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
	"stockroom/pkg/sublist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetProjects(ctx context.Context) ([]ProjectRecord, error)
	GetProject(ctx context.Context, projectNumber string) (*ProjectRecord, error)
	InsertProject(ctx context.Context, p models.Project) error
	WriteColumns(ctx context.Context, rec *ProjectRecord, values map[string]string) error
}

// Catalog supplies item details for pickup lists, keyed by article number.
type Catalog interface {
	ItemsByArticle(ctx context.Context) (map[string]models.Item, error)
}

type ProjectService struct {
	r       Repository
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time
}

func NewProjectService(r Repository, catalog Catalog, logger *zap.Logger) *ProjectService {
	return &ProjectService{r: r, catalog: catalog, logger: logger, now: time.Now}
}

// LineMutation edits the items list of a project. With Delete the matching
// line is removed; otherwise its quantity is replaced. Add appends a new line
// when nothing matched.
type LineMutation struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Delete   bool   `json:"delete"`
	Add      bool   `json:"add"`
	ItemName string `json:"item_name"`
}

type NewProject struct {
	ProjectNumber string            `json:"project_number"`
	CustomerName  string            `json:"customer_name"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	Workers       []models.Worker   `json:"workers"`
	Items         []models.LineItem `json:"items"`
}

func (s *ProjectService) CreateProject(ctx context.Context, actor Actor, req NewProject) (*models.Project, error) {
	if err := requirePrivileged(actor); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(req.ProjectNumber)
	if number == "" {
		return nil, custom_error.NewInvalidArgument("project_number", "Project number is required")
	}
	if _, err := s.r.GetProject(ctx, number); err == nil {
		return nil, custom_error.NewInvalidArgument("project_number", "project %s already exists", number)
	} else if !custom_error.IsNotFound(err) {
		return nil, err
	}

	createdBy := actor.Username
	if createdBy == "" {
		createdBy = actor.Name
	}
	p := models.Project{
		ID:               uuid.NewString(),
		ProjectNumber:    number,
		CreatedBy:        createdBy,
		CreatedAt:        s.now().UTC().Format(time.RFC3339),
		StartDate:        strings.TrimSpace(req.StartDate),
		EndDate:          strings.TrimSpace(req.EndDate),
		Status:           metadata.StatusActive,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		Workers:          nonNil(req.Workers),
		Items:            nonNil(req.Items),
		TakenByWorker:    []models.LineItem{},
		ReturnedByWorker: []models.ReturnedItem{},
	}
	if err := s.r.InsertProject(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("project created", zap.String("project_number", number), zap.String("created_by", createdBy))
	return &p, nil
}

// AppendTaken adds one taken_by_worker entry per item. Existing entries for
// the same item are never merged.
func (s *ProjectService) AppendTaken(ctx context.Context, projectNumber string, actor Actor, items []models.LineItem) error {
	rec, err := s.r.GetProject(ctx, projectNumber)
	if err != nil {
		return err
	}
	if err := requireAssigned(actor, &rec.Project); err != nil {
		return err
	}
	if err := listReadable(rec, columnTaken); err != nil {
		return err
	}

	taken := append(rec.Project.TakenByWorker, items...)
	encoded, err := sublist.Encode(taken)
	if err != nil {
		return err
	}
	if err := s.r.WriteColumns(ctx, rec, map[string]string{columnTaken: encoded}); err != nil {
		return err
	}
	rec.Project.TakenByWorker = taken

	s.logger.Info("items taken for project",
		zap.String("project_number", projectNumber),
		zap.String("actor", actor.String()),
		zap.Int("lines", len(items)),
	)
	return nil
}

// AppendReturned adds one returned_by_worker entry per item with a lower-cased
// return type. Putting stock back is the caller's job.
func (s *ProjectService) AppendReturned(ctx context.Context, projectNumber string, actor Actor, items []models.ReturnedItem) error {
	rec, err := s.r.GetProject(ctx, projectNumber)
	if err != nil {
		return err
	}
	if err := requireAssigned(actor, &rec.Project); err != nil {
		return err
	}
	if err := listReadable(rec, columnReturned); err != nil {
		return err
	}

	returned := rec.Project.ReturnedByWorker
	for _, item := range items {
		item.ReturnType = metadata.NewReturnType(item.ReturnType).String()
		returned = append(returned, item)
	}
	encoded, err := sublist.Encode(returned)
	if err != nil {
		return err
	}
	if err := s.r.WriteColumns(ctx, rec, map[string]string{columnReturned: encoded}); err != nil {
		return err
	}
	rec.Project.ReturnedByWorker = returned

	s.logger.Info("items returned for project",
		zap.String("project_number", projectNumber),
		zap.String("actor", actor.String()),
		zap.Int("lines", len(items)),
	)
	return nil
}

func (s *ProjectService) MutateItemLine(ctx context.Context, projectNumber string, actor Actor, m LineMutation) error {
	if err := requirePrivileged(actor); err != nil {
		return err
	}
	itemID := strings.TrimSpace(m.ItemID)
	if itemID == "" {
		return custom_error.NewInvalidArgument("item_id", "must not be empty")
	}
	if !m.Delete && m.Quantity < 0 {
		return custom_error.NewInvalidArgument("quantity", "must not be negative, got %d", m.Quantity)
	}

	rec, err := s.r.GetProject(ctx, projectNumber)
	if err != nil {
		return err
	}
	if err := listReadable(rec, columnItems); err != nil {
		return err
	}

	items, matched := applyMutation(rec.Project.Items, itemID, m)
	if !matched {
		return custom_error.NewNotFound("project item", itemID)
	}

	encoded, err := sublist.Encode(items)
	if err != nil {
		return err
	}
	if err := s.r.WriteColumns(ctx, rec, map[string]string{columnItems: encoded}); err != nil {
		return err
	}
	rec.Project.Items = items
	return nil
}

func applyMutation(items []models.LineItem, itemID string, m LineMutation) ([]models.LineItem, bool) {
	out := append([]models.LineItem{}, items...)
	for i := range out {
		if out[i].ItemID != itemID {
			continue
		}
		if m.Delete {
			return append(out[:i], out[i+1:]...), true
		}
		out[i].Quantity = m.Quantity
		return out, true
	}

	if m.Add && !m.Delete {
		return append(out, models.LineItem{ItemID: itemID, ItemName: strings.TrimSpace(m.ItemName), Quantity: m.Quantity}), true
	}
	return items, false
}

func (s *ProjectService) SetStatus(ctx context.Context, projectNumber string, actor Actor, status string) (metadata.ProjectStatus, error) {
	if err := requirePrivileged(actor); err != nil {
		return "", err
	}
	newStatus, err := metadata.NewStatus(status)
	if err != nil {
		return "", custom_error.NewInvalidArgument("status", "%s", err.Error())
	}

	rec, err := s.r.GetProject(ctx, projectNumber)
	if err != nil {
		return "", err
	}
	if err := s.r.WriteColumns(ctx, rec, map[string]string{"status": newStatus.String()}); err != nil {
		return "", err
	}
	rec.Project.Status = newStatus

	s.logger.Info("project status changed",
		zap.String("project_number", projectNumber),
		zap.String("status", newStatus.String()),
		zap.String("actor", actor.String()),
	)
	return newStatus, nil
}

// listReadable refuses to rewrite a list column that did not decode, since
// writing it back would drop its content.
func listReadable(rec *ProjectRecord, column string) error {
	if rec.DecodeErr == nil {
		return nil
	}
	if _, err := sublist.Decode(rec.Row[column]); err != nil {
		return fmt.Errorf("project %s: refusing to rewrite %s: %w", rec.Project.ProjectNumber, column, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

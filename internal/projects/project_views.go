package projects

import (
	"context"
	"sort"
	"strconv"
	"time"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"go.uber.org/zap"
)

// VisibleProjects lists the projects the actor created or works on, or all of
// them for a privileged actor, excluding finished ones. Sorted by start date;
// unreadable dates go last.
func (s *ProjectService) VisibleProjects(ctx context.Context, actor Actor, today time.Time) ([]models.ProjectView, error) {
	records, err := s.r.GetProjects(ctx)
	if err != nil {
		return nil, err
	}

	views := []models.ProjectView{}
	for i := range records {
		rec := &records[i]
		s.warnMalformed(rec)
		if !actor.CanSee(&rec.Project) {
			continue
		}
		status := DerivedStatus(&rec.Project, today)
		if status == metadata.StatusFinished {
			continue
		}
		views = append(views, buildView(&rec.Project, status))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return dateKey(views[i].StartDate, false).Before(dateKey(views[j].StartDate, false))
	})
	return views, nil
}

// FinishedProjects lists the finished projects the actor may see, most
// recently ended first.
func (s *ProjectService) FinishedProjects(ctx context.Context, actor Actor) ([]models.ProjectView, error) {
	records, err := s.r.GetProjects(ctx)
	if err != nil {
		return nil, err
	}

	views := []models.ProjectView{}
	for i := range records {
		rec := &records[i]
		s.warnMalformed(rec)
		if !actor.CanSee(&rec.Project) || rec.Project.Status != metadata.StatusFinished {
			continue
		}
		views = append(views, buildView(&rec.Project, metadata.StatusFinished))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return dateKey(views[i].EndDate, true).After(dateKey(views[j].EndDate, true))
	})
	return views, nil
}

// ProjectItems lists the requested lines of a project with their catalog
// location, unit, category and current stock, for an assigned worker.
func (s *ProjectService) ProjectItems(ctx context.Context, projectNumber string, actor Actor) ([]models.CatalogLine, error) {
	rec, err := s.r.GetProject(ctx, projectNumber)
	if err != nil {
		return nil, err
	}
	if err := requireAssigned(actor, &rec.Project); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.ItemsByArticle(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]models.CatalogLine, 0, len(rec.Project.Items))
	for _, item := range rec.Project.Items {
		line := models.CatalogLine{
			ItemID:    item.ItemID,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			Location:  "-",
			Unit:      "-",
			Type:      "-",
			Available: "-",
		}
		if match, ok := catalog[item.ItemID]; ok {
			line.Location = orDash(match.Location)
			line.Unit = orDash(match.Unit)
			line.Type = orDash(match.Category)
			line.Available = strconv.Itoa(match.Stock)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Summarize pairs each requested line with the taken and returned totals of
// its item.
func Summarize(p *models.Project) []models.ProjectItemSummary {
	taken := map[string]int{}
	for _, t := range p.TakenByWorker {
		if t.ItemID != "" {
			taken[t.ItemID] += t.Quantity
		}
	}
	returned := map[string]int{}
	for _, r := range p.ReturnedByWorker {
		if r.ItemID != "" {
			returned[r.ItemID] += r.Quantity
		}
	}

	summary := make([]models.ProjectItemSummary, 0, len(p.Items))
	for _, item := range p.Items {
		summary = append(summary, models.ProjectItemSummary{
			ItemID:            item.ItemID,
			ItemName:          item.ItemName,
			ProjectedQuantity: item.Quantity,
			TakenQuantity:     taken[item.ItemID],
			ReturnedQuantity:  returned[item.ItemID],
			IsTaken:           taken[item.ItemID] > 0,
		})
	}
	return summary
}

func buildView(p *models.Project, status metadata.ProjectStatus) models.ProjectView {
	workers := make([]string, 0, len(p.Workers))
	for _, w := range p.Workers {
		if w.Name != "" {
			workers = append(workers, w.Name)
		} else {
			workers = append(workers, w.Username)
		}
	}
	number := p.ProjectNumber
	if number == "" {
		number = "N/A"
	}

	return models.ProjectView{
		ProjectNumber: number,
		CreatedBy:     p.CreatedBy,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Status:        status,
		CustomerName:  p.CustomerName,
		Workers:       workers,
		Items:         Summarize(p),
		ItemsCount:    len(p.Items),
	}
}

func (s *ProjectService) warnMalformed(rec *ProjectRecord) {
	if rec.DecodeErr != nil {
		s.logger.Warn("project has malformed embedded lists",
			zap.String("project_number", rec.Project.ProjectNumber),
			zap.Error(rec.DecodeErr),
		)
	}
}

// dateKey parses a YYYY-MM-DD date; unreadable values sort last in the given
// direction.
func dateKey(value string, descending bool) time.Time {
	t, err := time.Parse(dateLayout, value)
	if err == nil {
		return t
	}
	if descending {
		return time.Time{}
	}
	return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

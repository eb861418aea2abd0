package issues

import (
	"context"
	"fmt"
	"strconv"

	"stockroom/internal/store"
	"stockroom/pkg/models"
)

type IssueRepository struct {
	store store.Store
}

func NewRepository(s store.Store) *IssueRepository {
	return &IssueRepository{store: s}
}

func (r *IssueRepository) InsertIssue(ctx context.Context, issue models.IssueReport) error {
	row := store.Row{
		"id":             issue.ID,
		"issue":          issue.Issue,
		"article_number": issue.ArticleNumber,
		"product_name":   issue.ProductName,
		"count":          strconv.Itoa(issue.Count),
		"timestamp":      issue.Timestamp,
		"user_name":      issue.UserName,
		"created_at":     issue.CreatedAt,
	}
	if _, err := r.store.AppendRow(ctx, store.TableIssues, row); err != nil {
		return fmt.Errorf("failed to append issue report %s: %w", issue.ID, err)
	}
	return nil
}

// GetIssues reads every report in store order.
func (r *IssueRepository) GetIssues(ctx context.Context) ([]models.IssueReport, error) {
	records, err := r.store.ReadTable(ctx, store.TableIssues, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to read issue reports: %w", err)
	}

	out := make([]models.IssueReport, 0, len(records))
	for _, rec := range records {
		out = append(out, transformToIssue(rec.Row))
	}
	return out, nil
}

func transformToIssue(row store.Row) models.IssueReport {
	return models.IssueReport{
		ID:            row.Get("id"),
		Issue:         row.Get("issue"),
		ArticleNumber: row.Get("article_number"),
		ProductName:   row.Get("product_name"),
		Count:         row.Int("count", 1),
		Timestamp:     row.Get("timestamp"),
		UserName:      row.Get("user_name"),
		CreatedAt:     row.Get("created_at"),
	}
}

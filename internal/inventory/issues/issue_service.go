// Package issues records problems users report against catalog items
// (damaged, missing, wrong label) and lists them back.
package issues

import (
	"context"
	"strings"
	"time"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	InsertIssue(ctx context.Context, issue models.IssueReport) error
	GetIssues(ctx context.Context) ([]models.IssueReport, error)
}

type Catalog interface {
	ItemsByArticle(ctx context.Context) (map[string]models.Item, error)
}

// IssueReportRequest is one report. Count defaults to 1.
type IssueReportRequest struct {
	ArticleNumber string   `json:"article_number"`
	Issues        []string `json:"issues"`
	Count         *int     `json:"count,omitempty"`
}

// IssueFilter narrows a listing. Both fields match case-insensitively as
// substrings; Article matches the article number or the product name.
type IssueFilter struct {
	UserName string
	Article  string
}

type IssueService struct {
	r       Repository
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time
}

func NewIssueService(r Repository, catalog Catalog, logger *zap.Logger) *IssueService {
	return &IssueService{r: r, catalog: catalog, logger: logger, now: time.Now}
}

func (s *IssueService) ReportIssue(ctx context.Context, userName string, req IssueReportRequest) (*models.IssueReport, error) {
	article := strings.TrimSpace(req.ArticleNumber)
	if article == "" {
		return nil, custom_error.NewInvalidArgument("article_number", "missing")
	}

	types := make([]string, 0, len(req.Issues))
	for _, t := range req.Issues {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return nil, custom_error.NewInvalidArgument("issues", "at least one issue type is required")
	}

	count := 1
	if req.Count != nil {
		count = *req.Count
	}
	if count <= 0 {
		return nil, custom_error.NewInvalidArgument("count", "must be positive, got %d", count)
	}

	items, err := s.catalog.ItemsByArticle(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := items[article]
	if !ok {
		return nil, custom_error.NewNotFound("article", article)
	}

	now := s.now().UTC().Format(time.RFC3339)
	issue := models.IssueReport{
		ID:            uuid.NewString(),
		Issue:         strings.Join(types, ","),
		ArticleNumber: article,
		ProductName:   item.ProductName,
		Count:         count,
		Timestamp:     now,
		UserName:      userName,
		CreatedAt:     now,
	}
	if err := s.r.InsertIssue(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("issue reported",
		zap.String("id", issue.ID),
		zap.String("article_number", article),
		zap.String("issue", issue.Issue),
		zap.String("user", userName),
	)
	return &issue, nil
}

// IssuesFor lists reports in store order.
func (s *IssueService) IssuesFor(ctx context.Context, filter IssueFilter) ([]models.IssueReport, error) {
	all, err := s.r.GetIssues(ctx)
	if err != nil {
		return nil, err
	}

	user := strings.ToLower(strings.TrimSpace(filter.UserName))
	article := strings.ToLower(strings.TrimSpace(filter.Article))

	out := make([]models.IssueReport, 0, len(all))
	for _, issue := range all {
		if user != "" && !strings.Contains(strings.ToLower(issue.UserName), user) {
			continue
		}
		if article != "" &&
			!strings.Contains(strings.ToLower(issue.ArticleNumber), article) &&
			!strings.Contains(strings.ToLower(issue.ProductName), article) {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (s *IssueService) AllIssues(ctx context.Context) ([]models.IssueReport, error) {
	return s.r.GetIssues(ctx)
}

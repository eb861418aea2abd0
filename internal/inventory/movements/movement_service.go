package movements

import (
	"context"
	"sort"
	"time"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TimestampLayout is fixed width and always UTC, so timestamps sort as strings.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

type Repository interface {
	InsertEntry(ctx context.Context, entry models.MovementLogEntry) error
	GetEntries(ctx context.Context, filter store.Filter) ([]models.MovementLogEntry, error)
}

type MovementService struct {
	r      Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewMovementService(r Repository, logger *zap.Logger) *MovementService {
	return &MovementService{r: r, logger: logger, now: time.Now}
}

// AppendEvent records a movement. Only positive quantities are logged.
func (s *MovementService) AppendEvent(ctx context.Context, articleNumber string, quantity int, action metadata.Action, userName, status, projectRef string) (*models.MovementLogEntry, error) {
	if quantity <= 0 {
		return nil, custom_error.NewInvalidArgument("quantity", "must be positive, got %d", quantity)
	}
	entry := models.MovementLogEntry{
		ID:            uuid.NewString(),
		ArticleNumber: articleNumber,
		Quantity:      quantity,
		Action:        action,
		UserName:      userName,
		Timestamp:     s.now().UTC().Format(TimestampLayout),
		Status:        status,
		ProjectRef:    projectRef,
	}
	if err := s.r.InsertEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("movement logged",
		zap.String("id", entry.ID),
		zap.String("article_number", articleNumber),
		zap.String("action", action.String()),
		zap.Int("quantity", quantity),
		zap.String("user", userName),
	)
	return &entry, nil
}

// EventsFor returns an article's movements, newest first.
func (s *MovementService) EventsFor(ctx context.Context, articleNumber string) ([]models.MovementLogEntry, error) {
	entries, err := s.r.GetEntries(ctx, store.Filter{"article_number": articleNumber})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)
	return entries, nil
}

// OutstandingFor applies NetOutstanding to the movements of the given
// articles. An empty set means every article.
func (s *MovementService) OutstandingFor(ctx context.Context, articleNumbers []string) (map[models.OutstandingKey]int, error) {
	entries, err := s.r.GetEntries(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(articleNumbers) == 0 {
		return NetOutstanding(entries), nil
	}

	wanted := make(map[string]struct{}, len(articleNumbers))
	for _, a := range articleNumbers {
		wanted[a] = struct{}{}
	}
	selected := entries[:0:0]
	for _, e := range entries {
		if _, ok := wanted[e.ArticleNumber]; ok {
			selected = append(selected, e)
		}
	}
	return NetOutstanding(selected), nil
}

func (s *MovementService) AllEvents(ctx context.Context) ([]models.MovementLogEntry, error) {
	entries, err := s.r.GetEntries(ctx, nil)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)
	return entries, nil
}

func sortNewestFirst(entries []models.MovementLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}

package movements

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stockroom/internal/store"
	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
)

type LogRepository struct {
	store store.Store
}

func NewRepository(s store.Store) *LogRepository {
	return &LogRepository{store: s}
}

func (r *LogRepository) InsertEntry(ctx context.Context, entry models.MovementLogEntry) error {
	row := store.Row{
		"id":             entry.ID,
		"article_number": entry.ArticleNumber,
		"quantity":       strconv.Itoa(entry.Quantity),
		"action":         entry.Action.String(),
		"user_name":      entry.UserName,
		"timestamp":      entry.Timestamp,
		"status":         entry.Status,
		"project_ref":    entry.ProjectRef,
	}
	if _, err := r.store.AppendRow(ctx, store.TableLogs, row); err != nil {
		return fmt.Errorf("failed to append movement %s: %w", entry.ID, err)
	}
	return nil
}

// GetEntries reads the log, optionally restricted by filter, in store order.
func (r *LogRepository) GetEntries(ctx context.Context, filter store.Filter) ([]models.MovementLogEntry, error) {
	records, err := r.store.ReadTable(ctx, store.TableLogs, filter)
	if err != nil {
		return nil, fmt.Errorf("unable to read movement log: %w", err)
	}

	entries := make([]models.MovementLogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, transformToEntry(rec.Row))
	}
	return entries, nil
}

func transformToEntry(row store.Row) models.MovementLogEntry {
	return models.MovementLogEntry{
		ID:            row.Get("id"),
		ArticleNumber: row.Get("article_number"),
		Quantity:      row.Int("quantity", 0),
		Action:        metadata.Action(strings.ToLower(row.Get("action"))),
		UserName:      row.Get("user_name"),
		Timestamp:     row.Get("timestamp"),
		Status:        row.Get("status"),
		ProjectRef:    row.Get("project_ref"),
	}
}

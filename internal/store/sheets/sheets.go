// Package sheets is the spreadsheet store backend: one worksheet per table,
// the first row holds the column names and a RowRef is the 1-based sheet row.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Values are written RAW so that what is read back compares equal to what was
// written; USER_ENTERED would reformat dates and numbers.
const valueInputOption = "RAW"

type Store struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
	quota         *quota
}

// NewService builds an authorised Sheets client from inline JSON credentials,
// falling back to a credentials file for local development.
func NewService(ctx context.Context, credentialsJSON, credentialsFile string, logger *zap.Logger) (*sheets.Service, error) {
	var raw []byte
	if credentialsJSON != "" {
		logger.Info("Using Google credentials from environment")
		raw = []byte(credentialsJSON)
	} else {
		logger.Info("Using Google credentials file", zap.String("path", credentialsFile))
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		raw = b
	}

	credentials, err := google.CredentialsFromJSON(ctx, raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to load Google credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, credentials.TokenSource)
	service, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Sheets client: %w", err)
	}

	return service, nil
}

func New(service *sheets.Service, spreadsheetID string, logger *zap.Logger) *Store {
	return &Store{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}
}

// WithRequestLimit caps API calls to limit per minute. Zero disables the cap.
func (s *Store) WithRequestLimit(limit int) *Store {
	s.quota = newQuota(limit, time.Minute)
	return s
}

func (s *Store) ReadTable(ctx context.Context, table string, filter store.Filter) ([]store.Record, error) {
	values, err := s.readRange(ctx, table+"!A1:Z")
	if err != nil {
		return nil, custom_error.NewStoreUnavailable("read "+table, err)
	}
	if len(values) == 0 {
		s.logger.Debug("Sheet is empty", zap.String("table", table))
		return nil, nil
	}

	header := toStrings(values[0])
	var records []store.Record
	for i := 1; i < len(values); i++ {
		if len(values[i]) == 0 {
			continue
		}
		row := zipRow(header, toStrings(values[i]))
		if !row.Matches(filter) {
			continue
		}
		records = append(records, store.Record{
			Ref: store.RowRef(strconv.Itoa(i + 1)),
			Row: row,
		})
	}

	return records, nil
}

func (s *Store) AppendRow(ctx context.Context, table string, row store.Row) (store.RowRef, error) {
	header, err := s.ensureHeader(ctx, table)
	if err != nil {
		return "", custom_error.NewStoreUnavailable("append "+table, err)
	}

	if err := s.quota.wait(ctx); err != nil {
		return "", custom_error.NewStoreUnavailable("append "+table, err)
	}
	resp, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, table+"!A1", &sheets.ValueRange{Values: [][]interface{}{orderRow(header, row)}}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", custom_error.NewStoreUnavailable("append "+table, err)
	}

	var updatedRange string
	if resp.Updates != nil {
		updatedRange = resp.Updates.UpdatedRange
	}
	n, err := rowNumber(updatedRange)
	if err != nil {
		return "", custom_error.NewStoreUnavailable("append "+table, err)
	}

	return store.RowRef(strconv.Itoa(n)), nil
}

func (s *Store) UpdateRow(ctx context.Context, table string, ref store.RowRef, row store.Row) error {
	n, err := strconv.Atoi(string(ref))
	if err != nil || n < 2 {
		return custom_error.NewStoreUnavailable("update "+table, fmt.Errorf("invalid row reference %q", ref))
	}

	header, err := s.ensureHeader(ctx, table)
	if err != nil {
		return custom_error.NewStoreUnavailable("update "+table, err)
	}

	if err := s.quota.wait(ctx); err != nil {
		return custom_error.NewStoreUnavailable("update "+table, err)
	}
	_, err = s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, fmt.Sprintf("%s!A%d", table, n), &sheets.ValueRange{Values: [][]interface{}{orderRow(header, row)}}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return custom_error.NewStoreUnavailable("update "+table, err)
	}

	return nil
}

// UpsertRows updates rows whose conflictKey already exists in one batch and
// appends the rest in a second call.
func (s *Store) UpsertRows(ctx context.Context, table string, rows []store.Row, conflictKey string) error {
	existing, err := s.ReadTable(ctx, table, nil)
	if err != nil {
		return err
	}
	header, err := s.ensureHeader(ctx, table)
	if err != nil {
		return custom_error.NewStoreUnavailable("upsert "+table, err)
	}

	byKey := make(map[string]store.Record, len(existing))
	for _, rec := range existing {
		byKey[rec.Row[conflictKey]] = rec
	}

	var updates []*sheets.ValueRange
	var appends [][]interface{}
	for _, row := range rows {
		rec, ok := byKey[row[conflictKey]]
		if !ok {
			appends = append(appends, orderRow(header, row))
			continue
		}
		merged := rec.Row.Clone()
		for k, v := range row {
			merged[k] = v
		}
		updates = append(updates, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!A%s", table, rec.Ref),
			Values: [][]interface{}{orderRow(header, merged)},
		})
	}

	if len(updates) > 0 {
		if err := s.quota.wait(ctx); err != nil {
			return custom_error.NewStoreUnavailable("upsert "+table, err)
		}
		_, err := s.service.Spreadsheets.Values.
			BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
				ValueInputOption: valueInputOption,
				Data:             updates,
			}).
			Context(ctx).
			Do()
		if err != nil {
			return custom_error.NewStoreUnavailable("upsert "+table, err)
		}
	}
	if len(appends) > 0 {
		if err := s.quota.wait(ctx); err != nil {
			return custom_error.NewStoreUnavailable("upsert "+table, err)
		}
		_, err := s.service.Spreadsheets.Values.
			Append(s.spreadsheetID, table+"!A1", &sheets.ValueRange{Values: appends}).
			ValueInputOption(valueInputOption).
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return custom_error.NewStoreUnavailable("upsert "+table, err)
		}
	}

	s.logger.Info("Upserted rows",
		zap.String("table", table),
		zap.Int("updated", len(updates)),
		zap.Int("appended", len(appends)),
	)
	return nil
}

// ensureHeader returns the header row, writing the known column list first if
// the sheet has none.
func (s *Store) ensureHeader(ctx context.Context, table string) ([]string, error) {
	values, err := s.readRange(ctx, table+"!1:1")
	if err != nil {
		return nil, err
	}
	if len(values) > 0 && len(values[0]) > 0 {
		return toStrings(values[0]), nil
	}

	columns, ok := store.Columns[table]
	if !ok {
		return nil, fmt.Errorf("sheet %s has no header and no known columns", table)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := s.quota.wait(ctx); err != nil {
		return nil, err
	}
	_, err = s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, table+"!A1", &sheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	s.logger.Info("Wrote missing sheet header", zap.String("table", table))

	return columns, nil
}

func (s *Store) readRange(ctx context.Context, readRange string) ([][]interface{}, error) {
	if err := s.quota.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet range %s: %w", readRange, err)
	}
	return resp.Values, nil
}

// zipRow maps cells to header names. Cells beyond the header are dropped and
// missing trailing cells stay absent; padding is the caller's business.
func zipRow(header, cells []string) store.Row {
	row := make(store.Row, len(header))
	for i, h := range header {
		if h == "" || i >= len(cells) {
			continue
		}
		row[h] = cells[i]
	}
	return row
}

// orderRow lays a row out in header order. Columns the sheet does not have are
// not written.
func orderRow(header []string, row store.Row) []interface{} {
	out := make([]interface{}, len(header))
	for i, h := range header {
		out[i] = row[h]
	}
	return out
}

func toStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = fmt.Sprintf("%v", c)
	}
	return out
}

// rowNumber extracts the first row number of an A1 range such as
// "logs!A7:H7".
func rowNumber(a1 string) (int, error) {
	ref := a1
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	digits := strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.Atoi(strings.TrimPrefix(digits, "$"))
	if err != nil {
		return 0, fmt.Errorf("cannot read row number from range %q", a1)
	}
	return n, nil
}

// Package postgres is the relational store backend. Every table carries a
// row_id BIGSERIAL primary key which serves as the RowRef; business columns
// are NOT NULL with a default, so an empty cell is written as DEFAULT.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
)

const refColumn = "row_id"

type Store struct {
	DB            *sql.DB
	GoquDBWrapper *goqu.Database
}

func New(db *sql.DB) *Store {
	return &Store{
		DB:            db,
		GoquDBWrapper: goqu.New("postgres", db),
	}
}

var dialect = goqu.Dialect("postgres")

func (s *Store) ReadTable(ctx context.Context, table string, filter store.Filter) ([]store.Record, error) {
	query, args, err := selectQuery(table, filter).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select for %s: %w", table, err)
	}

	rows, err := s.GoquDBWrapper.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("read "+table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrapError("read "+table, err)
	}

	var records []store.Record
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, wrapError("scan "+table, err)
		}

		rec := store.Record{Row: make(store.Row, len(columns))}
		for i, c := range columns {
			if c == refColumn {
				rec.Ref = store.RowRef(values[i].String)
				continue
			}
			if values[i].Valid {
				rec.Row[c] = values[i].String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("read "+table, err)
	}

	return records, nil
}

func (s *Store) AppendRow(ctx context.Context, table string, row store.Row) (store.RowRef, error) {
	var id int64
	_, err := s.GoquDBWrapper.
		Insert(table).
		Rows(toRecord(row, nil)).
		Returning(refColumn).
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return "", wrapError("append "+table, err)
	}

	return store.RowRef(strconv.FormatInt(id, 10)), nil
}

func (s *Store) UpdateRow(ctx context.Context, table string, ref store.RowRef, row store.Row) error {
	query, err := updateQuery(table, ref, row)
	if err != nil {
		return custom_error.NewStoreUnavailable("update "+table, err)
	}
	sqlText, args, err := query.ToSQL()
	if err != nil {
		return fmt.Errorf("build update for %s: %w", table, err)
	}

	result, err := s.GoquDBWrapper.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return wrapError("update "+table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("update "+table, err)
	}
	if affected == 0 {
		return custom_error.NewStoreUnavailable("update "+table, fmt.Errorf("no row with %s %s", refColumn, ref))
	}

	return nil
}

// UpsertRows relies on a unique index over conflictKey. Columns a row does
// not carry keep their stored value, so rows are written in batches of
// identical column sets, in input order, inside one transaction.
func (s *Store) UpsertRows(ctx context.Context, table string, rows []store.Row, conflictKey string) error {
	if len(rows) == 0 {
		return nil
	}

	type statement struct {
		query string
		args  []interface{}
	}
	statements := make([]statement, 0, 1)
	for _, batch := range upsertBatches(rows, conflictKey) {
		query, args, err := upsertQuery(table, batch, conflictKey).ToSQL()
		if err != nil {
			return fmt.Errorf("build upsert for %s: %w", table, err)
		}
		statements = append(statements, statement{query: query, args: args})
	}

	err := withTransaction(s.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		for _, st := range statements {
			if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapError("upsert "+table, err)
	}

	return nil
}

func withTransaction(db *goqu.Database, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return
}

// upsertBatches splits rows into consecutive runs sharing one column set. A
// run also ends when its conflict key repeats, since one statement cannot
// touch the same row twice.
func upsertBatches(rows []store.Row, conflictKey string) [][]store.Row {
	var batches [][]store.Row
	var signature string
	keys := map[string]struct{}{}

	for _, r := range rows {
		sig := strings.Join(sortedColumns(r), ",")
		_, repeated := keys[r[conflictKey]]
		if len(batches) == 0 || sig != signature || repeated {
			batches = append(batches, nil)
			signature = sig
			keys = map[string]struct{}{}
		}
		keys[r[conflictKey]] = struct{}{}
		batches[len(batches)-1] = append(batches[len(batches)-1], r)
	}
	return batches
}

func selectQuery(table string, filter store.Filter) *goqu.SelectDataset {
	ds := dialect.From(table).Order(goqu.I(refColumn).Asc())
	if len(filter) > 0 {
		ex := goqu.Ex{}
		for column, value := range filter {
			ex[column] = value
		}
		ds = ds.Where(ex)
	}
	return ds
}

func updateQuery(table string, ref store.RowRef, row store.Row) (*goqu.UpdateDataset, error) {
	id, err := strconv.ParseInt(string(ref), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid row reference %q", ref)
	}
	return dialect.Update(table).
		Set(toRecord(row, nil)).
		Where(goqu.Ex{refColumn: id}), nil
}

// upsertQuery expects rows sharing one column set; only those columns are
// inserted and updated.
func upsertQuery(table string, rows []store.Row, conflictKey string) *goqu.InsertDataset {
	columns := sortedColumns(rows[0])
	records := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		records = append(records, toRecord(r, columns))
	}

	set := goqu.Record{}
	for _, c := range columns {
		if c == conflictKey {
			continue
		}
		set[c] = goqu.L("EXCLUDED." + c)
	}

	return dialect.Insert(table).
		Rows(records...).
		OnConflict(goqu.DoUpdate(conflictKey, set))
}

// toRecord converts a row to a goqu record. Empty cells become DEFAULT; when
// columns is given every record carries the same keys, as multi-row inserts
// require.
func toRecord(row store.Row, columns []string) goqu.Record {
	if columns == nil {
		for c := range row {
			columns = append(columns, c)
		}
	}
	record := goqu.Record{}
	for _, c := range columns {
		if c == refColumn {
			continue
		}
		v, ok := row[c]
		if !ok || v == "" {
			record[c] = goqu.L("DEFAULT")
			continue
		}
		record[c] = v
	}
	return record
}

func sortedColumns(row store.Row) []string {
	columns := make([]string, 0, len(row))
	for c := range row {
		if c == refColumn {
			continue
		}
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

func wrapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return custom_error.WrapDBError(op+": "+pqErr.Message, string(pqErr.Code))
	}
	return custom_error.NewStoreUnavailable(op, err)
}

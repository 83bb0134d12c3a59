// Package sqlstore implements store.TableStore on top of database/sql.
// It serves SQLite for local use and tests, and Postgres for a direct
// connection to the hosted database.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/hoomlabs/hoom/internal/db"
	"github.com/hoomlabs/hoom/internal/store"
)

// pgForeignKeyViolation is the SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

// Store is a table store backed by a SQL database.
type Store struct {
	db          *sql.DB
	dialect     db.Dialect
	jsonColumns map[string]map[string]bool
}

// New creates a store over an opened database.
func New(database *sql.DB, dialect db.Dialect) *Store {
	jc := make(map[string]map[string]bool)
	for table, cols := range db.JSONColumns {
		jc[table] = make(map[string]bool)
		for _, c := range cols {
			jc[table][c] = true
		}
	}
	return &Store{db: database, dialect: dialect, jsonColumns: jc}
}

// Select returns rows of table with the requested embeds resolved.
func (s *Store) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	order := q.Order
	if order == "" {
		order = "id"
	}
	if err := store.CheckIdents(append([]string{table, order}, q.Columns...)...); err != nil {
		return nil, err
	}

	cols := q.Columns
	if len(cols) > 0 {
		// Embeds need the join keys even when the caller did not ask for them.
		cols = withColumn(cols, "id")
		for _, e := range q.Embed {
			if !e.Reverse {
				cols = withColumn(cols, e.Column)
			}
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", columnList(cols), table, order)
	rows, err := s.query(ctx, table, query)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}

	for _, e := range q.Embed {
		if err := s.embed(ctx, rows, e); err != nil {
			return nil, fmt.Errorf("embedding %s into %s: %w", e.Table, table, err)
		}
	}

	return rows, nil
}

// embed resolves one Embed for the already-selected rows.
func (s *Store) embed(ctx context.Context, rows []store.Row, e store.Embed) error {
	if err := store.CheckIdents(append([]string{e.Table, e.Column}, e.Columns...)...); err != nil {
		return err
	}

	if !e.Reverse {
		ids := collectIDs(rows, e.Column)
		related := map[int64]store.Row{}
		if len(ids) > 0 {
			cols := e.Columns
			if len(cols) > 0 {
				cols = withColumn(cols, "id")
			}
			found, err := s.queryIn(ctx, e.Table, cols, "id", ids)
			if err != nil {
				return err
			}
			for _, r := range found {
				if id, ok := store.AsInt64(r["id"]); ok {
					related[id] = r
				}
			}
		}
		for _, r := range rows {
			id, ok := store.AsInt64(r[e.Column])
			if rel, found := related[id]; ok && found {
				r[e.Column] = rel
			} else {
				r[e.Column] = nil
			}
		}
		return nil
	}

	ids := collectIDs(rows, "id")
	children := map[int64][]store.Row{}
	if len(ids) > 0 {
		cols := e.Columns
		if len(cols) > 0 {
			cols = withColumn(cols, e.Column)
		}
		found, err := s.queryIn(ctx, e.Table, cols, e.Column, ids)
		if err != nil {
			return err
		}
		for _, c := range found {
			if pid, ok := store.AsInt64(c[e.Column]); ok {
				children[pid] = append(children[pid], c)
			}
		}
	}
	for _, r := range rows {
		id, _ := store.AsInt64(r["id"])
		list := children[id]
		if list == nil {
			list = []store.Row{}
		}
		r[e.Table] = list
	}
	return nil
}

// queryIn selects cols from table where column is one of ids.
func (s *Store) queryIn(ctx context.Context, table string, cols []string, column string, ids []int64) ([]store.Row, error) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = s.dialect.Placeholder(i + 1)
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s) ORDER BY id",
		columnList(cols), table, column, strings.Join(marks, ", "))
	return s.query(ctx, table, query, args...)
}

// query runs a SELECT and decodes every row into a store.Row.
func (s *Store) query(ctx context.Context, table, query string, args ...any) (result []store.Row, err error) {
	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if closeErr := rs.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	cols, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	for rs.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(store.Row, len(cols))
		for i, c := range cols {
			row[c] = s.decode(table, c, vals[i])
		}
		result = append(result, row)
	}

	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

// decode normalises a scanned driver value.
func (s *Store) decode(table, column string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if !s.jsonColumns[table][column] {
		return v
	}
	str, ok := v.(string)
	if !ok {
		return v
	}
	var decoded any
	if err := json.Unmarshal([]byte(str), &decoded); err != nil {
		slog.Warn("undecodable json column", "table", table, "column", column, "error", err)
		return nil
	}
	return decoded
}

// encode prepares a record value for a bind parameter.
func (s *Store) encode(table, column string, v any) (any, error) {
	if !s.jsonColumns[table][column] || v == nil {
		return v, nil
	}
	if str, ok := v.(string); ok {
		return str, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s.%s: %w", table, column, err)
	}
	return string(data), nil
}

// Insert adds a record.
func (s *Store) Insert(ctx context.Context, table string, rec store.Row) error {
	if err := store.CheckIdents(table); err != nil {
		return err
	}

	cols := sortedKeys(rec)
	if err := store.CheckIdents(cols...); err != nil {
		return err
	}

	var query string
	args := make([]any, 0, len(cols))
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	} else {
		marks := make([]string, len(cols))
		for i, c := range cols {
			v, err := s.encode(table, c, rec[c])
			if err != nil {
				return err
			}
			marks[i] = s.dialect.Placeholder(i + 1)
			args = append(args, v)
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting into %s: %w", table, mapError(err))
	}
	return nil
}

// Update sets the given columns on the row with id.
func (s *Store) Update(ctx context.Context, table string, id int64, rec store.Row) error {
	if err := store.CheckIdents(table); err != nil {
		return err
	}

	cols := sortedKeys(rec)
	if len(cols) == 0 {
		return fmt.Errorf("updating %s %d: no columns to set", table, id)
	}
	if err := store.CheckIdents(cols...); err != nil {
		return err
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		v, err := s.encode(table, c, rec[c])
		if err != nil {
			return err
		}
		sets[i] = fmt.Sprintf("%s = %s", c, s.dialect.Placeholder(i+1))
		args = append(args, v)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", table, strings.Join(sets, ", "), s.dialect.Placeholder(len(cols)+1))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", table, id, mapError(err))
	}
	return checkAffected(result, table, id)
}

// Delete removes the row with id.
func (s *Store) Delete(ctx context.Context, table string, id int64) error {
	if err := store.CheckIdents(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", table, s.dialect.Placeholder(1))
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", table, id, mapError(err))
	}
	return checkAffected(result, table, id)
}

func checkAffected(result sql.Result, table string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", table, id, store.ErrNotFound)
	}
	return nil
}

// mapError translates driver foreign key violations into store.ErrReferenced.
func mapError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%w: %w", store.ErrReferenced, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %w", store.ErrReferenced, err)
	}
	return err
}

func columnList(cols []string) string {
	if len(cols) == 0 {
		return "*"
	}
	return strings.Join(cols, ", ")
}

func withColumn(cols []string, c string) []string {
	for _, existing := range cols {
		if existing == c {
			return cols
		}
	}
	out := make([]string, 0, len(cols)+1)
	out = append(out, cols...)
	return append(out, c)
}

func sortedKeys(rec store.Row) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// collectIDs returns the distinct integer values of column across rows.
func collectIDs(rows []store.Row, column string) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, r := range rows {
		id, ok := store.AsInt64(r[column])
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

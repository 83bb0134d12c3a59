// Package store defines the row-level table API the dashboard reads and
// writes through. Implementations live in the postgrest and sqlstore
// subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Table names shared by every backend.
const (
	TableProperties = "properties"
	TablePromoters  = "promoters"
)

var (
	// ErrReferenced is returned when a write violates a foreign key,
	// typically deleting a promoter still referenced by listings.
	ErrReferenced = errors.New("row is still referenced by another table")

	// ErrNotFound is returned when an update or delete matched no row.
	ErrNotFound = errors.New("row not found")
)

// Row is a single record as returned by Select. Values are whatever the
// backend decoded: strings, numbers (float64, int64 or json.Number),
// booleans, time.Time, nested Rows for embeds, slices or nil.
type Row map[string]any

// Embed asks Select to inline related rows.
//
// A forward embed follows Column (a foreign key on the selected table) to
// Table and replaces the Column value with the related Row, or nil.
//
// A reverse embed (Reverse set) finds rows of Table whose Column points at
// the selected row and stores them as a []Row under the key Table.
type Embed struct {
	Table   string
	Column  string
	Columns []string
	Reverse bool
}

// Key returns the key the embedded value is stored under in each row.
func (e Embed) Key() string {
	if e.Reverse {
		return e.Table
	}
	return e.Column
}

// Query controls a Select.
type Query struct {
	Columns []string // empty selects every column
	Embed   []Embed
	Order   string // column to sort ascending by; empty = id
}

// TableStore is the remote table API: select-with-embed, insert,
// update-by-id and delete-by-id.
type TableStore interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rec Row) error
	Update(ctx context.Context, table string, id int64, rec Row) error
	Delete(ctx context.Context, table string, id int64) error
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent reports whether s is safe to use as a table or column name.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// CheckIdents returns an error naming the first invalid identifier.
func CheckIdents(names ...string) error {
	for _, n := range names {
		if !ValidIdent(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}

// ColumnList returns the column list of q, "*" when empty.
func (q Query) ColumnList() string {
	if len(q.Columns) == 0 {
		return "*"
	}
	return strings.Join(q.Columns, ",")
}

// Nested returns v as a Row when it is an embedded object.
func Nested(v any) (Row, bool) {
	switch m := v.(type) {
	case Row:
		return m, true
	case map[string]any:
		return Row(m), true
	}
	return nil, false
}

// NestedRows returns the embedded rows held by a reverse embed. Elements
// that are not objects are skipped.
func NestedRows(v any) []Row {
	switch list := v.(type) {
	case []Row:
		return list
	case []any:
		out := make([]Row, 0, len(list))
		for _, item := range list {
			if r, ok := Nested(item); ok {
				out = append(out, r)
			}
		}
		return out
	}
	return nil
}

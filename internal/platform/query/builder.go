// Package query builds the filtered WHERE clauses used by the read-side
// selectors. Selectors go straight to storage, bypassing domain services,
// and re-running a built query restarts the sequence from scratch.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builder accumulates WHERE clause fragments with positional arguments.
// A fresh Builder always excludes soft-deleted rows unless IncludeDeleted
// is called; this is the "default view" of every collection.
type Builder struct {
	table      string
	cols       string
	deletedCol string
	allRecords bool
	where      string
	args       []any
	idx        int
	orderBy    string
	joins      []string
}

// New creates a Builder over the table with the given select columns.
// deletedCol is the soft-delete flag column, qualified if the query joins
// ("h.is_deleted").
func New(table, cols, deletedCol string) *Builder {
	return &Builder{table: table, cols: cols, deletedCol: deletedCol, idx: 1}
}

// IncludeDeleted switches to the all-records view.
func (b *Builder) IncludeDeleted() *Builder {
	b.allRecords = true
	return b
}

// Join appends a JOIN clause verbatim.
func (b *Builder) Join(join string) *Builder {
	b.joins = append(b.joins, join)
	return b
}

// Where appends a raw clause with args. Placeholders in clause are written
// as %d markers consumed left to right, e.g. "c.status = $%d".
func (b *Builder) Where(clause string, args ...any) *Builder {
	idxs := make([]any, len(args))
	for i := range args {
		idxs[i] = b.idx + i
	}
	b.where += " AND " + fmt.Sprintf(clause, idxs...)
	b.args = append(b.args, args...)
	b.idx += len(args)
	return b
}

// Equals filters on column equality, skipping empty values.
func (b *Builder) Equals(column string, value any) *Builder {
	switch v := value.(type) {
	case string:
		if v == "" {
			return b
		}
	case uuid.UUID:
		if v == uuid.Nil {
			return b
		}
	case *uuid.UUID:
		if v == nil {
			return b
		}
	case nil:
		return b
	}
	return b.Where(column+" = $%d", value)
}

// Text filters with a case-insensitive substring match across the given
// columns, combined with OR. Empty queries are skipped.
func (b *Builder) Text(q string, columns ...string) *Builder {
	if q == "" || len(columns) == 0 {
		return b
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, b.idx)
	}
	b.where += " AND (" + strings.Join(parts, " OR ") + ")"
	b.args = append(b.args, "%"+q+"%")
	b.idx++
	return b
}

// DateRange bounds a date column. Zero times are skipped.
func (b *Builder) DateRange(column string, from, to time.Time) *Builder {
	if !from.IsZero() {
		b.Where(column+" >= $%d", from)
	}
	if !to.IsZero() {
		b.Where(column+" <= $%d", to)
	}
	return b
}

// OrderBy sets the ORDER BY expression (without the keyword).
func (b *Builder) OrderBy(orderBy string) *Builder {
	b.orderBy = orderBy
	return b
}

func (b *Builder) base() string {
	s := b.table
	for _, j := range b.joins {
		s += " " + j
	}
	return s
}

func (b *Builder) filter() string {
	w := b.where
	if !b.allRecords && b.deletedCol != "" {
		w = " AND " + b.deletedCol + " = FALSE" + w
	}
	return w
}

// CountSQL returns the count query over the current filters.
func (b *Builder) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", b.base(), b.filter())
}

func (b *Builder) CountArgs() []any {
	return b.args
}

// DataSQL returns the data query with ORDER BY and LIMIT/OFFSET appended.
func (b *Builder) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", b.cols, b.base(), b.filter())
	if b.orderBy != "" {
		sql += " ORDER BY " + b.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", b.idx, b.idx+1)
	return sql
}

func (b *Builder) DataArgs(limit, offset int) []any {
	out := make([]any, len(b.args)+2)
	copy(out, b.args)
	out[len(b.args)] = limit
	out[len(b.args)+1] = offset
	return out
}

package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) GroupBy(columns ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, columns...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("select from %q: no columns", b.table)
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("select: table is required")
	}

	s := newStmt(len(b.where))
	s.write("SELECT ")
	s.list(b.columns)
	s.write(" FROM ", b.table)
	s.where(b.where)
	if len(b.groupBy) > 0 {
		s.write(" GROUP BY ")
		s.list(b.groupBy)
	}
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ")
		s.list(b.orderBy)
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}

	query, args := s.finish()
	return query, args, nil
}

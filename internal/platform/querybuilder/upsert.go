package querybuilder

import (
	"fmt"
	"slices"
	"strings"
)

// UpsertBuilder renders INSERT ... ON CONFLICT for a db-tagged model.
type UpsertBuilder struct {
	table       string
	model       any
	target      []string
	targetWhere string
	nothing     bool
	sets        []assignment
	updateWhere string
}

func Upsert(table string, model any) *UpsertBuilder {
	return &UpsertBuilder{table: table, model: model}
}

// OnConflict names the unique columns. predicate selects a partial unique index
// and may be empty.
func (b *UpsertBuilder) OnConflict(predicate string, columns ...string) *UpsertBuilder {
	b.target = append([]string(nil), columns...)
	b.targetWhere = strings.TrimSpace(predicate)
	return b
}

func (b *UpsertBuilder) DoNothing() *UpsertBuilder {
	b.nothing = true
	return b
}

// DoUpdate overwrites the listed columns from the proposed row. With no columns
// every model column outside the conflict target is overwritten.
func (b *UpsertBuilder) DoUpdate(columns ...string) *UpsertBuilder {
	if len(columns) == 0 {
		all, _, err := modelColumns(b.model)
		if err == nil {
			columns = slices.DeleteFunc(all, func(c string) bool {
				return slices.Contains(b.target, c)
			})
		}
	}
	for _, column := range columns {
		b.sets = append(b.sets, assignment{column: column, expr: "EXCLUDED." + column, raw: true})
	}
	return b
}

// SetExpr adds or replaces the update of one column.
func (b *UpsertBuilder) SetExpr(column, expr string, args ...any) *UpsertBuilder {
	b.sets = slices.DeleteFunc(b.sets, func(a assignment) bool { return a.column == column })
	b.sets = append(b.sets, assignment{column: column, expr: expr, value: args, raw: true})
	return b
}

// UpdateWhere guards the update; rows failing it are left untouched.
func (b *UpsertBuilder) UpdateWhere(predicate string) *UpsertBuilder {
	b.updateWhere = strings.TrimSpace(predicate)
	return b
}

func (b *UpsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("upsert: table is required")
	case len(b.target) == 0:
		return "", nil, fmt.Errorf("upsert into %s: conflict target is required", b.table)
	case !b.nothing && len(b.sets) == 0:
		return "", nil, fmt.Errorf("upsert into %s: nothing to update", b.table)
	}

	columns, values, err := modelColumns(b.model)
	if err != nil {
		return "", nil, fmt.Errorf("upsert into %s: %w", b.table, err)
	}

	s := newStmt(len(values))
	writeInsert(s, b.table, columns, values)
	s.write(" ON CONFLICT (")
	s.list(b.target)
	s.write(")")
	if b.targetWhere != "" {
		s.write(" WHERE ", b.targetWhere)
	}
	if b.nothing {
		s.write(" DO NOTHING")
		query, args := s.finish()
		return query, args, nil
	}

	s.write(" DO UPDATE SET ")
	writeAssignments(s, b.sets)
	if b.updateWhere != "" {
		s.write(" WHERE ", b.updateWhere)
	}

	query, args := s.finish()
	return query, args, nil
}

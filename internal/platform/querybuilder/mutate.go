package querybuilder

import (
	"fmt"
	"strings"
)

type assignment struct {
	column string
	value  any
	expr   string
	raw    bool
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a SQL expression such as NOW(); ? markers bind args.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: expr, value: args, raw: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("update: table is required")
	case len(b.sets) == 0:
		return "", nil, fmt.Errorf("update %s: nothing to set", b.table)
	case len(b.where) == 0:
		return "", nil, fmt.Errorf("update %s: where clause is required", b.table)
	}

	s := newStmt(len(b.sets) + len(b.where))
	s.write("UPDATE ", b.table, " SET ")
	writeAssignments(s, b.sets)
	s.where(b.where)

	query, args := s.finish()
	return query, args, nil
}

func writeAssignments(s *stmt, sets []assignment) {
	for i, a := range sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ")
		if a.raw {
			args, _ := a.value.([]any)
			s.expr(a.expr, args)
			continue
		}
		s.bind(a.value)
	}
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("delete: table is required")
	case len(b.where) == 0:
		return "", nil, fmt.Errorf("delete from %s: where clause is required", b.table)
	}

	s := newStmt(len(b.where))
	s.write("DELETE FROM ", b.table)
	s.where(b.where)

	query, args := s.finish()
	return query, args, nil
}

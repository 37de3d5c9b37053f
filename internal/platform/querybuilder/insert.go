package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// modelFields caches the db-tagged exported field layout per struct type.
var modelFields sync.Map

type field struct {
	column string
	index  int
}

func fieldsOf(typ reflect.Type) ([]field, error) {
	if cached, ok := modelFields.Load(typ); ok {
		return cached.([]field), nil
	}

	fields := make([]field, 0, typ.NumField())
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, field{column: column, index: i})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s has no db columns", typ)
	}

	modelFields.Store(typ, fields)
	return fields, nil
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model is nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}

	fields, err := fieldsOf(value.Type())
	if err != nil {
		return nil, nil, err
	}
	columns := make([]string, len(fields))
	values := make([]any, len(fields))
	for i, f := range fields {
		columns[i] = f.column
		values[i] = value.Field(f.index).Interface()
	}
	return columns, values, nil
}

func writeInsert(s *stmt, table string, columns []string, values []any) {
	s.write("INSERT INTO ", table, " (")
	s.list(columns)
	s.write(") VALUES (")
	for i, v := range values {
		if i > 0 {
			s.write(", ")
		}
		s.bind(v)
	}
	s.write(")")
}

// InsertModel inserts one row from the db tags of model. suffix is appended as is
// (ON CONFLICT, RETURNING).
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert: table is required")
	}
	columns, values, err := modelColumns(model)
	if err != nil {
		return "", nil, fmt.Errorf("insert into %s: %w", table, err)
	}

	s := newStmt(len(values))
	writeInsert(s, table, columns, values)
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		s.write(" ", suffix)
	}

	query, args := s.finish()
	return query, args, nil
}

// Package querybuilder renders positional postgres statements for the repository layer.
package querybuilder

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// stmt accumulates SQL text and bound arguments. Placeholders are numbered in the
// order values are bound.
type stmt struct {
	buf  *bytebufferpool.ByteBuffer
	args []any
}

func newStmt(capArgs int) *stmt {
	return &stmt{buf: bytebufferpool.Get(), args: make([]any, 0, capArgs)}
}

func (s *stmt) write(parts ...string) {
	for _, part := range parts {
		_, _ = s.buf.WriteString(part)
	}
}

func (s *stmt) list(items []string) {
	s.write(strings.Join(items, ", "))
}

func (s *stmt) bind(value any) {
	s.args = append(s.args, value)
	s.write("$", strconv.Itoa(len(s.args)))
}

// expr writes a fragment with ? markers, binding one arg per marker. Extra markers
// are kept verbatim.
func (s *stmt) expr(fragment string, values []any) {
	if len(values) == 0 {
		s.write(fragment)
		return
	}
	next := 0
	for {
		idx := strings.IndexByte(fragment, '?')
		if idx < 0 || next >= len(values) {
			s.write(fragment)
			return
		}
		s.write(fragment[:idx])
		s.bind(values[next])
		next++
		fragment = fragment[idx+1:]
	}
}

func (s *stmt) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	s.write(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			s.write(" AND ")
		}
		c.render(s)
	}
}

func (s *stmt) finish() (string, []any) {
	query := s.buf.String()
	bytebufferpool.Put(s.buf)
	s.buf = nil
	return query, s.args
}

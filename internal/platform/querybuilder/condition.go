package querybuilder

type Condition interface {
	render(s *stmt)
}

type condFunc func(s *stmt)

func (f condFunc) render(s *stmt) { f(s) }

func Eq(column string, value any) Condition {
	return condFunc(func(s *stmt) {
		s.write(column, " = ")
		s.bind(value)
	})
}

// In renders column IN (...). An empty list matches nothing.
func In[T any](column string, values []T) Condition {
	return condFunc(func(s *stmt) {
		if len(values) == 0 {
			s.write("1=0")
			return
		}
		s.write(column, " IN (")
		for i, v := range values {
			if i > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	})
}

func InStrings(column string, values []string) Condition {
	return In(column, values)
}

func IsNull(column string) Condition {
	return condFunc(func(s *stmt) {
		s.write(column, " IS NULL")
	})
}

// Expr is a raw predicate; each ? binds the next arg.
func Expr(fragment string, args ...any) Condition {
	return condFunc(func(s *stmt) {
		s.expr(fragment, args)
	})
}

package dto

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

// Column names a column, optionally qualified by its table.
type Column struct {
	Table string
	Name  string
}

// Col builds a qualified column.
func Col(table, name string) Column {
	return Column{Table: table, Name: name}
}

func (c Column) String() string {
	if c.Table == "" {
		return c.Name
	}

	return c.Table + "." + c.Name
}

// Filter is a typed predicate rendered into a named-parameter WHERE clause.
// The set of variants is closed: Eq, NotEq, Like, OneOf, Range, IsNull, NotNull,
// Contains, And and Or.
type Filter interface {
	render(b *binder) string
}

// Eq matches column = value.
type Eq struct {
	Column Column
	Value  any
}

// NotEq matches column != value.
type NotEq struct {
	Column Column
	Value  any
}

// Like matches a case-insensitive substring.
type Like struct {
	Column Column
	Value  string
}

// OneOf matches column IN (values...). Values must be a slice or an array.
// An empty set matches nothing.
type OneOf struct {
	Column Column
	Values any
}

// Range bounds a column. A nil bound is open. Bounds are inclusive unless the
// matching Exclusive flag is set.
type Range struct {
	Column       Column
	Min          any
	Max          any
	MinExclusive bool
	MaxExclusive bool
}

// IsNull matches column IS NULL.
type IsNull struct {
	Column Column
}

// NotNull matches column IS NOT NULL.
type NotNull struct {
	Column Column
}

// Contains matches array columns holding every value (column @> values).
type Contains struct {
	Column Column
	Values []string
}

// And joins filters with AND. Nil members are skipped.
type And []Filter

// Or joins filters with OR. Nil members are skipped.
type Or []Filter

type binder struct {
	args map[string]any
	seq  int
}

func (b *binder) bind(column Column, value any) string {
	b.seq++

	name := fmt.Sprintf("%s_%d", strings.ReplaceAll(column.Name, ".", "_"), b.seq)
	b.args[name] = value

	return ":" + name
}

func (f Eq) render(b *binder) string {
	return fmt.Sprintf("%s = %s", f.Column, b.bind(f.Column, f.Value))
}

func (f NotEq) render(b *binder) string {
	return fmt.Sprintf("%s != %s", f.Column, b.bind(f.Column, f.Value))
}

func (f Like) render(b *binder) string {
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", f.Column, b.bind(f.Column, "%"+f.Value+"%"))
}

func (f OneOf) render(b *binder) string {
	val := reflect.ValueOf(f.Values)
	if !val.IsValid() || (val.Kind() != reflect.Slice && val.Kind() != reflect.Array) {
		return "FALSE"
	}

	if val.Len() == 0 {
		return "FALSE"
	}

	named := make([]string, val.Len())
	for idx := range val.Len() {
		named[idx] = b.bind(f.Column, val.Index(idx).Interface())
	}

	return fmt.Sprintf("%s IN (%s)", f.Column, strings.Join(named, ", "))
}

func (f Range) render(b *binder) string {
	parts := []string{}

	if f.Min != nil {
		op := ">="
		if f.MinExclusive {
			op = ">"
		}

		parts = append(parts, fmt.Sprintf("%s %s %s", f.Column, op, b.bind(f.Column, f.Min)))
	}

	if f.Max != nil {
		op := "<="
		if f.MaxExclusive {
			op = "<"
		}

		parts = append(parts, fmt.Sprintf("%s %s %s", f.Column, op, b.bind(f.Column, f.Max)))
	}

	return strings.Join(parts, " AND ")
}

func (f IsNull) render(_ *binder) string {
	return f.Column.String() + " IS NULL"
}

func (f NotNull) render(_ *binder) string {
	return f.Column.String() + " IS NOT NULL"
}

func (f Contains) render(b *binder) string {
	return fmt.Sprintf("%s @> %s", f.Column, b.bind(f.Column, pq.StringArray(f.Values)))
}

func (f And) render(b *binder) string {
	return group(b, f, " AND ")
}

func (f Or) render(b *binder) string {
	return group(b, f, " OR ")
}

func group(b *binder, filters []Filter, sep string) string {
	clauses := []string{}

	for _, filter := range filters {
		if filter == nil {
			continue
		}

		if clause := filter.render(b); clause != "" {
			clauses = append(clauses, clause)
		}
	}

	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return "(" + strings.Join(clauses, sep) + ")"
	}
}

// Where renders the filter and returns the clause body (without WHERE) and its
// named arguments. A nil or empty filter yields an empty clause.
func Where(filter Filter) (string, map[string]any) {
	b := &binder{args: map[string]any{}}

	if filter == nil {
		return "", b.args
	}

	return filter.render(b), b.args
}

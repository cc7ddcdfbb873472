// Package filter evaluates row-filter expressions against classified
// records using a JavaScript runtime (goja). Filters are a presentation
// convenience for the results views; they never participate in
// classification or ordering.
package filter

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/me/rota/pkg/model"
)

// Filter is a compiled boolean row expression, e.g.
//
//	row.Students >= 200 && row.Day == "Mon"
type Filter struct {
	src  string
	prog *goja.Program
}

// Compile parses and compiles an expression. The expression must be a
// single JavaScript expression over the `row` object.
func Compile(expr string) (*Filter, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	prog, err := goja.Compile("filter", "("+expr+")", true)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, err)
	}
	return &Filter{src: expr, prog: prog}, nil
}

// Match evaluates the filter against one record. Each evaluation runs in
// a fresh VM so a filter cannot carry state between rows.
func (f *Filter) Match(rec model.ClassifiedRecord) (bool, error) {
	vm := goja.New()
	if err := vm.Set("row", rowObject(rec)); err != nil {
		return false, fmt.Errorf("set row: %w", err)
	}
	v, err := vm.RunProgram(f.prog)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.src, err)
	}
	return v.ToBoolean(), nil
}

// Apply returns the records matching the filter, preserving order.
func (f *Filter) Apply(records []model.ClassifiedRecord) ([]model.ClassifiedRecord, error) {
	var out []model.ClassifiedRecord
	for _, rec := range records {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// rowObject exposes a record's fields to the expression under stable
// names matching the result payload schema.
func rowObject(rec model.ClassifiedRecord) map[string]any {
	return map[string]any{
		"Course":              rec.Course,
		"Section":             rec.Section,
		"SessionType":         rec.SessionType,
		"Students":            rec.Students,
		"Day":                 rec.Day.String(),
		"StartMin":            rec.StartMin,
		"EndMin":              rec.EndMin,
		"StartHHMM":           rec.StartHHMM(),
		"EndHHMM":             rec.EndHHMM(),
		"Room":                rec.Room,
		"Instructor":          rec.Instructor,
		"InstructorQualified": rec.InstructorQualified,
		"TimeslotIsPreferred": rec.TimeslotPreferred,
		"Tier":                string(rec.Tier),
	}
}

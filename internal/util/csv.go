package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects CSV rows either by an equality "column=value" or by
// a boolean expr program evaluated against each row.
type Filter struct {
	column  string
	value   string
	program *vm.Program
}

// ParseFilter compiles s. A single "=" with a bare column name on the left is
// an equality match; anything else is compiled as an expression where each
// column is a variable and numeric cells are numbers.
func ParseFilter(s string) (*Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty filter")
	}
	if col, val, ok := splitEquality(s); ok {
		return &Filter{column: col, value: val}, nil
	}
	program, err := expr.Compile(s, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", s, err)
	}
	return &Filter{program: program}, nil
}

func splitEquality(s string) (string, string, bool) {
	if strings.Count(s, "=") != 1 || strings.ContainsAny(s, "!<>") {
		return "", "", false
	}
	col, val, _ := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if col == "" || strings.ContainsAny(col, "()\"'") {
		return "", "", false
	}
	val = strings.Trim(strings.TrimSpace(val), `"'`)
	return col, val, true
}

// Match reports whether the row, keyed by header, passes the filter.
func (f *Filter) Match(row map[string]string) (bool, error) {
	if f.program == nil {
		v, ok := row[f.column]
		return ok && strings.TrimSpace(v) == f.value, nil
	}
	out, err := expr.Run(f.program, typed(row))
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}

// FilterCSV reads a CSV with a header row and returns the matching rows with
// numeric cells converted to numbers.
func FilterCSV(r io.Reader, filter string) ([]map[string]any, error) {
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv has no header")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var result = []map[string]any{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		ok, err := f.Match(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			result = append(result, typed(row))
		}
	}
	return result, nil
}

func typed(row map[string]string) map[string]any {
	m := make(map[string]any, len(row))
	for k, v := range row {
		m[k] = ParseValue(v)
	}
	return m
}

// ParseValue converts s to int or float64 when it is numeric.
func ParseValue(s string) any {
	t := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f
	}
	return s
}

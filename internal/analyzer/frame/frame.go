package frame

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrEmpty is returned when the input has no columns to parse.
	ErrEmpty = errors.New("no columns to parse from file")
	// ErrColumnNotFound is returned when an operation names an unknown column.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when a numeric column is required.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrNotDatetime is returned when a datetime column is required.
	ErrNotDatetime = errors.New("column is not a datetime column")
)

// Column is a named, typed sequence of cells.
type Column struct {
	name  string
	kind  Kind
	cells []string
	nums  []float64 // parsed cells for numeric columns, NaN where missing
}

func newColumn(name string, cells []string) *Column {
	c := &Column{name: name, cells: cells, kind: inferKind(cells)}
	if c.kind == KindNumeric {
		c.nums = make([]float64, len(cells))
		for i, cell := range cells {
			if f, ok := parseNumber(cell); ok {
				c.nums[i] = f
			} else {
				c.nums[i] = math.NaN()
			}
		}
	}
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.cells) }

// Cell returns the raw cell at row i ("" when missing).
func (c *Column) Cell(i int) string { return c.cells[i] }

// Missing counts empty cells.
func (c *Column) Missing() int {
	n := 0
	for _, cell := range c.cells {
		if cell == "" {
			n++
		}
	}
	return n
}

// NonNull counts non-empty cells.
func (c *Column) NonNull() int { return len(c.cells) - c.Missing() }

// Float returns the numeric value at row i. ok is false for missing cells
// and for non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != KindNumeric || c.cells[i] == "" {
		return 0, false
	}
	return c.nums[i], true
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	if c.kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.cells))
	for i, cell := range c.cells {
		if cell != "" {
			out = append(out, c.nums[i])
		}
	}
	return out
}

// Frame is an immutable table of equally long columns.
type Frame struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a frame from a header and row-major records. Short records are
// padded with missing cells and long ones are truncated. Blank header names
// become "Unnamed: i" and duplicates get a ".n" suffix.
func New(header []string, records [][]string) (*Frame, error) {
	if len(header) == 0 {
		return nil, ErrEmpty
	}

	names := uniqueNames(header)
	cells := make([][]string, len(names))
	for j := range cells {
		cells[j] = make([]string, len(records))
	}
	for i, rec := range records {
		for j := range names {
			if j < len(rec) {
				cells[j][i] = normalizeCell(rec[j])
			}
		}
	}

	cols := make([]*Column, len(names))
	for j, name := range names {
		cols[j] = newColumn(name, cells[j])
	}
	return fromColumns(cols, len(records)), nil
}

func fromColumns(cols []*Column, rows int) *Frame {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c.name] = i
	}
	return &Frame{cols: cols, index: index, rows: rows}
}

func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dups := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for used[name] {
				dups[base]++
				name = fmt.Sprintf("%s.%d", base, dups[base])
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) { return f.rows, len(f.cols) }

// Rows returns the row count.
func (f *Frame) Rows() int { return f.rows }

// Size is the total number of cells.
func (f *Frame) Size() int { return f.rows * len(f.cols) }

// Names returns column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.name
	}
	return out
}

// Columns returns the columns in order.
func (f *Frame) Columns() []*Column {
	out := make([]*Column, len(f.cols))
	copy(out, f.cols)
	return out
}

// Column looks up a column by name.
func (f *Frame) Column(name string) (*Column, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return f.cols[i], nil
}

// NumericColumns returns the numeric columns in order.
func (f *Frame) NumericColumns() []*Column {
	var out []*Column
	for _, c := range f.cols {
		if c.kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// Record returns row i as a slice of cells.
func (f *Frame) Record(i int) []string {
	out := make([]string, len(f.cols))
	for j, c := range f.cols {
		out[j] = c.cells[i]
	}
	return out
}

// Records returns every row.
func (f *Frame) Records() [][]string {
	out := make([][]string, f.rows)
	for i := range out {
		out[i] = f.Record(i)
	}
	return out
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	n = clamp(n, f.rows)
	return f.take(rangeIdx(0, n))
}

// Tail returns the last n rows.
func (f *Frame) Tail(n int) *Frame {
	n = clamp(n, f.rows)
	return f.take(rangeIdx(f.rows-n, f.rows))
}

// take builds a new frame holding the given rows, re-inferring kinds.
func (f *Frame) take(rows []int) *Frame {
	cols := make([]*Column, len(f.cols))
	for j, c := range f.cols {
		cells := make([]string, len(rows))
		for k, i := range rows {
			cells[k] = c.cells[i]
		}
		cols[j] = newColumn(c.name, cells)
	}
	return fromColumns(cols, len(rows))
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

func rangeIdx(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

package frame

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ColumnInfo is one line of the info summary.
type ColumnInfo struct {
	Name    string
	Kind    Kind
	NonNull int
	Missing int
}

// Info summarizes every column.
func (f *Frame) Info() []ColumnInfo {
	out := make([]ColumnInfo, len(f.cols))
	for i, c := range f.cols {
		out[i] = ColumnInfo{Name: c.name, Kind: c.kind, NonNull: c.NonNull(), Missing: c.Missing()}
	}
	return out
}

// Summary holds the descriptive statistics of one numeric column. Std is the
// sample standard deviation and is NaN for fewer than two values.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Describe computes a Summary for each numeric column.
func (f *Frame) Describe() []Summary {
	var out []Summary
	for _, c := range f.NumericColumns() {
		values := c.Floats()
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		s := Summary{
			Column: c.name,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			Std:    math.NaN(),
			Min:    sorted[0],
			Q25:    quantile(sorted, 0.25),
			Q50:    quantile(sorted, 0.50),
			Q75:    quantile(sorted, 0.75),
			Max:    sorted[len(sorted)-1],
		}
		if len(values) > 1 {
			s.Std = stat.StdDev(values, nil)
		}
		out = append(out, s)
	}
	return out
}

// quantile uses linear interpolation between closest ranks on sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// MissingInfo reports missing cells of one column.
type MissingInfo struct {
	Column  string
	Count   int
	Percent float64
}

// Missing lists columns that have at least one missing cell.
func (f *Frame) Missing() []MissingInfo {
	var out []MissingInfo
	for _, c := range f.cols {
		n := c.Missing()
		if n == 0 {
			continue
		}
		out = append(out, MissingInfo{
			Column:  c.name,
			Count:   n,
			Percent: float64(n) / float64(f.rows) * 100,
		})
	}
	return out
}

// DropMissing returns the rows with no missing cell.
func (f *Frame) DropMissing() *Frame {
	keep := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		complete := true
		for _, c := range f.cols {
			if c.cells[i] == "" {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return f.take(keep)
}

// FillZero replaces every missing cell, in every column, with "0".
func (f *Frame) FillZero() *Frame {
	return f.fill(func(*Column) (string, bool) { return "0", true })
}

// FillMean replaces missing cells of numeric columns with the column mean.
// Other columns are left untouched.
func (f *Frame) FillMean() *Frame {
	return f.fill(func(c *Column) (string, bool) {
		if c.kind != KindNumeric {
			return "", false
		}
		return formatFloat(stat.Mean(c.Floats(), nil)), true
	})
}

func (f *Frame) fill(value func(*Column) (string, bool)) *Frame {
	cols := make([]*Column, len(f.cols))
	for j, c := range f.cols {
		v, ok := value(c)
		if !ok || c.Missing() == 0 {
			cols[j] = c
			continue
		}
		cells := make([]string, len(c.cells))
		for i, cell := range c.cells {
			if cell == "" {
				cell = v
			}
			cells[i] = cell
		}
		cols[j] = newColumn(c.name, cells)
	}
	return fromColumns(cols, f.rows)
}

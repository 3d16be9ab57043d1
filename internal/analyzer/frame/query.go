package frame

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Agg is an aggregation applied per group.
type Agg string

const (
	AggMean Agg = "mean"
	AggSum  Agg = "sum"
	AggMin  Agg = "min"
	AggMax  Agg = "max"
)

// ErrUnknownAgg is returned for an unsupported aggregation.
var ErrUnknownAgg = errors.New("unknown aggregation")

// Filter keeps the rows whose cell in column equals value. Numeric columns
// compare by value so "1" matches "1.0".
func (f *Frame) Filter(column, value string) (*Frame, error) {
	c, err := f.Column(column)
	if err != nil {
		return nil, err
	}

	value = normalizeCell(value)
	want, numeric := parseNumber(value)
	numeric = numeric && c.kind == KindNumeric

	var keep []int
	for i, cell := range c.cells {
		if numeric {
			if got, ok := c.Float(i); ok && got == want {
				keep = append(keep, i)
			}
			continue
		}
		if cell == value {
			keep = append(keep, i)
		}
	}
	return f.take(keep), nil
}

// DateRange keeps rows whose datetime cell in column lies within [start, end].
func (f *Frame) DateRange(column string, start, end time.Time) (*Frame, error) {
	c, err := f.Column(column)
	if err != nil {
		return nil, err
	}
	if c.kind != KindDatetime {
		return nil, ErrNotDatetime
	}

	var keep []int
	for i, cell := range c.cells {
		t, ok := ParseTime(cell)
		if !ok {
			continue
		}
		if !t.Before(start) && !t.After(end) {
			keep = append(keep, i)
		}
	}
	return f.take(keep), nil
}

// DateBounds returns the earliest and latest value of a datetime column.
func (f *Frame) DateBounds(column string) (time.Time, time.Time, error) {
	c, err := f.Column(column)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if c.kind != KindDatetime {
		return time.Time{}, time.Time{}, ErrNotDatetime
	}

	var lo, hi time.Time
	for _, cell := range c.cells {
		t, ok := ParseTime(cell)
		if !ok {
			continue
		}
		if lo.IsZero() || t.Before(lo) {
			lo = t
		}
		if hi.IsZero() || t.After(hi) {
			hi = t
		}
	}
	return lo, hi, nil
}

// ValueCount is the frequency of one distinct value.
type ValueCount struct {
	Value   string
	Count   int
	Percent float64
}

// ValueCounts counts non-missing values of a column, most frequent first.
// Ties are ordered by value. Percent is relative to the non-missing total.
func (f *Frame) ValueCounts(column string) ([]ValueCount, error) {
	c, err := f.Column(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	total := 0
	for _, cell := range c.cells {
		if cell == "" {
			continue
		}
		counts[cell]++
		total++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n, Percent: float64(n) / float64(total) * 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// TopValues returns the k most frequent values of a column.
func (f *Frame) TopValues(column string, k int) ([]ValueCount, error) {
	counts, err := f.ValueCounts(column)
	if err != nil {
		return nil, err
	}
	return counts[:clamp(k, len(counts))], nil
}

// Group is one aggregated group.
type Group struct {
	Key   string
	Count int
	Value float64
}

// GroupBy aggregates the numeric column on per distinct value of by. Rows
// with a missing key are dropped; groups are ordered by key and groups with
// no values aggregate to NaN (sum gives 0).
func (f *Frame) GroupBy(by, on string, agg Agg) ([]Group, error) {
	keyCol, err := f.Column(by)
	if err != nil {
		return nil, err
	}
	valCol, err := f.Column(on)
	if err != nil {
		return nil, err
	}
	if valCol.kind != KindNumeric {
		return nil, ErrNotNumeric
	}

	reduce, err := reducer(agg)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i, key := range keyCol.cells {
		if key == "" {
			continue
		}
		vals := groups[key]
		if v, ok := valCol.Float(i); ok {
			vals = append(vals, v)
		}
		groups[key] = vals
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortKeys(keys, keyCol.kind == KindNumeric)

	out := make([]Group, len(keys))
	for i, k := range keys {
		out[i] = Group{Key: k, Count: len(groups[k]), Value: reduce(groups[k])}
	}
	return out, nil
}

func reducer(agg Agg) (func([]float64) float64, error) {
	switch agg {
	case AggMean:
		return func(v []float64) float64 {
			if len(v) == 0 {
				return math.NaN()
			}
			return stat.Mean(v, nil)
		}, nil
	case AggSum:
		return func(v []float64) float64 {
			var s float64
			for _, x := range v {
				s += x
			}
			return s
		}, nil
	case AggMin:
		return func(v []float64) float64 {
			if len(v) == 0 {
				return math.NaN()
			}
			m := v[0]
			for _, x := range v[1:] {
				m = math.Min(m, x)
			}
			return m
		}, nil
	case AggMax:
		return func(v []float64) float64 {
			if len(v) == 0 {
				return math.NaN()
			}
			m := v[0]
			for _, x := range v[1:] {
				m = math.Max(m, x)
			}
			return m
		}, nil
	default:
		return nil, ErrUnknownAgg
	}
}

func sortKeys(keys []string, numeric bool) {
	sort.Slice(keys, func(i, j int) bool {
		if numeric {
			a, _ := parseNumber(keys[i])
			b, _ := parseNumber(keys[j])
			if a != b {
				return a < b
			}
		}
		return strings.Compare(keys[i], keys[j]) < 0
	})
}

// Correlation returns the Pearson correlation matrix of the numeric columns.
// Each pair uses the rows where both values are present; pairs with fewer
// than two such rows or zero variance are NaN.
func (f *Frame) Correlation() ([]string, [][]float64) {
	cols := f.NumericColumns()
	names := make([]string, len(cols))
	matrix := make([][]float64, len(cols))
	for i, c := range cols {
		names[i] = c.name
		matrix[i] = make([]float64, len(cols))
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairCorrelation(cols[i], cols[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return names, matrix
}

func pairCorrelation(a, b *Column) float64 {
	var xs, ys []float64
	for i := range a.cells {
		x, okx := a.Float(i)
		y, oky := b.Float(i)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if a == b {
		if stat.Variance(xs, nil) == 0 {
			return math.NaN()
		}
		return 1
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}

// Points returns (x, y) pairs of two numeric columns in row order, skipping
// rows where either value is missing.
func (f *Frame) Points(x, y string) ([]float64, []float64, error) {
	xc, err := f.Column(x)
	if err != nil {
		return nil, nil, err
	}
	yc, err := f.Column(y)
	if err != nil {
		return nil, nil, err
	}
	if xc.kind != KindNumeric || yc.kind != KindNumeric {
		return nil, nil, ErrNotNumeric
	}

	var xs, ys []float64
	for i := 0; i < f.rows; i++ {
		xv, okx := xc.Float(i)
		yv, oky := yc.Float(i)
		if okx && oky {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys, nil
}

package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"agridash/pkg/contracts/domain"
)

// KeyFunc extracts a grouping key from a row.
type KeyFunc func(domain.Observation) string

// By groups on a column.
func By(f domain.Field) KeyFunc {
	return func(o domain.Observation) string { return o.Attr(f) }
}

// ByContinent groups on the continent derived from the country name.
func ByContinent() KeyFunc {
	return func(o domain.Observation) string { return Continent(o.Country) }
}

// Group is the set of values sharing one key tuple.
type Group struct {
	Keys   []string
	Values []float64
}

// Key returns the i-th key of the tuple.
func (g Group) Key(i int) string { return g.Keys[i] }

// Count is the number of rows in the group.
func (g Group) Count() float64 { return float64(len(g.Values)) }

// Sum adds the group's values.
func (g Group) Sum() float64 {
	var s float64
	for _, v := range g.Values {
		s += v
	}
	return s
}

// Mean is the arithmetic mean, or 0 for an empty group.
func (g Group) Mean() float64 {
	if len(g.Values) == 0 {
		return 0
	}
	return g.Sum() / float64(len(g.Values))
}

// Std is the sample standard deviation. Groups of fewer than two values
// have no spread and report 0.
func (g Group) Std() float64 {
	n := len(g.Values)
	if n < 2 {
		return 0
	}
	mean := g.Mean()
	var ss float64
	for _, v := range g.Values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Max is the largest value, or 0 for an empty group.
func (g Group) Max() float64 {
	if len(g.Values) == 0 {
		return 0
	}
	m := g.Values[0]
	for _, v := range g.Values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// AggFunc reduces a group to a scalar.
type AggFunc func(Group) float64

var (
	AggSum   AggFunc = Group.Sum
	AggMean  AggFunc = Group.Mean
	AggCount AggFunc = Group.Count
	AggStd   AggFunc = Group.Std
	AggMax   AggFunc = Group.Max
)

// GroupBy partitions rows by the key tuple. Groups come back sorted by key,
// numerically where both keys are integers (years), lexically otherwise.
func GroupBy(rows []domain.Observation, keys ...KeyFunc) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, row := range rows {
		tuple := make([]string, len(keys))
		for i, k := range keys {
			tuple[i] = k(row)
		}
		id := strings.Join(tuple, "\x00")

		pos, ok := index[id]
		if !ok {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, Group{Keys: tuple})
		}
		groups[pos].Values = append(groups[pos].Values, row.ObsValue)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return lessTuple(groups[i].Keys, groups[j].Keys)
	})
	return groups
}

func lessTuple(a, b []string) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		return lessKey(a[i], b[i])
	}
	return false
}

func lessKey(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

// Ranked is a single-key aggregate.
type Ranked struct {
	Key   string
	Value float64
}

// Aggregate groups on one key and reduces every group with agg.
func Aggregate(rows []domain.Observation, key KeyFunc, agg AggFunc) []Ranked {
	groups := GroupBy(rows, key)
	out := make([]Ranked, len(groups))
	for i, g := range groups {
		out[i] = Ranked{Key: g.Keys[0], Value: agg(g)}
	}
	return out
}

// SortDesc orders by value, largest first. Ties keep key order.
func SortDesc(values []Ranked) []Ranked {
	out := append([]Ranked(nil), values...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// TopN returns the n largest values.
func TopN(values []Ranked, n int) []Ranked {
	out := SortDesc(values)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ArgMax returns the entry with the largest value. The first key wins ties.
func ArgMax(values []Ranked) (Ranked, bool) {
	if len(values) == 0 {
		return Ranked{}, false
	}
	best := values[0]
	for _, r := range values[1:] {
		if r.Value > best.Value {
			best = r
		}
	}
	return best, true
}

// Sum adds the values of all rows.
func Sum(rows []domain.Observation) float64 {
	var s float64
	for _, r := range rows {
		s += r.ObsValue
	}
	return s
}

// Mean averages the values of all rows. ok is false for an empty input.
func Mean(rows []domain.Observation) (mean float64, ok bool) {
	if len(rows) == 0 {
		return 0, false
	}
	return Sum(rows) / float64(len(rows)), true
}

// NUnique counts distinct keys.
func NUnique(rows []domain.Observation, key KeyFunc) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}

// Distinct returns the sorted distinct non-empty keys.
func Distinct(rows []domain.Observation, key KeyFunc) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i], out[j]) })
	return out
}

// Pivot spreads an aggregate over a rows × columns matrix. Cells without
// data are nil.
func Pivot(rows []domain.Observation, rowKey, colKey KeyFunc, agg AggFunc) domain.Heatmap {
	groups := GroupBy(rows, rowKey, colKey)

	rowNames := Distinct(rows, rowKey)
	colNames := Distinct(rows, colKey)
	rowIdx := indexOf(rowNames)
	colIdx := indexOf(colNames)

	values := make([][]*float64, len(rowNames))
	for i := range values {
		values[i] = make([]*float64, len(colNames))
	}
	for _, g := range groups {
		r, okR := rowIdx[g.Keys[0]]
		c, okC := colIdx[g.Keys[1]]
		if !okR || !okC {
			continue
		}
		v := agg(g)
		values[r][c] = &v
	}

	return domain.Heatmap{Rows: rowNames, Columns: colNames, Values: values}
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}

// CompleteRows keeps only the heatmap rows with a value in every column,
// the equivalent of dropping incomplete records from a pivot.
func CompleteRows(h domain.Heatmap) domain.Heatmap {
	out := domain.Heatmap{Columns: h.Columns}
	for i, row := range h.Values {
		complete := true
		for _, cell := range row {
			if cell == nil {
				complete = false
				break
			}
		}
		if complete {
			out.Rows = append(out.Rows, h.Rows[i])
			out.Values = append(out.Values, row)
		}
	}
	return out
}

// ECDF returns the empirical cumulative distribution of values as
// (value, proportion ≤ value) points in ascending order.
func ECDF(values []float64) []domain.Point {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	out := make([]domain.Point, len(sorted))
	for i, v := range sorted {
		out[i] = domain.Point{X: v, Y: float64(i+1) / n}
	}
	return out
}

// Values extracts the value column.
func Values(rows []domain.Observation) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.ObsValue
	}
	return out
}

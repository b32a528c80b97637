package services

import (
	"strconv"

	"agridash/internal/analytics"
	"agridash/pkg/contracts/domain"
)

// Series kinds and axes understood by the rendering layer.
const (
	kindLine  = "line"
	kindBar   = "bar"
	kindPie   = "pie"
	kindPoint = "markers"

	axisSecondary = "y2"
)

// axisValue turns numeric keys (years) into numbers for the x axis.
func axisValue(key string) interface{} {
	if n, err := strconv.Atoi(key); err == nil {
		return n
	}
	return key
}

// rankedSeries plots one aggregate per key.
func rankedSeries(name, kind string, values []analytics.Ranked) domain.Series {
	data := make([]domain.Point, len(values))
	for i, r := range values {
		data[i] = domain.Point{X: axisValue(r.Key), Y: r.Value}
	}
	return domain.Series{Name: name, Kind: kind, Data: data}
}

// splitSeries draws one series per distinct value of by, with x on the
// horizontal axis and the group aggregate as y.
func splitSeries(rows []domain.Observation, x, by analytics.KeyFunc, agg analytics.AggFunc, kind string) []domain.Series {
	var out []domain.Series
	index := make(map[string]int)
	for _, g := range analytics.GroupBy(rows, by, x) {
		name := g.Key(0)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, domain.Series{Name: name, Kind: kind})
		}
		out[i].Data = append(out[i].Data, domain.Point{X: axisValue(g.Key(1)), Y: agg(g)})
	}
	return out
}

// fillHeatmap replaces missing cells with v.
func fillHeatmap(h domain.Heatmap, v float64) domain.Heatmap {
	for _, row := range h.Values {
		for j := range row {
			if row[j] == nil {
				fill := v
				row[j] = &fill
			}
		}
	}
	return h
}

func valueKPI(value string) domain.KPI {
	return domain.KPI{Value: value}
}

func placeholderKPI(value string) domain.KPI {
	return domain.KPI{Value: value, Placeholder: true}
}

package history

import (
    "sort"

    "tickerhub/internal/record"
)

// Append folds new points into a date-deduplicated series. The dedup key
// is the calendar date: an incoming point for an existing date replaces
// that entry's value, otherwise it is inserted. The result is always
// sorted ascending by date. The input slice is not mutated and the
// operation is idempotent.
func Append(series []record.Point, points ...record.Point) []record.Point {
    if len(points) == 0 {
        return series
    }
    byDate := make(map[string]float64, len(series)+len(points))
    for _, p := range series {
        byDate[p.Date] = p.Value
    }
    for _, p := range points {
        if p.Date == "" {
            continue
        }
        byDate[p.Date] = p.Value
    }
    out := make([]record.Point, 0, len(byDate))
    for d, v := range byDate {
        out = append(out, record.Point{Date: d, Value: v})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
    return out
}

// Merge combines two series with the same last-write-wins-per-date rule;
// incoming entries take precedence over existing ones.
func Merge(existing, incoming []record.Point) []record.Point {
    return Append(existing, incoming...)
}

package domain

import (
	"strconv"
)

// MetricsRow is the per-iteration record of the breaking loop.
type MetricsRow struct {
	Iteration    int     `json:"iteration"`
	Profit       float64 `json:"profit"`
	CycleLength  int     `json:"cycle_length"`
	AvgOutDegree float64 `json:"centrality"`
}

// Record formats the row for the metrics CSV, column order matching CSVHeader.
func (r MetricsRow) Record() []string {
	return []string{
		strconv.Itoa(r.Iteration),
		strconv.FormatFloat(r.Profit, 'g', -1, 64),
		strconv.Itoa(r.CycleLength),
		strconv.FormatFloat(r.AvgOutDegree, 'g', -1, 64),
	}
}

// CSVHeader is the metrics CSV header. The average out-degree column keeps its
// historical name.
var CSVHeader = []string{"iteration", "profit", "cycle_length", "centrality"}

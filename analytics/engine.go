package analytics

import (
	"math"
	"sort"

	"github.com/liamcoop/salarypredict/dataset"
	"github.com/liamcoop/salarypredict/features"
)

// Summary describes the value column across the whole dataset.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Engine answers aggregation queries over one loaded table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	table       *dataset.Table
	records     []features.Row
	valueColumn string
	decoders    map[features.Dimension]*features.Decoder
}

// NewEngine binds a table and the column that aggregations average.
func NewEngine(table *dataset.Table, valueColumn string) (*Engine, error) {
	if !table.Schema().Contains(valueColumn) {
		return nil, &UnknownColumnError{Column: valueColumn}
	}

	e := &Engine{
		table:       table,
		records:     table.Records(),
		valueColumn: valueColumn,
		decoders:    make(map[features.Dimension]*features.Decoder),
	}
	for _, dim := range features.Dimensions() {
		e.decoders[dim] = features.DecoderFromSchema(dim, table.Schema())
	}

	return e, nil
}

// ValueColumn returns the aggregated column.
func (e *Engine) ValueColumn() string {
	return e.valueColumn
}

// Len returns the number of observations.
func (e *Engine) Len() int {
	return len(e.records)
}

// Decoder returns the decoder used for dim.
func (e *Engine) Decoder(dim features.Dimension) *features.Decoder {
	return e.decoders[dim]
}

// GroupMean averages the value column per label of dim.
func (e *Engine) GroupMean(dim features.Dimension) []Group {
	return GroupMean(e.records, e.decoders[dim], e.valueColumn)
}

// TopK returns the k highest-mean labels of dim.
func (e *Engine) TopK(dim features.Dimension, k int) []Group {
	return TopK(e.GroupMean(dim), k)
}

// Histogram bins any numeric column of the table.
func (e *Engine) Histogram(column string, bins int) ([]Bin, error) {
	if bins >= 1 && !e.table.Schema().Contains(column) {
		return nil, &UnknownColumnError{Column: column}
	}
	return Histogram(e.records, column, bins)
}

// Summary computes count, mean, median, min and max of the value column.
func (e *Engine) Summary() Summary {
	values, err := e.table.Column(e.valueColumn)
	if err != nil {
		return Summary{}
	}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Summary{}
	}

	sort.Float64s(finite)
	sum := 0.0
	for _, v := range finite {
		sum += v
	}

	n := len(finite)
	mid := n / 2
	median := finite[mid]
	if n%2 == 0 {
		median = (finite[mid-1] + finite[mid]) / 2
	}

	return Summary{
		Count:  n,
		Mean:   sum / float64(n),
		Median: median,
		Min:    finite[0],
		Max:    finite[n-1],
	}
}

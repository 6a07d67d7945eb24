package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/liamcoop/salarypredict/features"
)

// ErrInvalidBinCount is returned for a histogram with fewer than one bin.
var ErrInvalidBinCount = errors.New("bin count must be at least 1")

// UnknownColumnError is returned when a value column is not in the records.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// Group is the mean of the value column over records sharing a label.
type Group struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Bin is one histogram bucket covering [Lower, Upper). The last bin is closed.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// lookupRow is implemented by rows that can tell a missing column from a zero.
type lookupRow interface {
	Lookup(column string) (float64, bool)
}

func checkColumn(records []features.Row, column string) error {
	if len(records) == 0 {
		return nil
	}
	if r, ok := records[0].(lookupRow); ok {
		if _, found := r.Lookup(column); !found {
			return &UnknownColumnError{Column: column}
		}
	}
	return nil
}

// GroupMean decodes every record's label and averages valueColumn per label.
// Groups are sorted by mean, highest first; ties keep the order in which
// labels were first seen. Non-finite values are skipped.
func GroupMean(records []features.Row, decoder *features.Decoder, valueColumn string) []Group {
	if len(records) == 0 {
		return []Group{}
	}

	type acc struct {
		sum   float64
		count int
	}
	grouped := make(map[string]*acc)
	var order []string

	for _, r := range records {
		label := decoder.Decode(r)
		a, exists := grouped[label]
		if !exists {
			a = &acc{}
			grouped[label] = a
			order = append(order, label)
		}

		v := r.Value(valueColumn)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		a.sum += v
		a.count++
	}

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		a := grouped[label]
		if a.count == 0 {
			continue
		}
		groups = append(groups, Group{Label: label, Mean: a.sum / float64(a.count), Count: a.count})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Mean > groups[j].Mean
	})

	return groups
}

// TopK returns the first k groups, or all of them when k <= 0 or there are fewer.
func TopK(groups []Group, k int) []Group {
	if k <= 0 || k > len(groups) {
		k = len(groups)
	}
	out := make([]Group, k)
	copy(out, groups[:k])
	return out
}

// Histogram counts valueColumn into binCount equal-width bins spanning
// [min, max]. When every value is equal a single bin holds them all.
// Non-finite values are skipped.
func Histogram(records []features.Row, valueColumn string, binCount int) ([]Bin, error) {
	if binCount < 1 {
		return nil, ErrInvalidBinCount
	}
	if err := checkColumn(records, valueColumn); err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(records))
	for _, r := range records {
		v := r.Value(valueColumn)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return []Bin{}, nil
	}

	lo, hi := minMax(values)
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}, nil
	}

	// Work on half the range so hi-lo cannot overflow for extreme finite values
	half := hi/2 - lo/2
	step := half / float64(binCount)
	edge := func(i int) float64 {
		s := step * float64(i)
		return lo + s + s
	}

	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i].Lower = edge(i)
		bins[i].Upper = edge(i + 1)
	}
	bins[binCount-1].Upper = hi

	for _, v := range values {
		pos := (v/2 - lo/2) / half * float64(binCount)
		i := binCount - 1
		switch {
		case math.IsNaN(pos) || pos < 0:
			i = 0
		case pos < float64(binCount):
			i = int(pos)
		}
		bins[i].Count++
	}

	return bins, nil
}

func minMax(x []float64) (float64, float64) {
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		} else if v > hi {
			hi = v
		}
	}
	return lo, hi
}

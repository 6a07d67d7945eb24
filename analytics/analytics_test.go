package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/liamcoop/salarypredict/dataset"
	"github.com/liamcoop/salarypredict/features"
)

const valueColumn = "ConvertedCompYearly"

// countryTable builds one row per (country, salary) pair with a Country_ block
func countryTable(t *testing.T, countries []string, rows []struct {
	country string
	salary  float64
}) *dataset.Table {
	t.Helper()

	columns := []string{"YearsCodePro", valueColumn}
	for _, c := range countries {
		columns = append(columns, "Country_"+c)
	}

	values := make([][]float64, 0, len(rows))
	for _, r := range rows {
		row := make([]float64, len(columns))
		row[1] = r.salary
		for i, c := range countries {
			if c == r.country {
				row[2+i] = 1
			}
		}
		values = append(values, row)
	}

	table, err := dataset.NewTable(columns, values)
	if err != nil {
		t.Fatalf("NewTable() failed: %v", err)
	}
	return table
}

type obs = struct {
	country string
	salary  float64
}

func TestGroupMean_Aggregation(t *testing.T) {
	table := countryTable(t, []string{"Germany", "India"}, []obs{
		{"Germany", 80000}, {"Germany", 100000},
		{"India", 20000}, {"India", 30000}, {"India", 40000},
		{"", 50000},
	})

	engine, err := NewEngine(table, valueColumn)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	groups := engine.GroupMean(features.Country)
	want := []Group{
		{Label: "Germany", Mean: 90000, Count: 2},
		{Label: "Unknown", Mean: 50000, Count: 1},
		{Label: "India", Mean: 30000, Count: 3},
	}

	if len(groups) != len(want) {
		t.Fatalf("GroupMean() = %+v, want %+v", groups, want)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("groups[%d] = %+v, want %+v", i, groups[i], want[i])
		}
	}
}

// TestTopK_TenCountries covers ten countries reduced to the five highest means
func TestTopK_TenCountries(t *testing.T) {
	countries := make([]string, 10)
	var rows []obs
	for i := range countries {
		countries[i] = fmt.Sprintf("C%02d", i)
		// two observations per country with mean 10000*(i+1)
		rows = append(rows, obs{countries[i], float64(10000*(i+1)) - 500}, obs{countries[i], float64(10000*(i+1)) + 500})
	}

	engine, err := NewEngine(countryTable(t, countries, rows), valueColumn)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	top := engine.TopK(features.Country, 5)
	if len(top) != 5 {
		t.Fatalf("TopK() returned %d groups, want 5", len(top))
	}

	wantLabels := []string{"C09", "C08", "C07", "C06", "C05"}
	for i, g := range top {
		if g.Label != wantLabels[i] {
			t.Errorf("top[%d] = %s, want %s", i, g.Label, wantLabels[i])
		}
		if i > 0 && g.Mean > top[i-1].Mean {
			t.Errorf("top[%d] mean %v exceeds top[%d] mean %v", i, g.Mean, i-1, top[i-1].Mean)
		}
	}
}

func TestTopK(t *testing.T) {
	groups := []Group{{Label: "A", Mean: 3}, {Label: "B", Mean: 2}, {Label: "C", Mean: 1}}

	testCases := []struct {
		name string
		k    int
		want int
	}{
		{"fewer than k", 5, 3},
		{"exact", 3, 3},
		{"truncate", 2, 2},
		{"zero means all", 0, 3},
		{"negative means all", -1, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TopK(groups, tc.k)
			if len(got) != tc.want {
				t.Fatalf("TopK(%d) returned %d groups, want %d", tc.k, len(got), tc.want)
			}
			for i := range got {
				if got[i] != groups[i] {
					t.Errorf("TopK(%d)[%d] = %+v, want %+v", tc.k, i, got[i], groups[i])
				}
			}
		})
	}

	if got := TopK(nil, 5); len(got) != 0 {
		t.Errorf("TopK(nil) = %v", got)
	}
}

// Equal means keep first-seen label order, independent of decoder order
func TestGroupMean_TiesKeepFirstSeenOrder(t *testing.T) {
	table := countryTable(t, []string{"India", "Germany"}, []obs{
		{"", 50000}, {"Germany", 50000}, {"India", 50000}, {"Germany", 50000},
	})

	decoder := features.DecoderFromSchema(features.Country, table.Schema())
	groups := GroupMean(table.Records(), decoder, valueColumn)

	want := []string{"Unknown", "Germany", "India"}
	for i, g := range groups {
		if g.Label != want[i] {
			t.Errorf("groups[%d] = %s, want %s", i, g.Label, want[i])
		}
	}
}

func TestGroupMean_Empty(t *testing.T) {
	groups := GroupMean(nil, features.DecoderFor(features.Country), valueColumn)
	if groups == nil || len(groups) != 0 {
		t.Errorf("GroupMean(nil) = %#v, want empty slice", groups)
	}
}

func TestGroupMean_SkipsNonFinite(t *testing.T) {
	table := countryTable(t, []string{"Germany"}, []obs{
		{"Germany", 60000}, {"Germany", math.NaN()},
	})
	groups := GroupMean(table.Records(), features.DecoderFor(features.Country), valueColumn)
	if len(groups) != 1 || groups[0].Mean != 60000 || groups[0].Count != 1 {
		t.Errorf("GroupMean() = %+v", groups)
	}
}

func TestHistogram(t *testing.T) {
	var rows []obs
	for _, v := range []float64{0, 10, 20, 25, 50, 99, 100} {
		rows = append(rows, obs{"", v})
	}
	table := countryTable(t, nil, rows)

	bins, err := Histogram(table.Records(), valueColumn, 4)
	if err != nil {
		t.Fatalf("Histogram() failed: %v", err)
	}

	wantCounts := []int{3, 1, 1, 2}
	if len(bins) != 4 {
		t.Fatalf("Histogram() returned %d bins", len(bins))
	}
	total := 0
	for i, b := range bins {
		if b.Count != wantCounts[i] {
			t.Errorf("bin %d [%v, %v) count = %d, want %d", i, b.Lower, b.Upper, b.Count, wantCounts[i])
		}
		total += b.Count
	}
	if total != 7 {
		t.Errorf("total count = %d, want 7", total)
	}
	if bins[0].Lower != 0 || bins[3].Upper != 100 {
		t.Errorf("range = [%v, %v], want [0, 100]", bins[0].Lower, bins[3].Upper)
	}
}

func TestHistogram_EdgeCases(t *testing.T) {
	flat := countryTable(t, nil, []obs{{"", 5}, {"", 5}, {"", 5}})

	bins, err := Histogram(flat.Records(), valueColumn, 30)
	if err != nil {
		t.Fatalf("Histogram() failed: %v", err)
	}
	if len(bins) != 1 || bins[0].Count != 3 {
		t.Errorf("constant column bins = %+v, want one bin of 3", bins)
	}

	if bins, err := Histogram(nil, valueColumn, 30); err != nil || len(bins) != 0 {
		t.Errorf("Histogram(nil) = %v, %v", bins, err)
	}

	if _, err := Histogram(flat.Records(), valueColumn, 0); !errors.Is(err, ErrInvalidBinCount) {
		t.Errorf("expected ErrInvalidBinCount, got %v", err)
	}

	_, err = Histogram(flat.Records(), "Salary", 10)
	var unknown *UnknownColumnError
	if !errors.As(err, &unknown) || unknown.Column != "Salary" {
		t.Errorf("expected UnknownColumnError, got %v", err)
	}
}

// A range wider than MaxFloat64 still bins every value into finite edges
func TestHistogram_ExtremeRange(t *testing.T) {
	wide := countryTable(t, nil, []obs{{"", -math.MaxFloat64}, {"", 0}, {"", math.MaxFloat64}})

	bins, err := Histogram(wide.Records(), valueColumn, 3)
	if err != nil {
		t.Fatalf("Histogram() failed: %v", err)
	}
	if len(bins) != 3 {
		t.Fatalf("got %d bins, want 3", len(bins))
	}

	wantCounts := []int{1, 1, 1}
	for i, b := range bins {
		if b.Count != wantCounts[i] {
			t.Errorf("bins[%d].Count = %d, want %d", i, b.Count, wantCounts[i])
		}
		if math.IsInf(b.Lower, 0) || math.IsInf(b.Upper, 0) || math.IsNaN(b.Lower) || math.IsNaN(b.Upper) {
			t.Errorf("bins[%d] has non-finite edges %v..%v", i, b.Lower, b.Upper)
		}
	}
	if bins[0].Lower != -math.MaxFloat64 || bins[2].Upper != math.MaxFloat64 {
		t.Errorf("edges = %v..%v, want the full float range", bins[0].Lower, bins[2].Upper)
	}
}

func TestNewEngine_UnknownValueColumn(t *testing.T) {
	table := countryTable(t, nil, []obs{{"", 1}})
	_, err := NewEngine(table, "Salary")
	var unknown *UnknownColumnError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownColumnError, got %v", err)
	}
}

func TestEngine_Summary(t *testing.T) {
	table := countryTable(t, nil, []obs{{"", 40000}, {"", 10000}, {"", 30000}, {"", 20000}})
	engine, err := NewEngine(table, valueColumn)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	got := engine.Summary()
	want := Summary{Count: 4, Mean: 25000, Median: 25000, Min: 10000, Max: 40000}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}

func TestCharts(t *testing.T) {
	gc := GroupsChart("Avg Salary", []Group{{Label: "Germany", Mean: 90000.456}, {Label: "India", Mean: 30000}})
	if len(gc.Labels) != 2 || gc.Labels[0] != "Germany" {
		t.Errorf("Labels = %v", gc.Labels)
	}
	if len(gc.Datasets) != 1 || gc.Datasets[0].Data[0] != 90000.46 {
		t.Errorf("Datasets = %+v", gc.Datasets)
	}

	hc := HistogramChart("Count", []Bin{{Lower: 0, Upper: 12500, Count: 3}, {Lower: 12500, Upper: 25000, Count: 1}})
	if hc.Labels[1] != "12,500 - 25,000" {
		t.Errorf("Labels[1] = %q", hc.Labels[1])
	}
	if hc.Datasets[0].Data[0] != 3 {
		t.Errorf("Data = %v", hc.Datasets[0].Data)
	}

	empty := GroupsChart("x", nil)
	if empty.Labels == nil || empty.Datasets[0].Data == nil {
		t.Error("empty chart should marshal to empty arrays")
	}
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		in   float64
		want string
	}{
		{85000, "85,000.00"},
		{1234567.891, "1,234,567.89"},
		{999.5, "999.50"},
	}
	for _, tc := range testCases {
		if got := FormatAmount(tc.in); !strings.EqualFold(got, tc.want) {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package analytics

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Chart is the labels/datasets payload consumed by the dashboard's charts.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series of a chart.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// FormatAmount renders v with thousands separators and two decimals, e.g. 85,000.00.
func FormatAmount(v float64) string {
	return printer().Sprintf("%.2f", v)
}

// GroupsChart charts group means in their given order.
func GroupsChart(title string, groups []Group) Chart {
	c := Chart{
		Labels:   make([]string, 0, len(groups)),
		Datasets: []Dataset{{Label: title, Data: make([]float64, 0, len(groups))}},
	}
	for _, g := range groups {
		c.Labels = append(c.Labels, g.Label)
		c.Datasets[0].Data = append(c.Datasets[0].Data, roundTo2(g.Mean))
	}
	return c
}

// HistogramChart charts bin counts, labelling each bin by its range.
func HistogramChart(title string, bins []Bin) Chart {
	p := printer()
	c := Chart{
		Labels:   make([]string, 0, len(bins)),
		Datasets: []Dataset{{Label: title, Data: make([]float64, 0, len(bins))}},
	}
	for _, b := range bins {
		c.Labels = append(c.Labels, p.Sprintf("%.0f - %.0f", b.Lower, b.Upper))
		c.Datasets[0].Data = append(c.Datasets[0].Data, float64(b.Count))
	}
	return c
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

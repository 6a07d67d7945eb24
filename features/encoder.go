package features

import (
	"math"
	"strconv"
	"strings"
)

// Selection is the human-facing input of a prediction request.
// Every field is raw text as received; nothing here is validated.
type Selection struct {
	YearsExperience string `json:"experience"`
	Country         string `json:"country"`
	EducationLevel  string `json:"edlevel"`
	EmploymentType  string `json:"employment"`
}

// Choice returns the selected value for a dimension.
func (s Selection) Choice(d Dimension) string {
	switch d {
	case Country:
		return s.Country
	case EducationLevel:
		return s.EducationLevel
	case EmploymentType:
		return s.EmploymentType
	default:
		return ""
	}
}

// ParseYears parses the experience value. Anything that is not a finite
// number, including an empty string, is 0.
func ParseYears(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	years, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(years) || math.IsInf(years, 0) {
		return 0
	}
	return years
}

// Encode turns a selection into a vector aligned to vocab.
//
// Encoder columns missing from the vocabulary are dropped and vocabulary
// columns the encoder does not produce stay 0. A selection that matches no
// known value leaves its whole indicator block at 0.
func Encode(vocab *Vocabulary, sel Selection) Vector {
	values := make([]float64, vocab.Len())

	if i, ok := vocab.Index(ExperienceColumn); ok {
		values[i] = ParseYears(sel.YearsExperience)
	}

	for _, dim := range Dimensions() {
		choice := Canonical(sel.Choice(dim))
		for _, value := range dim.Values() {
			i, ok := vocab.Index(dim.Column(value))
			if !ok {
				continue
			}
			if value == choice {
				values[i] = 1
			} else {
				values[i] = 0
			}
		}
	}

	return Vector{vocab: vocab, values: values}
}

// MissingColumns lists encoder-produced columns that vocab does not contain.
// Their values are silently dropped by Encode.
func MissingColumns(vocab *Vocabulary) []string {
	var missing []string
	if !vocab.Contains(ExperienceColumn) {
		missing = append(missing, ExperienceColumn)
	}
	for _, dim := range Dimensions() {
		for _, col := range dim.Columns() {
			if !vocab.Contains(col) {
				missing = append(missing, col)
			}
		}
	}
	return missing
}

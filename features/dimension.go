package features

import (
	"fmt"
	"strings"
)

// UnknownLabel is what a decoder returns when no indicator in a block is set.
const UnknownLabel = "Unknown"

// Dimension is one of the categorical survey attributes encoded one-hot.
type Dimension int

const (
	Country Dimension = iota
	EducationLevel
	EmploymentType
)

var (
	countries = []string{
		"Germany", "United States of America", "India", "United Kingdom", "Other",
	}
	educationLevels = []string{
		"Bachelor's degree", "Master's degree", "Post Grad", "Less than Bachelor's",
	}
	employmentTypes = []string{
		"Full-time", "Part-time", "Other",
	}
)

// Dimensions returns every dimension in encoding order.
func Dimensions() []Dimension {
	return []Dimension{Country, EducationLevel, EmploymentType}
}

func (d Dimension) String() string {
	switch d {
	case Country:
		return "Country"
	case EducationLevel:
		return "EducationLevel"
	case EmploymentType:
		return "EmploymentType"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// Prefix is the column-name prefix of the dimension's indicator block.
func (d Dimension) Prefix() string {
	switch d {
	case Country:
		return "Country_"
	case EducationLevel:
		return "EdLevel_"
	case EmploymentType:
		return "Employment_"
	default:
		return ""
	}
}

// Values returns a copy of the known values, in enumeration order.
func (d Dimension) Values() []string {
	var src []string
	switch d {
	case Country:
		src = countries
	case EducationLevel:
		src = educationLevels
	case EmploymentType:
		src = employmentTypes
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Column returns the indicator column for value.
func (d Dimension) Column(value string) string {
	return d.Prefix() + Canonical(value)
}

// Columns returns the indicator columns for every known value.
func (d Dimension) Columns() []string {
	values := d.Values()
	cols := make([]string, len(values))
	for i, v := range values {
		cols[i] = d.Column(v)
	}
	return cols
}

// IsKnown reports whether value is one of the dimension's known values.
func (d Dimension) IsKnown(value string) bool {
	value = Canonical(value)
	for _, v := range d.Values() {
		if v == value {
			return true
		}
	}
	return false
}

// InvalidDimensionError is returned when a caller names a dimension that does not exist.
type InvalidDimensionError struct {
	Name string
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("invalid dimension %q (must be one of: country, education, employment)", e.Name)
}

// ParseDimension resolves a client-facing dimension name.
func ParseDimension(name string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "country":
		return Country, nil
	case "education", "edlevel", "educationlevel":
		return EducationLevel, nil
	case "employment", "employmenttype":
		return EmploymentType, nil
	default:
		return 0, &InvalidDimensionError{Name: name}
	}
}

package features

import (
	"encoding/json"
	"errors"
	"testing"
)

// rowMap is a Row backed by a plain map, standing in for a stored record
type rowMap map[string]float64

func (r rowMap) Value(column string) float64 { return r[column] }

// TestDecode_AllZeroIsUnknown checks an all-zero block decodes to Unknown
func TestDecode_AllZeroIsUnknown(t *testing.T) {
	row := rowMap{
		"Country_Germany": 0,
		"Country_India":   0,
		"Country_Other":   0,
	}

	if got := Decode(row, Country); got != UnknownLabel {
		t.Errorf("Decode() = %q, want %q", got, UnknownLabel)
	}
}

// TestDecode_FirstMatchWins checks malformed rows resolve to the earliest indicator
func TestDecode_FirstMatchWins(t *testing.T) {
	row := rowMap{
		"Country_India":   1,
		"Country_Germany": 1,
	}

	// Germany precedes India in the known enumeration
	if got := Decode(row, Country); got != "Germany" {
		t.Errorf("Decode() = %q, want Germany", got)
	}

	dec := NewDecoder("Country_", []string{"Country_India", "Country_Germany"})
	if got := dec.Decode(row); got != "India" {
		t.Errorf("custom order Decode() = %q, want India", got)
	}
}

func TestDecoderFromSchema(t *testing.T) {
	schema := MustVocabulary(
		"ConvertedCompYearly", "Country_Canada", "YearsCodePro", "Country_Germany", "EdLevel_Post Grad",
	)

	dec := DecoderFromSchema(Country, schema)
	labels := dec.Labels()
	if len(labels) != 2 || labels[0] != "Canada" || labels[1] != "Germany" {
		t.Fatalf("Labels() = %v, want [Canada Germany]", labels)
	}

	vec, err := NewVector(schema, []float64{90000, 1, 3, 0, 1})
	if err != nil {
		t.Fatalf("NewVector() failed: %v", err)
	}
	if got := dec.Decode(vec); got != "Canada" {
		t.Errorf("Decode() = %q, want Canada", got)
	}
	if got := DecoderFromSchema(EducationLevel, schema).Decode(vec); got != "Post Grad" {
		t.Errorf("education Decode() = %q, want Post Grad", got)
	}
	if got := DecoderFromSchema(EmploymentType, schema).Decode(vec); got != UnknownLabel {
		t.Errorf("employment Decode() = %q, want %q", got, UnknownLabel)
	}
}

func TestNewDecoder_IgnoresForeignColumns(t *testing.T) {
	dec := NewDecoder("EdLevel_", []string{"EdLevel_", "Country_India", "EdLevel_Post Grad"})

	labels := dec.Labels()
	if len(labels) != 1 || labels[0] != "Post Grad" {
		t.Errorf("Labels() = %v, want [Post Grad]", labels)
	}
}

func TestParseDimension(t *testing.T) {
	testCases := []struct {
		name string
		want Dimension
	}{
		{"country", Country},
		{"Country", Country},
		{"education", EducationLevel},
		{"EdLevel", EducationLevel},
		{"employment", EmploymentType},
		{" EmploymentType ", EmploymentType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDimension(tc.name)
			if err != nil {
				t.Fatalf("ParseDimension(%q) failed: %v", tc.name, err)
			}
			if got != tc.want {
				t.Errorf("ParseDimension(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}

	_, err := ParseDimension("salary")
	var invalid *InvalidDimensionError
	if !errors.As(err, &invalid) {
		t.Fatalf("ParseDimension(salary) error = %v, want *InvalidDimensionError", err)
	}
	if invalid.Name != "salary" {
		t.Errorf("InvalidDimensionError.Name = %q, want salary", invalid.Name)
	}
}

func TestVector_MarshalJSONKeepsOrder(t *testing.T) {
	vocab := MustVocabulary("b", "a", "c")
	vec, err := NewVector(vocab, []float64{1, 2.5, 0})
	if err != nil {
		t.Fatalf("NewVector() failed: %v", err)
	}

	data, err := json.Marshal(vec)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if string(data) != `{"b":1,"a":2.5,"c":0}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestNewVector_LengthMismatch(t *testing.T) {
	vocab := MustVocabulary("a", "b")
	if _, err := NewVector(vocab, []float64{1}); err == nil {
		t.Error("NewVector() should reject a short value slice")
	}
	if _, err := NewVector(nil, nil); err == nil {
		t.Error("NewVector() should require a vocabulary")
	}
}

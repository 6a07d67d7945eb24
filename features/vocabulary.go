package features

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ExperienceColumn is the numeric column holding professional years of coding.
const ExperienceColumn = "YearsCodePro"

// Vocabulary is the ordered list of columns a predictor input must contain.
// It is immutable once constructed and safe for concurrent reads.
type Vocabulary struct {
	columns []string
	index   map[string]int
}

var labelReplacer = strings.NewReplacer("’", "'", "‘", "'")

// Canonical folds typographic apostrophes and trims surrounding whitespace so
// that "Bachelor’s degree" and "Bachelor's degree" name the same category.
func Canonical(s string) string {
	return labelReplacer.Replace(strings.TrimSpace(s))
}

// NewVocabulary builds a vocabulary from an ordered column list
func NewVocabulary(columns []string) (*Vocabulary, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("vocabulary cannot be empty")
	}

	v := &Vocabulary{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		name := Canonical(col)
		if name == "" {
			return nil, fmt.Errorf("vocabulary column %d has an empty name", i)
		}
		if prev, exists := v.index[name]; exists {
			return nil, fmt.Errorf("vocabulary column %q duplicated at positions %d and %d", name, prev, i)
		}
		v.columns[i] = name
		v.index[name] = i
	}

	return v, nil
}

// MustVocabulary is NewVocabulary for fixed column lists known to be valid.
func MustVocabulary(columns ...string) *Vocabulary {
	v, err := NewVocabulary(columns)
	if err != nil {
		panic(err)
	}
	return v
}

// LoadVocabulary reads a vocabulary artifact: a JSON array of column names.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	var columns []string
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}

	return NewVocabulary(columns)
}

// Len returns the number of columns.
func (v *Vocabulary) Len() int {
	return len(v.columns)
}

// Columns returns a copy of the column names in order.
func (v *Vocabulary) Columns() []string {
	out := make([]string, len(v.columns))
	copy(out, v.columns)
	return out
}

// Column returns the name at position i.
func (v *Vocabulary) Column(i int) string {
	return v.columns[i]
}

// Index returns the position of a column.
func (v *Vocabulary) Index(name string) (int, bool) {
	i, ok := v.index[Canonical(name)]
	return i, ok
}

// Contains reports whether the column is part of the vocabulary.
func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.Index(name)
	return ok
}

// WithPrefix returns the columns starting with prefix, in vocabulary order.
func (v *Vocabulary) WithPrefix(prefix string) []string {
	var out []string
	for _, col := range v.columns {
		if strings.HasPrefix(col, prefix) {
			out = append(out, col)
		}
	}
	return out
}

// Equal reports whether both vocabularies have the same columns in the same order.
func (v *Vocabulary) Equal(other *Vocabulary) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil || len(v.columns) != len(other.columns) {
		return false
	}
	for i := range v.columns {
		if v.columns[i] != other.columns[i] {
			return false
		}
	}
	return true
}

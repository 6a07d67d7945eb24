package dataset

import (
	"fmt"

	"github.com/liamcoop/salarypredict/features"
)

// Table is the cleaned survey dataset: a schema plus one vector per
// observation. A Table is never mutated after construction.
type Table struct {
	schema *features.Vocabulary
	rows   []features.Vector
}

// NewTable validates that every row matches the header width.
func NewTable(columns []string, rows [][]float64) (*Table, error) {
	schema, err := features.NewVocabulary(columns)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset header: %w", err)
	}

	t := &Table{schema: schema, rows: make([]features.Vector, 0, len(rows))}
	for i, values := range rows {
		vec, err := features.NewVector(schema, values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		t.rows = append(t.rows, vec)
	}

	return t, nil
}

// Schema returns the dataset columns.
func (t *Table) Schema() *features.Vocabulary {
	return t.schema
}

// Len returns the number of observations.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns observation i.
func (t *Table) Row(i int) features.Vector {
	return t.rows[i]
}

// Rows returns the observations. The slice is a copy; vectors are read-only.
func (t *Table) Rows() []features.Vector {
	rows := make([]features.Vector, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Records returns the observations as decoder rows.
func (t *Table) Records() []features.Row {
	records := make([]features.Row, len(t.rows))
	for i, r := range t.rows {
		records[i] = r
	}
	return records
}

// Column returns every observation's value for one column.
func (t *Table) Column(name string) ([]float64, error) {
	idx, ok := t.schema.Index(name)
	if !ok {
		return nil, fmt.Errorf("column %q not in dataset", name)
	}

	values := make([]float64, len(t.rows))
	for i, r := range t.rows {
		values[i] = r.At(idx)
	}
	return values, nil
}

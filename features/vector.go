package features

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is anything a categorical decoder can read indicator values from.
type Row interface {
	Value(column string) float64
}

// Vector is a feature vector aligned column-for-column with its vocabulary.
// The zero value is an empty vector with no vocabulary.
type Vector struct {
	vocab  *Vocabulary
	values []float64
}

// NewVector wraps values laid out in vocabulary order.
func NewVector(vocab *Vocabulary, values []float64) (Vector, error) {
	if vocab == nil {
		return Vector{}, fmt.Errorf("vocabulary is required")
	}
	if len(values) != vocab.Len() {
		return Vector{}, fmt.Errorf("vector has %d values, vocabulary has %d columns", len(values), vocab.Len())
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return Vector{vocab: vocab, values: cp}, nil
}

// Vocabulary returns the vocabulary the vector is aligned to.
func (v Vector) Vocabulary() *Vocabulary {
	return v.vocab
}

// Len returns the number of values.
func (v Vector) Len() int {
	return len(v.values)
}

// At returns the value at position i.
func (v Vector) At(i int) float64 {
	return v.values[i]
}

// Lookup returns the value of a column and whether the column exists.
func (v Vector) Lookup(column string) (float64, bool) {
	if v.vocab == nil {
		return 0, false
	}
	i, ok := v.vocab.Index(column)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Value returns the value of a column, or 0 when the column is absent.
func (v Vector) Value(column string) float64 {
	val, _ := v.Lookup(column)
	return val
}

// Values returns a copy of the values in vocabulary order.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Map returns the vector as column -> value.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.values))
	for i, val := range v.values {
		m[v.vocab.Column(i)] = val
	}
	return m
}

// MarshalJSON writes the vector as a JSON object keeping vocabulary order.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, val := range v.values {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.vocab.Column(i))
		if err != nil {
			return nil, err
		}
		num, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(num)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package features

import "strings"

// Decoder recovers a categorical label from a one-hot indicator block.
// Indicators are scanned in a fixed order; the first one set to 1 wins, so a
// malformed row with several indicators set decodes to the earliest of them.
type Decoder struct {
	prefix  string
	columns []string
	labels  []string
}

// NewDecoder creates a decoder scanning columns in the given order.
// Columns not starting with prefix are ignored.
func NewDecoder(prefix string, columns []string) *Decoder {
	d := &Decoder{prefix: prefix}
	for _, col := range columns {
		col = Canonical(col)
		if !strings.HasPrefix(col, prefix) || len(col) == len(prefix) {
			continue
		}
		d.columns = append(d.columns, col)
		d.labels = append(d.labels, col[len(prefix):])
	}
	return d
}

// DecoderFor decodes a dimension using its known values.
func DecoderFor(dim Dimension) *Decoder {
	return NewDecoder(dim.Prefix(), dim.Columns())
}

// DecoderFromSchema decodes a dimension using every prefixed column of a
// table schema, in schema order. This covers categories beyond the known ones.
func DecoderFromSchema(dim Dimension, schema *Vocabulary) *Decoder {
	return NewDecoder(dim.Prefix(), schema.WithPrefix(dim.Prefix()))
}

// Prefix returns the indicator column prefix.
func (d *Decoder) Prefix() string {
	return d.prefix
}

// Labels returns the decodable labels in scan order.
func (d *Decoder) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)
	return out
}

// Decode returns the label whose indicator is 1, or UnknownLabel.
func (d *Decoder) Decode(row Row) string {
	for i, col := range d.columns {
		if row.Value(col) == 1 {
			return d.labels[i]
		}
	}
	return UnknownLabel
}

// Decode is a shorthand for DecoderFor(dim).Decode(row).
func Decode(row Row, dim Dimension) string {
	return DecoderFor(dim).Decode(row)
}

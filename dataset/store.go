package dataset

import (
	"context"
	"fmt"
)

// Store loads the dataset table at start-up.
type Store interface {
	Load(ctx context.Context) (*Table, error)
}

// CSVStore reads the dataset from a CSV file on every Load.
type CSVStore struct {
	Path string
}

// NewCSVStore creates a store for the CSV file at path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Load reads and parses the file.
func (s *CSVStore) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	return LoadCSVFile(s.Path)
}

// InMemoryStore serves a table that is already in memory.
type InMemoryStore struct {
	table *Table
}

// NewInMemoryStore wraps t.
func NewInMemoryStore(t *Table) *InMemoryStore {
	return &InMemoryStore{table: t}
}

// Load returns the wrapped table
func (s *InMemoryStore) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.table == nil {
		return nil, fmt.Errorf("no dataset loaded")
	}
	return s.table, nil
}

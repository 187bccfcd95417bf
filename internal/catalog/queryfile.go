// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/book-search/pkg/types"
)

// QueryFile is the on-disk representation of one fetched page. A user can
// save a search and print it later without contacting the endpoint.
type QueryFile struct {
	Endpoint string             `yaml:"endpoint"`
	Params   types.SearchParams `yaml:"params"`
	Results  []types.Book       `yaml:"results"`
	Summary  QuerySummary       `yaml:"summary"`
}

// QuerySummary stores result statistics and when the page was fetched.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the request and its results to a YAML file.
func WriteQueryFile(path, endpoint string, p types.SearchParams, books []types.Book, fetchedAt time.Time) error {
	if books == nil {
		books = []types.Book{}
	}
	qf := QueryFile{
		Endpoint: endpoint,
		Params:   p,
		Results:  books,
		Summary: QuerySummary{
			Total:     len(books),
			Timestamp: fetchedAt.UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if qf.Params.Order != "" && !qf.Params.Order.Valid() {
		return nil, fmt.Errorf("parsing query file: invalid order %q", qf.Params.Order)
	}
	return &qf, nil
}

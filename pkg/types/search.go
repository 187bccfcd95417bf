// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the book-search client.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SortOrder is the direction in which the endpoint orders results by name.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle returns the opposite order. Anything that is not SortDesc is
// treated as ascending, so toggling always yields one of the two values.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Valid reports whether o is one of the two supported orders.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// ParseSortOrder converts a flag or config value into a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	o := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("invalid sort order %q: want asc or desc", s)
	}
	return o, nil
}

// SortField is the only column the endpoint is asked to sort by.
const SortField = "name"

// SearchParams holds the parameters of one request to the search endpoint.
type SearchParams struct {
	// Query is the free text typed by the user. It may be empty.
	Query string `json:"search" yaml:"search"`

	// Limit is the page size (10 unless configured otherwise).
	Limit int `json:"limit" yaml:"limit"`

	// Page is the 1-based page number.
	Page int `json:"page" yaml:"page"`

	// SortBy names the sort column; always SortField.
	SortBy string `json:"sortBy" yaml:"sort_by"`

	// Order is the sort direction.
	Order SortOrder `json:"order" yaml:"order"`
}

// Book is one record returned by the search endpoint.
type Book struct {
	ID        BookID    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Author    string    `json:"book_author" yaml:"book_author"`
	Price     float64   `json:"price" yaml:"price"`
	CreatedAt Timestamp `json:"createdAt" yaml:"created_at"`
}

// BookID is the endpoint's record identifier. Some backends send it as a
// number and some as a string, so both are accepted.
type BookID string

// UnmarshalJSON accepts a JSON number or string.
func (id *BookID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = BookID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("book id: %w", err)
	}
	*id = BookID(n.String())
	return nil
}

// Timestamp is a creation time that decodes from the formats the endpoint
// is known to emit: ISO-8601 strings (with or without a time part) and
// epoch milliseconds.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order when decoding a string timestamp.
// They cover the full and reduced ISO-8601 forms, so a bare year such as
// "2020" is a year and never epoch milliseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// maxEpochMillis bounds epoch values to the range a JavaScript Date accepts.
const maxEpochMillis = 8.64e15

// ParseTimestamp parses s as an ISO-8601 string or as epoch milliseconds,
// integer or float.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(ms) && math.Abs(ms) <= maxEpochMillis {
		return Timestamp{Time: time.UnixMilli(int64(ms)).UTC()}, nil
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON accepts a string or an epoch-milliseconds number. A value
// that is not a recognizable date decodes as the zero Timestamp, so one bad
// field never rejects the rest of a page.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		parsed = Timestamp{}
	}
	*t = parsed
	return nil
}

// MarshalJSON writes the timestamp in RFC 3339, or null when unset.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// MarshalYAML writes the timestamp in RFC 3339, or an empty string when unset.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(time.RFC3339), nil
}

// UnmarshalYAML reads the string form written by MarshalYAML.
func (t *Timestamp) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes search results for the terminal: a fixed-width
// table with pagination footer, or machine-readable JSON and YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/book-search/pkg/types"
)

// NoResults is the placeholder row shown for an empty, settled result set.
const NoResults = "No results"

// Loading is the line shown while a fetch is in flight.
const Loading = "Loading..."

// View is the slice of search state that a table render needs.
type View struct {
	Page    int
	Order   types.SortOrder
	Loading bool
	Results []types.Book
}

// Table renders a View as a fixed-width text table.
type Table struct {
	// DateLayout formats the Created At column (default types.DefaultDateLayout).
	DateLayout string

	// Location is the zone dates are shown in (default time.Local).
	Location *time.Location
}

const (
	minIDWidth  = 4
	nameWidth   = 36
	authorWidth = 24
	priceWidth  = 10
)

// Render writes v to w: an optional loading line, the table header with the
// sort marker on the Name column, one row per book (or the placeholder row),
// and the page indicator with the Prev/Next hints.
func (t Table) Render(w io.Writer, v View) {
	if v.Loading {
		fmt.Fprintln(w, Loading)
	}

	idWidth := idColumnWidth(v.Results)
	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %*s  %s\n",
		idWidth, "ID",
		nameWidth, "Name "+SortMarker(v.Order),
		authorWidth, "Author",
		priceWidth, "Price",
		"Created At")
	fmt.Fprintln(w, strings.Repeat("-", idWidth+nameWidth+authorWidth+priceWidth+20))

	if len(v.Results) == 0 && !v.Loading {
		fmt.Fprintln(w, NoResults)
	}
	for _, b := range v.Results {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %*s  %s\n",
			idWidth, string(b.ID),
			nameWidth, truncate(b.Name, nameWidth),
			authorWidth, truncate(b.Author, authorWidth),
			priceWidth, FormatPrice(b.Price),
			t.FormatDate(b.CreatedAt))
	}

	fmt.Fprintf(w, "\n<- Prev   Page: %d   Next ->\n", v.Page)
}

// idColumnWidth fits the longest ID on the page. IDs are never truncated.
func idColumnWidth(books []types.Book) int {
	w := minIDWidth
	for _, b := range books {
		w = max(w, utf8.RuneCountInString(string(b.ID)))
	}
	return w
}

// SortMarker returns the header marker for o.
func SortMarker(o types.SortOrder) string {
	if o == types.SortDesc {
		return "(desc)"
	}
	return "(asc)"
}

// FormatPrice prints a price without trailing zeros, so 15 renders as "15"
// and 9.5 as "9.5".
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// FormatDate renders ts as a date in the table's layout and zone. A missing
// timestamp renders as an empty cell.
func (t Table) FormatDate(ts types.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	layout := t.DateLayout
	if layout == "" {
		layout = types.DefaultDateLayout
	}
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(layout)
}

// FormatJSON writes books as indented JSON to w.
func FormatJSON(books []types.Book, w io.Writer) error {
	if books == nil {
		books = []types.Book{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(books)
}

// FormatYAML writes books as a YAML sequence to w.
func FormatYAML(books []types.Book, w io.Writer) error {
	if books == nil {
		books = []types.Book{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(books); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/book-search/internal/httputil"
	"github.com/pdiddy/book-search/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const duneJSON = `[{"id":1,"name":"Dune","book_author":"Herbert","price":15,"createdAt":"2020-01-01"}]`

func newTestClient(t *testing.T, h http.HandlerFunc, mod func(*types.HTTPConfig)) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	cfg := types.HTTPConfig{BaseURL: ts.URL}
	if mod != nil {
		mod(&cfg)
	}
	return NewClient(cfg, WithHTTPClient(ts.Client()))
}

func params(query string, page int, order types.SortOrder) types.SearchParams {
	return types.SearchParams{Query: query, Limit: 10, Page: page, SortBy: types.SortField, Order: order}
}

// --- EncodeParams / Endpoint ---

func TestEncodeParams(t *testing.T) {
	tests := []struct {
		name string
		p    types.SearchParams
		want string
	}{
		{"basic", params("dune", 1, types.SortAsc), "search=dune&limit=10&page=1&sortBy=name&order=asc"},
		{"descending page 3", params("dune", 3, types.SortDesc), "search=dune&limit=10&page=3&sortBy=name&order=desc"},
		{"empty query", params("", 1, types.SortAsc), "search=&limit=10&page=1&sortBy=name&order=asc"},
		{"escapes spaces and ampersands", params("war & peace", 1, types.SortAsc), "search=war+%26+peace&limit=10&page=1&sortBy=name&order=asc"},
		{"defaults sortBy and order", types.SearchParams{Query: "x", Limit: 5, Page: 2}, "search=x&limit=5&page=2&sortBy=name&order=asc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeParams(tt.p))
		})
	}
}

func TestEndpoint_NormalizesBaseURL(t *testing.T) {
	for _, base := range []string{"http://api.test", "http://api.test/"} {
		c := NewClient(types.HTTPConfig{BaseURL: base})
		assert.Equal(t, "http://api.test/books?search=a&limit=10&page=1&sortBy=name&order=asc",
			c.Endpoint(params("a", 1, types.SortAsc)), "base %q", base)
	}
}

func TestEndpoint_KeepsBasePath(t *testing.T) {
	c := NewClient(types.HTTPConfig{BaseURL: "https://api.test/v1/"})
	assert.Equal(t, "https://api.test/v1/books?search=a&limit=10&page=2&sortBy=name&order=desc",
		c.Endpoint(params("a", 2, types.SortDesc)))
}

// --- Search ---

func TestSearch_Success(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(duneJSON))
	}, nil)

	books, err := c.Search(context.Background(), params("dune", 2, types.SortDesc))
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Equal(t, "/books", gotPath)
	assert.Equal(t, "search=dune&limit=10&page=2&sortBy=name&order=desc", gotQuery)
	assert.Equal(t, types.DefaultUserAgent, gotUA)

	b := books[0]
	assert.Equal(t, types.BookID("1"), b.ID)
	assert.Equal(t, "Dune", b.Name)
	assert.Equal(t, "Herbert", b.Author)
	assert.Equal(t, 15.0, b.Price)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), b.CreatedAt.Time)
}

func TestSearch_EmptyArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}, nil)

	books, err := c.Search(context.Background(), params("nothing", 1, types.SortAsc))
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSearch_UnparseableDateKeepsPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"id":1,"name":"Dune","createdAt":"2020-01"},
			{"id":2,"name":"Emma","createdAt":"sometime"}
		]`))
	}, nil)

	books, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, 2020, books[0].CreatedAt.Year())
	assert.True(t, books[1].CreatedAt.IsZero())
}

func TestSearch_NullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`null`))
	}, nil)

	books, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSearch_Non200(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusNoContent} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
			if code != http.StatusNoContent {
				w.Write([]byte("  nope\n"))
			}
		}, nil)

		books, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
		assert.Nil(t, books)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, code, se.Code)
		if code != http.StatusNoContent {
			assert.Equal(t, "nope", se.Body)
		}
	}
}

func TestSearch_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}, nil)

	_, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrUnexpectedStatus)
}

func TestSearch_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c := NewClient(types.HTTPConfig{BaseURL: base, Timeout: time.Second})
	_, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnexpectedStatus)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestSearch_NoRetryByDefault(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	_, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearch_RetriesWhenConfigured(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(duneJSON))
	}, func(cfg *types.HTTPConfig) { cfg.MaxRetries = 2 })

	books, err := c.Search(context.Background(), params("x", 1, types.SortAsc))
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearch_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, params("x", 1, types.SortAsc))
	assert.ErrorIs(t, err, context.Canceled)
}

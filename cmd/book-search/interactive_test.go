// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/book-search/internal/controller"
	"github.com/pdiddy/book-search/pkg/types"
)

type recordingFetcher struct {
	mu    sync.Mutex
	calls []types.SearchParams
	books []types.Book
}

func (f *recordingFetcher) Search(_ context.Context, p types.SearchParams) ([]types.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	return f.books, nil
}

func (f *recordingFetcher) Calls() []types.SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.SearchParams(nil), f.calls...)
}

// syncBuffer is a bytes.Buffer safe for the session's concurrent writers
// and the test's reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var sessionConfig = types.SearchConfig{Limit: 10, Debounce: 10 * time.Millisecond, DateLayout: "2006-01-02"}

func quietLogger() controller.Option {
	return controller.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunSession_Commands(t *testing.T) {
	f := &recordingFetcher{books: []types.Book{{ID: "1", Name: "Dune", Author: "Herbert", Price: 15}}}
	var out syncBuffer

	in := strings.NewReader(":sort\n:next\n:bogus\n:prev\n:prev\n:quit\nignored\n")
	err := runSession(context.Background(), in, &out, f, sessionConfig, quietLogger())
	require.NoError(t, err)

	// Fetches run concurrently, so only the set of requests is fixed.
	page := func(n int, o types.SortOrder) types.SearchParams {
		return types.SearchParams{Query: "", Limit: 10, Page: n, SortBy: "name", Order: o}
	}
	assert.ElementsMatch(t, []types.SearchParams{
		page(1, types.SortAsc),  // start
		page(1, types.SortDesc), // :sort
		page(2, types.SortDesc), // :next
		page(1, types.SortDesc), // :prev; the second :prev is a no-op at page 1
	}, f.Calls())

	text := out.String()
	assert.Contains(t, text, sessionHelp)
	assert.Contains(t, text, `unknown command ":bogus"`)
	assert.Contains(t, text, "Dune")
	assert.Contains(t, text, "Name (desc)")
}

func TestRunSession_TypingIsDebounced(t *testing.T) {
	f := &recordingFetcher{books: []types.Book{}}
	var out syncBuffer
	pr, pw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- runSession(context.Background(), pr, &out, f, sessionConfig, quietLogger())
	}()

	_, err := io.WriteString(pw, "d\ndu\ndune\n")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, c := range f.Calls() {
			if c.Query == "dune" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	_, err = io.WriteString(pw, ":quit\n")
	require.NoError(t, err)
	require.NoError(t, <-done)
	pw.Close()

	assert.Contains(t, out.String(), "No results")
}

func TestRunSession_DoubleColonSearchesLiteralText(t *testing.T) {
	f := &recordingFetcher{books: []types.Book{}}
	var out syncBuffer
	pr, pw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- runSession(context.Background(), pr, &out, f, sessionConfig, quietLogger())
	}()

	_, err := io.WriteString(pw, "::quit\n")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, c := range f.Calls() {
			if c.Query == ":quit" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	_, err = io.WriteString(pw, ":quit\n")
	require.NoError(t, err)
	require.NoError(t, <-done)
	pw.Close()

	assert.NotContains(t, out.String(), "unknown command")
}

func TestRunSession_EOFEndsSession(t *testing.T) {
	f := &recordingFetcher{}
	var out syncBuffer

	err := runSession(context.Background(), strings.NewReader(""), &out, f, sessionConfig, quietLogger())
	require.NoError(t, err)
	assert.Len(t, f.Calls(), 1, "only the initial fetch")
}

func TestRunSession_ContextCancelEndsSession(t *testing.T) {
	f := &recordingFetcher{}
	var out syncBuffer
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runSession(ctx, pr, &out, f, sessionConfig, quietLogger())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on cancel")
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-search/internal/catalog"
	"github.com/pdiddy/book-search/internal/controller"
	"github.com/pdiddy/book-search/internal/render"
	"github.com/pdiddy/book-search/pkg/types"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Search as you type, with paging and sorting",
	Long: `Interactive starts a search session. Each line you enter replaces the
query; searches fire once typing has been quiet for the debounce window.
Commands:

  :next, :n    next page
  :prev, :p    previous page (never below 1)
  :sort, :s    toggle name order between ascending and descending
  :help, :h    show this help
  :quit, :q    exit

A line starting with "::" searches for the text after the first colon, so
"::memory" searches for ":memory".

The result table is printed whenever a search completes. Failed searches
keep the previous table.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

const sessionHelp = `Type to search. :next :prev :sort :help :quit`

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	client := catalog.NewClient(cfg.Search.HTTPConfig)
	return runSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), client, cfg.Search)
}

// session serializes output from the input loop and controller callbacks.
type session struct {
	mu         sync.Mutex
	out        io.Writer
	table      render.Table
	wasLoading bool
}

func (s *session) println(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, a...)
}

// onChange prints the loading line once per busy period and the full
// table whenever all fetches have settled.
func (s *session) onChange(st controller.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Loading {
		if !s.wasLoading {
			fmt.Fprintln(s.out, render.Loading)
		}
		s.wasLoading = true
		return
	}
	s.wasLoading = false
	s.table.Render(s.out, render.View{
		Page:    st.Page,
		Order:   st.Order,
		Results: st.Results,
	})
}

// runSession drives a controller from line-oriented input until :quit, EOF,
// or ctx is cancelled. Extra options are passed to the controller.
func runSession(ctx context.Context, in io.Reader, out io.Writer, f controller.Fetcher, sc types.SearchConfig, opts ...controller.Option) error {
	s := &session{out: out, table: tableFor(sc)}
	ctl := controller.New(ctx, f, sc, append([]controller.Option{controller.WithOnChange(s.onChange)}, opts...)...)
	defer ctl.Close()

	s.println(sessionHelp)
	ctl.Start()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if quit := s.dispatch(ctl, line); quit {
				return nil
			}
		}
	}
}

// dispatch applies one input line. It reports whether the session should end.
func (s *session) dispatch(ctl *controller.Controller, line string) bool {
	cmd := strings.TrimSpace(line)
	if !strings.HasPrefix(cmd, ":") {
		ctl.OnQueryChange(line)
		return false
	}
	if strings.HasPrefix(cmd, "::") {
		ctl.OnQueryChange(strings.TrimLeft(line, " \t")[1:])
		return false
	}
	switch strings.ToLower(cmd) {
	case ":q", ":quit":
		return true
	case ":n", ":next":
		ctl.OnPageChange(1)
	case ":p", ":prev":
		ctl.OnPageChange(-1)
	case ":s", ":sort":
		ctl.OnSortToggle()
	case ":h", ":help":
		s.println(sessionHelp)
	default:
		s.println(fmt.Sprintf("unknown command %q; %s", cmd, sessionHelp))
	}
	return false
}

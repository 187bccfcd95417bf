package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-search/internal/catalog"
	"github.com/pdiddy/book-search/internal/render"
	"github.com/pdiddy/book-search/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fetch one page of search results",
	Long: `Search fetches a single page from the search endpoint and prints it as a
table (default), JSON, or YAML. Unlike the interactive session, a failed
request is reported as an error since there is no earlier page to keep.

With --save the page is also written to a YAML query file; --load prints a
saved query file without contacting the endpoint.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("page", 1, "page number (minimum 1)")
	searchCmd.Flags().String("order", string(types.SortAsc), "sort order by name: asc or desc")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("yaml", false, "output results as YAML")
	searchCmd.Flags().String("save", "", "also write the query and results to this YAML file")
	searchCmd.Flags().String("load", "", "print a previously saved query file instead of searching")
	searchCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	searchCmd.MarkFlagsMutuallyExclusive("load", "save")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	table := tableFor(cfg.Search)

	if path, _ := cmd.Flags().GetString("load"); path != "" {
		qf, err := catalog.ReadQueryFile(path)
		if err != nil {
			return err
		}
		return printResults(cmd, out, table, qf.Params, qf.Results)
	}

	var query string
	if len(args) == 1 {
		query = args[0]
	}
	page, _ := cmd.Flags().GetInt("page")
	if page < 1 {
		page = 1
	}
	orderFlag, _ := cmd.Flags().GetString("order")
	order, err := types.ParseSortOrder(orderFlag)
	if err != nil {
		return err
	}

	params := types.SearchParams{
		Query:  query,
		Limit:  cfg.Search.Limit,
		Page:   page,
		SortBy: types.SortField,
		Order:  order,
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	client := catalog.NewClient(cfg.Search.HTTPConfig)
	books, err := client.Search(ctx, params)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := catalog.WriteQueryFile(path, client.Endpoint(params), params, books, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d result(s) to %s\n", len(books), path)
	}

	return printResults(cmd, out, table, params, books)
}

func printResults(cmd *cobra.Command, w io.Writer, table render.Table, p types.SearchParams, books []types.Book) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return render.FormatJSON(books, w)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return render.FormatYAML(books, w)
	}
	table.Render(w, render.View{Page: p.Page, Order: p.Order, Results: books})
	return nil
}

func tableFor(c types.SearchConfig) render.Table {
	return render.Table{DateLayout: c.DateLayout}
}

// contextOrBackground guards commands invoked without Execute setting a context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

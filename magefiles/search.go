//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs a one-shot search against the endpoint in
// $BOOK_SEARCH_BASE_URL (or the configured default), querying $QUERY.
func Search() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "search", os.Getenv("QUERY"))
}

// Interactive builds the CLI and starts an interactive session.
func Interactive() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "interactive")
}

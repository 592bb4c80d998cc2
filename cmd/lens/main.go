// Package main provides the lens CLI, a host application over the rowdelta
// result-consistency library: it diffs result-set files, manages per-session
// pending-change logs backed by the SQLite change store, and renders
// projected previews.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

// Diff command: compare two result-set files.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowdelta/pkg/diff"
)

var diffKeyColumns string

var diffCmd = &cobra.Command{
	Use:   "diff <left.json> <right.json>",
	Short: "Compare two result-set files row by row",
	Long: `Diff classifies every row of two result-set JSON files as added, removed,
modified, or unchanged. Rows are matched by the --key columns; without
--key the full intersection of both column lists is used as the key, which
cannot tell duplicate rows apart.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		left, err := readResultSet(args[0])
		if err != nil {
			return err
		}
		right, err := readResultSet(args[1])
		if err != nil {
			return err
		}

		var keyColumns []string
		if diffKeyColumns != "" {
			keyColumns = strings.Split(diffKeyColumns, ",")
		}

		rows, err := diff.Compare(left, right, keyColumns)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(rows)
		}
		renderDiff(rows)
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffKeyColumns, "key", "", "comma-separated key columns identifying rows")
}

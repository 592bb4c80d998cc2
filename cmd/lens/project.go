// Project command: preview a result set with pending changes applied.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

var (
	projectDatabase string
	projectSchema   string
	projectTable    string
	projectKey      string
)

var projectCmd = &cobra.Command{
	Use:   "project <session> <base.json>",
	Short: "Apply a session's pending changes to a result-set file",
	Long: `Project overlays the session's pending inserts, updates, and deletes for
one table onto a base result-set file and prints the preview the result
grid would show. The base file is never modified.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := readResultSet(args[1])
		if err != nil {
			return err
		}

		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		store, err := attachStore(cfg)
		if err != nil {
			return err
		}
		defer store.Detach()

		sess, err := sessionFromStore(store, cfg, args[0])
		if err != nil {
			return err
		}

		ns := types.Namespace{Database: projectDatabase, Schema: projectSchema}
		out, flags, err := sess.Project(ns, projectTable, base, strings.Split(projectKey, ","))
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(struct {
				Result *types.ResultSet       `json:"result"`
				Rows   map[int]types.RowFlags `json:"row_metadata"`
			}{out, flags})
		}
		renderResultSet(out, flags)
		return nil
	},
}

func init() {
	projectCmd.Flags().StringVar(&projectDatabase, "database", "", "database the base result set was fetched from")
	projectCmd.Flags().StringVar(&projectSchema, "schema", "", "schema within the database, if any")
	projectCmd.Flags().StringVar(&projectTable, "table", "", "table the base result set belongs to")
	projectCmd.Flags().StringVar(&projectKey, "key", "", "comma-separated primary-key columns")
	projectCmd.MarkFlagRequired("database")
	projectCmd.MarkFlagRequired("table")
	projectCmd.MarkFlagRequired("key")
}

// Sessions command: list sessions with stored changes.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions with stored pending changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		store, err := attachStore(cfg)
		if err != nil {
			return err
		}
		defer store.Detach()

		ids, err := store.Sessions()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(ids)
		}
		if len(ids) == 0 {
			fmt.Println("no stored sessions")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

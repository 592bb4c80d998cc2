// Changes command: list a session's pending changes.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var changesCmd = &cobra.Command{
	Use:   "changes <session>",
	Short: "List a session's pending changes in commit order",
	Args:  cobra.ExactArgs(1),
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

		sess, err := sessionFromStore(store, cfg, args[0])
		if err != nil {
			return err
		}
		changes := sess.Export()

		if flagJSON {
			return printJSON(changes)
		}
		if len(changes) == 0 {
			fmt.Println("no pending changes")
			return nil
		}
		for _, c := range changes {
			target := c.Namespace.String() + "." + c.Table
			switch {
			case len(c.PrimaryKey) > 0:
				fmt.Printf("%s  %-6s  %s  %s\n", c.ChangeID, c.Kind, target, c.PrimaryKey.Fingerprint())
			default:
				fmt.Printf("%s  %-6s  %s\n", c.ChangeID, c.Kind, target)
			}
		}
		return nil
	},
}

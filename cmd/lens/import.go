// Import command: restore a session's change log from a file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <session> <changes.json>",
	Short: "Replace a session's pending changes from an exported file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := readChanges(args[1])
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
		if err := sess.Import(changes); err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		if err := persistSession(store, sess); err != nil {
			return err
		}

		fmt.Printf("imported %d change(s) into session %s\n", sess.Len(), args[0])
		return nil
	},
}

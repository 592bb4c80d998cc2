// Discard command: drop pending changes from a session.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discardAll bool

var discardCmd = &cobra.Command{
	Use:   "discard <session> [change-id]...",
	Short: "Drop pending changes from a session without committing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !discardAll && len(args) < 2 {
			return fmt.Errorf("provide change IDs or --all")
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

		if discardAll {
			sess.DiscardAll()
		} else {
			for _, id := range args[1:] {
				if !sess.Discard(id) {
					return fmt.Errorf("change %s not found in session %s", id, args[0])
				}
			}
		}

		if err := persistSession(store, sess); err != nil {
			return err
		}
		fmt.Printf("%d change(s) pending\n", sess.Len())
		return nil
	},
}

func init() {
	discardCmd.Flags().BoolVar(&discardAll, "all", false, "discard every pending change")
}

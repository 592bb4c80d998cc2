// Record command: queue row mutations into a session's change log.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <session> <change.json>...",
	Short: "Queue row mutations into a session's pending-change log",
	Long: `Record reads one or more change files (a JSON change object or array of
change objects) and queues them into the session's log, applying the
collapsing merge rule: repeated updates to one row fold together, an
update to a pending insert folds into the insert, and a delete of a
pending insert cancels it.`,
	Args: cobra.MinimumNArgs(2),
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

		recorded, cancelled := 0, 0
		for _, path := range args[1:] {
			changes, err := readChanges(path)
			if err != nil {
				return err
			}
			for i := range changes {
				got, err := sess.Record(changes[i])
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if got == nil {
					cancelled++
				} else {
					recorded++
				}
			}
		}

		if err := persistSession(store, sess); err != nil {
			return err
		}

		if flagJSON {
			return printJSON(struct {
				Recorded  int `json:"recorded"`
				Cancelled int `json:"cancelled"`
				Pending   int `json:"pending"`
			}{recorded, cancelled, sess.Len()})
		}
		fmt.Printf("recorded %d change(s), cancelled %d, %d pending\n",
			recorded, cancelled, sess.Len())
		return nil
	},
}

// Export command: write a session's change log to a file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <session>",
	Short: "Write a session's pending changes as JSON",
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

		if exportOutput == "" {
			return printJSON(changes)
		}
		data, err := json.MarshalIndent(changes, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOutput, append(data, '\n'), 0o644); err != nil {
			return err
		}
		fmt.Printf("exported %d change(s) to %s\n", len(changes), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
}

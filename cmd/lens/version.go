// Version command for the lens CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowdelta/pkg/rowdelta"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lens version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lens", rowdelta.Version)
	},
}

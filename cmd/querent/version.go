package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/querent"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of querent",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "querent version %s\n", strings.TrimSpace(querent.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

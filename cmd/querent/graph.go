package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/querent/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the workflow visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the question workflow.
With --trace, the question is answered first and the nodes it visited are highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		trace, _ := cmd.Flags().GetString("trace")

		return cli.Graph(cmd.Context(), cmd.OutOrStdout(), cli.GraphOptions{
			ConfigPath: configPath,
			Debug:      debug,
			Trace:      trace,
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("trace", "", "Question to run and overlay on the graph")
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/querent/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "querent [question...]",
	Short: "Querent answers natural-language questions about your sales data",
	Long: `Querent turns a question into SQL, runs it against the warehouse and answers in plain language.

With arguments, the words are joined into a single question and answered once.
Without arguments, questions are read line by line until "quit".`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		headless, _ := cmd.Flags().GetBool("headless")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Run(ctx, cli.RunOptions{
			ConfigPath: configPath,
			Debug:      debug,
			Headless:   headless,
			Question:   strings.Join(args, " "),
			Input:      os.Stdin,
			Output:     os.Stdout,
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file (default: ./querent.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log workflow steps to stderr")

	rootCmd.Flags().Bool("headless", false, "Print answers only (no banner, prompts or labels)")
}

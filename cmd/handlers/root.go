package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WiDayn/AutoTopicSum/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autotopicsum",
		Short: "AutoTopicSum aggregates news coverage of a topic across sources.",
		Long: `AutoTopicSum searches multiple news sources for a topic, merges and
ranks the coverage, and derives an event record, a timeline of key moments,
and media profiles for the sources involved.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.autotopicsum.yaml)")

	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewTimelineCmd())
	rootCmd.AddCommand(NewProfileCmd())
	rootCmd.AddCommand(NewStatsCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

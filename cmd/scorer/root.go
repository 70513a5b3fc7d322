package main

import (
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "scorer",
		Short: "docrisk batch risk-scoring engine",
		Long: `scorer scans every archived document for entity mentions, scores the
surrounding context against the severity dictionary, and classifies each
entity into a risk band.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("scorer %s (%s)\n", version, commit)
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"
	// Commit is set during build
	Commit = "none"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "directory",
		Short: "Overwatch service directory",
		Long: `The directory keeps a read model of registered overwatch services
and answers lookups through a query bus exposed over gRPC.

Configuration is read from DIRECTORY_* environment variables and an
optional .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newHandlersCmd(),
		newQueryCmd(),
		newAnnounceCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "directory %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", Commit)
		},
	}
}

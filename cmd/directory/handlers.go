package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/container"
	"github.com/0xsj/overwatch-directory/internal/app/bus"
	"github.com/0xsj/overwatch-directory/internal/config"
)

func newHandlersCmd() *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "handlers",
		Short: "List query handlers without connecting to any store",
		Long: `Build the query registry from the handler components and print which
handler serves each query. Exits non-zero when the handlers are
misconfigured, e.g. two handlers claim the same query.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("policy") {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				policy = cfg.Bus.DuplicatePolicy
			}

			// Handlers are resolved lazily, so an empty container is enough
			// to discover them.
			registry, err := buildRegistry(container.New(), policy)
			if err != nil {
				return err
			}

			return printEntries(cmd.OutOrStdout(), registry.Entries())
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "duplicate handler policy: reject or overwrite")
	return cmd
}

func printEntries(w io.Writer, entries []bus.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tQUERY TYPE\tHANDLER\tHANDLER TYPE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.QueryName, e.QueryType, e.HandlerName, e.HandlerType)
	}
	return tw.Flush()
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/axin/router"
	"github.com/kbukum/axin/stream"
	"github.com/kbukum/axin/version"
)

var routesCmd = &cobra.Command{
	Use:   "routes [path]",
	Short: "List the web client's pages, or resolve one path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := router.New()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			route, err := r.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", route.Path, route.Name, route.Page)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tNAME\tPAGE")
		for _, route := range r.Routes() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", route.Path, route.Name, route.Page)
		}
		return tw.Flush()
	},
}

var chatIDCmd = &cobra.Command{
	Use:   "chatid",
	Short: "Print a new conversation id",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), stream.NewChatID())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "axin %s\n", version.Get())
	},
}

// Command ulog inspects ULog files, and can write a demonstration log.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:           "ulog",
		Short:         "Inspect and write ULog files",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}
	c.AddCommand(newInfoCmd())
	c.AddCommand(newDemoCmd())
	return c
}

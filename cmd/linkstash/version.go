package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/linkstash/internal/build"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("linkstash %s (commit %s, branch %s)\n", build.Version, build.Commit, build.Branch)
		},
	}
}

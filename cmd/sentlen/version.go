package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/sentlen/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cmd.Printf("sentlen %s\n", app.VersionString())
	return nil
}

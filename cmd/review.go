package cmd

import (
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review workflow operations",
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

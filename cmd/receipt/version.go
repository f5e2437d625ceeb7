package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of receipt",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("receipt version %s\n", strings.TrimSpace(receipt.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

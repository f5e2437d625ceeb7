package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
	"github.com/aretw0/receipt/pkg/adapters/fs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a receipt log",
	Long:  `Create the data directory and an empty log. An existing log is never touched.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(receipt.WithAutoInit(true))

		path := cfg.Data
		if repo, ok := svc.Repository().(*fs.Repository); ok {
			path = repo.File()
		}
		fmt.Println("Initialized receipt log at", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

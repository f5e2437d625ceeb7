package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
)

var addCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Compose an item from text and append it",
	Long: `Transform TEXT into an item entry and append it to the local log.
The bonus policy may append a coupon first, exactly as the server does.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(receipt.WithMustExist(true))

		entries, err := svc.Submit(context.Background(), strings.Join(args, " "))
		if err != nil {
			fatal("Failed to add entry", err)
		}
		for _, e := range entries {
			printEntry(os.Stdout, e)
		}
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
	"github.com/aretw0/receipt/pkg/core"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the log, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(receipt.WithMustExist(true))

		entries, err := svc.ListEntries(context.Background())
		if err != nil {
			fatal("Failed to list entries", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(entries); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, e := range entries {
			printEntry(os.Stdout, e)
		}
	},
}

// printEntry writes one line per entry.
func printEntry(w io.Writer, e core.Entry) {
	switch {
	case e.Item != nil:
		text := e.Item.TransformedText
		if text == "" {
			text = e.Item.OriginalText
		}
		fmt.Fprintf(w, "%s  ITEM    #%d  %s\n", e.ID, e.Item.TransactionID, text)
	case e.Coupon != nil:
		fmt.Fprintf(w, "%s  COUPON  %s  %s (%s)\n", e.ID, e.Coupon.Discount, e.Coupon.Product, e.Coupon.Tagline)
	default:
		fmt.Fprintf(w, "%s  %s\n", e.ID, e.Type)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}

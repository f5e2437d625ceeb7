package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
	"github.com/aretw0/receipt/pkg/core"
)

var (
	writeType    string
	writeText    string
	writeProduct string
	writeTagline string
	writeRaw     string
)

// writeCmd appends one candidate exactly as given, bypassing the composer.
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Append a raw entry",
	Long: `Append a single candidate entry to the local log.
Either build it from flags or pass the full JSON with --json.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		candidate, err := buildCandidate()
		if err != nil {
			fatal("Invalid entry", err)
		}

		svc := openService(receipt.WithMustExist(true))
		entry, err := svc.AppendEntry(context.Background(), candidate)
		if err != nil {
			fatal("Failed to append entry", err)
		}

		fmt.Printf("Entry '%s' appended.\n", entry.ID)
	},
}

func buildCandidate() (core.Entry, error) {
	if writeRaw != "" {
		var e core.Entry
		if err := json.Unmarshal([]byte(writeRaw), &e); err != nil {
			return core.Entry{}, fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
		}
		return e, nil
	}

	switch core.EntryType(writeType) {
	case core.TypeItem:
		return core.NewItemEntry(core.Item{OriginalText: writeText}), nil
	case core.TypeCoupon:
		return core.NewCouponEntry(core.Coupon{Product: writeProduct, Tagline: writeTagline}), nil
	default:
		return core.Entry{}, fmt.Errorf("%w: unrecognized type %q", core.ErrInvalidEntry, writeType)
	}
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVarP(&writeType, "type", "t", string(core.TypeItem), "Entry type (item, coupon)")
	writeCmd.Flags().StringVar(&writeText, "text", "", "Original text of an item")
	writeCmd.Flags().StringVar(&writeProduct, "product", "", "Product of a coupon")
	writeCmd.Flags().StringVar(&writeTagline, "tagline", "", "Tagline of a coupon")
	writeCmd.Flags().StringVar(&writeRaw, "json", "", "Full candidate as JSON (overrides other flags)")
}

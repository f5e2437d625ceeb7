package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxOriginalTextLen bounds the submitted text of an item, in characters.
	MaxOriginalTextLen = 100

	BarcodeLen   = 20
	CashierIDLen = 8
)

// Validate checks that e is an acceptable candidate: a known type carrying
// the required field set of that type and nothing of the other variant.
// Optional fields are checked only when present.
func (e Entry) Validate() error {
	switch e.Type {
	case TypeItem:
		if e.Item == nil || e.Coupon != nil {
			return fmt.Errorf("%w: item entry must carry only item fields", ErrInvalidEntry)
		}
		return e.Item.validate()
	case TypeCoupon:
		if e.Coupon == nil || e.Item != nil {
			return fmt.Errorf("%w: coupon entry must carry only coupon fields", ErrInvalidEntry)
		}
		return e.Coupon.validate()
	case "":
		return fmt.Errorf("%w: missing type", ErrInvalidEntry)
	default:
		return fmt.Errorf("%w: unrecognized type %q", ErrInvalidEntry, e.Type)
	}
}

// ValidateText checks raw submission text against the originalText bounds.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: originalText is required", ErrInvalidEntry)
	}
	if n := utf8.RuneCountInString(text); n > MaxOriginalTextLen {
		return fmt.Errorf("%w: originalText has %d characters, max %d", ErrInvalidEntry, n, MaxOriginalTextLen)
	}
	return nil
}

func (it *Item) validate() error {
	if err := ValidateText(it.OriginalText); err != nil {
		return err
	}
	if it.TransactionID != 0 && (it.TransactionID < 1000 || it.TransactionID > 9999) {
		return fmt.Errorf("%w: transactionId %d is not 4 digits", ErrInvalidEntry, it.TransactionID)
	}
	if it.CashierID != "" && !isDigits(it.CashierID, CashierIDLen) {
		return fmt.Errorf("%w: cashierId must be %d digits", ErrInvalidEntry, CashierIDLen)
	}
	if it.Barcode != "" && !isDigits(it.Barcode, BarcodeLen) {
		return fmt.Errorf("%w: barcode must be %d digits", ErrInvalidEntry, BarcodeLen)
	}
	return nil
}

func (c *Coupon) validate() error {
	if strings.TrimSpace(c.Product) == "" {
		return fmt.Errorf("%w: product is required", ErrInvalidEntry)
	}
	if c.CouponCode != 0 && (c.CouponCode < 10000 || c.CouponCode > 99999) {
		return fmt.Errorf("%w: couponCode %d is not 5 digits", ErrInvalidEntry, c.CouponCode)
	}
	if c.Barcode != "" && !isDigits(c.Barcode, BarcodeLen) {
		return fmt.Errorf("%w: barcode must be %d digits", ErrInvalidEntry, BarcodeLen)
	}
	return nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

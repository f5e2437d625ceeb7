package novelty

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aretw0/receipt/pkg/core"
)

// CouponMaker generates bonus coupons.
type CouponMaker interface {
	MakeCoupon(ctx context.Context) (core.Coupon, error)
}

// Offer is a product and its tagline.
type Offer struct {
	Product string
	Tagline string
}

// DefaultCatalogue is the offer list used by Catalogue when none is given.
var DefaultCatalogue = []Offer{
	{"Quantum Floss 5000", "For when your teeth exist in multiple dimensions simultaneously"},
	{"Nap Insurance Plus", "Coverage for naps taken in meetings"},
	{"Decaf Espresso Extreme", "All the drama, none of the jitters"},
	{"Industrial Strength Lip Balm", "Now rated for load-bearing smiles"},
	{"Artisanal Tap Water", "Hand-poured by a guy named Steve"},
	{"Motivational Cough Drops", "You can do this. Cough."},
}

const couponValidity = 14 * 24 * time.Hour

// Catalogue draws coupons from a fixed list of offers.
type Catalogue struct {
	offers []Offer
	rng    *lockedRand
	clock  func() time.Time
}

// NewCatalogue builds a coupon maker. A nil rng is seeded from the clock;
// an empty offer list falls back to DefaultCatalogue.
func NewCatalogue(offers []Offer, rng *rand.Rand, clock func() time.Time) *Catalogue {
	if len(offers) == 0 {
		offers = DefaultCatalogue
	}
	if clock == nil {
		clock = time.Now
	}
	return &Catalogue{offers: offers, rng: newLockedRand(rng), clock: clock}
}

// MakeCoupon picks an offer, a discount between $1.00 and $6.00 and an
// expiry two weeks out.
func (c *Catalogue) MakeCoupon(ctx context.Context) (core.Coupon, error) {
	if err := ctx.Err(); err != nil {
		return core.Coupon{}, err
	}

	offer := c.offers[c.rng.Intn(len(c.offers))]
	cents := decimal.NewFromInt(int64(c.rng.between(100, 600)))

	return core.Coupon{
		Product:    offer.Product,
		Tagline:    offer.Tagline,
		Discount:   FormatDiscount(cents.Shift(-2)),
		Expires:    c.clock().Add(couponValidity).Format("1/2/2006"),
		Barcode:    c.rng.digits(core.BarcodeLen),
		CouponCode: c.rng.between(10000, 99999),
	}, nil
}

// FormatDiscount renders an amount in dollars as "$X.XX off".
func FormatDiscount(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2) + " off"
}

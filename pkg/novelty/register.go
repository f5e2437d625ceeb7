package novelty

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/aretw0/receipt/pkg/core"
)

const (
	TimeLayout = "3:04 PM"
	DateLayout = "January 2, 2006"
)

// Register composes receipt entries. It implements core.Composer by
// combining a Transformer, a CouponMaker and a BonusPolicy, and decorates
// items with the register details printed on every line.
type Register struct {
	transformer Transformer
	coupons     CouponMaker
	bonus       BonusPolicy
	rng         *lockedRand
	clock       func() time.Time
}

// Option configures a Register.
type Option func(*Register)

// WithTransformer replaces the default PhraseTransformer.
func WithTransformer(t Transformer) Option {
	return func(r *Register) {
		r.transformer = t
	}
}

// WithCouponMaker replaces the default Catalogue.
func WithCouponMaker(c CouponMaker) Option {
	return func(r *Register) {
		r.coupons = c
	}
}

// WithBonusPolicy replaces the default Probability policy.
func WithBonusPolicy(p BonusPolicy) Option {
	return func(r *Register) {
		r.bonus = p
	}
}

// WithBonusProbability sets the chance of a coupon per submission.
func WithBonusProbability(p float64) Option {
	return func(r *Register) {
		r.bonus = NewProbability(p, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
}

// WithRand makes every random choice of the register, its default coupon
// maker and default bonus policy come from rng.
func WithRand(rng *rand.Rand) Option {
	return func(r *Register) {
		r.rng = newLockedRand(rng)
	}
}

// WithClock sets the time source used for display time, date and expiry.
func WithClock(clock func() time.Time) Option {
	return func(r *Register) {
		r.clock = clock
	}
}

// NewRegister builds a Register with default collaborators.
func NewRegister(opts ...Option) *Register {
	r := &Register{}
	for _, opt := range opts {
		opt(r)
	}

	if r.rng == nil {
		r.rng = newLockedRand(nil)
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.transformer == nil {
		r.transformer = PhraseTransformer{}
	}
	if r.coupons == nil {
		r.coupons = &Catalogue{offers: DefaultCatalogue, rng: r.rng, clock: r.clock}
	}
	if r.bonus == nil {
		r.bonus = &Probability{p: DefaultBonusProbability, rng: r.rng}
	}
	return r
}

// ComposeItem transforms text and stamps it with a transaction number,
// cashier id, barcode and the current time.
func (r *Register) ComposeItem(ctx context.Context, text string) (core.Item, error) {
	transformed, err := r.transformer.Transform(ctx, text)
	if err != nil {
		return core.Item{}, fmt.Errorf("transform: %w", err)
	}

	now := r.clock()
	return core.Item{
		OriginalText:    text,
		TransformedText: transformed,
		Time:            now.Format(TimeLayout),
		Date:            now.Format(DateLayout),
		TransactionID:   r.rng.between(1000, 9999),
		CashierID:       fmt.Sprintf("%0*d", core.CashierIDLen, r.rng.between(10000, 99999)),
		Barcode:         r.rng.digits(core.BarcodeLen),
	}, nil
}

func (r *Register) ComposeCoupon(ctx context.Context) (core.Coupon, error) {
	return r.coupons.MakeCoupon(ctx)
}

func (r *Register) ShouldAttachBonus() bool {
	return r.bonus.ShouldAttachBonus()
}

var _ core.Composer = (*Register)(nil)

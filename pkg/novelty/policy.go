package novelty

import "math/rand"

// BonusPolicy decides, once per submission, whether a coupon is attached.
type BonusPolicy interface {
	ShouldAttachBonus() bool
}

// DefaultBonusProbability is the chance of a coupon per submission.
const DefaultBonusProbability = 0.3

// Probability attaches a bonus with a fixed probability.
type Probability struct {
	p   float64
	rng *lockedRand
}

// NewProbability returns a policy firing with probability p in [0, 1].
func NewProbability(p float64, rng *rand.Rand) *Probability {
	return &Probability{p: p, rng: newLockedRand(rng)}
}

func (b *Probability) ShouldAttachBonus() bool {
	if b.p <= 0 {
		return false
	}
	return b.rng.Float64() < b.p
}

// Fixed always answers the same.
type Fixed bool

func (f Fixed) ShouldAttachBonus() bool { return bool(f) }

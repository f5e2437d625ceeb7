package novelty

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// lockedRand makes a *rand.Rand safe for concurrent submissions.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(r *rand.Rand) *lockedRand {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &lockedRand{r: r}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// between returns a value in [lo, hi].
func (l *lockedRand) between(lo, hi int) int {
	return lo + l.Intn(hi-lo+1)
}

// digits returns n random decimal digits.
func (l *lockedRand) digits(n int) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + l.r.Intn(10)))
	}
	return b.String()
}

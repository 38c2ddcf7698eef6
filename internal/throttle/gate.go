// Package throttle implements the per-key admission gate protecting order
// placement. The upstream documents a strict one-request-per-second ceiling
// per account, so this is deliberately a single-slot gate keyed by
// account+user, not a token bucket with burst capacity: within the minimum
// interval the second attempt is always denied.
//
// The gate is process-local in-memory state. For horizontally scaled
// deployments a distributed limiter would be needed to enforce the ceiling
// globally; that is out of scope here.
package throttle

import (
	"sync"
	"time"
)

// DefaultMinInterval matches the upstream's documented per-account throttle
// guidance for order placement.
const DefaultMinInterval = time.Second

// Gate grants at most one acquisition per key per minimum interval.
// It is safe for concurrent use; the check-then-set on a key's timestamp is
// atomic under the mutex, so two racing callers cannot both be allowed
// within one interval.
type Gate struct {
	interval time.Duration

	mu   sync.Mutex
	last map[string]time.Time

	// now is a test seam; production gates use time.Now.
	now func() time.Time

	ttl    time.Duration
	sweepN uint64
}

// NewGate constructs a Gate with the given minimum interval between granted
// acquisitions per key. Intervals <= 0 are coerced to DefaultMinInterval.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &Gate{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
		ttl:      10 * time.Minute, // evict idle keys after TTL
	}
}

// Key builds the composite gate key for an account/user pair.
func Key(accountID, userID string) string {
	return accountID + "/" + userID
}

// TryAcquire attempts to admit one execution for key. It returns true when
// the elapsed time since the key's last grant is at least the minimum
// interval (an unseen key counts as infinitely elapsed), recording the grant
// timestamp. Otherwise it returns false together with the remaining wait.
//
// TryAcquire cannot fail; it is pure in-memory arithmetic. It provides no
// fairness across racing callers beyond "most recent granted timestamp
// wins".
func (g *Gate) TryAcquire(key string) (bool, time.Duration) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Opportunistic sweep of idle keys, amortized over acquisitions, so the
	// map stays bounded by recently active account/user pairs.
	g.sweepN++
	if g.sweepN >= 5000 {
		for k, ts := range g.last {
			if now.Sub(ts) >= g.ttl {
				delete(g.last, k)
			}
		}
		g.sweepN = 0
	}

	if ts, ok := g.last[key]; ok {
		elapsed := now.Sub(ts)
		if elapsed < g.interval {
			return false, g.interval - elapsed
		}
	}
	g.last[key] = now
	return true, 0
}

// RetryAfterSeconds converts a denial wait into the whole-second value for a
// Retry-After header, rounding up so callers never retry early.
func RetryAfterSeconds(wait time.Duration) int {
	if wait <= 0 {
		return 0
	}
	secs := int(wait / time.Second)
	if wait%time.Second != 0 {
		secs++
	}
	return secs
}

package session

import (
	"math"
	"math/rand"
	"time"
)

// Delay returns the wait before dial attempt n (1-based). With jitter the
// result lands in [0.5, 1.5) of the nominal delay; a nil rng picks 0.5.
func (b BackoffConfig) Delay(attempt int, rng *rand.Rand) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	nominal := float64(b.InitialDelay)
	if attempt > 1 {
		nominal *= math.Pow(max(b.Multiplier, 1.0), float64(attempt-1))
	}
	if b.MaxDelay > 0 {
		nominal = min(nominal, float64(b.MaxDelay))
	}
	if !b.Jitter {
		return time.Duration(nominal)
	}
	f := 0.5
	if rng != nil {
		f += rng.Float64()
	}
	return time.Duration(nominal * f)
}

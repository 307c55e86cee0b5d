// Package dice provides the randomness abstraction used by the arena engine
// for critical hits, spawn rolls, loot drops, and boss skill selection.
package dice

// Source is the randomness provider for every probabilistic game rule.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniform random float in [0.0, 1.0).
	Float64() float64
}

// Chance draws one uniform sample from src and reports whether it falls below p.
// p is not clamped: p >= 1 always succeeds and p <= 0 never does.
//
// Precondition: src must be non-nil.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Between returns a uniform random int in [lo, hi]. When hi <= lo it returns lo.
//
// Precondition: src must be non-nil.
// Postcondition: lo <= result <= max(lo, hi).
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Pick returns a uniformly chosen index into a collection of length n.
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}

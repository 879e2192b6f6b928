// Package dice provides the randomness abstraction shared by every formula
// and resolver in the rules engine. Outcomes are reproducible in tests by
// injecting a seeded Source; production code injects a crypto-backed one.
package dice

// Source is the randomness provider for all engine rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// D20 rolls a twenty-sided die.
//
// Postcondition: result is in [1, 20].
func D20(src Source) int {
	return src.Intn(20) + 1
}

// D6 rolls a six-sided die.
//
// Postcondition: result is in [1, 6].
func D6(src Source) int {
	return src.Intn(6) + 1
}

// Percent draws a uniform percentage roll in [0, 100).
func Percent(src Source) int {
	return src.Intn(100)
}

// Range returns a uniform value in [min, max].
//
// Precondition: min <= max.
func Range(src Source, min, max int) int {
	if min >= max {
		return min
	}
	return min + src.Intn(max-min+1)
}

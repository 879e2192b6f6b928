package formula

import "math"

// AccrualPeriods returns the number of whole accrual periods contained in
// elapsedSeconds. Partial periods never count.
//
// Postcondition: result == 0 whenever elapsedSeconds < periodSeconds.
func AccrualPeriods(elapsedSeconds, periodSeconds int64) int64 {
	if periodSeconds <= 0 || elapsedSeconds <= 0 {
		return 0
	}
	return elapsedSeconds / periodSeconds
}

// CompoundInterest returns the interest earned on balance over the whole
// periods contained in elapsedSeconds: floor(balance*(1+rate)^periods - balance).
// rate is the per-period fraction, e.g. 0.02 for 2%.
//
// Postcondition: result == 0 if periods <= 0 or balance <= 0; result is
// non-decreasing in elapsedSeconds.
func CompoundInterest(balance int64, rate float64, elapsedSeconds, periodSeconds int64) int64 {
	periods := AccrualPeriods(elapsedSeconds, periodSeconds)
	if periods <= 0 || balance <= 0 || rate <= 0 {
		return 0
	}
	grown := float64(balance) * math.Pow(1+rate, float64(periods))
	return int64(math.Floor(grown)) - balance
}

// LoanInterest returns simple (not compounded) interest on an outstanding
// loan: floor(loanAmount * rate * periods).
//
// Postcondition: result == 0 if periods <= 0 or loanAmount <= 0.
func LoanInterest(loanAmount int64, rate float64, elapsedSeconds, periodSeconds int64) int64 {
	periods := AccrualPeriods(elapsedSeconds, periodSeconds)
	if periods <= 0 || loanAmount <= 0 || rate <= 0 {
		return 0
	}
	return int64(math.Floor(float64(loanAmount) * rate * float64(periods)))
}

package score

import (
	"math"
	"time"
)

// daysPerMonth is the mean Gregorian month length
const daysPerMonth = 30.4375

// RecencyWeight decays with an exponential half-life in months. Dates in the
// future count as brand new so the weight never exceeds 1.
func RecencyWeight(published *time.Time, now time.Time, halfLifeMonths, missing float64) float64 {
	if published == nil || published.IsZero() {
		return missing
	}
	months := now.Sub(*published).Hours() / 24 / daysPerMonth
	if months < 0 {
		months = 0
	}
	return math.Pow(0.5, months/halfLifeMonths)
}

package scanner

import (
	"sort"

	"radar-screener/internal/models"
)

// DipResult is the outcome of evaluating one price against its history.
type DipResult struct {
	// Insufficient means there were not enough usable points to compute a
	// reference price. A normal terminal outcome, not an error.
	Insufficient   bool
	Dip            bool
	ReferencePrice float64 // median over the trailing window
	DiscountPct    float64 // positive when latest is below the reference
}

// Detect decides whether latestPrice is a dip against the trailing window.
// history must already contain the just-written latest point; the reference
// price is the median over all its values. The threshold comparison is
// inclusive: a discount exactly equal to thresholdPct triggers.
//
// Pure function, deterministic given its inputs.
func Detect(history []models.PricePoint, latestPrice, thresholdPct float64) DipResult {
	reference, ok := median(history)
	if !ok || reference <= 0 {
		return DipResult{Insufficient: true}
	}

	discount := (reference - latestPrice) / reference * 100

	return DipResult{
		Dip:            discount >= thresholdPct,
		ReferencePrice: reference,
		DiscountPct:    discount,
	}
}

// median returns the statistical median of the price values: the middle
// value for an odd-sized window, the average of the two middle values for
// an even-sized one. ok is false for an empty window.
func median(history []models.PricePoint) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}

	values := make([]float64, len(history))
	for i, point := range history {
		values[i] = point.Price
	}
	sort.Float64s(values)

	n := len(values)
	return (values[n/2] + values[(n-1)/2]) / 2, true
}

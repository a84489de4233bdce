// Package pricing computes stay prices.
package pricing

import (
	"hotel/shared/timezone"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// Nights counts started 24 hour periods between start and end, read on the
// application calendar so a stay across a daylight saving change keeps its
// night count. Non-positive ranges yield zero.
func Nights(start, end time.Time) int {
	span := timezone.WallClock(end).Sub(timezone.WallClock(start))
	if span <= 0 {
		return 0
	}

	return int(math.Ceil(float64(span) / float64(day)))
}

// ComputePrice is nights times the nightly rate, with no rounding beyond the
// precision of rate.
func ComputePrice(start, end time.Time, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(Nights(start, end))))
}

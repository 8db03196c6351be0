package pricing

import (
	"fmt"
	"math"
)

// Price is an amount of US dollars held as whole cents.
type Price int64

// Dollars converts a dollar amount to a Price, rounding to the nearest cent.
func Dollars(d float64) Price {
	return Price(math.Round(d * 100))
}

// Float64 returns the price in dollars.
func (p Price) Float64() float64 {
	return float64(p) / 100
}

// String formats the price with two decimals, e.g. "19.99".
func (p Price) String() string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/100, p%100)
}

// Quote is a price together with a human readable note on where it came
// from.
type Quote struct {
	Price  Price
	Source string
}

package pricing

import "math"

const (
	DefaultMarkup = 1.30
	DefaultFloor  = Price(199)
)

// Calculator turns a base market price into a listing price.
type Calculator struct {
	Markup float64
	Floor  Price
}

// NewCalculator creates a calculator. Non-positive values fall back to
// DefaultMarkup and DefaultFloor.
func NewCalculator(markup float64, floor Price) Calculator {
	if markup <= 0 {
		markup = DefaultMarkup
	}
	if floor <= 0 {
		floor = DefaultFloor
	}
	return Calculator{Markup: markup, Floor: floor}
}

// Final applies the markup and never returns less than the floor.
func (c Calculator) Final(base Price) Price {
	marked := Price(math.Round(float64(base) * c.Markup))
	if marked < c.Floor {
		return c.Floor
	}
	return marked
}

package money

import "github.com/shopspring/decimal"

// Total is quantity * unitPrice computed in decimal.
func Total(quantity int, unitPrice float64) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		InexactFloat64()
}

// Accumulator sums amounts without float drift.
type Accumulator struct {
	sum decimal.Decimal
}

func (a *Accumulator) Add(amount float64) {
	a.sum = a.sum.Add(decimal.NewFromFloat(amount))
}

func (a *Accumulator) Float() float64 {
	return a.sum.InexactFloat64()
}

// Sum adds a list of amounts.
func Sum(amounts ...float64) float64 {
	var acc Accumulator
	for _, a := range amounts {
		acc.Add(a)
	}
	return acc.Float()
}

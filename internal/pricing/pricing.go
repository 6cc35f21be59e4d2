// Package pricing holds the money arithmetic shared by order composition and
// order aggregation, so both agree on how a line item turns into totals.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places money is stored with.
const Places = 2

var (
	ErrNegativeAmount = errors.New("amounts must not be negative")
	ErrPriceMismatch  = errors.New("price must equal retail price plus profit")
	ErrTooPrecise     = errors.New("amounts may have at most 2 decimal places")
)

// FirstPositive returns the first candidate that is set and greater than zero.
// A zero caller value counts as absent.
func FirstPositive(candidates ...*decimal.Decimal) (decimal.Decimal, bool) {
	for _, c := range candidates {
		if c != nil && c.IsPositive() {
			return *c, true
		}
	}
	return decimal.Zero, false
}

// Round brings an amount to the stored money precision, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// FitsPlaces reports whether amount is stored without rounding.
func FitsPlaces(amount decimal.Decimal) bool {
	return amount.Equal(Round(amount))
}

func Times(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// LineTotal is the caller supplied line total when given, otherwise unitPrice * quantity,
// rounded to Places.
func LineTotal(callerTotal *decimal.Decimal, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if total, ok := FirstPositive(callerTotal); ok {
		return Round(total)
	}
	return Round(Times(unitPrice, quantity))
}

// LineProfit is (callerProfit OR catalogProfit OR 0) * quantity, rounded to Places.
func LineProfit(callerProfit *decimal.Decimal, catalogProfit decimal.Decimal, quantity int) decimal.Decimal {
	unit, _ := FirstPositive(callerProfit, &catalogProfit)
	return Round(Times(unit, quantity))
}

// ResolveCatalogPrice fills in a missing price from retail + profit and checks
// the relationship otherwise.
func ResolveCatalogPrice(price *decimal.Decimal, retail, profit decimal.Decimal) (decimal.Decimal, error) {
	if retail.IsNegative() || profit.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if !FitsPlaces(retail) || !FitsPlaces(profit) {
		return decimal.Zero, ErrTooPrecise
	}
	expected := retail.Add(profit)
	if price == nil {
		return expected, nil
	}
	if err := CheckCatalogPrice(*price, retail, profit); err != nil {
		return decimal.Zero, err
	}
	return *price, nil
}

func CheckCatalogPrice(price, retail, profit decimal.Decimal) error {
	if price.IsNegative() || retail.IsNegative() || profit.IsNegative() {
		return ErrNegativeAmount
	}
	if !FitsPlaces(price) || !FitsPlaces(retail) || !FitsPlaces(profit) {
		return ErrTooPrecise
	}
	if !price.Equal(retail.Add(profit)) {
		return ErrPriceMismatch
	}
	return nil
}

package booking

import (
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

type Calculator struct {
	taxRate decimal.Decimal
}

func NewCalculator(taxRate decimal.Decimal) *Calculator {
	return &Calculator{taxRate: taxRate}
}

func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Quote prices a stay. Amounts are carried at full precision and rounded
// half-up to cents only in the returned Quote.
func (c *Calculator) Quote(room domain.Room, checkIn, checkOut domain.Date) (domain.Quote, error) {
	stay := domain.NewStay(checkIn, checkOut)
	nights := stay.Nights()
	if checkIn.IsZero() || checkOut.IsZero() || nights < 1 {
		return domain.Quote{}, newError(KindInvalidRange, "stay %s..%s has no nights", checkIn, checkOut)
	}

	subtotal := room.Price.Mul(decimal.NewFromInt(int64(nights)))
	taxes := subtotal.Mul(c.taxRate)
	total := subtotal.Add(taxes)

	return domain.Quote{
		Nights:       nights,
		Subtotal:     subtotal.Round(moneyPlaces),
		TaxesAndFees: taxes.Round(moneyPlaces),
		Total:        total.Round(moneyPlaces),
	}, nil
}

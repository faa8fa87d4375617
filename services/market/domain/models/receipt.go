package models

import "github.com/shopspring/decimal"

// Receipt summarizes a settled purchase. Paid = Total + Excess, Total = Price + Fee.
type Receipt struct {
	Item   *Item
	Price  decimal.Decimal
	Fee    decimal.Decimal
	Total  decimal.Decimal
	Paid   decimal.Decimal
	Excess decimal.Decimal
}

package fpmath

import (
	"github.com/shopspring/decimal"
)

var (
	bpsDivisor  = decimal.NewFromInt(10000)
	paiseFactor = decimal.NewFromInt(100)
)

// TokenQuantity converts an accounting amount into token minor units at the
// given price: floor(amount * 10^precision / price). The quotient is
// truncated toward zero so the party receiving the quantity absorbs the
// rounding loss, never the custodied balance.
func TokenQuantity(amount, price decimal.Decimal, precision int32) decimal.Decimal {
	q, _ := amount.Shift(precision).QuoRem(price, 0)
	return q
}

// Fee returns floor(quantity * bps / 10000) in the same minor units as
// quantity.
func Fee(quantity decimal.Decimal, bps int64) decimal.Decimal {
	q, _ := quantity.Mul(decimal.NewFromInt(bps)).QuoRem(bpsDivisor, 0)
	return q
}

// LockedAmount is the worst-case collateral for an order: the token
// quantity at the auction floor price plus the resolver fee on it.
func LockedAmount(amount, endPrice decimal.Decimal, precision int32, bps int64) decimal.Decimal {
	quantity := TokenQuantity(amount, endPrice, precision)
	return quantity.Add(Fee(quantity, bps))
}

// SettlementAmount is the payout owed to the resolver once an order is
// accepted: the token quantity at the accepted price plus fee. Because the
// accepted price is never below the floor price, the settlement amount
// never exceeds the locked amount.
func SettlementAmount(amount, acceptedPrice decimal.Decimal, precision int32, bps int64) decimal.Decimal {
	quantity := TokenQuantity(amount, acceptedPrice, precision)
	return quantity.Add(Fee(quantity, bps))
}

// INRMinorUnits converts an accounting amount into INR paise at the given
// reference rate, truncating toward zero.
func INRMinorUnits(amount, rate decimal.Decimal) int64 {
	q, _ := amount.Mul(rate).Mul(paiseFactor).QuoRem(decimal.NewFromInt(1), 0)
	return q.IntPart()
}

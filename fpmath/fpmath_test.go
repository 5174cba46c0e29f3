package fpmath

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestTokenQuantity(t *testing.T) {
	// 100 accounting units at price 50 with 6-digit precision.
	assert.True(t, TokenQuantity(d("100"), d("50"), 6).Equal(d("2000000")))

	// Truncation toward zero, not rounding.
	assert.True(t, TokenQuantity(d("100"), d("75"), 6).Equal(d("1333333")))
	assert.True(t, TokenQuantity(d("1"), d("3"), 6).Equal(d("333333")))

	// 18-digit native precision tokens.
	assert.True(t, TokenQuantity(d("100"), d("50"), 18).Equal(d("2000000000000000000")))
}

func TestFee(t *testing.T) {
	assert.True(t, Fee(d("2000000"), 100).Equal(d("20000")))
	assert.True(t, Fee(d("1333333"), 100).Equal(d("13333")))
	assert.True(t, Fee(d("2000000"), 0).Equal(decimal.Zero))

	// Fee floors as well: 1% of 99 minor units is 0, not 1.
	assert.True(t, Fee(d("99"), 100).Equal(decimal.Zero))
}

func TestLockedAndSettlementAmounts(t *testing.T) {
	locked := LockedAmount(d("100"), d("50"), 6, 100)
	assert.True(t, locked.Equal(d("2020000")))

	settlement := SettlementAmount(d("100"), d("75"), 6, 100)
	assert.True(t, settlement.Equal(d("1346666")))

	remainder := locked.Sub(settlement)
	assert.True(t, remainder.Equal(d("673334")))
	assert.True(t, remainder.GreaterThanOrEqual(decimal.Zero))
}

func TestSettlementNeverExceedsLocked(t *testing.T) {
	amount := d("12345.678901234567891234")
	end := d("41.5")

	locked := LockedAmount(amount, end, 8, 25)

	for _, accepted := range []string{"41.5", "41.500001", "55", "79.999999", "80"} {
		settlement := SettlementAmount(amount, d(accepted), 8, 25)
		assert.True(t, settlement.LessThanOrEqual(locked), "accepted price %s", accepted)
	}
}

func TestINRMinorUnits(t *testing.T) {
	assert.Equal(t, int64(830050), INRMinorUnits(d("100"), d("83.0050")))
	assert.Equal(t, int64(8300), INRMinorUnits(d("1"), d("83")))
	assert.Equal(t, int64(41), INRMinorUnits(d("0.005"), d("83")))
}

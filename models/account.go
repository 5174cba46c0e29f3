package models

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Account holds one member's funds for one token, in native minor units.
// Balance is freely spendable, Locked is custodied by the ledger. The
// mutators only touch the struct; persisting the row is the caller's job
// so every movement happens inside the ledger's transaction.
type Account struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	MemberID  int64           `json:"member_id"`
	TokenID   string          `json:"token_id"`
	Balance   decimal.Decimal `json:"balance" gorm:"default:0.0"`
	Locked    decimal.Decimal `json:"locked" gorm:"default:0.0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) errContext(op string, amount decimal.Decimal) error {
	return errors.New("Cannot " + op + " funds (member id: " + strconv.FormatInt(a.MemberID, 10) + ", token id: " + a.TokenID + ", amount: " + amount.String() + ", balance: " + a.Balance.String() + ", locked: " + a.Locked.String() + ").")
}

func (a *Account) PlusFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return a.errContext("add", amount)
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) SubFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Balance) {
		return a.errContext("subtract", amount)
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *Account) LockFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Balance) {
		return a.errContext("lock", amount)
	}

	a.Balance = a.Balance.Sub(amount)
	a.Locked = a.Locked.Add(amount)
	return nil
}

func (a *Account) UnlockFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Locked) {
		return a.errContext("unlock", amount)
	}

	a.Balance = a.Balance.Add(amount)
	a.Locked = a.Locked.Sub(amount)
	return nil
}

// UnlockAndSubFunds releases custodied funds without crediting them back,
// used when the locked amount is paid out to another account.
func (a *Account) UnlockAndSubFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Locked) {
		return a.errContext("unlock", amount)
	}

	a.Locked = a.Locked.Sub(amount)
	return nil
}

func (a *Account) Amount() decimal.Decimal {
	return a.Balance.Add(a.Locked)
}

type AccountJSON struct {
	Token   string          `json:"token"`
	Balance decimal.Decimal `json:"balance"`
	Locked  decimal.Decimal `json:"locked"`
}

func (a *Account) ToJSON() AccountJSON {
	return AccountJSON{
		Token:   a.TokenID,
		Balance: a.Balance,
		Locked:  a.Locked,
	}
}

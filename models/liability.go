package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Liability rows are the double-entry audit trail of custody movement.
// Each transfer between fund kinds ("main" and "locked") produces a credit
// on the source and a debit on the destination, so the sum of debits minus
// credits per kind reconstructs every account at any point in time.
type Liability struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	TokenID       string          `json:"token_id"`
	MemberID      int64           `json:"member_id"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   int64           `json:"reference_id"`
	Kind          string          `json:"kind"`
	Debit         decimal.Decimal `json:"debit" gorm:"default:0.0"`
	Credit        decimal.Decimal `json:"credit" gorm:"default:0.0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func LiabilityCredit(amount decimal.Decimal, tokenID string, reference Reference, kind string, memberID int64) *Liability {
	return &Liability{
		TokenID:       tokenID,
		MemberID:      memberID,
		ReferenceType: reference.Type,
		ReferenceID:   reference.ID,
		Kind:          kind,
		Credit:        amount,
	}
}

func LiabilityDebit(amount decimal.Decimal, tokenID string, reference Reference, kind string, memberID int64) *Liability {
	return &Liability{
		TokenID:       tokenID,
		MemberID:      memberID,
		ReferenceType: reference.Type,
		ReferenceID:   reference.ID,
		Kind:          kind,
		Debit:         amount,
	}
}

// LiabilityTransfer moves an amount from one fund kind to another.
func LiabilityTransfer(amount decimal.Decimal, tokenID string, reference Reference, fromKind, toKind string, memberID int64) []*Liability {
	return []*Liability{
		LiabilityCredit(amount, tokenID, reference, fromKind, memberID),
		LiabilityDebit(amount, tokenID, reference, toKind, memberID),
	}
}

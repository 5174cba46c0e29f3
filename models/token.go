package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Token is a row of the supported-token registry. Precision is the number
// of native minor-unit digits; every custody amount for the token is held
// in those minor units.
type Token struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name"`
	Precision int32           `json:"precision" gorm:"default:6"`
	MinAmount decimal.Decimal `json:"min_amount" gorm:"default:0.0"`
	FeeBps    sql.NullInt64   `json:"fee_bps"`
	Enabled   bool            `json:"enabled"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (t *Token) Supported() bool {
	return t != nil && t.Enabled
}

// FeeBpsOr returns the per-token fee override when set, the given default
// otherwise.
func (t *Token) FeeBpsOr(fallback int64) int64 {
	if t.FeeBps.Valid {
		return t.FeeBps.Int64
	}

	return fallback
}

type TokenJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Precision int32           `json:"precision"`
	MinAmount decimal.Decimal `json:"min_amount"`
	Enabled   bool            `json:"enabled"`
}

func (t *Token) ToJSON() TokenJSON {
	return TokenJSON{
		ID:        t.ID,
		Name:      t.Name,
		Precision: t.Precision,
		MinAmount: t.MinAmount,
		Enabled:   t.Enabled,
	}
}

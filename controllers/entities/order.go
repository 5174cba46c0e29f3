package entities

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderEntity struct {
	ID            int64               `json:"id"`
	UUID          uuid.UUID           `json:"uuid"`
	Token         string              `json:"token"`
	Amount        decimal.Decimal     `json:"amount"`
	StartPrice    decimal.Decimal     `json:"start_price"`
	EndPrice      decimal.Decimal     `json:"end_price"`
	AcceptedPrice decimal.NullDecimal `json:"accepted_price"`
	Locked        decimal.Decimal     `json:"locked"`
	State         string              `json:"state"`
	TakerUID      string              `json:"taker_uid,omitempty"`
	Recipient     string              `json:"recipient"`
	CreatedAt     time.Time           `json:"created_at"`
	AcceptedAt    sql.NullTime        `json:"accepted_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderStatusEntity is the status-query shape: the order record plus its
// deadline timers.
type OrderStatusEntity struct {
	OrderEntity
	ExpiresAt time.Time  `json:"expires_at"`
	FulfillBy *time.Time `json:"fulfill_by,omitempty"`
}

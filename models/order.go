package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/rampx/controllers/entities"
	"github.com/zsmartex/rampx/types"
)

type OrderState = string

const (
	StateCreated          OrderState = "created"
	StateAccepted         OrderState = "accepted"
	StateFulfilled        OrderState = "fulfilled"
	StateExpiredRefunded  OrderState = "expired_refunded"
	StateTimedOutRefunded OrderState = "timedout_refunded"
)

// Order is the authoritative ledger record of one off-ramp sale. Amount
// and both prices are 18-digit fixed point accounting units; Locked is the
// collateral custodied at creation in the token's native minor units and
// is the only value the ledger ever releases for this order.
//
// Lifecycle is forward only: created -> accepted -> fulfilled, with the
// two refund edges (expired, timed_out) also landing on fulfilled. No
// field is reverted once written.
type Order struct {
	ID            int64               `json:"id" gorm:"primaryKey"`
	UUID          uuid.UUID           `json:"uuid" gorm:"default:gen_random_uuid()"`
	MakerID       int64               `json:"maker_id" validate:"required"`
	TakerUID      sql.NullString      `json:"taker_uid"`
	TokenID       string              `json:"token_id" validate:"required"`
	Amount        decimal.Decimal     `json:"amount"`
	StartPrice    decimal.Decimal     `json:"start_price"`
	EndPrice      decimal.Decimal     `json:"end_price"`
	AcceptedPrice decimal.NullDecimal `json:"accepted_price"`
	Locked        decimal.Decimal     `json:"locked" gorm:"default:0.0"`
	FeeBps        int64               `json:"fee_bps"`
	Recipient     string              `json:"recipient" validate:"required"`
	Proof         string              `json:"proof"`
	Accepted      bool                `json:"accepted"`
	Fulfilled     bool                `json:"fulfilled"`
	RefundEdge    sql.NullString      `json:"refund_edge"`
	CreatedAt     time.Time           `json:"created_at"`
	AcceptedAt    sql.NullTime        `json:"accepted_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (o *Order) State() OrderState {
	switch {
	case o.Fulfilled && o.RefundEdge.String == types.RefundExpired:
		return StateExpiredRefunded
	case o.Fulfilled && o.RefundEdge.String == types.RefundTimedOut:
		return StateTimedOutRefunded
	case o.Fulfilled:
		return StateFulfilled
	case o.Accepted:
		return StateAccepted
	default:
		return StateCreated
	}
}

// Expired reports whether the order has outlived the acceptance window
// without being fulfilled.
func (o *Order) Expired(now time.Time, maxOrderTime time.Duration) bool {
	return !o.Fulfilled && now.After(o.CreatedAt.Add(maxOrderTime))
}

// FulfillmentOverdue reports whether an accepted order has outlived its
// payment window.
func (o *Order) FulfillmentOverdue(now time.Time, maxFulfillmentTime time.Duration) bool {
	return o.Accepted && !o.Fulfilled && o.AcceptedAt.Valid && now.After(o.AcceptedAt.Time.Add(maxFulfillmentTime))
}

// PriceInRange reports whether a bid price lies on the auction curve's
// range for this order.
func (o *Order) PriceInRange(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(o.EndPrice) && price.LessThanOrEqual(o.StartPrice)
}

func (o *Order) Reference() Reference {
	return Reference{ID: o.ID, Type: "Order"}
}

func (o *Order) ToJSON() entities.OrderEntity {
	return entities.OrderEntity{
		ID:            o.ID,
		UUID:          o.UUID,
		Token:         o.TokenID,
		Amount:        o.Amount,
		StartPrice:    o.StartPrice,
		EndPrice:      o.EndPrice,
		AcceptedPrice: o.AcceptedPrice,
		Locked:        o.Locked,
		State:         o.State(),
		TakerUID:      o.TakerUID.String,
		Recipient:     o.Recipient,
		CreatedAt:     o.CreatedAt,
		AcceptedAt:    o.AcceptedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

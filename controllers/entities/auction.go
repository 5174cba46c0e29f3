package entities

import (
	"github.com/shopspring/decimal"
)

type AuctionTickEntity struct {
	OrderID         int64           `json:"order_id"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	TimeRemainingMs int64           `json:"time_remaining_ms"`
}

type AuctionOutcomeEntity struct {
	OrderID int64           `json:"order_id"`
	Outcome string          `json:"outcome"`
	Price   decimal.Decimal `json:"price"`
}

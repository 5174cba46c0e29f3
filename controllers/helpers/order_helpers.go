package helpers

import (
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/rampx/models/concerns"
)

var precision_validator = concerns.PrecisionValidator{}

type CreateOrderParams struct {
	Token      string          `json:"token" form:"token" validate:"required"`
	Amount     decimal.Decimal `json:"amount" form:"amount" validate:"VaildateAmount"`
	StartPrice decimal.Decimal `json:"start_price" form:"start_price" validate:"VaildatePrices"`
	EndPrice   decimal.Decimal `json:"end_price" form:"end_price"`
	Recipient  string          `json:"recipient" form:"recipient" validate:"required"`
}

func (p CreateOrderParams) Messages() map[string]string {
	invalid_message := "ramp.order.invalid_{field}"

	return validate.MS{
		"required":       invalid_message,
		"VaildateAmount": "ramp.order.non_positive_amount",
		"VaildatePrices": "ramp.order.invalid_price_range",
	}
}

func (p CreateOrderParams) VaildateAmount(Amount decimal.Decimal) bool {
	return Amount.IsPositive() && precision_validator.LessThanOrEqTo(Amount, 18)
}

func (p CreateOrderParams) VaildatePrices(StartPrice decimal.Decimal) bool {
	return p.EndPrice.IsPositive() && StartPrice.GreaterThan(p.EndPrice) &&
		precision_validator.LessThanOrEqTo(StartPrice, 18) &&
		precision_validator.LessThanOrEqTo(p.EndPrice, 18)
}

type BidParams struct {
	Price decimal.Decimal `json:"price" form:"price" validate:"VaildatePrice"`
}

func (p BidParams) Messages() map[string]string {
	return validate.MS{
		"VaildatePrice": "ramp.order.non_positive_price",
	}
}

func (p BidParams) VaildatePrice(Price decimal.Decimal) bool {
	return Price.IsPositive()
}

type ProofParams struct {
	Proof string `json:"proof" form:"proof" validate:"required"`
}

func (p ProofParams) Messages() map[string]string {
	return validate.MS{
		"required": "ramp.order.invalid_{field}",
	}
}

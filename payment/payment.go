package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/rampx/fpmath"
	"github.com/zsmartex/rampx/models"
)

var (
	ErrNotConfirmed      = errors.New("ramp.payment.not_confirmed")
	ErrAmountMismatch    = errors.New("ramp.payment.amount_mismatch")
	ErrStaleConfirmation = errors.New("ramp.payment.stale_confirmation")
	ErrUnreachable       = errors.New("ramp.payment.unreachable")
)

// AcceptedStatuses are the provider statuses that count as a completed
// transfer. Anything else, including pending, fails verification.
var AcceptedStatuses = map[string]bool{
	"SUCCESS": true,
	"SETTLED": true,
}

// Confirmation is the provider's record of one INR transfer, keyed by the
// payment reference the resolver submits as proof.
type Confirmation struct {
	Reference        string    `json:"reference"`
	AmountMinorUnits int64     `json:"amount_minor_units"`
	Status           string    `json:"status"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

// Verify checks a confirmation against the order it is claimed for: the
// transferred paise must equal the order amount at the reference rate, the
// status must be terminal-success and the transfer must postdate the
// acceptance.
func Verify(conf *Confirmation, order *models.Order, inrRate decimal.Decimal) error {
	if conf == nil || !AcceptedStatuses[conf.Status] {
		return ErrNotConfirmed
	}

	if conf.AmountMinorUnits != fpmath.INRMinorUnits(order.Amount, inrRate) {
		return ErrAmountMismatch
	}

	if !order.AcceptedAt.Valid || !conf.ConfirmedAt.After(order.AcceptedAt.Time) {
		return ErrStaleConfirmation
	}

	return nil
}

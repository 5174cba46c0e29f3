package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/rampx/types"
)

var (
	ErrInvalidAmount         = errors.New("ramp.order.invalid_amount")
	ErrInvalidPrice          = errors.New("ramp.order.invalid_price")
	ErrInvalidRecipient      = errors.New("ramp.order.invalid_recipient")
	ErrUnsupportedToken      = errors.New("ramp.order.unsupported_token")
	ErrNotAuthorizedMaker    = errors.New("ramp.order.not_authorized_maker")
	ErrNotAuthorizedResolver = errors.New("ramp.order.not_authorized_resolver")
	ErrNotAuthorizedMediator = errors.New("ramp.order.not_authorized_mediator")
	ErrOrderNotFound         = errors.New("ramp.order.not_found")
	ErrAlreadyAccepted       = errors.New("ramp.order.already_accepted")
	ErrAlreadyFulfilled      = errors.New("ramp.order.already_fulfilled")
	ErrNotYetAccepted        = errors.New("ramp.order.not_yet_accepted")
	ErrPriceOutOfRange       = errors.New("ramp.order.price_out_of_range")
	ErrInsufficientBalance   = errors.New("ramp.account.insufficient_balance")
	ErrTransferFailed        = errors.New("ramp.account.transfer_failed")

	// The two deadline conditions are side-effecting: by the time the
	// caller sees one of these, the compensating refund has already been
	// committed. They are always wrapped in a RefundedError.
	ErrOrderExpired        = errors.New("ramp.order.expired_refunded")
	ErrFulfillmentTimedOut = errors.New("ramp.order.fulfillment_timed_out")
)

// RefundedError reports that a mutating call found the order past a
// deadline and settled it with a refund instead of performing the
// requested operation. Callers must not read it as "nothing happened":
// custody has moved back to the maker.
type RefundedError struct {
	Err      error
	OrderID  int64
	Edge     types.RefundEdge
	Refunded decimal.Decimal
}

func (e *RefundedError) Error() string {
	return e.Err.Error()
}

func (e *RefundedError) Unwrap() error {
	return e.Err
}

// IsRefunded reports whether err carries a committed deadline refund.
func IsRefunded(err error) bool {
	var re *RefundedError
	return errors.As(err, &re)
}

package queries

import (
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/models"
)

type OrderFilters struct {
	Token    string `query:"token"`
	State    string `query:"state" validate:"ValidateOrderState"`
	TimeFrom int64  `query:"time_from" validate:"uint"`
	TimeTo   int64  `query:"time_to" validate:"uint"`
	OrderBy  string `query:"order_by" validate:"ValidateOrderBy"`
}

func (t OrderFilters) ValidateOrderState(val string) bool {
	switch val {
	case "", models.StateCreated, models.StateAccepted, models.StateFulfilled, models.StateExpiredRefunded, models.StateTimedOutRefunded:
		return true
	default:
		return false
	}
}

func (t OrderFilters) ValidateOrderBy(val string) bool {
	return val == "" || val == "asc" || val == "desc"
}

func (t OrderFilters) Messages() map[string]string {
	return map[string]string{
		"ValidateOrderState": "ramp.order.invalid_state",
		"ValidateOrderBy":    "ramp.order.invalid_order_by",
		"uint":               "ramp.order.invalid_{field}",
	}
}

func (t OrderFilters) Filters() ledger.OrderFilters {
	return ledger.OrderFilters{
		State:    t.State,
		TokenID:  t.Token,
		TimeFrom: t.TimeFrom,
		TimeTo:   t.TimeTo,
		OrderBy:  t.OrderBy,
	}
}

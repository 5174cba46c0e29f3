package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/rampx/fpmath"
	"github.com/zsmartex/rampx/models"
	"github.com/zsmartex/rampx/types"
)

// SettlementPolicy is the capability check for the two money-moving
// operations. It is evaluated once per call at the ledger boundary; no
// other component is trusted to accept or fulfill.
type SettlementPolicy struct{}

func (SettlementPolicy) AllowSettlement(m *models.Member) bool {
	return m != nil && m.IsMediator()
}

type Params struct {
	FeeBps             int64
	MaxOrderTime       time.Duration
	MaxFulfillmentTime time.Duration
}

// Ledger owns the order records and the custodied collateral. All custody
// movement happens in one of three ways: lock at creation, split at
// fulfillment, full refund on a deadline edge.
type Ledger struct {
	store  Store
	events EventPublisher
	policy SettlementPolicy
	params Params

	// Now is swapped for a fixed clock in tests.
	Now func() time.Time
}

func New(store Store, events EventPublisher, params Params) *Ledger {
	return &Ledger{
		store:  store,
		events: events,
		params: params,
		Now:    time.Now,
	}
}

type CreateOrderParams struct {
	TokenID    string
	Amount     decimal.Decimal
	StartPrice decimal.Decimal
	EndPrice   decimal.Decimal
	Recipient  string
}

// CreateOrder validates the order, locks the worst-case collateral from
// the maker's account and creates the record, all in one transaction. Any
// precondition failure leaves no side effect.
func (l *Ledger) CreateOrder(maker *models.Member, p CreateOrderParams) (*models.Order, error) {
	if maker == nil || !maker.IsActive() {
		return nil, ErrNotAuthorizedMaker
	}

	if !p.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if len(p.Recipient) == 0 {
		return nil, ErrInvalidRecipient
	}

	if !p.EndPrice.IsPositive() || p.StartPrice.LessThanOrEqual(p.EndPrice) {
		return nil, ErrInvalidPrice
	}

	var order *models.Order
	var pending []pendingEvent

	err := l.store.Transaction(func(tx Tx) error {
		token, err := tx.FindToken(p.TokenID)
		if err != nil {
			return err
		}

		if !token.Supported() {
			return ErrUnsupportedToken
		}

		if p.Amount.LessThan(token.MinAmount) {
			return ErrInvalidAmount
		}

		feeBps := token.FeeBpsOr(l.params.FeeBps)
		locked := fpmath.LockedAmount(p.Amount, p.EndPrice, token.Precision, feeBps)

		if !locked.IsPositive() {
			return ErrInvalidAmount
		}

		account, err := tx.AccountForUpdate(maker.ID, token.ID)
		if err != nil {
			return ErrTransferFailed
		}

		if err := account.LockFunds(locked); err != nil {
			return ErrInsufficientBalance
		}

		if err := tx.SaveAccount(account); err != nil {
			return ErrTransferFailed
		}

		order = &models.Order{
			MakerID:    maker.ID,
			TokenID:    token.ID,
			Amount:     p.Amount,
			StartPrice: p.StartPrice,
			EndPrice:   p.EndPrice,
			Locked:     locked,
			FeeBps:     feeBps,
			Recipient:  p.Recipient,
			CreatedAt:  l.Now(),
			UpdatedAt:  l.Now(),
		}

		if err := tx.CreateOrder(order); err != nil {
			return ErrTransferFailed
		}

		if err := tx.CreateLiabilities(models.LiabilityTransfer(locked, token.ID, order.Reference(), "main", "locked", maker.ID)); err != nil {
			return ErrTransferFailed
		}

		pending = append(pending, l.orderEvent("private", maker.UID, types.EventOrderCreated, order))

		return nil
	})

	if err != nil {
		return nil, err
	}

	l.publish(pending)

	return order, nil
}

// AcceptOrder commits a provisional auction win. Only the mediator may
// call it. If the order has outlived its acceptance window, the call
// commits the expiry refund instead of the acceptance and reports it as a
// RefundedError: the refund survives, the acceptance does not happen.
func (l *Ledger) AcceptOrder(caller *models.Member, orderID int64, price decimal.Decimal, takerUID string) error {
	if !l.policy.AllowSettlement(caller) {
		return ErrNotAuthorizedMediator
	}

	var pending []pendingEvent
	var refunded *RefundedError

	err := l.store.Transaction(func(tx Tx) error {
		order, err := tx.OrderForUpdate(orderID)
		if err != nil {
			return err
		}

		if !order.Accepted && order.Expired(l.Now(), l.params.MaxOrderTime) {
			// Commit the refund, then report it. Returning the error here
			// would roll the refund back.
			if err := l.refund(tx, order, types.RefundExpired, &pending); err != nil {
				return err
			}

			refunded = &RefundedError{Err: ErrOrderExpired, OrderID: order.ID, Edge: types.RefundExpired, Refunded: order.Locked}
			return nil
		}

		if order.Fulfilled {
			return ErrAlreadyFulfilled
		}

		if order.Accepted {
			return ErrAlreadyAccepted
		}

		if !order.PriceInRange(price) {
			return ErrPriceOutOfRange
		}

		taker, err := tx.MemberByUID(takerUID)
		if err != nil {
			return err
		}

		if taker == nil || !taker.IsResolver() {
			return ErrNotAuthorizedResolver
		}

		now := l.Now()
		order.Accepted = true
		order.AcceptedPrice = decimal.NewNullDecimal(price)
		order.TakerUID.String = taker.UID
		order.TakerUID.Valid = true
		order.AcceptedAt.Time = now
		order.AcceptedAt.Valid = true
		order.UpdatedAt = now

		if err := tx.SaveOrder(order); err != nil {
			return ErrTransferFailed
		}

		maker, err := tx.MemberByID(order.MakerID)
		if err != nil {
			return err
		}

		if maker != nil {
			pending = append(pending, l.orderEvent("private", maker.UID, types.EventOrderAccepted, order))
		}
		pending = append(pending, l.orderEvent("private", taker.UID, types.EventOrderAccepted, order))

		return nil
	})

	if err != nil {
		return err
	}

	l.publish(pending)

	if refunded != nil {
		return refunded
	}

	return nil
}

// FulfillOrder settles an accepted order from its payment proof. A blank
// proof or an overdue payment window triggers the timeout refund; the
// refund is recomputed from the end price with the creation-time formula
// so the released amount always equals the locked amount.
func (l *Ledger) FulfillOrder(caller *models.Member, orderID int64, proof string) error {
	if !l.policy.AllowSettlement(caller) {
		return ErrNotAuthorizedMediator
	}

	var pending []pendingEvent
	var refunded *RefundedError

	err := l.store.Transaction(func(tx Tx) error {
		order, err := tx.OrderForUpdate(orderID)
		if err != nil {
			return err
		}

		if order.Fulfilled {
			return ErrAlreadyFulfilled
		}

		if !order.Accepted {
			if order.Expired(l.Now(), l.params.MaxOrderTime) {
				if err := l.refund(tx, order, types.RefundExpired, &pending); err != nil {
					return err
				}

				refunded = &RefundedError{Err: ErrOrderExpired, OrderID: order.ID, Edge: types.RefundExpired, Refunded: order.Locked}
				return nil
			}

			return ErrNotYetAccepted
		}

		if order.FulfillmentOverdue(l.Now(), l.params.MaxFulfillmentTime) || len(proof) == 0 {
			if err := l.refund(tx, order, types.RefundTimedOut, &pending); err != nil {
				return err
			}

			refunded = &RefundedError{Err: ErrFulfillmentTimedOut, OrderID: order.ID, Edge: types.RefundTimedOut, Refunded: order.Locked}
			return nil
		}

		token, err := tx.FindToken(order.TokenID)
		if err != nil {
			return err
		}

		taker, err := tx.MemberByUID(order.TakerUID.String)
		if err != nil {
			return err
		}

		if taker == nil {
			return ErrNotAuthorizedResolver
		}

		resolverAmount := fpmath.SettlementAmount(order.Amount, order.AcceptedPrice.Decimal, token.Precision, order.FeeBps)
		remainder := order.Locked.Sub(resolverAmount)

		makerAccount, err := tx.AccountForUpdate(order.MakerID, order.TokenID)
		if err != nil {
			return ErrTransferFailed
		}

		if err := makerAccount.UnlockAndSubFunds(resolverAmount); err != nil {
			return ErrTransferFailed
		}

		if remainder.IsPositive() {
			if err := makerAccount.UnlockFunds(remainder); err != nil {
				return ErrTransferFailed
			}
		}

		if err := tx.SaveAccount(makerAccount); err != nil {
			return ErrTransferFailed
		}

		takerAccount, err := tx.AccountForUpdate(taker.ID, order.TokenID)
		if err != nil {
			return ErrTransferFailed
		}

		if err := takerAccount.PlusFunds(resolverAmount); err != nil {
			return ErrTransferFailed
		}

		if err := tx.SaveAccount(takerAccount); err != nil {
			return ErrTransferFailed
		}

		rows := []*models.Liability{
			models.LiabilityCredit(resolverAmount, order.TokenID, order.Reference(), "locked", order.MakerID),
			models.LiabilityDebit(resolverAmount, order.TokenID, order.Reference(), "main", taker.ID),
		}
		if remainder.IsPositive() {
			rows = append(rows, models.LiabilityTransfer(remainder, order.TokenID, order.Reference(), "locked", "main", order.MakerID)...)
		}
		if err := tx.CreateLiabilities(rows); err != nil {
			return ErrTransferFailed
		}

		order.Fulfilled = true
		order.Proof = proof
		order.UpdatedAt = l.Now()

		if err := tx.SaveOrder(order); err != nil {
			return ErrTransferFailed
		}

		maker, err := tx.MemberByID(order.MakerID)
		if err != nil {
			return err
		}

		if maker != nil {
			pending = append(pending, l.orderEvent("private", maker.UID, types.EventOrderFulfilled, order))
		}
		pending = append(pending, l.orderEvent("private", taker.UID, types.EventOrderFulfilled, order))

		return nil
	})

	if err != nil {
		return err
	}

	l.publish(pending)

	if refunded != nil {
		return refunded
	}

	return nil
}

// SettleExpired is the idempotent sweep entry point: it settles whichever
// deadline refund the order is due, or does nothing. Outcome is the same
// as the lazy path; the sweep only improves promptness.
func (l *Ledger) SettleExpired(orderID int64) (bool, error) {
	var pending []pendingEvent
	refunded := false

	err := l.store.Transaction(func(tx Tx) error {
		order, err := tx.OrderForUpdate(orderID)
		if err != nil {
			return err
		}

		if order.Fulfilled {
			return nil
		}

		if !order.Accepted && order.Expired(l.Now(), l.params.MaxOrderTime) {
			refunded = true
			return l.refund(tx, order, types.RefundExpired, &pending)
		}

		if order.FulfillmentOverdue(l.Now(), l.params.MaxFulfillmentTime) {
			refunded = true
			return l.refund(tx, order, types.RefundTimedOut, &pending)
		}

		return nil
	})

	if err != nil {
		return false, err
	}

	l.publish(pending)

	return refunded, nil
}

// refund releases the full locked amount back to the maker and marks the
// order fulfilled through the given edge.
func (l *Ledger) refund(tx Tx, order *models.Order, edge types.RefundEdge, pending *[]pendingEvent) error {
	account, err := tx.AccountForUpdate(order.MakerID, order.TokenID)
	if err != nil {
		return ErrTransferFailed
	}

	if err := account.UnlockFunds(order.Locked); err != nil {
		return ErrTransferFailed
	}

	if err := tx.SaveAccount(account); err != nil {
		return ErrTransferFailed
	}

	if err := tx.CreateLiabilities(models.LiabilityTransfer(order.Locked, order.TokenID, order.Reference(), "locked", "main", order.MakerID)); err != nil {
		return ErrTransferFailed
	}

	order.Fulfilled = true
	order.RefundEdge.String = edge
	order.RefundEdge.Valid = true
	order.UpdatedAt = l.Now()

	if err := tx.SaveOrder(order); err != nil {
		return ErrTransferFailed
	}

	maker, err := tx.MemberByID(order.MakerID)
	if err != nil {
		return err
	}

	if maker != nil {
		*pending = append(*pending, l.orderEvent("private", maker.UID, types.EventOrderRefunded, order))
	}

	return nil
}

func (l *Ledger) FindOrder(id int64) (*models.Order, error) {
	return l.store.FindOrder(id)
}

func (l *Ledger) OrdersByMaker(makerID int64, filters OrderFilters) ([]*models.Order, error) {
	return l.store.OrdersByMaker(makerID, filters)
}

func (l *Ledger) OrdersByTaker(takerUID string, filters OrderFilters) ([]*models.Order, error) {
	return l.store.OrdersByTaker(takerUID, filters)
}

func (l *Ledger) FindToken(id string) (*models.Token, error) {
	return l.store.FindToken(id)
}

func (l *Ledger) Tokens() ([]*models.Token, error) {
	return l.store.Tokens()
}

func (l *Ledger) DueOrders() ([]int64, error) {
	return l.store.DueOrders(l.Now(), l.params.MaxOrderTime, l.params.MaxFulfillmentTime)
}

func (l *Ledger) Params() Params {
	return l.params
}

func (l *Ledger) orderEvent(kind, uid, event string, order *models.Order) pendingEvent {
	payload, _ := json.Marshal(order.ToJSON())

	return pendingEvent{kind: kind, id: uid, event: event, payload: payload}
}

func (l *Ledger) publish(pending []pendingEvent) {
	if l.events == nil {
		return
	}

	for _, ev := range pending {
		l.events.EnqueueEvent(ev.kind, ev.id, ev.event, ev.payload)
	}
}

package mediator

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/zsmartex/rampx/auction"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/models"
)

// Ledger is the slice of the order ledger the mediator drives.
type Ledger interface {
	FindOrder(id int64) (*models.Order, error)
	AcceptOrder(caller *models.Member, orderID int64, price decimal.Decimal, takerUID string) error
	FulfillOrder(caller *models.Member, orderID int64, proof string) error
}

// Mediator is the only identity allowed to move an order through
// acceptance and fulfillment. It bridges auction outcomes and payment
// proofs into ledger settlement calls under its own member record.
type Mediator struct {
	ledger   Ledger
	identity *models.Member
}

func New(l Ledger, identity *models.Member) *Mediator {
	return &Mediator{ledger: l, identity: identity}
}

// CommitAcceptance lands an auction outcome on the order. The outcome
// price is re-checked against the current record so a stale outcome for a
// changed order is rejected instead of committed.
func (m *Mediator) CommitAcceptance(outcome auction.Outcome) error {
	order, err := m.ledger.FindOrder(outcome.OrderID)
	if err != nil {
		return err
	}

	if !order.PriceInRange(outcome.Price) {
		return ledger.ErrPriceOutOfRange
	}

	if err := m.ledger.AcceptOrder(m.identity, outcome.OrderID, outcome.Price, outcome.BidderUID); err != nil {
		if ledger.IsRefunded(err) {
			log.WithField("order_id", outcome.OrderID).Info("acceptance superseded by refund")
		}

		return err
	}

	return nil
}

// CommitFulfillment settles an accepted order from the resolver's payment
// proof. Only the resolver the order was accepted for may submit it.
func (m *Mediator) CommitFulfillment(orderID int64, proof, submitterUID string) error {
	order, err := m.ledger.FindOrder(orderID)
	if err != nil {
		return err
	}

	if !order.TakerUID.Valid || order.TakerUID.String != submitterUID {
		return ledger.ErrNotAuthorizedResolver
	}

	return m.ledger.FulfillOrder(m.identity, orderID, proof)
}

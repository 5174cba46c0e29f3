package engines

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/zsmartex/rampx/auction"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/mediator"
	"github.com/zsmartex/rampx/types"
)

// SettlementWorker consumes the settlement queue and drives the mediator:
// accept messages land auction outcomes, fulfill messages settle verified
// payment proofs.
type SettlementWorker struct {
	Mediator *mediator.Mediator
}

func NewSettlementWorker(m *mediator.Mediator) *SettlementWorker {
	return &SettlementWorker{Mediator: m}
}

func (w *SettlementWorker) Process(payload []byte) error {
	var settlement_payload types.SettlementPayloadMessage
	if err := json.Unmarshal(payload, &settlement_payload); err != nil {
		log.Errorf("invalid settlement payload: %v", err)
		return nil
	}

	switch settlement_payload.Action {
	case types.ActionAccept:
		return w.Accept(settlement_payload)
	case types.ActionFulfill:
		return w.Fulfill(settlement_payload)
	default:
		log.Errorf("unknown settlement action: %s", settlement_payload.Action)
	}

	return nil
}

func (w *SettlementWorker) Accept(payload types.SettlementPayloadMessage) error {
	err := w.Mediator.CommitAcceptance(auction.Outcome{
		OrderID:   payload.OrderID,
		Price:     payload.Price,
		BidderUID: payload.TakerUID,
		Outcome:   types.OutcomeWon,
	})
	if err != nil {
		if ledger.IsRefunded(err) {
			return nil
		}

		log.WithError(err).Errorf("acceptance failed for order %d", payload.OrderID)
	}

	return nil
}

func (w *SettlementWorker) Fulfill(payload types.SettlementPayloadMessage) error {
	err := w.Mediator.CommitFulfillment(payload.OrderID, payload.Proof, payload.SubmitterUID)
	if err != nil {
		if ledger.IsRefunded(err) {
			return nil
		}

		log.WithError(err).Errorf("fulfillment failed for order %d", payload.OrderID)
	}

	return nil
}

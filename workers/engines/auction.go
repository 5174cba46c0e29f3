package engines

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/zsmartex/rampx/auction"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/types"
)

// AuctionWorker consumes the auction queue: start requests open a
// descending-price auction for an order, bid requests race to win it.
type AuctionWorker struct {
	Coordinator *auction.Coordinator
	Ledger      *ledger.Ledger
}

func NewAuctionWorker(coordinator *auction.Coordinator, l *ledger.Ledger) *AuctionWorker {
	return &AuctionWorker{
		Coordinator: coordinator,
		Ledger:      l,
	}
}

func (w *AuctionWorker) Process(payload []byte) error {
	var auction_payload types.AuctionPayloadMessage
	if err := json.Unmarshal(payload, &auction_payload); err != nil {
		log.Errorf("invalid auction payload: %v", err)
		return nil
	}

	switch auction_payload.Action {
	case types.ActionStart:
		return w.StartAuction(auction_payload.OrderID)
	case types.ActionBid:
		return w.SubmitBid(auction_payload)
	default:
		log.Errorf("unknown auction action: %s", auction_payload.Action)
	}

	return nil
}

func (w *AuctionWorker) StartAuction(orderID int64) error {
	order, err := w.Ledger.FindOrder(orderID)
	if err != nil {
		log.WithError(err).Errorf("auction start for unknown order %d", orderID)
		return nil
	}

	if order.Accepted || order.Fulfilled {
		return nil
	}

	if _, err := w.Coordinator.StartAuction(order.ID, order.StartPrice, order.EndPrice); err != nil {
		log.WithError(err).Errorf("auction start for order %d", orderID)
	}

	return nil
}

func (w *AuctionWorker) SubmitBid(payload types.AuctionPayloadMessage) error {
	_, err := w.Coordinator.SubmitBid(payload.OrderID, payload.BidderUID, payload.Price)
	if err != nil {
		// Losing or malformed bids are terminal for the message, not the
		// queue.
		log.WithError(err).Infof("bid rejected for order %d", payload.OrderID)
	}

	return nil
}

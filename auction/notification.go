package auction

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/zsmartex/rampx/config"
	"github.com/zsmartex/rampx/controllers/entities"
	"github.com/zsmartex/rampx/mq_client"
)

// StreamNotifier fans ticks and outcomes out to the event stream, keeps
// the latest tick in redis for the status API and appends tick history to
// influx. Every sink is best effort; a slow or absent sink never blocks
// the auction.
type StreamNotifier struct{}

func (StreamNotifier) PublishTick(tick Tick) {
	payload, err := json.Marshal(tick)
	if err != nil {
		return
	}

	mq_client.EnqueueEvent("public", "auction", "tick", payload)

	if config.Redis != nil {
		config.Redis.SetKey("rampx:auction:"+strconv.FormatInt(tick.OrderID, 10), tick, time.Minute)
	}

	if config.InfluxDB != nil {
		price, _ := tick.Price.Float64()
		progress, _ := tick.Progress.Float64()
		config.InfluxDB.NewPoint(
			"auction_ticks",
			map[string]string{"order_id": strconv.FormatInt(tick.OrderID, 10)},
			map[string]interface{}{"price": price, "progress_percent": progress, "remaining_ms": tick.Remaining},
		)
	}
}

func (StreamNotifier) PublishOutcome(outcome Outcome) {
	payload, err := json.Marshal(entities.AuctionOutcomeEntity{
		OrderID: outcome.OrderID,
		Outcome: outcome.Outcome,
		Price:   outcome.Price,
	})
	if err != nil {
		return
	}

	mq_client.EnqueueEvent("public", "auction", "outcome", payload)
	mq_client.EnqueueEvent("private", outcome.BidderUID, "auction_"+outcome.Outcome, payload)
}

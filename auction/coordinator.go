package auction

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SettlementHandler commits a terminal auction outcome into the order
// records. The coordinator calls it exactly once per auction.
type SettlementHandler interface {
	CommitAcceptance(outcome Outcome) error
}

// Notifier fans auction progress out to subscribers. Implementations must
// tolerate being called from the coordinator's goroutines.
type Notifier interface {
	PublishTick(tick Tick)
	PublishOutcome(outcome Outcome)
}

type Tick struct {
	OrderID   int64           `json:"order_id"`
	Price     decimal.Decimal `json:"price"`
	Progress  decimal.Decimal `json:"progress_percent"`
	At        time.Time       `json:"at"`
	Remaining int64           `json:"remaining_ms"`
}

type deadlineKey struct {
	at      time.Time
	orderID int64
}

func deadlineComparator(a, b interface{}) int {
	ka := a.(deadlineKey)
	kb := b.(deadlineKey)

	switch {
	case ka.at.Before(kb.at):
		return -1
	case ka.at.After(kb.at):
		return 1
	case ka.orderID < kb.orderID:
		return -1
	case ka.orderID > kb.orderID:
		return 1
	default:
		return 0
	}
}

// Coordinator runs all live auctions. Engines are indexed by order id for
// bids and by deadline in a red-black tree so the janitor only ever
// inspects the earliest expiry.
type Coordinator struct {
	mu        sync.Mutex
	engines   map[int64]*Engine
	deadlines *redblacktree.Tree

	handler      SettlementHandler
	notifier     Notifier
	duration     time.Duration
	tickInterval time.Duration
	fallbackUID  string

	stopOnce sync.Once
	stop     chan struct{}

	Now func() time.Time
}

func NewCoordinator(handler SettlementHandler, notifier Notifier, duration, tickInterval time.Duration, fallbackUID string) *Coordinator {
	return &Coordinator{
		engines:      make(map[int64]*Engine),
		deadlines:    redblacktree.NewWith(deadlineComparator),
		handler:      handler,
		notifier:     notifier,
		duration:     duration,
		tickInterval: tickInterval,
		fallbackUID:  fallbackUID,
		stop:         make(chan struct{}),
		Now:          time.Now,
	}
}

// StartAuction opens a descending-price auction for the order. At most one
// auction per order may be live.
func (c *Coordinator) StartAuction(orderID int64, startPrice, endPrice decimal.Decimal) (*Engine, error) {
	// The curve divides by the duration in milliseconds.
	if c.duration < time.Millisecond {
		return nil, ErrInvalidDuration
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.engines[orderID]; ok {
		return nil, ErrAuctionExists
	}

	engine := NewEngine(orderID, startPrice, endPrice, c.duration, c.Now())
	c.engines[orderID] = engine
	c.deadlines.Put(deadlineKey{at: engine.Deadline(), orderID: orderID}, engine)

	log.WithFields(log.Fields{
		"order_id":    orderID,
		"start_price": startPrice.String(),
		"end_price":   endPrice.String(),
	}).Info("auction started")

	return engine, nil
}

func (c *Coordinator) Engine(orderID int64) (*Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	engine, ok := c.engines[orderID]

	return engine, ok
}

// SubmitBid routes a bid to the live auction and, on a win, commits the
// acceptance synchronously so the bidder's ack means the order record
// already carries the acceptance.
func (c *Coordinator) SubmitBid(orderID int64, bidderUID string, price decimal.Decimal) (Outcome, error) {
	c.mu.Lock()
	engine, ok := c.engines[orderID]
	c.mu.Unlock()

	if !ok {
		return Outcome{}, ErrAuctionNotFound
	}

	outcome, err := engine.SubmitBid(bidderUID, price, c.Now())
	if err != nil {
		return Outcome{}, err
	}

	c.remove(engine)

	if err := c.handler.CommitAcceptance(outcome); err != nil {
		log.WithError(err).WithField("order_id", orderID).Error("acceptance commit failed")

		return Outcome{}, err
	}

	if c.notifier != nil {
		c.notifier.PublishOutcome(outcome)
	}

	return outcome, nil
}

// Run drives ticks and deadline expiry until Stop. Expired auctions fall
// back to the designated resolver at the end price through the same
// settlement path a bid takes.
func (c *Coordinator) Run() {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.Now()
			c.expireDue(now)
			c.publishTicks(now)
		}
	}
}

func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Coordinator) expireDue(now time.Time) {
	for {
		c.mu.Lock()
		node := c.deadlines.Left()
		if node == nil || node.Key.(deadlineKey).at.After(now) {
			c.mu.Unlock()
			return
		}
		engine := node.Value.(*Engine)
		c.deadlines.Remove(node.Key)
		delete(c.engines, engine.OrderID)
		c.mu.Unlock()

		outcome, ok := engine.Expire(c.fallbackUID)
		if !ok {
			continue
		}

		if err := c.handler.CommitAcceptance(outcome); err != nil {
			log.WithError(err).WithField("order_id", engine.OrderID).Error("fallback commit failed")

			continue
		}

		if c.notifier != nil {
			c.notifier.PublishOutcome(outcome)
		}
	}
}

func (c *Coordinator) publishTicks(now time.Time) {
	if c.notifier == nil {
		return
	}

	c.mu.Lock()
	engines := make([]*Engine, 0, len(c.engines))
	for _, engine := range c.engines {
		engines = append(engines, engine)
	}
	c.mu.Unlock()

	for _, engine := range engines {
		if engine.State() != StateRunning {
			continue
		}

		c.notifier.PublishTick(Tick{
			OrderID:   engine.OrderID,
			Price:     engine.PriceAt(now),
			Progress:  engine.ProgressAt(now).Mul(decimal.NewFromInt(100)),
			At:        now,
			Remaining: engine.TimeRemaining(now).Milliseconds(),
		})
	}
}

func (c *Coordinator) remove(engine *Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deadlines.Remove(deadlineKey{at: engine.Deadline(), orderID: engine.OrderID})
	delete(c.engines, engine.OrderID)
}

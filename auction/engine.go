package auction

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/rampx/types"
)

var (
	ErrAuctionExists    = errors.New("ramp.auction.exists")
	ErrAuctionNotFound  = errors.New("ramp.auction.not_found")
	ErrAuctionNotActive = errors.New("ramp.auction.not_active")
	ErrBidOutOfRange    = errors.New("ramp.auction.bid_out_of_range")
	ErrInvalidDuration  = errors.New("ramp.auction.invalid_duration")
)

type State int

const (
	StateRunning State = iota
	StateWon
	StateTimedOut
)

// Outcome is the single terminal result of an auction. Exactly one is
// produced per engine, either from the winning bid or from the deadline.
type Outcome struct {
	OrderID   int64
	Price     decimal.Decimal
	BidderUID string
	Outcome   types.AuctionOutcome
}

// Engine runs one descending-price auction. The price is a pure function
// of elapsed time; the only guarded state is the running/terminal flag, so
// concurrent bids serialize on one mutex and at most one can win.
type Engine struct {
	OrderID    int64
	StartPrice decimal.Decimal
	EndPrice   decimal.Decimal
	Duration   time.Duration
	StartedAt  time.Time

	mu      sync.Mutex
	state   State
	outcome Outcome
}

func NewEngine(orderID int64, startPrice, endPrice decimal.Decimal, duration time.Duration, startedAt time.Time) *Engine {
	return &Engine{
		OrderID:    orderID,
		StartPrice: startPrice,
		EndPrice:   endPrice,
		Duration:   duration,
		StartedAt:  startedAt,
		state:      StateRunning,
	}
}

func (e *Engine) Deadline() time.Time {
	return e.StartedAt.Add(e.Duration)
}

// PriceAt evaluates the curve at t, clamped to [EndPrice, StartPrice].
func (e *Engine) PriceAt(t time.Time) decimal.Decimal {
	elapsed := t.Sub(e.StartedAt)
	if elapsed <= 0 {
		return e.StartPrice
	}
	if elapsed >= e.Duration {
		return e.EndPrice
	}

	drop := e.StartPrice.Sub(e.EndPrice).
		Mul(decimal.NewFromInt(elapsed.Milliseconds())).
		Div(decimal.NewFromInt(e.Duration.Milliseconds()))

	return e.StartPrice.Sub(drop)
}

// ProgressAt reports how far along the curve the auction is at t, from 0
// to 1.
func (e *Engine) ProgressAt(t time.Time) decimal.Decimal {
	elapsed := t.Sub(e.StartedAt)
	if elapsed <= 0 {
		return decimal.Zero
	}
	if elapsed >= e.Duration {
		return decimal.NewFromInt(1)
	}

	return decimal.NewFromInt(elapsed.Milliseconds()).Div(decimal.NewFromInt(e.Duration.Milliseconds()))
}

func (e *Engine) TimeRemaining(t time.Time) time.Duration {
	remaining := e.Deadline().Sub(t)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// SubmitBid attempts to win the auction at the given price. A bid is
// valid anywhere in [EndPrice, StartPrice], not just at or above the
// current curve price. The first valid bid transitions the engine to won;
// everything after it is rejected with ErrAuctionNotActive regardless of
// price.
func (e *Engine) SubmitBid(bidderUID string, price decimal.Decimal, at time.Time) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return Outcome{}, ErrAuctionNotActive
	}

	// Past the deadline the fallback outcome belongs to Expire; the late
	// bid is only rejected here.
	if !at.Before(e.Deadline()) {
		return Outcome{}, ErrAuctionNotActive
	}

	if price.LessThan(e.EndPrice) || price.GreaterThan(e.StartPrice) {
		return Outcome{}, ErrBidOutOfRange
	}

	e.state = StateWon
	e.outcome = Outcome{
		OrderID:   e.OrderID,
		Price:     price,
		BidderUID: bidderUID,
		Outcome:   types.OutcomeWon,
	}

	return e.outcome, nil
}

// Expire closes the auction at the deadline without a winner. The fallback
// resolver takes the order at the end price.
func (e *Engine) Expire(fallbackUID string) (Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return e.outcome, false
	}

	e.state = StateTimedOut
	e.outcome = Outcome{
		OrderID:   e.OrderID,
		Price:     e.EndPrice,
		BidderUID: fallbackUID,
		Outcome:   types.OutcomeTimedOut,
	}

	return e.outcome, true
}

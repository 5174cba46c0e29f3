package types

import "github.com/shopspring/decimal"

type PayloadAction = string

var (
	ActionStart   PayloadAction = "start"
	ActionBid     PayloadAction = "bid"
	ActionAccept  PayloadAction = "accept"
	ActionFulfill PayloadAction = "fulfill"
)

type OrderEvent = string

var (
	EventOrderCreated   OrderEvent = "order_created"
	EventOrderAccepted  OrderEvent = "order_accepted"
	EventOrderFulfilled OrderEvent = "order_fulfilled"
	EventOrderRefunded  OrderEvent = "order_refunded"
)

type AuctionOutcome = string

var (
	OutcomeWon      AuctionOutcome = "won"
	OutcomeTimedOut AuctionOutcome = "timed_out"
)

type RefundEdge = string

var (
	RefundExpired  RefundEdge = "expired"
	RefundTimedOut RefundEdge = "timed_out"
)

type MemberRole = string

var (
	RoleMaker    MemberRole = "maker"
	RoleResolver MemberRole = "resolver"
	RoleMediator MemberRole = "mediator"
)

// AuctionPayloadMessage is the wire payload on the auction queue.
type AuctionPayloadMessage struct {
	Action     PayloadAction   `json:"action"`
	OrderID    int64           `json:"order_id"`
	StartPrice decimal.Decimal `json:"start_price"`
	EndPrice   decimal.Decimal `json:"end_price"`
	Price      decimal.Decimal `json:"price"`
	BidderUID  string          `json:"bidder_uid"`
}

// SettlementPayloadMessage is the wire payload on the settlement queue.
type SettlementPayloadMessage struct {
	Action       PayloadAction   `json:"action"`
	OrderID      int64           `json:"order_id"`
	Price        decimal.Decimal `json:"price"`
	TakerUID     string          `json:"taker_uid"`
	Proof        string          `json:"proof"`
	SubmitterUID string          `json:"submitter_uid"`
}

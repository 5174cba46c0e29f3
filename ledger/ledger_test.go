package ledger

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zsmartex/rampx/models"
	"github.com/zsmartex/rampx/types"
)

type memStore struct {
	orders      map[int64]*models.Order
	tokens      map[string]*models.Token
	members     map[string]*models.Member
	accounts    map[string]*models.Account
	liabilities []*models.Liability

	nextOrderID int64
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[int64]*models.Order),
		tokens:   make(map[string]*models.Token),
		members:  make(map[string]*models.Member),
		accounts: make(map[string]*models.Account),
	}
}

func (m *memStore) Transaction(fn func(tx Tx) error) error {
	return fn(m)
}

func (m *memStore) FindOrder(id int64) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (m *memStore) OrdersByMaker(makerID int64, filters OrderFilters) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	for _, order := range m.orders {
		if order.MakerID == makerID {
			orders = append(orders, order)
		}
	}

	return orders, nil
}

func (m *memStore) OrdersByTaker(takerUID string, filters OrderFilters) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	for _, order := range m.orders {
		if order.TakerUID.Valid && order.TakerUID.String == takerUID {
			orders = append(orders, order)
		}
	}

	return orders, nil
}

func (m *memStore) FindToken(id string) (*models.Token, error) {
	token, ok := m.tokens[id]
	if !ok {
		return nil, ErrUnsupportedToken
	}

	return token, nil
}

func (m *memStore) Tokens() ([]*models.Token, error) {
	tokens := make([]*models.Token, 0)
	for _, token := range m.tokens {
		if token.Enabled {
			tokens = append(tokens, token)
		}
	}

	return tokens, nil
}

func (m *memStore) MemberByUID(uid string) (*models.Member, error) {
	return m.members[uid], nil
}

func (m *memStore) MemberByID(id int64) (*models.Member, error) {
	for _, member := range m.members {
		if member.ID == id {
			return member, nil
		}
	}

	return nil, nil
}

func (m *memStore) Account(memberID int64, tokenID string) (*models.Account, error) {
	return m.AccountForUpdate(memberID, tokenID)
}

func (m *memStore) DueOrders(now time.Time, maxOrderTime, maxFulfillmentTime time.Duration) ([]int64, error) {
	ids := make([]int64, 0)
	for _, order := range m.orders {
		if order.Fulfilled {
			continue
		}

		if !order.Accepted && order.Expired(now, maxOrderTime) {
			ids = append(ids, order.ID)
		} else if order.FulfillmentOverdue(now, maxFulfillmentTime) {
			ids = append(ids, order.ID)
		}
	}

	return ids, nil
}

func (m *memStore) OrderForUpdate(id int64) (*models.Order, error) {
	return m.FindOrder(id)
}

func (m *memStore) CreateOrder(o *models.Order) error {
	m.nextOrderID++
	o.ID = m.nextOrderID
	m.orders[o.ID] = o

	return nil
}

func (m *memStore) SaveOrder(o *models.Order) error {
	m.orders[o.ID] = o

	return nil
}

func (m *memStore) AccountForUpdate(memberID int64, tokenID string) (*models.Account, error) {
	key := tokenID + "/" + strconv.FormatInt(memberID, 10)
	account, ok := m.accounts[key]
	if !ok {
		account = &models.Account{MemberID: memberID, TokenID: tokenID}
		m.accounts[key] = account
	}

	return account, nil
}

func (m *memStore) SaveAccount(a *models.Account) error {
	return nil
}

func (m *memStore) CreateLiabilities(rows []*models.Liability) error {
	m.liabilities = append(m.liabilities, rows...)

	return nil
}

type eventRecorder struct {
	events []string
}

func (r *eventRecorder) EnqueueEvent(kind string, id string, event string, payload []byte) error {
	r.events = append(r.events, kind+"/"+id+"/"+event)

	return nil
}

type ledgerFixture struct {
	store  *memStore
	events *eventRecorder
	ledger *Ledger
	now    time.Time

	maker    *models.Member
	resolver *models.Member
	mediator *models.Member
}

func newFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := newMemStore()
	events := &eventRecorder{}

	f := &ledgerFixture{
		store:  store,
		events: events,
		now:    time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	f.ledger = New(store, events, Params{
		FeeBps:             100,
		MaxOrderTime:       30 * time.Minute,
		MaxFulfillmentTime: 15 * time.Minute,
	})
	f.ledger.Now = func() time.Time { return f.now }

	store.tokens["usdt"] = &models.Token{
		ID:        "usdt",
		Name:      "Tether",
		Precision: 6,
		Enabled:   true,
	}

	f.maker = &models.Member{ID: 1, UID: "MK001", Role: types.RoleMaker, State: "active"}
	f.resolver = &models.Member{ID: 2, UID: "R001", Role: types.RoleResolver, State: "active"}
	f.mediator = &models.Member{ID: 3, UID: "MD001", Role: types.RoleMediator, State: "active"}

	store.members["MK001"] = f.maker
	store.members["R001"] = f.resolver
	store.members["MD001"] = f.mediator

	return f
}

func (f *ledgerFixture) fund(member *models.Member, amount int64) {
	account, _ := f.store.AccountForUpdate(member.ID, "usdt")
	account.Balance = decimal.NewFromInt(amount)
}

func (f *ledgerFixture) account(member *models.Member) *models.Account {
	account, _ := f.store.AccountForUpdate(member.ID, "usdt")

	return account
}

func (f *ledgerFixture) createOrder(t *testing.T) *models.Order {
	t.Helper()

	order, err := f.ledger.CreateOrder(f.maker, CreateOrderParams{
		TokenID:    "usdt",
		Amount:     decimal.NewFromInt(100),
		StartPrice: decimal.NewFromInt(100),
		EndPrice:   decimal.NewFromInt(50),
		Recipient:  "upi://maker@bank",
	})
	assert.NoError(t, err)

	return order
}

func TestCreateOrderLocksWorstCaseCollateral(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)

	order := f.createOrder(t)

	// floor(100 * 10^6 / 50) = 2_000_000, plus 1% fee.
	assert.True(t, order.Locked.Equal(decimal.NewFromInt(2_020_000)))
	assert.Equal(t, models.StateCreated, order.State())

	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(980_000)))
	assert.True(t, account.Locked.Equal(decimal.NewFromInt(2_020_000)))

	assert.Len(t, f.store.liabilities, 2)
	assert.Equal(t, []string{"private/MK001/order_created"}, f.events.events)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)

	params := CreateOrderParams{
		TokenID:    "usdt",
		Amount:     decimal.NewFromInt(100),
		StartPrice: decimal.NewFromInt(100),
		EndPrice:   decimal.NewFromInt(50),
		Recipient:  "upi://maker@bank",
	}

	inactive := &models.Member{ID: 9, UID: "MK009", Role: types.RoleMaker, State: "banned"}
	_, err := f.ledger.CreateOrder(inactive, params)
	assert.ErrorIs(t, err, ErrNotAuthorizedMaker)

	bad := params
	bad.Amount = decimal.Zero
	_, err = f.ledger.CreateOrder(f.maker, bad)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	bad = params
	bad.Recipient = ""
	_, err = f.ledger.CreateOrder(f.maker, bad)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	bad = params
	bad.StartPrice = decimal.NewFromInt(50)
	_, err = f.ledger.CreateOrder(f.maker, bad)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	bad = params
	bad.TokenID = "doge"
	_, err = f.ledger.CreateOrder(f.maker, bad)
	assert.ErrorIs(t, err, ErrUnsupportedToken)

	// The failed attempts must leave no side effects.
	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(3_000_000)))
	assert.True(t, account.Locked.IsZero())
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.events.events)
}

func TestCreateOrderInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 2_000_000)

	_, err := f.ledger.CreateOrder(f.maker, CreateOrderParams{
		TokenID:    "usdt",
		Amount:     decimal.NewFromInt(100),
		StartPrice: decimal.NewFromInt(100),
		EndPrice:   decimal.NewFromInt(50),
		Recipient:  "upi://maker@bank",
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(2_000_000)))
	assert.True(t, account.Locked.IsZero())
}

func TestAcceptOrder(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	f.now = f.now.Add(time.Minute)

	err := f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001")
	assert.NoError(t, err)

	assert.Equal(t, models.StateAccepted, order.State())
	assert.True(t, order.AcceptedPrice.Decimal.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, "R001", order.TakerUID.String)
	assert.Equal(t, f.now, order.AcceptedAt.Time)

	// Custody does not move at acceptance.
	account := f.account(f.maker)
	assert.True(t, account.Locked.Equal(decimal.NewFromInt(2_020_000)))
}

func TestAcceptOrderAuthorization(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	err := f.ledger.AcceptOrder(f.resolver, order.ID, decimal.NewFromInt(75), "R001")
	assert.ErrorIs(t, err, ErrNotAuthorizedMediator)

	err = f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "MK001")
	assert.ErrorIs(t, err, ErrNotAuthorizedResolver)

	assert.Equal(t, models.StateCreated, order.State())
}

func TestAcceptOrderPriceBounds(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	err := f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(49), "R001")
	assert.ErrorIs(t, err, ErrPriceOutOfRange)

	err = f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(101), "R001")
	assert.ErrorIs(t, err, ErrPriceOutOfRange)

	err = f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(50), "R001")
	assert.NoError(t, err)
}

func TestAcceptOrderImmutableOnceAccepted(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001"))

	err := f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(80), "R001")
	assert.ErrorIs(t, err, ErrAlreadyAccepted)
	assert.True(t, order.AcceptedPrice.Decimal.Equal(decimal.NewFromInt(75)))
}

func TestAcceptExpiredOrderRefunds(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	f.now = f.now.Add(31 * time.Minute)

	err := f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001")
	assert.True(t, IsRefunded(err))
	assert.ErrorIs(t, err, ErrOrderExpired)

	assert.Equal(t, models.StateExpiredRefunded, order.State())
	assert.False(t, order.Accepted)

	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(3_000_000)))
	assert.True(t, account.Locked.IsZero())

	assert.Contains(t, f.events.events, "private/MK001/order_refunded")
}

func TestFulfillOrderSplitsCollateral(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001"))
	assert.NoError(t, f.ledger.FulfillOrder(f.mediator, order.ID, "pay-ref-123"))

	assert.Equal(t, models.StateFulfilled, order.State())
	assert.Equal(t, "pay-ref-123", order.Proof)

	// floor(100 * 10^6 / 75) = 1_333_333, plus 1% fee 13_333.
	maker := f.account(f.maker)
	taker := f.account(f.resolver)

	assert.True(t, taker.Balance.Equal(decimal.NewFromInt(1_346_666)))
	assert.True(t, maker.Balance.Equal(decimal.NewFromInt(1_653_334)))
	assert.True(t, maker.Locked.IsZero())

	// Conservation: nothing minted, nothing destroyed.
	total := maker.Amount().Add(taker.Amount())
	assert.True(t, total.Equal(decimal.NewFromInt(3_000_000)))

	assert.Contains(t, f.events.events, "private/MK001/order_fulfilled")
	assert.Contains(t, f.events.events, "private/R001/order_fulfilled")
}

func TestFulfillOrderAtFloorReleasesEverything(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(50), "R001"))
	assert.NoError(t, f.ledger.FulfillOrder(f.mediator, order.ID, "pay-ref-123"))

	maker := f.account(f.maker)
	taker := f.account(f.resolver)

	// At the floor price the settlement equals the lock, no remainder.
	assert.True(t, taker.Balance.Equal(decimal.NewFromInt(2_020_000)))
	assert.True(t, maker.Balance.Equal(decimal.NewFromInt(980_000)))
	assert.True(t, maker.Locked.IsZero())
}

func TestFulfillOrderRequiresAcceptance(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	err := f.ledger.FulfillOrder(f.mediator, order.ID, "pay-ref-123")
	assert.ErrorIs(t, err, ErrNotYetAccepted)
}

func TestFulfillOrderEmptyProofRefunds(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001"))

	err := f.ledger.FulfillOrder(f.mediator, order.ID, "")
	assert.True(t, IsRefunded(err))
	assert.ErrorIs(t, err, ErrFulfillmentTimedOut)

	assert.Equal(t, models.StateTimedOutRefunded, order.State())

	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(3_000_000)))
	assert.True(t, account.Locked.IsZero())
}

func TestFulfillOrderOverdueRefunds(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001"))

	f.now = f.now.Add(16 * time.Minute)

	err := f.ledger.FulfillOrder(f.mediator, order.ID, "pay-ref-123")
	assert.True(t, IsRefunded(err))

	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(3_000_000)))
	assert.True(t, account.Locked.IsZero())

	taker := f.account(f.resolver)
	assert.True(t, taker.Balance.IsZero())
}

func TestFulfillOrderTerminal(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001"))
	assert.NoError(t, f.ledger.FulfillOrder(f.mediator, order.ID, "pay-ref-123"))

	err := f.ledger.FulfillOrder(f.mediator, order.ID, "pay-ref-456")
	assert.ErrorIs(t, err, ErrAlreadyFulfilled)
	assert.Equal(t, "pay-ref-123", order.Proof)

	err = f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(80), "R001")
	assert.ErrorIs(t, err, ErrAlreadyFulfilled)
}

func TestSettleExpiredSweep(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	refunded, err := f.ledger.SettleExpired(order.ID)
	assert.NoError(t, err)
	assert.False(t, refunded)

	f.now = f.now.Add(31 * time.Minute)

	ids, err := f.ledger.DueOrders()
	assert.NoError(t, err)
	assert.Equal(t, []int64{order.ID}, ids)

	refunded, err = f.ledger.SettleExpired(order.ID)
	assert.NoError(t, err)
	assert.True(t, refunded)
	assert.Equal(t, models.StateExpiredRefunded, order.State())

	// Second sweep is a no-op.
	refunded, err = f.ledger.SettleExpired(order.ID)
	assert.NoError(t, err)
	assert.False(t, refunded)

	account := f.account(f.maker)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(3_000_000)))
}

func TestSettleExpiredSweepAfterAcceptance(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	assert.NoError(t, f.ledger.AcceptOrder(f.mediator, order.ID, decimal.NewFromInt(75), "R001"))

	// Acceptance holds past the order window; only the payment window
	// counts now.
	f.now = f.now.Add(31 * time.Minute)

	refunded, err := f.ledger.SettleExpired(order.ID)
	assert.NoError(t, err)
	assert.True(t, refunded)
	assert.Equal(t, models.StateTimedOutRefunded, order.State())
}

func TestRefundLiabilitiesBalance(t *testing.T) {
	f := newFixture(t)
	f.fund(f.maker, 3_000_000)
	order := f.createOrder(t)

	f.now = f.now.Add(31 * time.Minute)

	_, err := f.ledger.SettleExpired(order.ID)
	assert.NoError(t, err)

	// Per kind, debits equal credits across the order's life.
	perKind := map[string]decimal.Decimal{}
	for _, row := range f.store.liabilities {
		sum, ok := perKind[row.Kind]
		if !ok {
			sum = decimal.Zero
		}
		perKind[row.Kind] = sum.Add(row.Debit).Sub(row.Credit)
	}

	assert.True(t, perKind["main"].IsZero())
	assert.True(t, perKind["locked"].IsZero())
}

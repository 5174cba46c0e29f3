package ledger

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zsmartex/rampx/models"
)

// Store is the ledger's state container. The gorm implementation below is
// the authoritative one; tests substitute an in-memory store so the
// settlement arithmetic and state machine are exercised without postgres.
type Store interface {
	Transaction(fn func(tx Tx) error) error

	FindOrder(id int64) (*models.Order, error)
	OrdersByMaker(makerID int64, filters OrderFilters) ([]*models.Order, error)
	OrdersByTaker(takerUID string, filters OrderFilters) ([]*models.Order, error)
	FindToken(id string) (*models.Token, error)
	Tokens() ([]*models.Token, error)
	MemberByUID(uid string) (*models.Member, error)
	Account(memberID int64, tokenID string) (*models.Account, error)
	DueOrders(now time.Time, maxOrderTime, maxFulfillmentTime time.Duration) ([]int64, error)
}

// Tx is the mutating view inside one serialized transaction. Order and
// account reads take row locks so concurrent settlement attempts for the
// same order line up behind each other.
type Tx interface {
	OrderForUpdate(id int64) (*models.Order, error)
	CreateOrder(o *models.Order) error
	SaveOrder(o *models.Order) error
	FindToken(id string) (*models.Token, error)
	MemberByUID(uid string) (*models.Member, error)
	MemberByID(id int64) (*models.Member, error)
	AccountForUpdate(memberID int64, tokenID string) (*models.Account, error)
	SaveAccount(a *models.Account) error
	CreateLiabilities(rows []*models.Liability) error
}

type OrderFilters struct {
	State    string
	TokenID  string
	TimeFrom int64
	TimeTo   int64
	OrderBy  string
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(fn func(tx Tx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *GormStore) FindOrder(id int64) (*models.Order, error) {
	var order *models.Order

	result := s.db.Where("id = ?", id).First(&order)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}

	return order, result.Error
}

func (s *GormStore) ordersWhere(tx *gorm.DB, filters OrderFilters) ([]*models.Order, error) {
	if len(filters.OrderBy) == 0 {
		filters.OrderBy = "desc"
	}

	tx = tx.Order("updated_at " + filters.OrderBy)

	if len(filters.TokenID) > 0 {
		tx = tx.Where("token_id = ?", filters.TokenID)
	}

	if filters.TimeFrom > 0 {
		tx = tx.Where("created_at >= ?", time.Unix(filters.TimeFrom, 0))
	}

	if filters.TimeTo > 0 {
		tx = tx.Where("created_at < ?", time.Unix(filters.TimeTo, 0))
	}

	switch filters.State {
	case models.StateCreated:
		tx = tx.Where("accepted = ? AND fulfilled = ?", false, false)
	case models.StateAccepted:
		tx = tx.Where("accepted = ? AND fulfilled = ?", true, false)
	case models.StateFulfilled:
		tx = tx.Where("fulfilled = ? AND refund_edge IS NULL", true)
	case models.StateExpiredRefunded, models.StateTimedOutRefunded:
		edge := "expired"
		if filters.State == models.StateTimedOutRefunded {
			edge = "timed_out"
		}
		tx = tx.Where("fulfilled = ? AND refund_edge = ?", true, edge)
	}

	var orders []*models.Order
	result := tx.Find(&orders)

	return orders, result.Error
}

func (s *GormStore) OrdersByMaker(makerID int64, filters OrderFilters) ([]*models.Order, error) {
	return s.ordersWhere(s.db.Where("maker_id = ?", makerID), filters)
}

func (s *GormStore) OrdersByTaker(takerUID string, filters OrderFilters) ([]*models.Order, error) {
	return s.ordersWhere(s.db.Where("taker_uid = ?", takerUID), filters)
}

func (s *GormStore) FindToken(id string) (*models.Token, error) {
	return findToken(s.db, id)
}

func (s *GormStore) Tokens() ([]*models.Token, error) {
	var tokens []*models.Token

	result := s.db.Where("enabled = ?", true).Order("id asc").Find(&tokens)

	return tokens, result.Error
}

func (s *GormStore) MemberByUID(uid string) (*models.Member, error) {
	return memberByUID(s.db, uid)
}

func (s *GormStore) Account(memberID int64, tokenID string) (*models.Account, error) {
	var account *models.Account

	result := s.db.Where("member_id = ? AND token_id = ?", memberID, tokenID).FirstOrCreate(&account, models.Account{MemberID: memberID, TokenID: tokenID})

	return account, result.Error
}

// DueOrders lists orders whose deadline has passed, for the background
// sweep. The lazy settle path remains authoritative; this only improves
// promptness.
func (s *GormStore) DueOrders(now time.Time, maxOrderTime, maxFulfillmentTime time.Duration) ([]int64, error) {
	var ids []int64

	result := s.db.Model(&models.Order{}).
		Where("fulfilled = ?", false).
		Where(
			"(accepted = ? AND created_at < ?) OR (accepted = ? AND accepted_at < ?)",
			false, now.Add(-maxOrderTime),
			true, now.Add(-maxFulfillmentTime),
		).
		Order("id asc").
		Pluck("id", &ids)

	return ids, result.Error
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) OrderForUpdate(id int64) (*models.Order, error) {
	var order *models.Order

	result := t.db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}).Where("id = ?", id).First(&order)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}

	return order, result.Error
}

func (t *gormTx) CreateOrder(o *models.Order) error {
	return t.db.Create(o).Error
}

func (t *gormTx) SaveOrder(o *models.Order) error {
	return t.db.Save(o).Error
}

func (t *gormTx) FindToken(id string) (*models.Token, error) {
	return findToken(t.db, id)
}

func (t *gormTx) MemberByUID(uid string) (*models.Member, error) {
	return memberByUID(t.db, uid)
}

func (t *gormTx) MemberByID(id int64) (*models.Member, error) {
	var member *models.Member

	result := t.db.First(&member, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return member, nil
}

func (t *gormTx) AccountForUpdate(memberID int64, tokenID string) (*models.Account, error) {
	var account *models.Account

	account_tx := t.db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "accounts"}})
	result := account_tx.Where("member_id = ? AND token_id = ?", memberID, tokenID).FirstOrCreate(&account, models.Account{MemberID: memberID, TokenID: tokenID})

	return account, result.Error
}

func (t *gormTx) SaveAccount(a *models.Account) error {
	return t.db.Save(a).Error
}

func (t *gormTx) CreateLiabilities(rows []*models.Liability) error {
	for _, row := range rows {
		if err := t.db.Create(row).Error; err != nil {
			return err
		}
	}

	return nil
}

func findToken(db *gorm.DB, id string) (*models.Token, error) {
	var token *models.Token

	result := db.Where("id = ?", id).First(&token)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrUnsupportedToken
	}

	return token, result.Error
}

func memberByUID(db *gorm.DB, uid string) (*models.Member, error) {
	var member *models.Member

	result := db.Where("uid = ?", uid).First(&member)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return member, result.Error
}

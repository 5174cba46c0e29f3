package payment

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zsmartex/rampx/models"
)

func acceptedOrder() *models.Order {
	return &models.Order{
		ID:       7,
		Amount:   decimal.NewFromInt(100),
		Accepted: true,
		AcceptedAt: sql.NullTime{
			Time:  time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC),
			Valid: true,
		},
	}
}

func TestVerify(t *testing.T) {
	order := acceptedOrder()
	rate := decimal.NewFromFloat(82.5)

	conf := &Confirmation{
		Reference:        "pay-ref-123",
		AmountMinorUnits: 825000,
		Status:           "SUCCESS",
		ConfirmedAt:      order.AcceptedAt.Time.Add(time.Minute),
	}

	assert.NoError(t, Verify(conf, order, rate))
}

func TestVerifyAmountMismatch(t *testing.T) {
	order := acceptedOrder()

	conf := &Confirmation{
		AmountMinorUnits: 824999,
		Status:           "SETTLED",
		ConfirmedAt:      order.AcceptedAt.Time.Add(time.Minute),
	}

	assert.ErrorIs(t, Verify(conf, order, decimal.NewFromFloat(82.5)), ErrAmountMismatch)
}

func TestVerifyStatus(t *testing.T) {
	order := acceptedOrder()

	conf := &Confirmation{
		AmountMinorUnits: 825000,
		Status:           "PENDING",
		ConfirmedAt:      order.AcceptedAt.Time.Add(time.Minute),
	}

	assert.ErrorIs(t, Verify(conf, order, decimal.NewFromFloat(82.5)), ErrNotConfirmed)
	assert.ErrorIs(t, Verify(nil, order, decimal.NewFromFloat(82.5)), ErrNotConfirmed)
}

func TestVerifyStaleConfirmation(t *testing.T) {
	order := acceptedOrder()

	conf := &Confirmation{
		AmountMinorUnits: 825000,
		Status:           "SUCCESS",
		ConfirmedAt:      order.AcceptedAt.Time.Add(-time.Minute),
	}

	assert.ErrorIs(t, Verify(conf, order, decimal.NewFromFloat(82.5)), ErrStaleConfirmation)
}

func TestClientGetConfirmation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/confirmations/pay-ref-123", r.URL.Path)

		json.NewEncoder(w).Encode(Confirmation{
			Reference:        "pay-ref-123",
			AmountMinorUnits: 825000,
			Status:           "SUCCESS",
			ConfirmedAt:      time.Date(2022, 3, 1, 10, 5, 0, 0, time.UTC),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	conf, err := client.GetConfirmation("pay-ref-123")
	assert.NoError(t, err)
	assert.Equal(t, int64(825000), conf.AmountMinorUnits)
	assert.Equal(t, "SUCCESS", conf.Status)
}

func TestClientGetConfirmationNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.Retries = 0

	_, err := client.GetConfirmation("missing")
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

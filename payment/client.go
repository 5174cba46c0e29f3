package payment

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/zsmartex/rampx/config"
)

const inrRateKey = "rampx:global_price:inr"

// Client fetches transfer confirmations from the payment provider. Lookups
// retry a few times because the provider indexes transfers with a short
// delay.
type Client struct {
	BaseURL    string
	Retries    int
	RetryDelay time.Duration

	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Retries:    3,
		RetryDelay: 2 * time.Second,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// GetConfirmation looks the payment reference up at the provider.
func (c *Client) GetConfirmation(reference string) (*Confirmation, error) {
	var last error

	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.RetryDelay)
		}

		conf, err := c.fetch(reference)
		if err == nil {
			return conf, nil
		}

		if err == ErrNotConfirmed {
			return nil, err
		}

		last = err
	}

	log.WithError(last).WithField("reference", reference).Error("confirmation lookup failed")

	return nil, ErrUnreachable
}

func (c *Client) fetch(reference string) (*Confirmation, error) {
	resp, err := c.http.Get(c.BaseURL + "/confirmations/" + reference)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotConfirmed
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnreachable
	}

	var conf Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

// GlobalINRRate reads the reference INR rate maintained by the price job.
func GlobalINRRate() (decimal.Decimal, error) {
	var raw string

	if err := config.Redis.GetKey(inrRateKey, &raw); err != nil {
		return decimal.Zero, ErrUnreachable
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, ErrUnreachable
	}

	return rate, nil
}

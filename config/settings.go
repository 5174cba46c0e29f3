package config

import (
	"os"
	"strconv"
	"time"
)

// AppSettings carries the settlement parameters shared by the ledger, the
// auction coordinator and the mediator. Loaded once at process start so no
// component reaches into the environment on its own.
type AppSettings struct {
	FeeBps             int64
	MaxOrderTime       time.Duration
	MaxFulfillmentTime time.Duration
	AuctionDuration    time.Duration
	TickInterval       time.Duration
	MediatorUID        string
	FallbackResolver   string
	PaymentBaseURL     string
}

var Settings AppSettings

func LoadSettings() error {
	Settings = AppSettings{
		FeeBps:             getEnvInt64("RAMPX_FEE_BPS", 100),
		MaxOrderTime:       getEnvDuration("RAMPX_MAX_ORDER_TIME", 30*time.Minute),
		MaxFulfillmentTime: getEnvDuration("RAMPX_MAX_FULFILLMENT_TIME", 15*time.Minute),
		AuctionDuration:    getEnvDuration("RAMPX_AUCTION_DURATION", 60*time.Second),
		TickInterval:       getEnvDuration("RAMPX_TICK_INTERVAL", 500*time.Millisecond),
		MediatorUID:        os.Getenv("RAMPX_MEDIATOR_UID"),
		FallbackResolver:   os.Getenv("RAMPX_FALLBACK_RESOLVER_UID"),
		PaymentBaseURL:     getEnvString("RAMPX_PAYMENT_URL", "http://localhost:4000"),
	}

	return nil
}

func getEnvString(key string, fallback string) string {
	if raw := os.Getenv(key); len(raw) > 0 {
		return raw
	}

	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if raw := os.Getenv(key); len(raw) > 0 {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); len(raw) > 0 {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}

	return fallback
}

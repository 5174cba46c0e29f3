package cron

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/zsmartex/rampx/config"
)

// INRPriceJob refreshes the reference INR rate used to verify payment
// confirmations. Orders keep settling on the last good rate if a refresh
// fails.
type INRPriceJob struct {
}

func (j *INRPriceJob) Process() {
	var quote struct {
		INR float64 `json:"INR"`
	}

	resp, err := http.Get("https://min-api.cryptocompare.com/data/price?fsym=USDT&tsyms=INR")
	if err != nil {
		log.Errorf("inr price fetch: %v", err)
		return
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("inr price read: %v", err)
		return
	}

	if err := json.Unmarshal(body, &quote); err != nil {
		log.Errorf("inr price decode: %v", err)
		return
	}

	if quote.INR <= 0 {
		log.Errorf("inr price out of range: %v", quote.INR)
		return
	}

	config.Redis.SetKey("rampx:global_price:inr", decimal.NewFromFloat(quote.INR).String(), redis.KeepTTL)
}

package main

import (
	"fmt"

	"github.com/zsmartex/rampx/config"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/models"
	"github.com/zsmartex/rampx/mq_client"
	"github.com/zsmartex/rampx/payment"
	"github.com/zsmartex/rampx/routes"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	mq_client.Connect()

	config.DataBase.AutoMigrate(
		&models.Member{},
		&models.Token{},
		&models.Account{},
		&models.Liability{},
		&models.Order{},
	)

	store := ledger.NewGormStore(config.DataBase)
	l := ledger.New(store, ledger.StreamPublisher{}, ledger.Params{
		FeeBps:             config.Settings.FeeBps,
		MaxOrderTime:       config.Settings.MaxOrderTime,
		MaxFulfillmentTime: config.Settings.MaxFulfillmentTime,
	})

	payment_client := payment.NewClient(config.Settings.PaymentBaseURL)

	r := routes.SetupRouter(l, payment_client)
	// running
	r.Listen(":3000")
}

package main

import (
	"fmt"

	"github.com/zsmartex/rampx/config"
	"github.com/zsmartex/rampx/jobs/cron"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/mq_client"
	"github.com/zsmartex/rampx/workers/daemons"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	mq_client.Connect()

	store := ledger.NewGormStore(config.DataBase)
	l := ledger.New(store, ledger.StreamPublisher{}, ledger.Params{
		FeeBps:             config.Settings.FeeBps,
		MaxOrderTime:       config.Settings.MaxOrderTime,
		MaxFulfillmentTime: config.Settings.MaxFulfillmentTime,
	})

	cron_job := daemons.NewCronJob()
	cron_job.Register(600, &cron.INRPriceJob{})
	cron_job.Register(30, &cron.ExpirySweepJob{Ledger: l})

	fmt.Println("Start rampx-daemon: cron_job")
	cron_job.Start()
}

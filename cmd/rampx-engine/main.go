package main

import (
	"fmt"
	"os"
	"time"

	"github.com/zsmartex/rampx/auction"
	"github.com/zsmartex/rampx/config"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/mediator"
	"github.com/zsmartex/rampx/models"
	"github.com/zsmartex/rampx/mq_client"
	"github.com/zsmartex/rampx/types"
	"github.com/zsmartex/rampx/workers/engines"
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

	identity := &models.Member{
		UID:   config.Settings.MediatorUID,
		Role:  types.RoleMediator,
		State: "active",
	}
	m := mediator.New(l, identity)

	coordinator := auction.NewCoordinator(
		m,
		auction.StreamNotifier{},
		config.Settings.AuctionDuration,
		config.Settings.TickInterval,
		config.Settings.FallbackResolver,
	)
	go coordinator.Run()

	CreateWorker := func(id string) engines.Worker {
		switch id {
		case "auction":
			return engines.NewAuctionWorker(coordinator, l)
		case "settlement":
			return engines.NewSettlementWorker(m)
		default:
			return nil
		}
	}

	Channel := mq_client.GetChannel()

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start rampx-engine: " + id)
		worker := CreateWorker(id)

		if worker == nil {
			config.Logger.Errorf("Unknown worker: %s", id)
			continue
		}

		prefetch := mq_client.GetPrefetchCount(id)

		if prefetch > 0 {
			mq_client.GetChannel().Qos(prefetch, 0, false)
		}

		binding_queue := mq_client.GetBindingQueue(id)
		binding_queue_id := mq_client.GetBindingExchangeId(id)
		exchange_name, exchange_kind := mq_client.GetExchange(binding_queue_id)
		routing_key := mq_client.GetRoutingKey(id)

		if err := Channel.ExchangeDeclare(exchange_name, exchange_kind, binding_queue.Durable, false, false, false, nil); err != nil {
			config.Logger.Errorf("Exchange Declare: %v\n", err)
			return
		}
		if _, err := Channel.QueueDeclare(binding_queue.Name, binding_queue.Durable, false, false, false, nil); err != nil {
			config.Logger.Errorf("Queue Declare: %v\n", err)
			return
		}
		Channel.QueueBind(binding_queue.Name, routing_key, exchange_name, false, nil)

		sub, err := config.Nats.QueueSubscribeSync(id, binding_queue.Name)
		if err != nil {
			config.Logger.Errorf("Nats subscribe: %v", err)
			return
		}

		go func(worker engines.Worker) {
			for {
				msg, err := sub.NextMsg(1 * time.Second)

				if err != nil {
					continue
				}

				if err := worker.Process(msg.Data); err == nil {
					msg.Ack()
				} else {
					config.Logger.Errorf("Worker error: %v", err.Error())
				}
			}
		}(worker)
	}

	select {}
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/rampx/controllers"
	"github.com/zsmartex/rampx/controllers/ramp_controllers"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/payment"
	"github.com/zsmartex/rampx/routes/middlewares"
)

func SetupRouter(l *ledger.Ledger, payment_client *payment.Client) *fiber.App {
	app := fiber.New()

	public := &controllers.PublicController{Ledger: l}
	orders := &ramp_controllers.OrdersController{Ledger: l, Payment: payment_client}

	app.Get("/api/v2/public/timestamp", controllers.GetTimestamp)
	app.Get("/api/v2/public/tokens", public.GetTokens)
	app.Get("/api/v2/public/orders/:id/auction", public.GetAuction)

	ramp := app.Group("/api/v2/ramp", middlewares.Authenticate)

	ramp.Post("/orders", orders.CreateOrder)
	ramp.Get("/orders", orders.GetOrders)
	ramp.Get("/orders/:id", orders.GetOrder)
	ramp.Get("/orders/:id/status", orders.GetOrderStatus)

	ramp.Post("/orders/:id/bid", middlewares.ResolverVaildator, orders.SubmitBid)
	ramp.Post("/orders/:id/proof", middlewares.ResolverVaildator, orders.SubmitProof)

	return app
}

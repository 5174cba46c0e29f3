package ramp_controllers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/rampx/config"
	"github.com/zsmartex/rampx/controllers/entities"
	"github.com/zsmartex/rampx/controllers/helpers"
	"github.com/zsmartex/rampx/controllers/queries"
	"github.com/zsmartex/rampx/ledger"
	"github.com/zsmartex/rampx/models"
	"github.com/zsmartex/rampx/payment"
	"github.com/zsmartex/rampx/types"
)

type OrdersController struct {
	Ledger  *ledger.Ledger
	Payment *payment.Client
}

func (ctrl *OrdersController) CreateOrder(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	errs := new(helpers.Errors)
	payload := new(helpers.CreateOrderParams)

	if err := c.BodyParser(payload); err != nil {
		c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})

		return err
	}

	helpers.Vaildate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	order, err := ctrl.Ledger.CreateOrder(CurrentUser, ledger.CreateOrderParams{
		TokenID:    payload.Token,
		Amount:     payload.Amount,
		StartPrice: payload.StartPrice,
		EndPrice:   payload.EndPrice,
		Recipient:  payload.Recipient,
	})
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{err.Error()},
		})
	}

	payload_auction_attrs, _ := json.Marshal(types.AuctionPayloadMessage{
		Action:  types.ActionStart,
		OrderID: order.ID,
	})
	config.Nats.Publish("auction", payload_auction_attrs)

	return c.Status(201).JSON(order.ToJSON())
}

func (ctrl *OrdersController) GetOrders(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	errs := new(helpers.Errors)
	params := new(queries.OrderFilters)

	if err := c.QueryParser(params); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	helpers.Vaildate(params, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	var orders []*models.Order
	var err error

	if CurrentUser.IsResolver() {
		orders, err = ctrl.Ledger.OrdersByTaker(CurrentUser.UID, params.Filters())
	} else {
		orders, err = ctrl.Ledger.OrdersByMaker(CurrentUser.ID, params.Filters())
	}
	if err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.internal_error"},
		})
	}

	orders_json := make([]entities.OrderEntity, 0)
	for _, order := range orders {
		orders_json = append(orders_json, order.ToJSON())
	}

	return c.Status(200).JSON(orders_json)
}

func (ctrl *OrdersController) GetOrder(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	order, status := ctrl.findAuthorized(c, CurrentUser)
	if order == nil {
		return status
	}

	return c.Status(200).JSON(order.ToJSON())
}

// GetOrderStatus returns the order with its deadline timers so clients can
// display how long remains before the expiry refunds kick in.
func (ctrl *OrdersController) GetOrderStatus(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	order, status := ctrl.findAuthorized(c, CurrentUser)
	if order == nil {
		return status
	}

	params := ctrl.Ledger.Params()

	entity := entities.OrderStatusEntity{
		OrderEntity: order.ToJSON(),
		ExpiresAt:   order.CreatedAt.Add(params.MaxOrderTime),
	}

	if order.AcceptedAt.Valid {
		fulfill_by := order.AcceptedAt.Time.Add(params.MaxFulfillmentTime)
		entity.FulfillBy = &fulfill_by
	}

	return c.Status(200).JSON(entity)
}

func (ctrl *OrdersController) SubmitBid(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ramp.order.invalid_id"},
		})
	}

	errs := new(helpers.Errors)
	payload := new(helpers.BidParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Vaildate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	order, err := ctrl.Ledger.FindOrder(int64(id))
	if err != nil {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{ledger.ErrOrderNotFound.Error()},
		})
	}

	if order.State() != models.StateCreated {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{ledger.ErrAlreadyAccepted.Error()},
		})
	}

	payload_auction_attrs, _ := json.Marshal(types.AuctionPayloadMessage{
		Action:    types.ActionBid,
		OrderID:   order.ID,
		Price:     payload.Price,
		BidderUID: CurrentUser.UID,
	})
	config.Nats.Publish("auction", payload_auction_attrs)

	return c.Status(202).JSON(fiber.Map{
		"order_id": order.ID,
		"price":    payload.Price,
	})
}

// SubmitProof verifies the resolver's payment confirmation against the
// provider before the fulfillment is queued for settlement.
func (ctrl *OrdersController) SubmitProof(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ramp.order.invalid_id"},
		})
	}

	errs := new(helpers.Errors)
	payload := new(helpers.ProofParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Vaildate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	order, err := ctrl.Ledger.FindOrder(int64(id))
	if err != nil {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{ledger.ErrOrderNotFound.Error()},
		})
	}

	if !order.TakerUID.Valid || order.TakerUID.String != CurrentUser.UID {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{ledger.ErrNotAuthorizedResolver.Error()},
		})
	}

	conf, err := ctrl.Payment.GetConfirmation(payload.Proof)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{err.Error()},
		})
	}

	rate, err := payment.GlobalINRRate()
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{err.Error()},
		})
	}

	if err := payment.Verify(conf, order, rate); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{err.Error()},
		})
	}

	payload_settlement_attrs, _ := json.Marshal(types.SettlementPayloadMessage{
		Action:       types.ActionFulfill,
		OrderID:      order.ID,
		Proof:        payload.Proof,
		SubmitterUID: CurrentUser.UID,
	})
	config.Nats.Publish("settlement", payload_settlement_attrs)

	return c.Status(202).JSON(fiber.Map{
		"order_id":     order.ID,
		"proof":        payload.Proof,
		"confirmed_at": conf.ConfirmedAt.Format(time.RFC3339),
	})
}

func (ctrl *OrdersController) findAuthorized(c *fiber.Ctx, member *models.Member) (*models.Order, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ramp.order.invalid_id"},
		})
	}

	order, err := ctrl.Ledger.FindOrder(int64(id))
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			return nil, c.Status(404).JSON(helpers.Errors{
				Errors: []string{ledger.ErrOrderNotFound.Error()},
			})
		}

		return nil, c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.internal_error"},
		})
	}

	is_maker := order.MakerID == member.ID
	is_taker := order.TakerUID.Valid && order.TakerUID.String == member.UID

	if !is_maker && !is_taker && !member.IsMediator() {
		return nil, c.Status(404).JSON(helpers.Errors{
			Errors: []string{ledger.ErrOrderNotFound.Error()},
		})
	}

	return order, nil
}

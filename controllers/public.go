package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/rampx/auction"
	"github.com/zsmartex/rampx/config"
	"github.com/zsmartex/rampx/controllers/entities"
	"github.com/zsmartex/rampx/controllers/helpers"
	"github.com/zsmartex/rampx/ledger"
)

type PublicController struct {
	Ledger *ledger.Ledger
}

func GetTimestamp(c *fiber.Ctx) error {
	c.Status(200).JSON(time.Now())

	return nil
}

func (ctrl *PublicController) GetTokens(c *fiber.Ctx) error {
	tokens, err := ctrl.Ledger.Tokens()
	if err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.internal_error"},
		})
	}

	tokens_json := make([]interface{}, 0)
	for _, token := range tokens {
		tokens_json = append(tokens_json, token.ToJSON())
	}

	return c.Status(200).JSON(tokens_json)
}

// GetAuction serves the latest cached tick for a live auction.
func (ctrl *PublicController) GetAuction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ramp.order.invalid_id"},
		})
	}

	var tick auction.Tick
	if err := config.Redis.GetKey("rampx:auction:"+strconv.Itoa(id), &tick); err != nil {
		return c.Status(404).JSON(helpers.Errors{
			Errors: []string{"ramp.auction.not_found"},
		})
	}

	return c.Status(200).JSON(entities.AuctionTickEntity{
		OrderID:         tick.OrderID,
		CurrentPrice:    tick.Price,
		ProgressPercent: tick.Progress,
		TimeRemainingMs: tick.Remaining,
	})
}

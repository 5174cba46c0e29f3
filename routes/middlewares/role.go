package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/rampx/controllers/helpers"
	"github.com/zsmartex/rampx/models"
	"github.com/zsmartex/rampx/types"
)

func ResolverVaildator(c *fiber.Ctx) error {
	CurrentUser := c.Locals("CurrentUser").(*models.Member)

	if CurrentUser.Role != types.RoleResolver {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_permission"},
		})
	}

	return c.Next()
}

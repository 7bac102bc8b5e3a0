package currency

import (
	"github.com/amirasaad/fxconvert/pkg/service/exchange"
	"github.com/amirasaad/fxconvert/webapi/common"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// MsgMissingParams is returned when a conversion parameter is absent.
const MsgMissingParams = "Missing parameters: from, to and amount are required"

var validate = validator.New()

// Routes registers the pricing endpoints on router.
func Routes(router fiber.Router, svc *exchange.Service) {
	router.Get("/currencies", ListCurrencies(svc))
	router.Get("/convert", Convert(svc))
}

// ListCurrencies returns a Fiber handler listing the supported currencies.
func ListCurrencies(svc *exchange.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Currencies())
	}
}

// Convert returns a Fiber handler converting an amount between two currencies.
func Convert(svc *exchange.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q ConvertQuery
		if err := c.QueryParser(&q); err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, MsgMissingParams)
		}
		if err := validate.Struct(q); err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, MsgMissingParams)
		}

		amount, err := decimal.NewFromString(q.Amount)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount format: "+q.Amount)
		}

		result, err := svc.Convert(c.UserContext(), amount, q.From, q.To)
		if err != nil {
			return common.ErrorResponseJSON(c, common.ErrorToStatusCode(err), common.ErrorMessage(err))
		}
		return c.JSON(result)
	}
}

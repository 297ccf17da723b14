package handlers

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/presenters"
	"MedFund-Backend/internal/metrics"
	"MedFund-Backend/pkg/currency"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type (
	HomeHandler interface {
		ExchangeRate(c *fiber.Ctx) error
	}

	homeHandler struct {
		converter *currency.Converter
	}
)

func NewHomeHandler(converter *currency.Converter) HomeHandler {
	return &homeHandler{converter: converter}
}

// ExchangeRate converts ?amount= (base currency, default 1) for display.
func (h *homeHandler) ExchangeRate(c *fiber.Ctx) error {
	amount := decimal.NewFromInt(1)
	if raw := c.Query("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetExchangeRate, domain.ErrInvalidAmount)
		}
		amount = parsed
	}

	res := h.converter.Convert(c.Context(), amount)
	metrics.ObserveRateLookup(res.Source)
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetExchangeRate)
}

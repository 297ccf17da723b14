package handlers

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/presenters"
	"MedFund-Backend/internal/middleware"
	"MedFund-Backend/pkg/payment"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PaymentHandler interface {
		CreateIntent(c *fiber.Ctx) error
		Confirm(c *fiber.Ctx) error
		StripeWebhook(c *fiber.Ctx) error
		MidtransWebhook(c *fiber.Ctx) error
	}

	paymentHandler struct {
		paymentService payment.PaymentService
		validator      *validator.Validate
	}
)

func NewPaymentHandler(paymentService payment.PaymentService, validator *validator.Validate) PaymentHandler {
	return &paymentHandler{
		paymentService: paymentService,
		validator:      validator,
	}
}

func (h *paymentHandler) CreateIntent(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	req := new(domain.CreatePaymentIntentRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateIntent, err)
	}

	res, err := h.paymentService.CreateIntent(c.Context(), session, *req)
	if err != nil {
		return failure(c, domain.MessageFailedCreateIntent, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateIntent)
}

func (h *paymentHandler) Confirm(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	req := new(domain.ConfirmPaymentRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmIntent, err)
	}

	res, err := h.paymentService.Confirm(c.Context(), session, *req)
	if err != nil {
		return failure(c, domain.MessageFailedConfirmIntent, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConfirmIntent)
}

func (h *paymentHandler) StripeWebhook(c *fiber.Ctx) error {
	return h.webhook(c, payment.ProviderStripe, c.Get("Stripe-Signature"))
}

func (h *paymentHandler) MidtransWebhook(c *fiber.Ctx) error {
	return h.webhook(c, payment.ProviderMidtrans, "")
}

func (h *paymentHandler) webhook(c *fiber.Ctx, provider, signature string) error {
	// Body is copied: fiber reuses the buffer once the handler returns.
	payload := append([]byte(nil), c.Body()...)
	if err := h.paymentService.HandleWebhook(c.Context(), provider, payload, signature); err != nil {
		return failure(c, domain.MessageFailedWebhook, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessWebhook)
}

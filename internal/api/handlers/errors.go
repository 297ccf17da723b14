package handlers

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/presenters"
	"MedFund-Backend/internal/utils/storage"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

var statusByError = []struct {
	err  error
	code int
}{
	{domain.ErrTokenNotFound, fiber.StatusUnauthorized},
	{domain.ErrTokenInvalid, fiber.StatusUnauthorized},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized},
	{domain.ErrCredentialsInvalid, fiber.StatusUnauthorized},

	{domain.ErrUserNotAllowed, fiber.StatusForbidden},
	{domain.ErrUnauthorizedDonationAccess, fiber.StatusForbidden},

	{domain.ErrRequestNotFound, fiber.StatusNotFound},
	{domain.ErrDonationNotFound, fiber.StatusNotFound},
	{domain.ErrUserNotFound, fiber.StatusNotFound},

	{domain.ErrInvalidStatusTransition, fiber.StatusConflict},
	{domain.ErrConcurrentUpdate, fiber.StatusConflict},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict},
	{domain.ErrRequestNotAccepting, fiber.StatusConflict},
	{domain.ErrDonationAlreadyFinalized, fiber.StatusConflict},

	{domain.ErrVersionMismatch, fiber.StatusPreconditionFailed},

	{domain.ErrInvalidRequestStatus, fiber.StatusBadRequest},
	{domain.ErrInvalidGoalAmount, fiber.StatusBadRequest},
	{domain.ErrMissingProofDocument, fiber.StatusBadRequest},
	{domain.ErrInvalidDonationAmount, fiber.StatusBadRequest},
	{domain.ErrUnsupportedCurrency, fiber.StatusBadRequest},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest},
	{domain.ErrUnknownPaymentProvider, fiber.StatusBadRequest},
	{domain.ErrInvalidWebhookSignature, fiber.StatusBadRequest},
	{domain.ErrParseUUID, fiber.StatusBadRequest},
	{storage.ErrFileTypeNotAllowed, fiber.StatusBadRequest},
	{storage.ErrEmptyFile, fiber.StatusBadRequest},

	{domain.ErrPaymentFailed, fiber.StatusBadGateway},
}

// StatusCode maps a service error to the HTTP status the API answers with.
func StatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest
	}
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return fiber.StatusInternalServerError
}

// failure answers with the status mapped from err. Unmapped errors are logged
// and replaced by a generic message so internals do not leak.
func failure(c *fiber.Ctx, message string, err error) error {
	code := StatusCode(err)
	if code == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		err = errors.New(domain.MessageGenericFailure)
	}
	return presenters.ErrorResponse(c, code, message, err)
}

func unauthorized(c *fiber.Ctx, err error) error {
	return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, err)
}

// idParam returns the :id route param, or ErrParseUUID when it is not a UUID.
func idParam(c *fiber.Ctx, v *validator.Validate) (string, error) {
	id := c.Params("id")
	if err := v.Var(id, "required,uuid"); err != nil {
		return "", domain.ErrParseUUID
	}
	return id, nil
}

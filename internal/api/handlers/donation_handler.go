package handlers

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/presenters"
	"MedFund-Backend/internal/middleware"
	"MedFund-Backend/pkg/donation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	DonationHandler interface {
		GetRequestDonations(c *fiber.Ctx) error
		GetDonationStatus(c *fiber.Ctx) error
		GetMyDonations(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewDonationHandler(donationService donation.DonationService, validator *validator.Validate) DonationHandler {
	return &donationHandler{
		donationService: donationService,
		validator:       validator,
	}
}

func (h *donationHandler) GetRequestDonations(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	id, err := idParam(c, h.validator)
	if err != nil {
		return failure(c, domain.MessageFailedGetDonations, err)
	}

	res, err := h.donationService.GetRequestDonations(c.Context(), session, id)
	if err != nil {
		return failure(c, domain.MessageFailedGetDonations, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetDonationStatus(c *fiber.Ctx) error {
	id, err := idParam(c, h.validator)
	if err != nil {
		return failure(c, domain.MessageFailedGetDonationStatus, err)
	}

	res, err := h.donationService.GetDonationStatus(c.Context(), id)
	if err != nil {
		return failure(c, domain.MessageFailedGetDonationStatus, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDonationStatus)
}

func (h *donationHandler) GetMyDonations(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	res, err := h.donationService.GetDonorDonations(c.Context(), session)
	if err != nil {
		return failure(c, domain.MessageFailedGetDonations, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

package handlers

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/presenters"
	"MedFund-Backend/internal/middleware"
	"MedFund-Backend/pkg/request"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var errInvalidIfMatch = errors.New("if-match header must hold a request version")

type (
	RequestHandler interface {
		GetAllDonationRequests(c *fiber.Ctx) error
		GetSingleDonationRequest(c *fiber.Ctx) error
		UpdateRequestStatus(c *fiber.Ctx) error
		DeleteDonationRequest(c *fiber.Ctx) error
		GetApprovedRequests(c *fiber.Ctx) error
		CreateDonationRequest(c *fiber.Ctx) error
		GetMyRequests(c *fiber.Ctx) error
	}

	requestHandler struct {
		requestService request.RequestService
		validator      *validator.Validate
	}
)

func NewRequestHandler(requestService request.RequestService, validator *validator.Validate) RequestHandler {
	return &requestHandler{
		requestService: requestService,
		validator:      validator,
	}
}

func (h *requestHandler) GetAllDonationRequests(c *fiber.Ctx) error {
	res, err := h.requestService.GetAllRequests(c.Context())
	if err != nil {
		return failure(c, domain.MessageFailedGetRequests, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRequests)
}

func (h *requestHandler) GetSingleDonationRequest(c *fiber.Ctx) error {
	id, err := idParam(c, h.validator)
	if err != nil {
		return failure(c, domain.MessageFailedGetRequest, err)
	}

	res, err := h.requestService.GetRequestByID(c.Context(), id)
	if err != nil {
		return failure(c, domain.MessageFailedGetRequest, err)
	}
	setETag(c, res.Version)
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRequest)
}

func (h *requestHandler) UpdateRequestStatus(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	req := domain.UpdateRequestStatusRequest{
		RequestID: c.Params("id"),
		Status:    strings.ToLower(c.Params("status")),
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRequestStatus, err)
	}
	if req.ExpectedVersion, err = ifMatchVersion(c.Get(fiber.HeaderIfMatch)); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRequestStatus, err)
	}

	res, err := h.requestService.UpdateStatus(c.Context(), session, req)
	if err != nil {
		return failure(c, domain.MessageFailedUpdateRequestStatus, err)
	}

	setETag(c, res.Request.Version)
	message := domain.MessageSuccessUpdateRequestStatus
	if !res.Changed {
		message = domain.MessageSuccessStatusUnchanged
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, message)
}

func (h *requestHandler) DeleteDonationRequest(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	id, err := idParam(c, h.validator)
	if err != nil {
		return failure(c, domain.MessageFailedDeleteRequest, err)
	}

	if err := h.requestService.DeleteRequest(c.Context(), session, id); err != nil {
		return failure(c, domain.MessageFailedDeleteRequest, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteRequest)
}

func (h *requestHandler) GetApprovedRequests(c *fiber.Ctx) error {
	res, err := h.requestService.GetApprovedRequests(c.Context())
	if err != nil {
		return failure(c, domain.MessageFailedGetRequests, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRequests)
}

func (h *requestHandler) CreateDonationRequest(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	req := new(domain.CreateDonationRequestRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRequest, err)
	}

	// Missing files are reported by the service as a missing proof.
	req.MedicalReport, _ = c.FormFile("medical_report")
	req.IdentificationProof, _ = c.FormFile("identification_proof")
	req.Photo, _ = c.FormFile("photo")

	res, err := h.requestService.CreateRequest(c.Context(), session, *req)
	if err != nil {
		return failure(c, domain.MessageFailedCreateRequest, err)
	}
	setETag(c, res.Version)
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRequest)
}

func (h *requestHandler) GetMyRequests(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	res, err := h.requestService.GetUserRequests(c.Context(), session)
	if err != nil {
		return failure(c, domain.MessageFailedGetRequests, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRequests)
}

func setETag(c *fiber.Ctx, version int) {
	c.Set(fiber.HeaderETag, strconv.Quote(strconv.Itoa(version)))
}

// ifMatchVersion accepts `3`, `"3"` and `W/"3"`. An empty header means the
// caller did not pin a version.
func ifMatchVersion(header string) (*int, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return nil, nil
	}
	header = strings.TrimPrefix(header, "W/")
	header = strings.Trim(header, `"`)

	v, err := strconv.Atoi(header)
	if err != nil || v < 1 {
		return nil, errInvalidIfMatch
	}
	return &v, nil
}

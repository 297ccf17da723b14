package handlers

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/utils/storage"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrCredentialsInvalid, fiber.StatusUnauthorized},
		{domain.ErrUserNotAllowed, fiber.StatusForbidden},
		{domain.ErrRequestNotFound, fiber.StatusNotFound},
		{fmt.Errorf("%w: rejected -> approved", domain.ErrInvalidStatusTransition), fiber.StatusConflict},
		{domain.ErrVersionMismatch, fiber.StatusPreconditionFailed},
		{fmt.Errorf("%w: %q", domain.ErrInvalidRequestStatus, "archived"), fiber.StatusBadRequest},
		{fmt.Errorf("photo: %w", storage.ErrFileTypeNotAllowed), fiber.StatusBadRequest},
		{fmt.Errorf("%w: timeout", domain.ErrPaymentFailed), fiber.StatusBadGateway},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestIfMatchVersion(t *testing.T) {
	for _, header := range []string{"3", `"3"`, `W/"3"`, ` "3" `} {
		v, err := ifMatchVersion(header)
		assert.NoError(t, err, header)
		if assert.NotNil(t, v, header) {
			assert.Equal(t, 3, *v)
		}
	}

	for _, header := range []string{"", "*"} {
		v, err := ifMatchVersion(header)
		assert.NoError(t, err)
		assert.Nil(t, v)
	}

	for _, header := range []string{"abc", `"0"`, "-1"} {
		_, err := ifMatchVersion(header)
		assert.ErrorIs(t, err, errInvalidIfMatch, header)
	}
}

package utils

import (
	"MedFund-Backend/pkg/lifecycle"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	if Validate != nil {
		return
	}
	v := validator.New()
	_ = v.RegisterValidation("request_status", func(fl validator.FieldLevel) bool {
		return lifecycle.Status(fl.Field().String()).Valid()
	})
	Validate = v
}

package domain

import "errors"

var (
	MessageSuccessGetExchangeRate = "exchange rate retrieved successfully"
	MessageFailedGetExchangeRate  = "failed to retrieve exchange rate"

	ErrInvalidAmount = errors.New("invalid amount")
)

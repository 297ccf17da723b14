package domain

import (
	"errors"
)

var (
	MessageSuccessCreateIntent  = "payment intent created successfully"
	MessageSuccessConfirmIntent = "payment confirmed successfully"
	MessageSuccessWebhook       = "webhook processed successfully"

	MessageFailedCreateIntent  = "failed to create payment intent"
	MessageFailedConfirmIntent = "failed to confirm payment"
	MessageFailedWebhook       = "failed to process webhook"

	ErrPaymentFailed           = errors.New("payment processing failed")
	ErrRequestNotAccepting     = errors.New("donation request is not accepting donations")
	ErrInvalidDonationAmount   = errors.New("invalid donation amount")
	ErrUnsupportedCurrency     = errors.New("currency not supported by payment provider")
	ErrUnknownPaymentProvider  = errors.New("unknown payment provider")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
)

type (
	CreatePaymentIntentRequest struct {
		RequestID string `json:"request_id" validate:"required,uuid"`
		Amount    string `json:"amount" validate:"required,numeric"`
		Email     string `json:"email" validate:"omitempty,email"`
		Provider  string `json:"provider" validate:"omitempty,oneof=stripe midtrans"`
	}

	PaymentIntentResponse struct {
		DonationID    string `json:"donation_id"`
		TransactionID string `json:"transaction_id"`
		Provider      string `json:"provider"`
		ClientSecret  string `json:"client_secret,omitempty"`
		RedirectURL   string `json:"redirect_url,omitempty"`
	}

	ConfirmPaymentRequest struct {
		TransactionID string `json:"transaction_id" validate:"required"`
	}

	PaymentStatusResponse struct {
		DonationID    string `json:"donation_id"`
		TransactionID string `json:"transaction_id"`
		RequestID     string `json:"request_id"`
		Status        string `json:"status"`
	}
)

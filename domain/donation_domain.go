package domain

import (
	"MedFund-Backend/pkg/funding"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DonationStatusPending = "pending"
	DonationStatusSuccess = funding.StatusSuccess
	DonationStatusFailed  = "failed"
)

var (
	MessageSuccessGetDonations      = "donations retrieved successfully"
	MessageSuccessGetDonationStatus = "donation status retrieved successfully"

	MessageFailedGetDonations      = "failed to retrieve donations"
	MessageFailedGetDonationStatus = "failed to retrieve donation status"

	ErrDonationNotFound           = errors.New("donation not found")
	ErrUnauthorizedDonationAccess = errors.New("unauthorized access to donation")
	ErrDonationAlreadyFinalized   = errors.New("donation already finalized")
)

type (
	DonationResponse struct {
		ID            string          `json:"id"`
		RequestID     string          `json:"request_id"`
		DonorID       string          `json:"donor_id"`
		DonorName     string          `json:"donor_name,omitempty"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
		Status        string          `json:"status"`
		Provider      string          `json:"provider"`
		TransactionID string          `json:"transaction_id"`
		CreatedAt     time.Time       `json:"created_at"`
		FinalizedAt   *time.Time      `json:"finalized_at,omitempty"`
	}

	DonationSummary struct {
		TotalRaised decimal.Decimal `json:"total_raised"`
		DonorCount  int             `json:"donor_count"`
		Goal        decimal.Decimal `json:"goal"`
		Remaining   decimal.Decimal `json:"remaining"`
		Percentage  float64         `json:"percentage"`
	}

	RequestDonationsResponse struct {
		RequestID string              `json:"request_id"`
		Donations []*DonationResponse `json:"donations"`
		Summary   DonationSummary     `json:"summary"`
	}

	DonationStatusResponse struct {
		RequestID string              `json:"request_id"`
		Status    string              `json:"status"`
		Donations []*DonationResponse `json:"donations"`
		Progress  funding.Progress    `json:"progress"`
	}
)

func NewDonationSummary(p funding.Progress) DonationSummary {
	return DonationSummary{
		TotalRaised: p.Raised,
		DonorCount:  p.DonorCount,
		Goal:        p.Goal,
		Remaining:   p.Remaining,
		Percentage:  p.Percentage,
	}
}

package domain

import (
	"MedFund-Backend/pkg/funding"
	"MedFund-Backend/pkg/lifecycle"
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessCreateRequest       = "donation request created successfully"
	MessageSuccessGetRequests         = "donation requests retrieved successfully"
	MessageSuccessGetRequest          = "donation request retrieved successfully"
	MessageSuccessUpdateRequestStatus = "donation request status updated successfully"
	MessageSuccessStatusUnchanged     = "donation request already has this status"
	MessageSuccessDeleteRequest       = "donation request deleted successfully"

	MessageFailedCreateRequest       = "failed to create donation request"
	MessageFailedGetRequests         = "failed to retrieve donation requests"
	MessageFailedGetRequest          = "failed to retrieve donation request"
	MessageFailedUpdateRequestStatus = "failed to update donation request status"
	MessageFailedDeleteRequest       = "failed to delete donation request"

	ErrRequestNotFound         = errors.New("donation request not found")
	ErrInvalidRequestStatus    = lifecycle.ErrUnknownStatus
	ErrInvalidStatusTransition = lifecycle.ErrIllegalTransition
	ErrVersionMismatch         = errors.New("donation request was modified by someone else")
	ErrConcurrentUpdate        = errors.New("donation request is being updated concurrently, try again")
	ErrInvalidGoalAmount       = errors.New("donation amount must be greater than zero")
	ErrMissingProofDocument    = errors.New("medical report and identification proof are required")
)

type (
	CreateDonationRequestRequest struct {
		PatientName    string `json:"patient_name" form:"patient_name" validate:"required,min=2,max=100"`
		PatientAge     int    `json:"patient_age" form:"patient_age" validate:"min=0,max=130"`
		PatientGender  string `json:"patient_gender" form:"patient_gender" validate:"required,oneof=male female other"`
		PatientPhone   string `json:"patient_phone" form:"patient_phone" validate:"required,min=6,max=20"`
		MedicalProblem string `json:"medical_problem" form:"medical_problem" validate:"required,max=200"`
		Overview       string `json:"overview" form:"overview" validate:"required"`
		DonationAmount string `json:"donation_amount" form:"donation_amount" validate:"required,numeric"`

		MedicalReport       *multipart.FileHeader `json:"-" form:"-"`
		IdentificationProof *multipart.FileHeader `json:"-" form:"-"`
		Photo               *multipart.FileHeader `json:"-" form:"-"`
	}

	UpdateRequestStatusRequest struct {
		RequestID string `json:"request_id" validate:"required,uuid"`
		Status    string `json:"status" validate:"required,request_status"`
		// ExpectedVersion comes from If-Match. Nil means the caller did not pin a version.
		ExpectedVersion *int `json:"-"`
	}

	PatientProfile struct {
		Name   string `json:"name"`
		Age    int    `json:"age"`
		Gender string `json:"gender"`
		Phone  string `json:"phone"`
	}

	ProofDocuments struct {
		MedicalReportURL       string `json:"medical_report_url"`
		IdentificationProofURL string `json:"identification_proof_url"`
		PhotoURL               string `json:"photo_url,omitempty"`
	}

	DonationRequestResponse struct {
		ID             string           `json:"id"`
		UserID         string           `json:"user_id"`
		Patient        PatientProfile   `json:"patient"`
		MedicalProblem string           `json:"medical_problem"`
		Overview       string           `json:"overview"`
		DonationAmount decimal.Decimal  `json:"donation_amount"`
		Status         string           `json:"status"`
		Version        int              `json:"version"`
		Proofs         ProofDocuments   `json:"proofs"`
		Progress       funding.Progress `json:"progress"`
		CreatedAt      time.Time        `json:"created_at"`
		UpdatedAt      time.Time        `json:"updated_at"`
	}

	StatusUpdateResult struct {
		Request  *DonationRequestResponse `json:"request"`
		Changed  bool                     `json:"changed"`
		Override bool                     `json:"override"`
	}
)

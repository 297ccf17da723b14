package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DonationRequest struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	PatientName   string `gorm:"not null" json:"patient_name"`
	PatientAge    int    `json:"patient_age"`
	PatientGender string `json:"patient_gender"`
	PatientPhone  string `json:"patient_phone"`

	MedicalProblem string          `gorm:"not null" json:"medical_problem"`
	Overview       string          `gorm:"type:text" json:"overview"`
	DonationAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"donation_amount"`
	Status         string          `gorm:"index;not null" json:"status"` // pending, approved, rejected, achieved

	MedicalReportURL       string `json:"medical_report_url"`
	IdentificationProofURL string `json:"identification_proof_url"`
	PhotoURL               string `json:"photo_url,omitempty"`

	// Version is bumped on every status write and guards concurrent admin updates.
	Version int `gorm:"not null;default:1" json:"version"`

	User      *User       `gorm:"foreignKey:UserID"`
	Donations []*Donation `gorm:"foreignKey:RequestID"`
	Timestamp
}

func (r *DonationRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}

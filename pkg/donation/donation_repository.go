package donation

import (
	"MedFund-Backend/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	DonationRepository interface {
		CreateDonation(ctx context.Context, donation *entities.Donation) error
		GetDonationByID(ctx context.Context, id string) (*entities.Donation, error)
		GetDonationByTransactionID(ctx context.Context, transactionID string) (*entities.Donation, error)
		GetRequestDonations(ctx context.Context, requestID string) ([]*entities.Donation, error)
		GetDonorDonations(ctx context.Context, donorID string) ([]*entities.Donation, error)
		SetProviderRef(ctx context.Context, id string, providerRef string) error
		// FinalizeDonation moves a pending donation to status. It reports false
		// when the donation was already finalized.
		FinalizeDonation(ctx context.Context, id string, status string, finalizedAt time.Time) (bool, error)
	}

	donationRepository struct {
		db *gorm.DB
	}
)

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) CreateDonation(ctx context.Context, donation *entities.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepository) GetDonationByID(ctx context.Context, id string) (*entities.Donation, error) {
	var donation entities.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) GetDonationByTransactionID(ctx context.Context, transactionID string) (*entities.Donation, error) {
	var donation entities.Donation
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) GetRequestDonations(ctx context.Context, requestID string) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) GetDonorDonations(ctx context.Context, donorID string) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) SetProviderRef(ctx context.Context, id string, providerRef string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ?", id).
		Update("provider_ref", providerRef).Error
}

func (r *donationRepository) FinalizeDonation(ctx context.Context, id string, status string, finalizedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ?", id, "pending").
		Updates(map[string]any{
			"status":       status,
			"finalized_at": finalizedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

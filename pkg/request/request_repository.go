package request

import (
	"MedFund-Backend/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	RequestRepository interface {
		CreateRequest(ctx context.Context, request *entities.DonationRequest) error
		GetRequestByID(ctx context.Context, id string) (*entities.DonationRequest, error)
		GetAllRequests(ctx context.Context) ([]*entities.DonationRequest, error)
		GetRequestsByStatus(ctx context.Context, statuses ...string) ([]*entities.DonationRequest, error)
		GetUserRequests(ctx context.Context, userID string) ([]*entities.DonationRequest, error)
		// UpdateStatus writes status only if the stored version still equals
		// expectedVersion. It reports false when another writer got there first.
		UpdateStatus(ctx context.Context, id string, expectedVersion int, status string) (bool, error)
		DeleteRequest(ctx context.Context, id string) error
		GetDonationsForRequests(ctx context.Context, ids []string) (map[string][]*entities.Donation, error)
	}

	requestRepository struct {
		db *gorm.DB
	}
)

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) CreateRequest(ctx context.Context, request *entities.DonationRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) GetRequestByID(ctx context.Context, id string) (*entities.DonationRequest, error) {
	var request entities.DonationRequest
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) GetAllRequests(ctx context.Context) ([]*entities.DonationRequest, error) {
	var requests []*entities.DonationRequest
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) GetRequestsByStatus(ctx context.Context, statuses ...string) ([]*entities.DonationRequest, error) {
	var requests []*entities.DonationRequest
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) GetUserRequests(ctx context.Context, userID string) ([]*entities.DonationRequest, error) {
	var requests []*entities.DonationRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, expectedVersion int, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.DonationRequest{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":     status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) DeleteRequest(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&entities.Donation{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entities.DonationRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetDonationsForRequests groups every donation row of the given requests by
// request id. Filtering by status is left to the funding reconciler.
func (r *requestRepository) GetDonationsForRequests(ctx context.Context, ids []string) (map[string][]*entities.Donation, error) {
	grouped := make(map[string][]*entities.Donation, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}

	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Where("request_id IN ?", ids).
		Find(&donations).Error; err != nil {
		return nil, err
	}
	for _, d := range donations {
		key := d.RequestID.String()
		grouped[key] = append(grouped[key], d)
	}
	return grouped, nil
}

package donation

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/entities"
	"MedFund-Backend/pkg/funding"
	"MedFund-Backend/pkg/request"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	DonationService interface {
		// GetRequestDonations is the admin view: every donation of a request
		// with the funding summary.
		GetRequestDonations(ctx context.Context, session domain.Session, requestID string) (*domain.RequestDonationsResponse, error)
		// GetDonationStatus is the public view: successful donations only.
		GetDonationStatus(ctx context.Context, requestID string) (*domain.DonationStatusResponse, error)
		GetDonorDonations(ctx context.Context, session domain.Session) ([]*domain.DonationResponse, error)
	}

	donationService struct {
		donationRepository DonationRepository
		requestRepository  request.RequestRepository
	}
)

func NewDonationService(donationRepository DonationRepository, requestRepository request.RequestRepository) DonationService {
	return &donationService{
		donationRepository: donationRepository,
		requestRepository:  requestRepository,
	}
}

func (s *donationService) GetRequestDonations(ctx context.Context, session domain.Session, requestID string) (*domain.RequestDonationsResponse, error) {
	if !session.IsAdmin() {
		return nil, domain.ErrUserNotAllowed
	}

	req, donations, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	progress := funding.Reconcile(req.DonationAmount, request.Records(donations))
	res := &domain.RequestDonationsResponse{
		RequestID: requestID,
		Donations: make([]*domain.DonationResponse, 0, len(donations)),
		Summary:   domain.NewDonationSummary(progress),
	}
	for _, d := range donations {
		res.Donations = append(res.Donations, toDonationResponse(d, true))
	}
	return res, nil
}

func (s *donationService) GetDonationStatus(ctx context.Context, requestID string) (*domain.DonationStatusResponse, error) {
	req, donations, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	res := &domain.DonationStatusResponse{
		RequestID: requestID,
		Status:    req.Status,
		Donations: make([]*domain.DonationResponse, 0, len(donations)),
		Progress:  funding.Reconcile(req.DonationAmount, request.Records(donations)),
	}
	for _, d := range donations {
		if d.Status == domain.DonationStatusSuccess {
			res.Donations = append(res.Donations, toDonationResponse(d, false))
		}
	}
	return res, nil
}

func (s *donationService) GetDonorDonations(ctx context.Context, session domain.Session) ([]*domain.DonationResponse, error) {
	donations, err := s.donationRepository.GetDonorDonations(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.DonationResponse, 0, len(donations))
	for _, d := range donations {
		res = append(res, toDonationResponse(d, false))
	}
	return res, nil
}

func (s *donationService) load(ctx context.Context, requestID string) (*entities.DonationRequest, []*entities.Donation, error) {
	req, err := s.requestRepository.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrRequestNotFound
		}
		return nil, nil, err
	}

	donations, err := s.donationRepository.GetRequestDonations(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return req, donations, nil
}

func toDonationResponse(d *entities.Donation, withDonor bool) *domain.DonationResponse {
	res := &domain.DonationResponse{
		ID:            d.ID.String(),
		RequestID:     d.RequestID.String(),
		Amount:        d.Amount,
		Currency:      d.Currency,
		Status:        d.Status,
		Provider:      d.Provider,
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
		FinalizedAt:   d.FinalizedAt,
	}
	if withDonor {
		res.DonorID = d.DonorID.String()
		if d.Donor != nil {
			res.DonorName = d.Donor.Name
		}
	}
	return res
}

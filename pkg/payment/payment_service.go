package payment

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/entities"
	"MedFund-Backend/internal/metrics"
	"MedFund-Backend/pkg/donation"
	"MedFund-Backend/pkg/events"
	"MedFund-Backend/pkg/lifecycle"
	"MedFund-Backend/pkg/request"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	PaymentService interface {
		CreateIntent(ctx context.Context, session domain.Session, req domain.CreatePaymentIntentRequest) (*domain.PaymentIntentResponse, error)
		Confirm(ctx context.Context, session domain.Session, req domain.ConfirmPaymentRequest) (*domain.PaymentStatusResponse, error)
		HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) error
	}

	paymentService struct {
		donationRepository donation.DonationRepository
		requestRepository  request.RequestRepository
		requestService     request.RequestService
		publisher          events.Publisher
		gateways           map[string]Gateway
		defaultProvider    string
		currency           string
	}
)

func NewPaymentService(
	donationRepository donation.DonationRepository,
	requestRepository request.RequestRepository,
	requestService request.RequestService,
	publisher events.Publisher,
	defaultProvider string,
	currency string,
	gateways ...Gateway,
) PaymentService {
	byName := make(map[string]Gateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	return &paymentService{
		donationRepository: donationRepository,
		requestRepository:  requestRepository,
		requestService:     requestService,
		publisher:          publisher,
		gateways:           byName,
		defaultProvider:    defaultProvider,
		currency:           currency,
	}
}

func (s *paymentService) gateway(provider string) (Gateway, error) {
	if provider == "" {
		provider = s.defaultProvider
	}
	g, ok := s.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPaymentProvider, provider)
	}
	return g, nil
}

func (s *paymentService) CreateIntent(ctx context.Context, session domain.Session, req domain.CreatePaymentIntentRequest) (*domain.PaymentIntentResponse, error) {
	donorID, err := uuid.Parse(session.UserID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, domain.ErrInvalidDonationAmount
	}
	gateway, err := s.gateway(req.Provider)
	if err != nil {
		return nil, err
	}
	// The stored amount must be exactly what the provider charges.
	if err := gateway.ValidateAmount(s.currency, amount); err != nil {
		return nil, err
	}

	target, err := s.requestRepository.GetRequestByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	if !lifecycle.Status(target.Status).AcceptsDonations() {
		return nil, domain.ErrRequestNotAccepting
	}

	d := &entities.Donation{
		RequestID:     target.ID,
		DonorID:       donorID,
		Amount:        amount,
		Currency:      s.currency,
		Status:        domain.DonationStatusPending,
		Provider:      gateway.Name(),
		TransactionID: ulid.Make().String(),
	}
	if err := s.donationRepository.CreateDonation(ctx, d); err != nil {
		return nil, err
	}

	intent, err := gateway.CreateIntent(ctx, Intent{
		OrderID:     d.TransactionID,
		Amount:      d.Amount,
		Currency:    s.currency,
		Email:       req.Email,
		Description: "Donation for " + target.PatientName,
	})
	if err != nil {
		log.Errorf("create %s intent for donation %s: %v", gateway.Name(), d.ID, err)
		if _, ferr := s.finalize(ctx, d, OutcomeFailed); ferr != nil {
			log.Errorf("mark donation %s failed: %v", d.ID, ferr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	if intent.ProviderRef != "" {
		if err := s.donationRepository.SetProviderRef(ctx, d.ID.String(), intent.ProviderRef); err != nil {
			return nil, err
		}
	}

	return &domain.PaymentIntentResponse{
		DonationID:    d.ID.String(),
		TransactionID: d.TransactionID,
		Provider:      gateway.Name(),
		ClientSecret:  intent.ClientSecret,
		RedirectURL:   intent.RedirectURL,
	}, nil
}

func (s *paymentService) Confirm(ctx context.Context, session domain.Session, req domain.ConfirmPaymentRequest) (*domain.PaymentStatusResponse, error) {
	d, err := s.donationByTransaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if d.DonorID.String() != session.UserID && !session.IsAdmin() {
		return nil, domain.ErrUnauthorizedDonationAccess
	}
	if d.Status != domain.DonationStatusPending {
		return toStatusResponse(d), nil
	}

	gateway, err := s.gateway(d.Provider)
	if err != nil {
		return nil, err
	}
	outcome, err := gateway.Status(ctx, d.TransactionID, d.ProviderRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	return s.finalize(ctx, d, outcome)
}

func (s *paymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) error {
	gateway, err := s.gateway(provider)
	if err != nil {
		return err
	}

	n, err := gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, ErrIgnoredEvent) {
			return nil
		}
		return err
	}

	d, err := s.donationByTransaction(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrDonationNotFound) {
			log.Warnf("%s webhook for unknown order %s", provider, n.OrderID)
		}
		return err
	}
	if d.Provider != gateway.Name() {
		return fmt.Errorf("%w: order %s belongs to %s", domain.ErrUnknownPaymentProvider, n.OrderID, d.Provider)
	}

	_, err = s.finalize(ctx, d, n.Outcome)
	return err
}

// finalize records a terminal outcome once. Pending outcomes and donations
// that were finalized before are returned as they are stored.
func (s *paymentService) finalize(ctx context.Context, d *entities.Donation, outcome Outcome) (*domain.PaymentStatusResponse, error) {
	if outcome == OutcomePending {
		return toStatusResponse(d), nil
	}

	status := domain.DonationStatusFailed
	if outcome == OutcomeSuccess {
		status = domain.DonationStatusSuccess
	}

	now := time.Now().UTC()
	written, err := s.donationRepository.FinalizeDonation(ctx, d.ID.String(), status, now)
	if err != nil {
		return nil, err
	}
	if !written {
		stored, err := s.donationRepository.GetDonationByID(ctx, d.ID.String())
		if err != nil {
			return nil, err
		}
		return toStatusResponse(stored), nil
	}

	d.Status = status
	d.FinalizedAt = &now
	metrics.ObserveDonation(d.Provider, status)
	log.Infof("donation %s finalized as %s", d.ID, status)

	err = s.publisher.Publish(ctx, events.Event{
		Type:       events.TopicDonationFinalized,
		RequestID:  d.RequestID.String(),
		DonationID: d.ID.String(),
		To:         status,
		Amount:     d.Amount.String(),
		OccurredAt: now,
	})
	if err != nil {
		log.Errorf("publish finalization of donation %s: %v", d.ID, err)
	}

	if status == domain.DonationStatusSuccess {
		if err := s.requestService.OnDonationFinalized(ctx, d.RequestID.String()); err != nil {
			log.Errorf("refresh request %s after donation %s: %v", d.RequestID, d.ID, err)
		}
	}
	return toStatusResponse(d), nil
}

func (s *paymentService) donationByTransaction(ctx context.Context, transactionID string) (*entities.Donation, error) {
	d, err := s.donationRepository.GetDonationByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return d, nil
}

func toStatusResponse(d *entities.Donation) *domain.PaymentStatusResponse {
	return &domain.PaymentStatusResponse{
		DonationID:    d.ID.String(),
		TransactionID: d.TransactionID,
		RequestID:     d.RequestID.String(),
		Status:        d.Status,
	}
}

package request

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/entities"
	"MedFund-Backend/internal/cache"
	"MedFund-Backend/internal/metrics"
	"MedFund-Backend/internal/utils/mailing"
	"MedFund-Backend/internal/utils/storage"
	"MedFund-Backend/pkg/events"
	"MedFund-Backend/pkg/funding"
	"MedFund-Backend/pkg/lifecycle"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxTransitionAttempts bounds how often a status write is re-evaluated after
// losing a version race.
const maxTransitionAttempts = 3

type (
	RequestService interface {
		CreateRequest(ctx context.Context, session domain.Session, req domain.CreateDonationRequestRequest) (*domain.DonationRequestResponse, error)
		GetAllRequests(ctx context.Context) ([]*domain.DonationRequestResponse, error)
		GetRequestByID(ctx context.Context, id string) (*domain.DonationRequestResponse, error)
		GetApprovedRequests(ctx context.Context) ([]*domain.DonationRequestResponse, error)
		GetUserRequests(ctx context.Context, session domain.Session) ([]*domain.DonationRequestResponse, error)
		UpdateStatus(ctx context.Context, session domain.Session, req domain.UpdateRequestStatusRequest) (*domain.StatusUpdateResult, error)
		DeleteRequest(ctx context.Context, session domain.Session, id string) error
		// OnDonationFinalized refreshes cached reads for the request and moves
		// an approved request to achieved once it is fully funded.
		OnDonationFinalized(ctx context.Context, requestID string) error
	}

	requestService struct {
		requestRepository RequestRepository
		s3                storage.AwsS3
		mailer            mailing.Mailer
		publisher         events.Publisher
		cache             cache.RequestCache
		appURL            string
	}
)

func NewRequestService(
	requestRepository RequestRepository,
	s3 storage.AwsS3,
	mailer mailing.Mailer,
	publisher events.Publisher,
	requestCache cache.RequestCache,
	appURL string,
) RequestService {
	return &requestService{
		requestRepository: requestRepository,
		s3:                s3,
		mailer:            mailer,
		publisher:         publisher,
		cache:             requestCache,
		appURL:            appURL,
	}
}

func (s *requestService) CreateRequest(ctx context.Context, session domain.Session, req domain.CreateDonationRequestRequest) (*domain.DonationRequestResponse, error) {
	ownerID, err := uuid.Parse(session.UserID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	goal, err := decimal.NewFromString(req.DonationAmount)
	if err != nil || !goal.IsPositive() {
		return nil, domain.ErrInvalidGoalAmount
	}
	if req.MedicalReport == nil || req.IdentificationProof == nil {
		return nil, domain.ErrMissingProofDocument
	}

	request := &entities.DonationRequest{
		ID:             uuid.New(),
		UserID:         ownerID,
		PatientName:    req.PatientName,
		PatientAge:     req.PatientAge,
		PatientGender:  req.PatientGender,
		PatientPhone:   req.PatientPhone,
		MedicalProblem: req.MedicalProblem,
		Overview:       req.Overview,
		DonationAmount: goal.Round(2),
		Status:         lifecycle.StatusPending.String(),
	}

	folder := "donation-requests/" + request.ID.String()
	var uploaded []string
	if request.MedicalReportURL, err = s.upload(ctx, &uploaded, "medical_report", req.MedicalReport, folder, storage.AllowDocument...); err != nil {
		return nil, err
	}
	if request.IdentificationProofURL, err = s.upload(ctx, &uploaded, "identification_proof", req.IdentificationProof, folder, storage.AllowDocument...); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	if req.Photo != nil {
		if request.PhotoURL, err = s.upload(ctx, &uploaded, "photo", req.Photo, folder, storage.AllowImage...); err != nil {
			s.discard(ctx, uploaded)
			return nil, err
		}
	}

	if err := s.requestRepository.CreateRequest(ctx, request); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	log.Infof("donation request %s submitted by %s", request.ID, session.UserID)

	return toResponse(request, funding.Reconcile(request.DonationAmount, nil)), nil
}

// upload stores one proof file, appends its key to uploaded and returns the
// public link.
func (s *requestService) upload(ctx context.Context, uploaded *[]string, name string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	key, err := s.s3.UploadFile(ctx, name, file, folder, allowed...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	*uploaded = append(*uploaded, key)
	return s.s3.GetPublicLinkKey(key), nil
}

// discard removes proof files of a request that was never stored.
func (s *requestService) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.s3.DeleteFile(ctx, key); err != nil {
			log.Errorf("failed to remove orphaned upload %s: %v", key, err)
		}
	}
}

func (s *requestService) GetAllRequests(ctx context.Context) ([]*domain.DonationRequestResponse, error) {
	requests, err := s.requestRepository.GetAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	return s.withProgress(ctx, requests)
}

func (s *requestService) GetRequestByID(ctx context.Context, id string) (*domain.DonationRequestResponse, error) {
	var cached domain.DonationRequestResponse
	if s.cache.Get(ctx, cache.KeyRequest(id), &cached) {
		return &cached, nil
	}

	request, err := s.requestRepository.GetRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	progress, err := s.progressFor(ctx, request)
	if err != nil {
		return nil, err
	}
	res := toResponse(request, progress)
	s.cache.Set(ctx, cache.KeyRequest(id), res)
	return res, nil
}

// GetApprovedRequests lists what donors can see: approved requests and the
// ones that already reached their goal.
func (s *requestService) GetApprovedRequests(ctx context.Context) ([]*domain.DonationRequestResponse, error) {
	var cached []*domain.DonationRequestResponse
	if s.cache.Get(ctx, cache.KeyApprovedRequests, &cached) {
		return cached, nil
	}

	requests, err := s.requestRepository.GetRequestsByStatus(ctx,
		lifecycle.StatusApproved.String(),
		lifecycle.StatusAchieved.String(),
	)
	if err != nil {
		return nil, err
	}
	res, err := s.withProgress(ctx, requests)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.KeyApprovedRequests, res)
	return res, nil
}

func (s *requestService) GetUserRequests(ctx context.Context, session domain.Session) ([]*domain.DonationRequestResponse, error) {
	requests, err := s.requestRepository.GetUserRequests(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return s.withProgress(ctx, requests)
}

func (s *requestService) UpdateStatus(ctx context.Context, session domain.Session, req domain.UpdateRequestStatusRequest) (*domain.StatusUpdateResult, error) {
	if !session.IsAdmin() {
		return nil, domain.ErrUserNotAllowed
	}
	target, err := lifecycle.Parse(req.Status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, req.RequestID, target, req.ExpectedVersion, session.UserID)
}

// transition reads the request, decides, and writes conditionally on the read
// version. A lost race re-reads and decides again, so a concurrent writer that
// already reached target turns this call into a no-op.
func (s *requestService) transition(ctx context.Context, id string, target lifecycle.Status, expectedVersion *int, actorID string) (*domain.StatusUpdateResult, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		current, err := s.requestRepository.GetRequestByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrRequestNotFound
			}
			return nil, err
		}

		from := lifecycle.Status(current.Status)
		if expectedVersion != nil && current.Version != *expectedVersion && from != target {
			return nil, domain.ErrVersionMismatch
		}

		progress, err := s.progressFor(ctx, current)
		if err != nil {
			return nil, err
		}
		decision, err := lifecycle.Decide(from, target, progress.Reached())
		if err != nil {
			return nil, err
		}
		if !decision.Changed {
			return &domain.StatusUpdateResult{Request: toResponse(current, progress)}, nil
		}

		written, err := s.requestRepository.UpdateStatus(ctx, id, current.Version, target.String())
		if err != nil {
			return nil, err
		}
		if !written {
			log.Debugf("donation request %s changed while moving to %s, re-reading", id, target)
			continue
		}

		current.Status = target.String()
		current.Version++
		s.afterTransition(ctx, current, decision, actorID)

		res, err := s.GetRequestByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.StatusUpdateResult{Request: res, Changed: true, Override: decision.Override}, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

// afterTransition runs once per status write that actually happened. Failures
// here are logged; the write itself already succeeded.
func (s *requestService) afterTransition(ctx context.Context, request *entities.DonationRequest, decision lifecycle.Decision, actorID string) {
	id := request.ID.String()
	s.cache.Invalidate(ctx, cache.KeyApprovedRequests, cache.KeyRequest(id))
	metrics.ObserveTransition(decision.From.String(), decision.To.String(), decision.Override)

	if decision.Override {
		log.Warnf("donation request %s marked achieved by %s before reaching its goal", id, actorID)
	} else {
		log.Infof("donation request %s moved %s -> %s", id, decision.From, decision.To)
	}

	err := s.publisher.Publish(ctx, events.Event{
		Type:       events.TopicRequestStatusChanged,
		RequestID:  id,
		From:       decision.From.String(),
		To:         decision.To.String(),
		Override:   decision.Override,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Errorf("publish status change for %s: %v", id, err)
	}

	if request.User == nil || request.User.Email == "" {
		log.Warnf("donation request %s has no recipient email, skipping notification", id)
		return
	}
	subject, body := mailing.StatusChangedMail(s.appURL, request.PatientName, decision.To.String())
	if err := s.mailer.Send(request.User.Email, subject, body); err != nil {
		log.Errorf("notify %s about request %s: %v", request.User.Email, id, err)
	}
}

func (s *requestService) DeleteRequest(ctx context.Context, session domain.Session, id string) error {
	if !session.IsAdmin() {
		return domain.ErrUserNotAllowed
	}
	if err := s.requestRepository.DeleteRequest(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyApprovedRequests, cache.KeyRequest(id))
	log.Infof("donation request %s deleted by %s", id, session.UserID)
	return nil
}

func (s *requestService) OnDonationFinalized(ctx context.Context, requestID string) error {
	s.cache.Invalidate(ctx, cache.KeyApprovedRequests, cache.KeyRequest(requestID))

	request, err := s.requestRepository.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}
	if lifecycle.Status(request.Status) != lifecycle.StatusApproved {
		return nil
	}

	progress, err := s.progressFor(ctx, request)
	if err != nil {
		return err
	}
	if !progress.Reached() {
		return nil
	}

	_, err = s.transition(ctx, requestID, lifecycle.StatusAchieved, nil, "")
	return err
}

func (s *requestService) progressFor(ctx context.Context, request *entities.DonationRequest) (funding.Progress, error) {
	id := request.ID.String()
	grouped, err := s.requestRepository.GetDonationsForRequests(ctx, []string{id})
	if err != nil {
		return funding.Progress{}, err
	}
	return funding.Reconcile(request.DonationAmount, Records(grouped[id])), nil
}

func (s *requestService) withProgress(ctx context.Context, requests []*entities.DonationRequest) ([]*domain.DonationRequestResponse, error) {
	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID.String())
	}
	grouped, err := s.requestRepository.GetDonationsForRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*domain.DonationRequestResponse, 0, len(requests))
	for _, r := range requests {
		res = append(res, toResponse(r, funding.Reconcile(r.DonationAmount, Records(grouped[r.ID.String()]))))
	}
	return res, nil
}

// Records converts donation rows into reconciler input.
func Records(donations []*entities.Donation) []funding.Record {
	records := make([]funding.Record, 0, len(donations))
	for _, d := range donations {
		records = append(records, funding.Record{
			Amount:  d.Amount,
			Status:  d.Status,
			DonorID: d.DonorID.String(),
		})
	}
	return records
}

func toResponse(r *entities.DonationRequest, progress funding.Progress) *domain.DonationRequestResponse {
	return &domain.DonationRequestResponse{
		ID:     r.ID.String(),
		UserID: r.UserID.String(),
		Patient: domain.PatientProfile{
			Name:   r.PatientName,
			Age:    r.PatientAge,
			Gender: r.PatientGender,
			Phone:  r.PatientPhone,
		},
		MedicalProblem: r.MedicalProblem,
		Overview:       r.Overview,
		DonationAmount: r.DonationAmount,
		Status:         r.Status,
		Version:        r.Version,
		Proofs: domain.ProofDocuments{
			MedicalReportURL:       r.MedicalReportURL,
			IdentificationProofURL: r.IdentificationProofURL,
			PhotoURL:               r.PhotoURL,
		},
		Progress:  progress,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

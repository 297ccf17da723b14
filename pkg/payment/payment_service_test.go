package payment

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/entities"
	"MedFund-Backend/internal/cache"
	"MedFund-Backend/internal/testutil"
	"MedFund-Backend/internal/utils/mailing"
	"MedFund-Backend/internal/utils/storage"
	"MedFund-Backend/pkg/donation"
	"MedFund-Backend/pkg/events"
	"MedFund-Backend/pkg/request"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	name      string
	outcome   Outcome
	createErr error
	amountErr error
	intents   []Intent
	webhook   Notification
	hookErr   error
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) ValidateAmount(string, decimal.Decimal) error { return g.amountErr }

func (g *fakeGateway) CreateIntent(_ context.Context, intent Intent) (IntentResult, error) {
	if g.createErr != nil {
		return IntentResult{}, g.createErr
	}
	g.intents = append(g.intents, intent)
	return IntentResult{ProviderRef: "ref_" + intent.OrderID, ClientSecret: "secret_" + intent.OrderID}, nil
}

func (g *fakeGateway) Status(context.Context, string, string) (Outcome, error) {
	return g.outcome, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (Notification, error) {
	return g.webhook, g.hookErr
}

type paymentFixture struct {
	db        *gorm.DB
	svc       PaymentService
	gateway   *fakeGateway
	publisher *events.MemoryPublisher
	donor     domain.Session
	recipient *entities.User
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := testutil.NewDB(t)
	requestRepo := request.NewRequestRepository(db)
	publisher := events.NewMemoryPublisher()
	requestSvc := request.NewRequestService(
		requestRepo,
		storage.NewAwsS3WithClient(nil, "bucket", "region"),
		mailing.NewNopMailer(),
		publisher,
		cache.NewNopCache(),
		"",
	)
	gateway := &fakeGateway{name: ProviderStripe, outcome: OutcomeSuccess}
	donor := testutil.CreateUser(t, db, domain.RoleDonor)

	return &paymentFixture{
		db:        db,
		svc:       NewPaymentService(donation.NewDonationRepository(db), requestRepo, requestSvc, publisher, ProviderStripe, "USD", gateway),
		gateway:   gateway,
		publisher: publisher,
		donor:     domain.Session{UserID: donor.ID.String(), Role: domain.RoleDonor},
		recipient: testutil.CreateUser(t, db, domain.RoleRecipient),
	}
}

func (f *paymentFixture) storedDonation(t *testing.T, transactionID string) *entities.Donation {
	t.Helper()
	var d entities.Donation
	require.NoError(t, f.db.Where("transaction_id = ?", transactionID).First(&d).Error)
	return &d
}

func TestCreateIntent(t *testing.T) {
	f := newPaymentFixture(t)
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	res, err := f.svc.CreateIntent(context.Background(), f.donor, domain.CreatePaymentIntentRequest{
		RequestID: req.ID.String(),
		Amount:    "250.00",
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderStripe, res.Provider)
	assert.Len(t, res.TransactionID, 26)
	assert.Equal(t, "secret_"+res.TransactionID, res.ClientSecret)

	stored := f.storedDonation(t, res.TransactionID)
	assert.Equal(t, domain.DonationStatusPending, stored.Status)
	assert.Equal(t, "ref_"+res.TransactionID, stored.ProviderRef)
	assert.Equal(t, "USD", stored.Currency)
}

func TestCreateIntent_Rejections(t *testing.T) {
	f := newPaymentFixture(t)
	pending := testutil.CreateRequest(t, f.db, f.recipient, 1000, "pending")
	achieved := testutil.CreateRequest(t, f.db, f.recipient, 1000, "achieved")
	approved := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	cases := []struct {
		name string
		req  domain.CreatePaymentIntentRequest
		err  error
	}{
		{"pending request", domain.CreatePaymentIntentRequest{RequestID: pending.ID.String(), Amount: "10"}, domain.ErrRequestNotAccepting},
		{"achieved request", domain.CreatePaymentIntentRequest{RequestID: achieved.ID.String(), Amount: "10"}, domain.ErrRequestNotAccepting},
		{"zero amount", domain.CreatePaymentIntentRequest{RequestID: approved.ID.String(), Amount: "0"}, domain.ErrInvalidDonationAmount},
		{"negative amount", domain.CreatePaymentIntentRequest{RequestID: approved.ID.String(), Amount: "-5"}, domain.ErrInvalidDonationAmount},
		{"unknown provider", domain.CreatePaymentIntentRequest{RequestID: approved.ID.String(), Amount: "10", Provider: "paypal"}, domain.ErrUnknownPaymentProvider},
		{"unknown request", domain.CreatePaymentIntentRequest{RequestID: "3f0c9a8e-5d59-4c41-9d4a-5a0f5a4c2a11", Amount: "10"}, domain.ErrRequestNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateIntent(context.Background(), f.donor, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCreateIntent_AmountTheGatewayCannotChargeCreatesNoDonation(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.amountErr = domain.ErrInvalidDonationAmount
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	_, err := f.svc.CreateIntent(context.Background(), f.donor, domain.CreatePaymentIntentRequest{
		RequestID: req.ID.String(), Amount: "10.50",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDonationAmount)
	assert.Empty(t, f.gateway.intents)

	var count int64
	require.NoError(t, f.db.Model(&entities.Donation{}).Where("request_id = ?", req.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateIntent_StoresTheChargedAmount(t *testing.T) {
	f := newPaymentFixture(t)
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	res, err := f.svc.CreateIntent(context.Background(), f.donor, domain.CreatePaymentIntentRequest{
		RequestID: req.ID.String(), Amount: "10.50",
	})
	require.NoError(t, err)

	require.Len(t, f.gateway.intents, 1)
	stored := f.storedDonation(t, res.TransactionID)
	assert.True(t, stored.Amount.Equal(f.gateway.intents[0].Amount), "stored %s, charged %s", stored.Amount, f.gateway.intents[0].Amount)
}

func TestCreateIntent_GatewayFailureMarksDonationFailed(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.createErr = errors.New("card network down")
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	_, err := f.svc.CreateIntent(context.Background(), f.donor, domain.CreatePaymentIntentRequest{
		RequestID: req.ID.String(), Amount: "10",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)

	var d entities.Donation
	require.NoError(t, f.db.Where("request_id = ?", req.ID).First(&d).Error)
	assert.Equal(t, domain.DonationStatusFailed, d.Status)
}

func TestConfirm_FinalizesOnceAndAutoAchieves(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	intent, err := f.svc.CreateIntent(ctx, f.donor, domain.CreatePaymentIntentRequest{RequestID: req.ID.String(), Amount: "1000"})
	require.NoError(t, err)

	res, err := f.svc.Confirm(ctx, f.donor, domain.ConfirmPaymentRequest{TransactionID: intent.TransactionID})
	require.NoError(t, err)
	assert.Equal(t, domain.DonationStatusSuccess, res.Status)

	f.gateway.outcome = OutcomeFailed
	res, err = f.svc.Confirm(ctx, f.donor, domain.ConfirmPaymentRequest{TransactionID: intent.TransactionID})
	require.NoError(t, err)
	assert.Equal(t, domain.DonationStatusSuccess, res.Status)

	assert.Len(t, f.publisher.OfType(events.TopicDonationFinalized), 1)

	var stored entities.DonationRequest
	require.NoError(t, f.db.Where("id = ?", req.ID).First(&stored).Error)
	assert.Equal(t, "achieved", stored.Status)

	changes := f.publisher.OfType(events.TopicRequestStatusChanged)
	require.Len(t, changes, 1)
	assert.False(t, changes[0].Override)
}

func TestConfirm_PendingOutcomeLeavesDonationPending(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.outcome = OutcomePending
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")

	intent, err := f.svc.CreateIntent(context.Background(), f.donor, domain.CreatePaymentIntentRequest{RequestID: req.ID.String(), Amount: "10"})
	require.NoError(t, err)

	res, err := f.svc.Confirm(context.Background(), f.donor, domain.ConfirmPaymentRequest{TransactionID: intent.TransactionID})
	require.NoError(t, err)
	assert.Equal(t, domain.DonationStatusPending, res.Status)
	assert.Empty(t, f.publisher.Events())
}

func TestConfirm_OtherDonorIsRejected(t *testing.T) {
	f := newPaymentFixture(t)
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")
	intent, err := f.svc.CreateIntent(context.Background(), f.donor, domain.CreatePaymentIntentRequest{RequestID: req.ID.String(), Amount: "10"})
	require.NoError(t, err)

	stranger := testutil.CreateUser(t, f.db, domain.RoleDonor)
	_, err = f.svc.Confirm(context.Background(), domain.Session{UserID: stranger.ID.String(), Role: domain.RoleDonor},
		domain.ConfirmPaymentRequest{TransactionID: intent.TransactionID})
	assert.ErrorIs(t, err, domain.ErrUnauthorizedDonationAccess)
}

func TestHandleWebhook(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")
	intent, err := f.svc.CreateIntent(ctx, f.donor, domain.CreatePaymentIntentRequest{RequestID: req.ID.String(), Amount: "10"})
	require.NoError(t, err)

	f.gateway.webhook = Notification{OrderID: intent.TransactionID, Outcome: OutcomeFailed}
	require.NoError(t, f.svc.HandleWebhook(ctx, ProviderStripe, []byte(`{}`), "sig"))
	assert.Equal(t, domain.DonationStatusFailed, f.storedDonation(t, intent.TransactionID).Status)

	// Redelivery of the same callback changes nothing.
	require.NoError(t, f.svc.HandleWebhook(ctx, ProviderStripe, []byte(`{}`), "sig"))
	assert.Len(t, f.publisher.OfType(events.TopicDonationFinalized), 1)
}

func TestHandleWebhook_DeclineThenSuccessCounts(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	req := testutil.CreateRequest(t, f.db, f.recipient, 1000, "approved")
	intent, err := f.svc.CreateIntent(ctx, f.donor, domain.CreatePaymentIntentRequest{RequestID: req.ID.String(), Amount: "1000"})
	require.NoError(t, err)

	// a declined card leaves the payment open for a retry
	f.gateway.webhook = Notification{OrderID: intent.TransactionID, Outcome: OutcomePending}
	require.NoError(t, f.svc.HandleWebhook(ctx, ProviderStripe, []byte(`{}`), "sig"))
	assert.Equal(t, domain.DonationStatusPending, f.storedDonation(t, intent.TransactionID).Status)

	f.gateway.webhook = Notification{OrderID: intent.TransactionID, Outcome: OutcomeSuccess}
	require.NoError(t, f.svc.HandleWebhook(ctx, ProviderStripe, []byte(`{}`), "sig"))
	assert.Equal(t, domain.DonationStatusSuccess, f.storedDonation(t, intent.TransactionID).Status)

	var stored entities.DonationRequest
	require.NoError(t, f.db.Where("id = ?", req.ID).First(&stored).Error)
	assert.Equal(t, "achieved", stored.Status)
}

func TestUsable(t *testing.T) {
	stripeGateway := NewStripeGatewayWithClient(&fakeIntents{}, "")
	midtransGateway := NewMidtransGatewayWithClients(&fakeSnap{}, &fakeCore{}, "k")

	assert.Equal(t, []Gateway{stripeGateway}, Usable("USD", stripeGateway, midtransGateway))
	assert.Equal(t, []Gateway{stripeGateway, midtransGateway}, Usable("IDR", stripeGateway, midtransGateway))
	assert.Empty(t, Usable("KWD", stripeGateway))
}

func TestHandleWebhook_Errors(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	f.gateway.hookErr = ErrIgnoredEvent
	assert.NoError(t, f.svc.HandleWebhook(ctx, ProviderStripe, nil, ""))

	f.gateway.hookErr = domain.ErrInvalidWebhookSignature
	assert.ErrorIs(t, f.svc.HandleWebhook(ctx, ProviderStripe, nil, ""), domain.ErrInvalidWebhookSignature)

	f.gateway.hookErr = nil
	f.gateway.webhook = Notification{OrderID: "01HZZZZZZZZZZZZZZZZZZZZZZZ", Outcome: OutcomeSuccess}
	assert.ErrorIs(t, f.svc.HandleWebhook(ctx, ProviderStripe, nil, ""), domain.ErrDonationNotFound)

	assert.ErrorIs(t, f.svc.HandleWebhook(ctx, ProviderMidtrans, nil, ""), domain.ErrUnknownPaymentProvider)
}

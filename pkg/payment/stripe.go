package payment

import (
	"MedFund-Backend/domain"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const orderIDMetadataKey = "order_id"

// PaymentIntents is the part of the stripe client the gateway calls.
type PaymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeGateway struct {
	intents       PaymentIntents
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) Gateway {
	sc := client.New(secretKey, nil)
	return NewStripeGatewayWithClient(sc.PaymentIntents, webhookSecret)
}

func NewStripeGatewayWithClient(intents PaymentIntents, webhookSecret string) Gateway {
	return &stripeGateway{intents: intents, webhookSecret: webhookSecret}
}

func (g *stripeGateway) Name() string { return ProviderStripe }

// Stripe charges in the currency's smallest unit. Zero-decimal currencies
// have none; three-decimal ones need amounts rounded to ten minor units and
// are not accepted here.
var (
	stripeZeroDecimal  = []string{"BIF", "CLP", "DJF", "GNF", "JPY", "KMF", "KRW", "MGA", "PYG", "RWF", "UGX", "VND", "VUV", "XAF", "XOF", "XPF"}
	stripeThreeDecimal = []string{"BHD", "JOD", "KWD", "OMR", "TND"}
)

func stripeMinorUnits(currency string) (int32, error) {
	currency = strings.ToUpper(currency)
	switch {
	case currency == "":
		return 0, fmt.Errorf("%w: no currency configured", domain.ErrUnsupportedCurrency)
	case slices.Contains(stripeThreeDecimal, currency):
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, currency)
	case slices.Contains(stripeZeroDecimal, currency):
		return 0, nil
	}
	return 2, nil
}

func (g *stripeGateway) ValidateAmount(currency string, amount decimal.Decimal) error {
	units, err := stripeMinorUnits(currency)
	if err != nil {
		return err
	}
	if !amount.Equal(amount.Truncate(units)) {
		return fmt.Errorf("%w: %s allows %d decimal places", domain.ErrInvalidDonationAmount, strings.ToUpper(currency), units)
	}
	return nil
}

func (g *stripeGateway) CreateIntent(ctx context.Context, intent Intent) (IntentResult, error) {
	if err := g.ValidateAmount(intent.Currency, intent.Amount); err != nil {
		return IntentResult{}, err
	}
	units, _ := stripeMinorUnits(intent.Currency)

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(intent.Amount.Shift(units).IntPart()),
		Currency:    stripe.String(strings.ToLower(intent.Currency)),
		Description: stripe.String(intent.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if intent.Email != "" {
		params.ReceiptEmail = stripe.String(intent.Email)
	}
	params.Context = ctx
	params.AddMetadata(orderIDMetadataKey, intent.OrderID)

	pi, err := g.intents.New(params)
	if err != nil {
		return IntentResult{}, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return IntentResult{ProviderRef: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *stripeGateway) Status(ctx context.Context, _ string, providerRef string) (Outcome, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(providerRef, params)
	if err != nil {
		return OutcomePending, fmt.Errorf("stripe get payment intent %s: %w", providerRef, err)
	}
	return stripeOutcome(pi.Status), nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (Notification, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %v", domain.ErrInvalidWebhookSignature, err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
	default:
		return Notification{}, ErrIgnoredEvent
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return Notification{}, fmt.Errorf("decode payment intent: %w", err)
	}
	orderID := pi.Metadata[orderIDMetadataKey]
	if orderID == "" {
		return Notification{}, ErrIgnoredEvent
	}

	// A declined attempt leaves the intent open for another card, so only
	// succeeded and canceled are final.
	outcome := OutcomePending
	switch event.Type {
	case "payment_intent.succeeded":
		outcome = OutcomeSuccess
	case "payment_intent.canceled":
		outcome = OutcomeFailed
	}
	return Notification{OrderID: orderID, Outcome: outcome}, nil
}

func stripeOutcome(status stripe.PaymentIntentStatus) Outcome {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return OutcomeSuccess
	case stripe.PaymentIntentStatusCanceled:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// Package payment turns donor payments into finalized donation records. A
// Gateway hides the provider; the service owns the donation bookkeeping.
package payment

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

const (
	ProviderStripe   = "stripe"
	ProviderMidtrans = "midtrans"
)

// Outcome is what a provider says about a payment.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

var ErrIgnoredEvent = errors.New("webhook event does not affect payments")

type (
	Intent struct {
		OrderID     string
		Amount      decimal.Decimal
		Currency    string
		Email       string
		Description string
	}

	IntentResult struct {
		// ProviderRef is the provider's own id for the payment, if different
		// from the order id.
		ProviderRef  string
		ClientSecret string
		RedirectURL  string
	}

	Notification struct {
		OrderID string
		Outcome Outcome
	}

	Gateway interface {
		Name() string
		// ValidateAmount reports whether the provider can charge amount in
		// currency exactly as it will be recorded.
		ValidateAmount(currency string, amount decimal.Decimal) error
		CreateIntent(ctx context.Context, intent Intent) (IntentResult, error)
		Status(ctx context.Context, orderID, providerRef string) (Outcome, error)
		// ParseWebhook verifies a callback and extracts the payment it is
		// about. It returns ErrIgnoredEvent for callbacks that carry nothing
		// actionable.
		ParseWebhook(payload []byte, signature string) (Notification, error)
	}
)

// Usable keeps the gateways able to charge in currency and logs the rest.
func Usable(currency string, gateways ...Gateway) []Gateway {
	out := make([]Gateway, 0, len(gateways))
	for _, g := range gateways {
		if err := g.ValidateAmount(currency, decimal.NewFromInt(1)); err != nil {
			log.Errorf("%s gateway disabled: %v", g.Name(), err)
			continue
		}
		out = append(out, g)
	}
	return out
}

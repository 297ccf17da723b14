package payment

import (
	"MedFund-Backend/domain"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

type (
	SnapClient interface {
		CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
	}

	StatusClient interface {
		CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
	}

	midtransNotification struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
	}

	midtransGateway struct {
		snap      SnapClient
		core      StatusClient
		serverKey string
	}
)

func NewMidtransGateway(serverKey string, isProd bool) Gateway {
	env := midtrans.Sandbox
	if isProd {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)
	var c coreapi.Client
	c.New(serverKey, env)

	return NewMidtransGatewayWithClients(&s, &c, serverKey)
}

func NewMidtransGatewayWithClients(snapClient SnapClient, statusClient StatusClient, serverKey string) Gateway {
	return &midtransGateway{snap: snapClient, core: statusClient, serverKey: serverKey}
}

func (g *midtransGateway) Name() string { return ProviderMidtrans }

// midtransCurrency is the only currency Snap charges in. Amounts are whole
// rupiah.
const midtransCurrency = "IDR"

func (g *midtransGateway) ValidateAmount(currency string, amount decimal.Decimal) error {
	if !strings.EqualFold(currency, midtransCurrency) {
		return fmt.Errorf("%w: midtrans charges %s, not %q", domain.ErrUnsupportedCurrency, midtransCurrency, currency)
	}
	if !amount.IsInteger() {
		return fmt.Errorf("%w: %s amounts must be whole", domain.ErrInvalidDonationAmount, midtransCurrency)
	}
	return nil
}

func (g *midtransGateway) CreateIntent(_ context.Context, intent Intent) (IntentResult, error) {
	if err := g.ValidateAmount(intent.Currency, intent.Amount); err != nil {
		return IntentResult{}, err
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  intent.OrderID,
			GrossAmt: intent.Amount.IntPart(),
		},
	}
	if intent.Email != "" {
		req.CustomerDetail = &midtrans.CustomerDetails{Email: intent.Email}
	}

	res, mErr := g.snap.CreateTransaction(req)
	if mErr != nil {
		return IntentResult{}, fmt.Errorf("midtrans create transaction: %s", mErr.GetMessage())
	}
	return IntentResult{ProviderRef: res.Token, RedirectURL: res.RedirectURL}, nil
}

func (g *midtransGateway) Status(_ context.Context, orderID string, _ string) (Outcome, error) {
	res, mErr := g.core.CheckTransaction(orderID)
	if mErr != nil {
		return OutcomePending, fmt.Errorf("midtrans check transaction %s: %s", orderID, mErr.GetMessage())
	}
	return midtransOutcome(res.TransactionStatus, res.FraudStatus), nil
}

func (g *midtransGateway) ParseWebhook(payload []byte, _ string) (Notification, error) {
	var n midtransNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notification{}, fmt.Errorf("decode midtrans notification: %w", err)
	}

	expected := g.signature(n.OrderID, n.StatusCode, n.GrossAmount)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) != 1 {
		return Notification{}, domain.ErrInvalidWebhookSignature
	}
	return Notification{OrderID: n.OrderID, Outcome: midtransOutcome(n.TransactionStatus, n.FraudStatus)}, nil
}

// signature is sha512(order_id + status_code + gross_amount + server_key).
func (g *midtransGateway) signature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + g.serverKey))
	return hex.EncodeToString(sum[:])
}

func midtransOutcome(transactionStatus, fraudStatus string) Outcome {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return OutcomePending
		}
		return OutcomeSuccess
	case "settlement":
		return OutcomeSuccess
	case "deny", "cancel", "expire", "failure":
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

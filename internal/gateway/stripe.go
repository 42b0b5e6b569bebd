package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/webhook"
)

// StripeGateway charges international cards in USD through Stripe Checkout.
type StripeGateway struct {
	secretKey     string
	webhookSecret string
	siteURL       string
}

func NewStripeGateway(secretKey, webhookSecret, siteURL string) *StripeGateway {
	if secretKey != "" {
		stripe.Key = secretKey
		stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient:        &http.Client{Timeout: 15 * time.Second},
			MaxNetworkRetries: stripe.Int64(1),
		}))
	}
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		siteURL:       siteURL,
	}
}

func (g *StripeGateway) Name() string { return orders.GatewayStripe }

// CreateSession opens a one-shot Checkout session for the order. The order id
// rides along in metadata so the webhook can find its way back.
func (g *StripeGateway) CreateSession(ctx context.Context, order *orders.Order, pkg catalog.Package) (*Session, error) {
	if g.secretKey == "" {
		return nil, fmt.Errorf("%w: Stripe key not configured", ErrUnavailable)
	}

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: []*string{
			stripe.String("card"),
		},
		SuccessURL: stripe.String(g.siteURL + "/order/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.siteURL + "/order/cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(order.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(pkg.Name + " Package"),
						Description: stripe.String(strings.Join(pkg.Features, ", ")),
					},
					// Stripe wants the smallest currency unit.
					UnitAmount: stripe.Int64(int64(order.Amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(order.UserID),
		Metadata: map[string]string{
			"order_id": order.ID,
			"user_id":  order.UserID,
			"plan":     order.Plan,
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Session{ExternalID: s.ID, RedirectURL: s.URL}, nil
}

// VerifyNotification checks the Stripe-Signature header against the endpoint
// secret and maps the whitelisted checkout session events to order outcomes.
// Any other event type is acknowledged without a notification.
func (g *StripeGateway) VerifyNotification(payload []byte, signature string) (*Notification, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrUnavailable)
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var outcome string
	switch event.Type {
	case "checkout.session.completed":
		outcome = orders.StatusPaid
	case "checkout.session.async_payment_failed":
		outcome = orders.StatusFailed
	case "checkout.session.expired":
		outcome = orders.StatusCanceled
	default:
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("parse checkout session: %w", err)
	}

	return &Notification{
		OrderID:    session.Metadata["order_id"],
		ExternalID: session.ID,
		Outcome:    outcome,
	}, nil
}

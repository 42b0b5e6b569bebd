package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
)

const paymobBaseURL = "https://accept.paymob.com"

// PaymobGateway charges Egyptian customers in EGP through the Paymob Accept
// API. Session creation is Accept's three-step dance: auth token, ecommerce
// order, payment key; the redirect target is the hosted iframe.
type PaymobGateway struct {
	apiKey        string
	hmacSecret    string
	integrationID string
	iframeID      string
	baseURL       string
	client        *http.Client
}

func NewPaymobGateway(apiKey, hmacSecret, integrationID, iframeID string) *PaymobGateway {
	return &PaymobGateway{
		apiKey:        apiKey,
		hmacSecret:    hmacSecret,
		integrationID: integrationID,
		iframeID:      iframeID,
		baseURL:       paymobBaseURL,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PaymobGateway) Name() string { return orders.GatewayPaymob }

func (g *PaymobGateway) CreateSession(ctx context.Context, order *orders.Order, pkg catalog.Package) (*Session, error) {
	if g.apiKey == "" || g.integrationID == "" {
		return nil, fmt.Errorf("%w: Paymob credentials not configured", ErrUnavailable)
	}

	amountCents := int64(order.Amount * 100)

	var auth struct {
		Token string `json:"token"`
	}
	if err := g.post(ctx, "/api/auth/tokens", map[string]interface{}{
		"api_key": g.apiKey,
	}, &auth); err != nil {
		return nil, err
	}

	var acceptOrder struct {
		ID int64 `json:"id"`
	}
	if err := g.post(ctx, "/api/ecommerce/orders", map[string]interface{}{
		"auth_token":        auth.Token,
		"delivery_needed":   "false",
		"amount_cents":      amountCents,
		"currency":          order.Currency,
		"merchant_order_id": order.ID,
		"items": []map[string]interface{}{
			{
				"name":         pkg.Name + " Package",
				"amount_cents": amountCents,
				"quantity":     1,
			},
		},
	}, &acceptOrder); err != nil {
		return nil, err
	}

	var key struct {
		Token string `json:"token"`
	}
	if err := g.post(ctx, "/api/acceptance/payment_keys", map[string]interface{}{
		"auth_token":     auth.Token,
		"amount_cents":   amountCents,
		"expiration":     3600,
		"order_id":       acceptOrder.ID,
		"currency":       order.Currency,
		"integration_id": g.integrationID,
		// Accept insists on billing data; the fields we do not collect are
		// sent as NA per their docs.
		"billing_data": map[string]string{
			"email":        "NA",
			"first_name":   "NA",
			"last_name":    "NA",
			"phone_number": "NA",
			"country":      order.CountryCode,
			"city":         "NA",
			"street":       "NA",
			"building":     "NA",
			"floor":        "NA",
			"apartment":    "NA",
		},
	}, &key); err != nil {
		return nil, err
	}

	return &Session{
		ExternalID:  fmt.Sprint(acceptOrder.ID),
		RedirectURL: fmt.Sprintf("%s/api/acceptance/iframes/%s?payment_token=%s", g.baseURL, g.iframeID, key.Token),
	}, nil
}

// paymobTransaction is the obj of Accept's TRANSACTION callback. Numeric
// fields stay json.Number so the HMAC string is built from the exact digits
// Paymob sent, not a float round-trip.
type paymobTransaction struct {
	AmountCents          json.Number `json:"amount_cents"`
	CreatedAt            string      `json:"created_at"`
	Currency             string      `json:"currency"`
	ErrorOccured         bool        `json:"error_occured"`
	HasParentTransaction bool        `json:"has_parent_transaction"`
	ID                   json.Number `json:"id"`
	IntegrationID        json.Number `json:"integration_id"`
	Is3DSecure           bool        `json:"is_3d_secure"`
	IsAuth               bool        `json:"is_auth"`
	IsCapture            bool        `json:"is_capture"`
	IsRefunded           bool        `json:"is_refunded"`
	IsStandalonePayment  bool        `json:"is_standalone_payment"`
	IsVoided             bool        `json:"is_voided"`
	Order                struct {
		ID              json.Number `json:"id"`
		MerchantOrderID string      `json:"merchant_order_id"`
	} `json:"order"`
	Owner      json.Number `json:"owner"`
	Pending    bool        `json:"pending"`
	SourceData struct {
		Pan     string `json:"pan"`
		SubType string `json:"sub_type"`
		Type    string `json:"type"`
	} `json:"source_data"`
	Success bool `json:"success"`
}

// VerifyNotification checks the transaction callback against the HMAC secret.
// Accept signs the concatenation of a fixed, lexicographically ordered field
// list with HMAC-SHA512; the hex digest arrives as the hmac query parameter.
func (g *PaymobGateway) VerifyNotification(payload []byte, signature string) (*Notification, error) {
	if g.hmacSecret == "" {
		return nil, fmt.Errorf("%w: Paymob HMAC secret not configured", ErrUnavailable)
	}
	if signature == "" {
		return nil, fmt.Errorf("%w: missing hmac parameter", ErrInvalidSignature)
	}

	var callback struct {
		Type string          `json:"type"`
		Obj  json.RawMessage `json:"obj"`
	}
	if err := json.Unmarshal(payload, &callback); err != nil {
		return nil, fmt.Errorf("parse callback: %w", err)
	}
	if callback.Type != "TRANSACTION" {
		return nil, nil
	}

	var tx paymobTransaction
	dec := json.NewDecoder(bytes.NewReader(callback.Obj))
	dec.UseNumber()
	if err := dec.Decode(&tx); err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}

	if !g.checkHMAC(&tx, signature) {
		return nil, fmt.Errorf("%w: hmac mismatch", ErrInvalidSignature)
	}

	if tx.Pending {
		return nil, nil
	}

	outcome := orders.StatusFailed
	if tx.Success {
		outcome = orders.StatusPaid
	}
	if tx.IsVoided || tx.IsRefunded {
		// Post-payment reversals are handled by support tooling, not the
		// order state machine.
		return nil, nil
	}

	return &Notification{
		OrderID:    tx.Order.MerchantOrderID,
		ExternalID: tx.Order.ID.String(),
		Outcome:    outcome,
	}, nil
}

func (g *PaymobGateway) checkHMAC(tx *paymobTransaction, signature string) bool {
	concat := strings.Join([]string{
		tx.AmountCents.String(),
		tx.CreatedAt,
		tx.Currency,
		boolStr(tx.ErrorOccured),
		boolStr(tx.HasParentTransaction),
		tx.ID.String(),
		tx.IntegrationID.String(),
		boolStr(tx.Is3DSecure),
		boolStr(tx.IsAuth),
		boolStr(tx.IsCapture),
		boolStr(tx.IsRefunded),
		boolStr(tx.IsStandalonePayment),
		boolStr(tx.IsVoided),
		tx.Order.ID.String(),
		tx.Owner.String(),
		boolStr(tx.Pending),
		tx.SourceData.Pan,
		tx.SourceData.SubType,
		tx.SourceData.Type,
		boolStr(tx.Success),
	}, "")

	mac := hmac.New(sha512.New, []byte(g.hmacSecret))
	mac.Write([]byte(concat))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (g *PaymobGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal paymob request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build paymob request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: paymob %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode paymob response: %v", ErrUnavailable, err)
	}
	return nil
}

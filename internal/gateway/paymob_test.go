package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHMACSecret = "paymob-hmac-secret"

// signPaymob reproduces Accept's signature: HMAC-SHA512 over the fixed field
// concatenation, hex encoded.
func signPaymob(secret, concat string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(concat))
	return hex.EncodeToString(mac.Sum(nil))
}

func paymobCallback(t *testing.T, success, pending bool, merchantOrderID string) ([]byte, string) {
	t.Helper()

	payload := fmt.Sprintf(`{
		"type": "TRANSACTION",
		"obj": {
			"amount_cents": 495000,
			"created_at": "2025-01-15T10:00:00",
			"currency": "EGP",
			"error_occured": false,
			"has_parent_transaction": false,
			"id": 9001,
			"integration_id": 12345,
			"is_3d_secure": true,
			"is_auth": false,
			"is_capture": false,
			"is_refunded": false,
			"is_standalone_payment": true,
			"is_voided": false,
			"order": {"id": 777, "merchant_order_id": %q},
			"owner": 42,
			"pending": %t,
			"source_data": {"pan": "1234", "sub_type": "MasterCard", "type": "card"},
			"success": %t
		}
	}`, merchantOrderID, pending, success)

	concat := "495000" + "2025-01-15T10:00:00" + "EGP" +
		"false" + "false" + "9001" + "12345" + "true" + "false" + "false" +
		"false" + "true" + "false" + "777" + "42" + boolStr(pending) +
		"1234" + "MasterCard" + "card" + boolStr(success)

	return []byte(payload), signPaymob(testHMACSecret, concat)
}

func TestPaymobVerifyNotificationPaid(t *testing.T) {
	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")

	payload, sig := paymobCallback(t, true, false, "order-abc")
	n, err := gw.VerifyNotification(payload, sig)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "order-abc", n.OrderID)
	assert.Equal(t, "777", n.ExternalID)
	assert.Equal(t, orders.StatusPaid, n.Outcome)
}

func TestPaymobVerifyNotificationFailed(t *testing.T) {
	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")

	payload, sig := paymobCallback(t, false, false, "order-abc")
	n, err := gw.VerifyNotification(payload, sig)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, orders.StatusFailed, n.Outcome)
}

func TestPaymobVerifyNotificationPendingIsIgnored(t *testing.T) {
	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")

	payload, sig := paymobCallback(t, false, true, "order-abc")
	n, err := gw.VerifyNotification(payload, sig)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestPaymobVerifyNotificationForgedSignature(t *testing.T) {
	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")

	payload, _ := paymobCallback(t, true, false, "order-abc")
	_, err := gw.VerifyNotification(payload, signPaymob("wrong-secret", "whatever"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = gw.VerifyNotification(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPaymobVerifyNotificationNonTransactionType(t *testing.T) {
	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")

	n, err := gw.VerifyNotification([]byte(`{"type":"TOKEN","obj":{}}`), "deadbeef")
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestPaymobCreateSession(t *testing.T) {
	var gotMerchantOrderID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/api/auth/tokens":
			require.Equal(t, "key", body["api_key"])
			json.NewEncoder(w).Encode(map[string]string{"token": "auth-token"})
		case "/api/ecommerce/orders":
			require.Equal(t, "auth-token", body["auth_token"])
			gotMerchantOrderID, _ = body["merchant_order_id"].(string)
			json.NewEncoder(w).Encode(map[string]int64{"id": 777})
		case "/api/acceptance/payment_keys":
			require.Equal(t, float64(777), body["order_id"])
			json.NewEncoder(w).Encode(map[string]string{"token": "payment-key"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")
	gw.baseURL = srv.URL
	gw.client = srv.Client()

	order := &orders.Order{
		ID:          "order-abc",
		UserID:      "user-1",
		Plan:        catalog.PlanStandard,
		Amount:      4950,
		Currency:    orders.CurrencyEGP,
		Gateway:     orders.GatewayPaymob,
		CountryCode: "EG",
	}
	pkg, ok := catalog.Default().Get(catalog.PlanStandard, orders.CurrencyEGP)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := gw.CreateSession(ctx, order, pkg)
	require.NoError(t, err)
	assert.Equal(t, "777", session.ExternalID)
	assert.Equal(t, srv.URL+"/api/acceptance/iframes/67890?payment_token=payment-key", session.RedirectURL)
	assert.Equal(t, "order-abc", gotMerchantOrderID)
}

func TestPaymobCreateSessionUnconfigured(t *testing.T) {
	gw := NewPaymobGateway("", "", "", "")

	pkg, _ := catalog.Default().Get(catalog.PlanStandard, orders.CurrencyEGP)
	_, err := gw.CreateSession(context.Background(), &orders.Order{}, pkg)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPaymobCreateSessionProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := NewPaymobGateway("key", testHMACSecret, "12345", "67890")
	gw.baseURL = srv.URL
	gw.client = srv.Client()

	pkg, _ := catalog.Default().Get(catalog.PlanStandard, orders.CurrencyEGP)
	_, err := gw.CreateSession(context.Background(), &orders.Order{Amount: 4950, Currency: orders.CurrencyEGP}, pkg)
	assert.ErrorIs(t, err, ErrUnavailable)
}

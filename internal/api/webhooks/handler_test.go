package webhooks_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/elmrakby/ai-resume-agent/internal/api/webhooks"
	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
	"github.com/elmrakby/ai-resume-agent/internal/gateway"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const webhookSecret = "whsec_test_secret"

func setup(t *testing.T) (*gin.Engine, *orders.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orders.Order{}))

	co := orders.NewCoordinator(db, catalog.Default())
	stripeGW := gateway.NewStripeGateway("", webhookSecret, "http://localhost:5173")

	r := gin.New()
	r.POST("/webhooks/:gateway", webhooks.NewHandler(co, stripeGW).HandleNotification)
	return r, co
}

func pendingOrder(t *testing.T, co *orders.Coordinator, externalID string) *orders.Order {
	t.Helper()
	order, err := co.CreateOrder(context.Background(), orders.CreateParams{
		UserID:   "user-1",
		Plan:     catalog.PlanStandard,
		Currency: orders.CurrencyUSD,
		Gateway:  orders.GatewayStripe,
	})
	require.NoError(t, err)
	require.Equal(t, float64(99), order.Amount)
	_, err = co.AttachExternalSession(context.Background(), order.ID, externalID)
	require.NoError(t, err)
	return order
}

func signedEvent(t *testing.T, secret, eventType, sessionID, orderID string) (*bytes.Reader, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": %q, "object": "checkout.session", "metadata": {"order_id": %q}}}
	}`, eventType, sessionID, orderID))

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	sig := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
	return bytes.NewReader(payload), sig
}

func deliver(r *gin.Engine, body *bytes.Reader, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", body)
	req.Header.Set("Stripe-Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	r, co := setup(t)
	order := pendingOrder(t, co, "cs_test_123")

	body, sig := signedEvent(t, webhookSecret, "checkout.session.completed", "cs_test_123", order.ID)
	w := deliver(r, body, sig)
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := co.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, stored.Status)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	r, co := setup(t)
	order := pendingOrder(t, co, "cs_test_123")

	body, sig := signedEvent(t, webhookSecret, "checkout.session.completed", "cs_test_123", order.ID)
	w := deliver(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)

	body, sig = signedEvent(t, webhookSecret, "checkout.session.completed", "cs_test_123", order.ID)
	w = deliver(r, body, sig)
	assert.Equal(t, http.StatusOK, w.Code, "redelivery must succeed without error")

	stored, err := co.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, stored.Status)
}

func TestWebhookForgedSignatureRejected(t *testing.T) {
	r, co := setup(t)
	order := pendingOrder(t, co, "cs_test_123")

	body, sig := signedEvent(t, "whsec_wrong", "checkout.session.completed", "cs_test_123", order.ID)
	w := deliver(r, body, sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := co.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, stored.Status, "forged delivery must not mutate the order")
}

func TestWebhookSessionMismatch(t *testing.T) {
	r, co := setup(t)
	order := pendingOrder(t, co, "cs_test_123")

	body, sig := signedEvent(t, webhookSecret, "checkout.session.completed", "cs_test_other", order.ID)
	w := deliver(r, body, sig)
	assert.Equal(t, http.StatusConflict, w.Code)

	stored, err := co.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, stored.Status)
}

func TestWebhookUnknownOrder(t *testing.T) {
	r, _ := setup(t)

	body, sig := signedEvent(t, webhookSecret, "checkout.session.completed", "cs_test_123", "no-such-order")
	w := deliver(r, body, sig)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookIgnoredEventTypeAcknowledged(t *testing.T) {
	r, co := setup(t)
	order := pendingOrder(t, co, "cs_test_123")

	body, sig := signedEvent(t, webhookSecret, "invoice.paid", "cs_test_123", order.ID)
	w := deliver(r, body, sig)
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := co.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, stored.Status)
}

func TestWebhookUnknownGateway(t *testing.T) {
	r, _ := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/unknown", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package checkout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/elmrakby/ai-resume-agent/internal/api/checkout"
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

type fakeGateway struct {
	name       string
	session    *gateway.Session
	createErr  error
	lastOrder  *orders.Order
	lastAmount float64
}

func (f *fakeGateway) Name() string { return f.name }

func (f *fakeGateway) CreateSession(ctx context.Context, order *orders.Order, pkg catalog.Package) (*gateway.Session, error) {
	f.lastOrder = order
	f.lastAmount = pkg.Price
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.session, nil
}

func (f *fakeGateway) VerifyNotification(payload []byte, signature string) (*gateway.Notification, error) {
	return nil, nil
}

func setup(t *testing.T, gw gateway.Gateway) (*gin.Engine, *orders.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orders.Order{}))

	cat := catalog.Default()
	co := orders.NewCoordinator(db, cat)

	r := gin.New()
	r.POST("/checkout", func(c *gin.Context) {
		c.Set("user_id", "user-1")
	}, checkout.NewHandler(co, cat, gw).CreateCheckout)
	return r, co
}

func postCheckout(r *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutCreatesOrderAndSession(t *testing.T) {
	gw := &fakeGateway{
		name:    orders.GatewayStripe,
		session: &gateway.Session{ExternalID: "cs_test_123", RedirectURL: "https://checkout.example/session"},
	}
	r, co := setup(t, gw)

	w := postCheckout(r, map[string]string{"plan": "STANDARD", "gateway": "STRIPE", "countryCode": "US"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RedirectURL string `json:"redirectUrl"`
		OrderID     string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.example/session", resp.RedirectURL)

	stored, err := co.GetOrder(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, stored.Status)
	assert.Equal(t, float64(99), stored.Amount)
	assert.Equal(t, orders.CurrencyUSD, stored.Currency)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "cs_test_123", *stored.ExternalID)

	// the session was opened for the persisted order, not a copy
	require.NotNil(t, gw.lastOrder)
	assert.Equal(t, resp.OrderID, gw.lastOrder.ID)
	assert.Equal(t, float64(99), gw.lastAmount)
}

func TestCheckoutInvalidPlan(t *testing.T) {
	gw := &fakeGateway{name: orders.GatewayStripe}
	r, _ := setup(t, gw)

	w := postCheckout(r, map[string]string{"plan": "ENTERPRISE", "gateway": "STRIPE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, gw.lastOrder, "no session may be opened for an invalid plan")
}

func TestCheckoutMissingPlan(t *testing.T) {
	r, _ := setup(t, &fakeGateway{name: orders.GatewayStripe})

	w := postCheckout(r, map[string]string{"gateway": "STRIPE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutGatewayUnavailable(t *testing.T) {
	gw := &fakeGateway{name: orders.GatewayStripe, createErr: gateway.ErrUnavailable}
	r, co := setup(t, gw)

	w := postCheckout(r, map[string]string{"plan": "BASIC", "gateway": "STRIPE"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// the attempt is still auditable as a PENDING order
	list, err := co.ListUserOrders(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orders.StatusPending, list[0].Status)
	assert.Nil(t, list[0].ExternalID)
}

func TestCheckoutUnknownGateway(t *testing.T) {
	r, _ := setup(t, &fakeGateway{name: orders.GatewayStripe})

	w := postCheckout(r, map[string]string{"plan": "BASIC", "gateway": "SQUARE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutInfersGatewayFromCountry(t *testing.T) {
	gw := &fakeGateway{
		name:    orders.GatewayPaymob,
		session: &gateway.Session{ExternalID: "777", RedirectURL: "https://accept.example/iframe"},
	}
	r, co := setup(t, gw)

	w := postCheckout(r, map[string]string{"plan": "STANDARD", "countryCode": "EG"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list, err := co.ListUserOrders(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orders.GatewayPaymob, list[0].Gateway)
	assert.Equal(t, orders.CurrencyEGP, list[0].Currency)
	assert.Equal(t, float64(4950), list[0].Amount)
}

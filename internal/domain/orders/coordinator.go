package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidPlan     = errors.New("unknown plan")
	ErrInvalidOutcome  = errors.New("outcome is not a terminal status")
	ErrOrderNotFound   = errors.New("order not found")
	ErrSessionMismatch = errors.New("external session id does not match order")
)

// Coordinator owns the order state machine: it creates PENDING orders,
// attaches the gateway session id, and reconciles terminal outcomes delivered
// by gateway notifications. All terminal transitions go through a single
// conditional UPDATE so concurrent deliveries cannot race past the
// "terminal only once" rule.
type Coordinator struct {
	db      *gorm.DB
	catalog *catalog.Catalog
}

func NewCoordinator(db *gorm.DB, cat *catalog.Catalog) *Coordinator {
	return &Coordinator{db: db, catalog: cat}
}

// CreateParams carries everything CreateOrder needs besides the catalog.
type CreateParams struct {
	UserID      string
	Plan        string
	Currency    string
	Gateway     string
	CountryCode string
	IP          string
}

// CreateOrder persists a PENDING order with the amount snapshotted from the
// catalog. The row exists before any gateway call is made, so every checkout
// attempt is auditable even if the gateway call never completes.
func (co *Coordinator) CreateOrder(ctx context.Context, p CreateParams) (*Order, error) {
	amount, ok := co.catalog.Price(p.Plan, p.Currency)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlan, p.Plan)
	}

	order := Order{
		ID:          uuid.NewString(),
		UserID:      p.UserID,
		Plan:        p.Plan,
		Amount:      amount,
		Currency:    p.Currency,
		Gateway:     p.Gateway,
		Status:      StatusPending,
		CountryCode: p.CountryCode,
		IP:          p.IP,
	}
	if err := co.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// AttachExternalSession records the gateway's session id on the order. The id
// is written only while the column is still empty; re-attaching the same id is
// a no-op, attaching a different one fails.
func (co *Coordinator) AttachExternalSession(ctx context.Context, orderID, externalID string) (*Order, error) {
	res := co.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND external_id IS NULL", orderID).
		Update("external_id", externalID)
	if res.Error != nil {
		return nil, fmt.Errorf("attach session: %w", res.Error)
	}

	order, err := co.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		if order.ExternalID == nil || *order.ExternalID != externalID {
			return nil, ErrSessionMismatch
		}
	}
	return order, nil
}

// Reconcile applies a terminal outcome delivered by a gateway notification.
// The supplied externalID must match the stored one. Orders already in a
// terminal state are returned unchanged: webhook senders only guarantee
// at-least-once delivery, so redelivery is expected traffic, not an error.
func (co *Coordinator) Reconcile(ctx context.Context, orderID, externalID, outcome string) (*Order, error) {
	if !Terminal(outcome) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOutcome, outcome)
	}

	order, err := co.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ExternalID == nil || *order.ExternalID != externalID {
		return nil, ErrSessionMismatch
	}
	if Terminal(order.Status) {
		log.Printf("order %s already %s, ignoring %s notification", order.ID, order.Status, outcome)
		return order, nil
	}

	res := co.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ? AND external_id = ?", orderID, StatusPending, externalID).
		Updates(map[string]interface{}{
			"status":     outcome,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("reconcile order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// A concurrent reconcile won the conditional update. Whatever it
		// wrote is terminal, so re-reading is the idempotent answer.
		return co.GetOrder(ctx, orderID)
	}

	order.Status = outcome
	return order, nil
}

// GetOrder loads one order by id.
func (co *Coordinator) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := co.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// ListUserOrders returns the caller's orders, newest first.
func (co *Coordinator) ListUserOrders(ctx context.Context, userID string) ([]Order, error) {
	var list []Order
	err := co.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

package gateway

import (
	"context"
	"errors"

	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
)

var (
	// ErrUnavailable means the provider is unreachable or not configured.
	// Callers surface it as a retryable user-facing error, never a crash.
	ErrUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidSignature means the notification failed cryptographic
	// verification. Callers must reject the request and never apply the
	// outcome it carries.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Session is a hosted checkout page opened for one order.
type Session struct {
	ExternalID  string
	RedirectURL string
}

// Notification is the verified content of a gateway callback. A nil
// Notification with a nil error means the event type is recognized but
// carries no order outcome; the caller acknowledges it so the sender stops
// retrying.
type Notification struct {
	OrderID    string
	ExternalID string
	Outcome    string
}

// Gateway is the capability set both providers implement. The coordinator and
// handlers depend only on this interface, never on a provider name.
type Gateway interface {
	Name() string
	CreateSession(ctx context.Context, order *orders.Order, pkg catalog.Package) (*Session, error)
	VerifyNotification(payload []byte, signature string) (*Notification, error)
}

package orders

import "time"

// Order statuses. PENDING is the only non-terminal state; an order never
// leaves a terminal state again.
const (
	StatusPending  = "PENDING"
	StatusPaid     = "PAID"
	StatusFailed   = "FAILED"
	StatusCanceled = "CANCELED"
)

const (
	GatewayStripe = "STRIPE"
	GatewayPaymob = "PAYMOB"
)

const (
	CurrencyUSD = "USD"
	CurrencyEGP = "EGP"
)

// Order is one purchase attempt. Rows are never deleted; they are the audit
// trail a user can re-check after an uncertain checkout.
type Order struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	UserID      string  `gorm:"not null;index:idx_orders_user_id" json:"userId"`
	Plan        string  `gorm:"not null" json:"plan"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Currency    string  `gorm:"type:varchar(3);not null" json:"currency"`
	Gateway     string  `gorm:"type:varchar(10);not null" json:"gateway"`
	Status      string  `gorm:"type:varchar(10);not null;default:'PENDING'" json:"status"`
	ExternalID  *string `gorm:"column:external_id;uniqueIndex:idx_orders_external_id" json:"externalId"`
	CountryCode string  `gorm:"type:varchar(2)" json:"countryCode"`
	IP          string  `json:"ip"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Terminal reports whether status admits no further transitions.
func Terminal(status string) bool {
	switch status {
	case StatusPaid, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

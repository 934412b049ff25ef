package billing

import "time"

const (
	ProviderStripe = "STRIPE"
	ProviderPayPal = "PAYPAL"

	PaymentStatusCompleted = "COMPLETED"
)

type Payment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CourseID          string    `json:"course_id"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Provider          string    `json:"provider"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"` // UTC
}

// WebhookLog records every webhook delivery, processed or not, for audit
// and replay debugging.
type WebhookLog struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Event     string    `json:"event"`
	Payload   []byte    `json:"-"`
	Processed bool      `json:"processed"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

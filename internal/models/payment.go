package models

import "time"

// Payment event types delivered by the processor webhook.
const (
	PaymentEventSucceeded = "payment.succeeded"
	PaymentEventFailed    = "payment.failed"
)

// PaymentRecord stores one processor webhook delivery. ProviderRef is the
// processor's own identifier and is unique so redelivered webhooks are
// idempotent.
type PaymentRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MemberID     uint      `gorm:"not null;index" json:"member_id"`
	MembershipID *uint     `gorm:"index" json:"membership_id,omitempty"`
	ProviderRef  string    `gorm:"size:128;uniqueIndex;not null" json:"provider_ref"`
	EventType    string    `gorm:"size:64;not null" json:"event_type"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Currency     string    `gorm:"size:8;not null;default:usd" json:"currency"`
	ReceivedAt   time.Time `json:"received_at"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import "time"

// Event registration statuses.
const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusWaitlisted = "waitlisted"
	RegistrationStatusCancelled  = "cancelled"
)

// Event is a community event or contest with limited capacity. Capacity of
// zero means unlimited.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"size:255" json:"location"`
	ImageURL    string    `gorm:"size:512" json:"image_url,omitempty"`
	Capacity    int       `gorm:"not null;default:0" json:"capacity"`
	StartsAt    time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventRegistration ties a member to an event. Waitlisted rows are promoted
// in creation order when a registered row is cancelled.
type EventRegistration struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     uint       `gorm:"not null;index" json:"event_id"`
	MemberID    uint       `gorm:"not null;index" json:"member_id"`
	Status      string     `gorm:"size:16;not null;default:registered;index" json:"status"`
	PromotedAt  *time.Time `json:"promoted_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Event  Event  `gorm:"foreignKey:EventID" json:"-"`
	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

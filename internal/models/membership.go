package models

import "time"

// Membership statuses.
const (
	MembershipStatusPending = "pending"
	MembershipStatusActive  = "active"
	MembershipStatusExpired = "expired"
)

// Membership tiers.
const (
	TierIndividual = "individual"
	TierHousehold  = "household"
	TierSupporter  = "supporter"
)

// Membership is the billing record for one member and one term. A member has
// at most one active record at a time; renewals create new rows.
type Membership struct {
	ID                        uint       `gorm:"primaryKey" json:"id"`
	MemberID                  uint       `gorm:"not null;index" json:"member_id"`
	Tier                      string     `gorm:"size:32;not null;default:individual" json:"tier"`
	Status                    string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	AmountDue                 float64    `gorm:"not null;default:0" json:"amount_due"`
	BalanceDue                float64    `gorm:"not null;default:0" json:"balance_due"`
	WaivedThroughVolunteering bool       `gorm:"not null;default:false" json:"waived_through_volunteering"`
	WaiverVolunteerHours      float64    `gorm:"not null;default:0" json:"waiver_volunteer_hours"`
	TermStart                 time.Time  `json:"term_start"`
	TermEnd                   *time.Time `json:"term_end,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

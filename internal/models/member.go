package models

import "time"

// Member roles recognised by the portal.
const (
	RoleMember    = "member"
	RoleVolunteer = "volunteer"
	RoleBoard     = "board"
	RoleAdmin     = "admin"
)

// Member represents a registered member of the organisation.
//
// TotalVolunteerHours is a materialised cache of the sum of approved hour
// logs; the hour-log table remains the source of truth and the cache is
// refreshed on every review.
type Member struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Email               string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role                string     `gorm:"size:32;not null;default:member" json:"role"`
	AvatarURL           string     `gorm:"size:512" json:"avatar_url,omitempty"`
	TotalVolunteerHours float64    `gorm:"not null;default:0" json:"total_volunteer_hours"`
	MembershipFeeWaived bool       `gorm:"not null;default:false" json:"membership_fee_waived"`
	WaiverGrantedAt     *time.Time `json:"waiver_granted_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

package models

import "time"

// Hour log review statuses.
const (
	HourLogStatusPending  = "pending"
	HourLogStatusApproved = "approved"
	HourLogStatusRejected = "rejected"
)

// Review actions accepted by the approval endpoint.
const (
	ReviewActionApprove = "APPROVE"
	ReviewActionReject  = "REJECT"
)

// HourLog is a single volunteer-hour submission. Rows are append-only: a log
// is reviewed exactly once and never deleted, so notes and timestamps form an
// audit trail. CountsTowardWaiver is true only while Status is approved.
type HourLog struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	MemberID           uint       `gorm:"not null;index" json:"member_id"`
	AssignmentID       *uint      `gorm:"index" json:"assignment_id,omitempty"`
	Hours              float64    `gorm:"not null" json:"hours"`
	ActivityDate       time.Time  `gorm:"not null" json:"activity_date"`
	Description        string     `gorm:"type:text" json:"description"`
	Status             string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	CountsTowardWaiver bool       `gorm:"not null;default:false" json:"counts_toward_waiver"`
	ReviewedBy         *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	AdminNotes         string     `gorm:"type:text" json:"admin_notes,omitempty"`
	RejectionReason    string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

// Volunteer assignment statuses.
const (
	AssignmentStatusOpen      = "open"
	AssignmentStatusCompleted = "completed"
)

// VolunteerAssignment links a member to a volunteer signup. Approving an hour
// log that references an assignment marks the assignment completed.
type VolunteerAssignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	MemberID    uint       `gorm:"not null;index" json:"member_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Status      string     `gorm:"size:16;not null;default:open" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

package dto

import "time"

// HourLogSubmitRequest is the member-facing payload for logging hours.
type HourLogSubmitRequest struct {
	Hours        float64   `json:"hours" validate:"required,gt=0,lte=24"`
	ActivityDate time.Time `json:"activity_date" validate:"required"`
	Description  string    `json:"description" validate:"required,min=3,max=2000"`
	AssignmentID *uint     `json:"assignment_id"`
}

// HourLogReviewRequest is the admin payload for approving or rejecting a log.
type HourLogReviewRequest struct {
	Action          string `json:"action" validate:"required"`
	AdminNotes      string `json:"admin_notes" validate:"max=2000"`
	RejectionReason string `json:"rejection_reason" validate:"max=2000"`
}

// HourLogResponse mirrors one hour log row.
type HourLogResponse struct {
	ID                 uint       `json:"id"`
	MemberID           uint       `json:"member_id"`
	AssignmentID       *uint      `json:"assignment_id,omitempty"`
	Hours              float64    `json:"hours"`
	ActivityDate       time.Time  `json:"activity_date"`
	Description        string     `json:"description"`
	Status             string     `json:"status"`
	CountsTowardWaiver bool       `json:"counts_toward_waiver"`
	ReviewedBy         *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	AdminNotes         string     `json:"admin_notes,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// HourLogListResponse contains paginated hour logs.
type HourLogListResponse struct {
	Items      []HourLogResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// ReviewOutcome is returned by the approval endpoint.
type ReviewOutcome struct {
	Action  string           `json:"action"`
	HourLog HourLogResponse  `json:"hour_log"`
	Waiver  WaiverEvaluation `json:"waiver"`
}

// WaiverEvaluation reports the result of recalculating a member's waiver.
type WaiverEvaluation struct {
	MemberID            uint    `json:"member_id"`
	TotalHours          float64 `json:"total_hours"`
	WaiverThreshold     float64 `json:"waiver_threshold"`
	IsEligibleForWaiver bool    `json:"is_eligible_for_waiver"`
	WaiverApplied       bool    `json:"waiver_applied"`
	HoursNeeded         float64 `json:"hours_needed"`
}

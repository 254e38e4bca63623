package dto

import "time"

// ApplicationApproveRequest creates the active billing record for a member.
type ApplicationApproveRequest struct {
	MemberID  uint    `json:"member_id" validate:"required"`
	Tier      string  `json:"tier" validate:"required,oneof=individual household supporter"`
	AmountDue float64 `json:"amount_due" validate:"gte=0"`
}

// MembershipResponse mirrors one billing record.
type MembershipResponse struct {
	ID                        uint       `json:"id"`
	MemberID                  uint       `json:"member_id"`
	Tier                      string     `json:"tier"`
	Status                    string     `json:"status"`
	AmountDue                 float64    `json:"amount_due"`
	BalanceDue                float64    `json:"balance_due"`
	WaivedThroughVolunteering bool       `json:"waived_through_volunteering"`
	WaiverVolunteerHours      float64    `json:"waiver_volunteer_hours"`
	TermStart                 time.Time  `json:"term_start"`
	TermEnd                   *time.Time `json:"term_end,omitempty"`
}

// MemberProfileResponse combines a member profile with the active membership.
type MemberProfileResponse struct {
	ID                  uint                `json:"id"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	Role                string              `json:"role"`
	AvatarURL           string              `json:"avatar_url,omitempty"`
	TotalVolunteerHours float64             `json:"total_volunteer_hours"`
	MembershipFeeWaived bool                `json:"membership_fee_waived"`
	WaiverGrantedAt     *time.Time          `json:"waiver_granted_at,omitempty"`
	Membership          *MembershipResponse `json:"membership,omitempty"`
}

// MemberListResponse contains paginated member profiles.
type MemberListResponse struct {
	Items      []MemberProfileResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// PaymentWebhookEvent is the payload delivered by the payment processor.
type PaymentWebhookEvent struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	MemberID uint    `json:"member_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

package dto

import "time"

// EventCreateRequest is the admin payload for creating an event.
type EventCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description"`
	Location    string    `json:"location" validate:"max=255"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at"`
}

// EventResponse mirrors one event row with its registration count.
type EventResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url,omitempty"`
	Capacity    int       `json:"capacity"`
	Registered  int64     `json:"registered"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// EventListResponse contains paginated events.
type EventListResponse struct {
	Items      []EventResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// RegistrationResponse reports the outcome of a registration request.
type RegistrationResponse struct {
	ID       uint   `json:"id"`
	EventID  uint   `json:"event_id"`
	MemberID uint   `json:"member_id"`
	Status   string `json:"status"`
}

// CancellationResponse reports a cancellation and any promotion it caused.
type CancellationResponse struct {
	Cancelled RegistrationResponse  `json:"cancelled"`
	Promoted  *RegistrationResponse `json:"promoted,omitempty"`
}

package dto

import "time"

// AnnouncementCreateRequest is the admin payload for posting an announcement.
type AnnouncementCreateRequest struct {
	Title    string     `json:"title" validate:"required,min=3,max=255"`
	Body     string     `json:"body" validate:"required"`
	StartsAt time.Time  `json:"starts_at" validate:"required"`
	EndsAt   *time.Time `json:"ends_at"`
	IsPinned bool       `json:"is_pinned"`
}

// AnnouncementResponse represents an announcement payload returned to the frontend.
type AnnouncementResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	IsPinned  bool       `json:"is_pinned"`
	CreatedAt time.Time  `json:"created_at"`
}

// AnnouncementListResponse contains paginated announcements.
type AnnouncementListResponse struct {
	Items      []AnnouncementResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
	CacheHit   bool                   `json:"cache_hit"`
}

package models

import "time"

// Announcement is a portal-wide notice shown while its window is active.
type Announcement struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	StartsAt  time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt    *time.Time `gorm:"index" json:"ends_at"`
	IsPinned  bool       `gorm:"not null;default:false" json:"is_pinned"`
	CreatedBy uint       `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// FeatureFlag controls which portal features a role sees. Roles is a comma
// separated list; empty means every role. Payload carries optional component
// configuration forwarded to the client as-is.
type FeatureFlag struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Key       string            `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Enabled   bool              `gorm:"not null;default:false" json:"enabled"`
	Roles     string            `gorm:"size:255" json:"roles"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

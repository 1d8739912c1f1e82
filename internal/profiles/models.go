package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridealong/event-carpool/internal/matching"
)

// Profile is a named, persisted matching configuration. At most one profile
// is flagged as the default; the match service falls back to it when a
// request names no profile.
type Profile struct {
	ID        uuid.UUID               `json:"id"`
	Name      string                  `json:"name"`
	Config    matching.MatchingConfig `json:"config"`
	IsDefault bool                    `json:"isDefault"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// CreateProfileRequest is the payload for creating a profile.
type CreateProfileRequest struct {
	Name      string                  `json:"name" binding:"required,min=1,max=100"`
	Config    matching.MatchingConfig `json:"config" binding:"required"`
	IsDefault bool                    `json:"isDefault"`
}

// UpdateProfileRequest is the payload for replacing a profile's contents.
type UpdateProfileRequest struct {
	Name      string                  `json:"name" binding:"required,min=1,max=100"`
	Config    matching.MatchingConfig `json:"config" binding:"required"`
	IsDefault bool                    `json:"isDefault"`
}

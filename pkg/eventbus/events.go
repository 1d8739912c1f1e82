package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// ProfileChangedData is emitted when a matching-config profile is created,
// updated or deleted. Consumers caching effective configurations use it to
// invalidate.
type ProfileChangedData struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	ChangedAt time.Time `json:"changed_at"`
}

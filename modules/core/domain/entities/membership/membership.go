package membership

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/core/domain/entities/role"
)

var ErrNotFound = errors.New("membership not found")

// Membership binds one user to one organization with exactly one role.
// A user may hold different roles in different organizations; within one
// organization at most one active binding exists per user. RoleValue keeps
// the raw stored string: validation of stored roles happens at the
// authorization gate, because a legacy value in the store must surface as a
// hard error there, not vanish during mapping.
type Membership struct {
	ID             uuid.UUID
	OrgID          uuid.UUID
	UserID         string
	ExternalUserID string
	RoleValue      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role parses the stored role value. Legacy or garbage stored values error.
func (m *Membership) Role() (role.Role, error) {
	return role.NormalizeStored(m.RoleValue)
}

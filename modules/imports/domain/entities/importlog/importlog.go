package importlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/imports/validators"
)

// ImportLog is the audit record written once per import attempt, whatever
// the outcome.
type ImportLog struct {
	ID           uuid.UUID
	OrgID        uuid.UUID
	UserID       string
	EntityType   string
	TotalRows    int
	SuccessCount int
	FailedCount  int
	Errors       []validators.RowError
	CreatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, log *ImportLog) error
}

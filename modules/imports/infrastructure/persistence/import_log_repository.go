package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanifleet/sanifleet/modules/imports/domain/entities/importlog"
	"github.com/sanifleet/sanifleet/modules/imports/validators"
	"github.com/sanifleet/sanifleet/pkg/composables"
)

const insertImportLogQuery = `
	INSERT INTO import_audit_logs (
		id, tenant_id, user_id, entity_type,
		total_rows, success_count, failed_count, errors
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type ImportLogRepository struct{}

func NewImportLogRepository() importlog.Repository {
	return &ImportLogRepository{}
}

func (r *ImportLogRepository) Create(ctx context.Context, log *importlog.ImportLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	errList := log.Errors
	if errList == nil {
		errList = []validators.RowError{}
	}
	errorsJSON, err := json.Marshal(errList)
	if err != nil {
		return fmt.Errorf("failed to encode import errors: %w", err)
	}
	_, err = tx.Exec(ctx, insertImportLogQuery,
		log.ID,
		log.OrgID,
		log.UserID,
		log.EntityType,
		log.TotalRows,
		log.SuccessCount,
		log.FailedCount,
		errorsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to write import audit log: %w", err)
	}
	return nil
}

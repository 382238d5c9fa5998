package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanifleet/sanifleet/modules/imports/validators"
	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/repo"
)

const atomicImportQuery = `SELECT import_records_atomic($1, $2, $3)`

// RecordRepository writes validated import records and answers ownership
// checks for foreign-key references.
type RecordRepository struct{}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{}
}

// InsertAtomic commits a whole batch through the server-side procedure in a
// single call. The procedure inserts every row or none.
func (r *RecordRepository) InsertAtomic(ctx context.Context, tenantID uuid.UUID, entityType string, records []validators.Record) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := composables.RequireTenantID(tenantID); err != nil {
		return 0, err
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("failed to encode import batch: %w", err)
	}
	var inserted int
	if err := tx.QueryRow(ctx, atomicImportQuery, tenantID, entityType, payload).Scan(&inserted); err != nil {
		return 0, fmt.Errorf("atomic import failed: %w", err)
	}
	return inserted, nil
}

// InsertCopy bulk-inserts a batch with pgx CopyFrom inside one
// transaction. Weaker than the procedure path: atomicity holds only as
// long as the transaction does, with no server-side validation behind it.
func (r *RecordRepository) InsertCopy(ctx context.Context, tenantID uuid.UUID, v validators.Validator, records []validators.Record) (int, error) {
	if _, err := composables.RequireTenantID(tenantID); err != nil {
		return 0, err
	}
	columns := v.Columns()
	var inserted int
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}
		copied, err := tx.CopyFrom(txCtx,
			pgx.Identifier{v.Table()},
			columns,
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				row := make([]any, len(columns))
				for c, col := range columns {
					row[c] = records[i][col]
				}
				return row, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("bulk insert into %s failed: %w", v.Table(), err)
		}
		inserted = int(copied)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ExistsOwned reports whether id exists in table and belongs to the tenant.
func (r *RecordRepository) ExistsOwned(ctx context.Context, tenantID uuid.UUID, table string, id uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	scope, err := repo.ForTenant(tenantID)
	if err != nil {
		return false, err
	}
	scoped, err := scope.Table(table)
	if err != nil {
		return false, err
	}
	return scoped.ExistsOwned(ctx, tx, id)
}

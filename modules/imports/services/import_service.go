package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	coreservices "github.com/sanifleet/sanifleet/modules/core/services"
	"github.com/sanifleet/sanifleet/modules/imports/domain/entities/importlog"
	"github.com/sanifleet/sanifleet/modules/imports/validators"
	"github.com/sanifleet/sanifleet/pkg/composables"
	"github.com/sanifleet/sanifleet/pkg/configuration"
	"github.com/sanifleet/sanifleet/pkg/eventbus"
	"github.com/sanifleet/sanifleet/pkg/metrics"
)

// RecordStore is the data-layer surface the orchestrator needs: batch
// insertion by either strategy plus tenant-ownership checks for declared
// foreign keys.
type RecordStore interface {
	InsertAtomic(ctx context.Context, tenantID uuid.UUID, entityType string, records []validators.Record) (int, error)
	InsertCopy(ctx context.Context, tenantID uuid.UUID, v validators.Validator, records []validators.Record) (int, error)
	ExistsOwned(ctx context.Context, tenantID uuid.UUID, table string, id uuid.UUID) (bool, error)
}

// ImportCompleted is published after a batch commits.
type ImportCompleted struct {
	OrgID      uuid.UUID
	UserID     string
	EntityType string
	Inserted   int
}

type ImportService struct {
	records   RecordStore
	logs      importlog.Repository
	publisher eventbus.EventBus
}

func NewImportService(records RecordStore, logs importlog.Repository, publisher eventbus.EventBus) *ImportService {
	return &ImportService{records: records, logs: logs, publisher: publisher}
}

type ImportParams struct {
	Type   string
	OrgID  uuid.UUID
	UserID string
	Rows   []map[string]any
	// Atomic selects the insert strategy; nil means the configured
	// default (atomic).
	Atomic *bool
}

type ImportResult struct {
	OK       bool                  `json:"ok"`
	Message  string                `json:"message"`
	Errors   []validators.RowError `json:"errors,omitempty"`
	Inserted int                   `json:"inserted"`
}

// Import runs one batch through the pipeline: validate every row, check
// foreign-key ownership, insert all-or-nothing, audit. Validation and
// ownership failures are part of the result, not returned errors; only a
// malformed request (unknown type, missing org, oversized batch) errors
// out before the pipeline starts.
func (s *ImportService) Import(ctx context.Context, p ImportParams) (*ImportResult, error) {
	v, ok := validators.For(p.Type)
	if !ok {
		return nil, coreservices.NewServiceError(http.StatusBadRequest, "IMPORT_UNKNOWN_TYPE",
			fmt.Sprintf("unknown entity type %q", p.Type), nil)
	}
	if _, err := composables.RequireTenantID(p.OrgID); err != nil {
		return nil, coreservices.NewServiceError(http.StatusUnauthorized, coreservices.CodeUnauthorized,
			"Organization context required", err)
	}
	if len(p.Rows) == 0 {
		return nil, coreservices.NewServiceError(http.StatusBadRequest, "IMPORT_EMPTY_BATCH",
			"batch contains no rows", nil)
	}
	if max := configuration.Use().Import.MaxBatchRows; max > 0 && len(p.Rows) > max {
		return nil, coreservices.NewServiceError(http.StatusBadRequest, "IMPORT_BATCH_TOO_LARGE",
			fmt.Sprintf("batch exceeds the %d row limit", max), nil)
	}

	records := make([]validators.Record, 0, len(p.Rows))
	recordRows := make([]int, 0, len(p.Rows))
	var rowErrs []validators.RowError
	for i, row := range p.Rows {
		rowNum := i + 2
		rec, errs := v.ValidateRecord(row, p.OrgID, rowNum)
		if len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		records = append(records, rec)
		recordRows = append(recordRows, rowNum)
	}
	if len(rowErrs) > 0 {
		return s.reject(ctx, p, "validation failed", rowErrs)
	}

	fkErrs, err := s.checkOwnership(ctx, p.OrgID, v, records, recordRows)
	if err != nil {
		return s.fail(ctx, p, err)
	}
	if len(fkErrs) > 0 {
		return s.reject(ctx, p, "foreign key validation failed", fkErrs)
	}

	inserted, err := s.insert(ctx, p, v, records)
	if err != nil {
		return s.fail(ctx, p, err)
	}

	s.audit(ctx, p, inserted, 0, nil)
	s.publisher.Publish(&ImportCompleted{
		OrgID:      p.OrgID,
		UserID:     p.UserID,
		EntityType: p.Type,
		Inserted:   inserted,
	})
	metrics.ImportBatches.WithLabelValues(p.Type, "succeeded").Inc()
	metrics.ImportRows.WithLabelValues(p.Type, "inserted").Add(float64(inserted))
	return &ImportResult{
		OK:       true,
		Message:  fmt.Sprintf("imported %d rows", inserted),
		Inserted: inserted,
	}, nil
}

// checkOwnership verifies every declared foreign-key reference exists AND
// is owned by the importing tenant. Lookups are deduplicated per table so a
// batch referencing the same customer a hundred times costs one query.
func (s *ImportService) checkOwnership(ctx context.Context, orgID uuid.UUID, v validators.Validator, records []validators.Record, recordRows []int) ([]validators.RowError, error) {
	rules := v.Rules()
	if len(rules) == 0 {
		return nil, nil
	}

	seen := map[string]map[uuid.UUID]bool{}
	var violations []validators.RowError
	for i, rec := range records {
		for _, rule := range rules {
			raw, ok := rec[rule.Field]
			if !ok || raw == nil {
				continue
			}
			id, ok := raw.(uuid.UUID)
			if !ok || id == uuid.Nil {
				continue
			}
			cache, ok := seen[rule.Table]
			if !ok {
				cache = map[uuid.UUID]bool{}
				seen[rule.Table] = cache
			}
			owned, ok := cache[id]
			if !ok {
				var err error
				owned, err = s.records.ExistsOwned(ctx, orgID, rule.Table, id)
				if err != nil {
					return nil, err
				}
				cache[id] = owned
			}
			if !owned {
				violations = append(violations, validators.RowError{
					Row:   recordRows[i],
					Field: rule.Field,
					Error: rule.Message,
				})
			}
		}
	}
	return violations, nil
}

func (s *ImportService) insert(ctx context.Context, p ImportParams, v validators.Validator, records []validators.Record) (int, error) {
	atomic := configuration.Use().Import.Atomic
	if p.Atomic != nil {
		atomic = *p.Atomic
	}
	if atomic {
		return s.records.InsertAtomic(ctx, p.OrgID, p.Type, records)
	}

	composables.UseLogger(ctx).WithField("entity_type", p.Type).
		Warn("import using non-atomic bulk insert")
	return s.records.InsertCopy(ctx, p.OrgID, v, records)
}

// reject reports a batch that failed validation or ownership checks.
// Nothing was inserted; the audit entry records the full error list and
// counts only the rows that actually failed.
func (s *ImportService) reject(ctx context.Context, p ImportParams, message string, errs []validators.RowError) (*ImportResult, error) {
	failed := failedRowCount(errs)
	s.audit(ctx, p, 0, failed, errs)
	metrics.ImportBatches.WithLabelValues(p.Type, "rejected").Inc()
	metrics.ImportRows.WithLabelValues(p.Type, "rejected").Add(float64(failed))
	return &ImportResult{OK: false, Message: message, Errors: errs, Inserted: 0}, nil
}

// failedRowCount counts distinct failing rows; a row with several bad
// fields still fails once.
func failedRowCount(errs []validators.RowError) int {
	rows := make(map[int]struct{}, len(errs))
	for _, e := range errs {
		rows[e.Row] = struct{}{}
	}
	return len(rows)
}

// fail reports an infrastructure failure. The cause is logged, not exposed;
// the caller sees the same structural shape as a validation failure. No row
// made it in, so the whole batch counts as failed.
func (s *ImportService) fail(ctx context.Context, p ImportParams, cause error) (*ImportResult, error) {
	composables.UseLogger(ctx).WithError(cause).
		WithField("entity_type", p.Type).
		Error("import failed")
	s.audit(ctx, p, 0, len(p.Rows), nil)
	metrics.ImportBatches.WithLabelValues(p.Type, "failed").Inc()
	return &ImportResult{OK: false, Message: "import failed", Inserted: 0}, nil
}

// audit writes the one audit entry every attempt gets. It runs outside any
// batch transaction and never fails the import; a write error is logged
// and swallowed.
func (s *ImportService) audit(ctx context.Context, p ImportParams, success, failed int, errs []validators.RowError) {
	err := s.logs.Create(ctx, &importlog.ImportLog{
		OrgID:        p.OrgID,
		UserID:       p.UserID,
		EntityType:   p.Type,
		TotalRows:    len(p.Rows),
		SuccessCount: success,
		FailedCount:  failed,
		Errors:       errs,
	})
	if err != nil {
		composables.UseLogger(ctx).WithError(err).
			WithField("entity_type", p.Type).
			Error("failed to write import audit log")
	}
}
